// internal/services/storage_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lavshop/storefront-backend/internal/config"
)

func TestKeyForURLResolvesOnlyStoredUploads(t *testing.T) {
	cfg := &config.Config{}
	cfg.Uploads.BaseURL = "/uploads"
	cfg.AWS.CloudFrontURL = "https://cdn.lavshop.example"

	svc, err := NewStorageService(cfg)
	require.NoError(t, err)

	assert.Equal(t, "products/mug.png", svc.KeyForURL("/uploads/products/mug.png"))
	assert.Equal(t, "events/banner.png", svc.KeyForURL("https://cdn.lavshop.example/events/banner.png"))
	assert.Equal(t, "", svc.KeyForURL("https://example.com/external.png"))
}
