// internal/utils/response_test.go
package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/lavshop/storefront-backend/internal/apperrors"
)

func performErrorResponse(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	AppErrorResponse(c, err)
	return w
}

func TestAppErrorResponseStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation maps to 400", apperrors.Validation("bad input"), http.StatusBadRequest},
		{"conflict maps to 400", apperrors.Conflict("already liked"), http.StatusBadRequest},
		{"not found maps to 404", apperrors.NotFound("missing"), http.StatusNotFound},
		{"unauthorized maps to 401", apperrors.Unauthorized("no token"), http.StatusUnauthorized},
		{"forbidden maps to 403", apperrors.Forbidden("not yours"), http.StatusForbidden},
		{"internal maps to 500", apperrors.Internal("boom", errors.New("cause")), http.StatusInternalServerError},
		{"unknown errors map to 500", errors.New("plain error"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := performErrorResponse(tc.err)
			assert.Equal(t, tc.status, w.Code)

			var response APIResponse
			assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.False(t, response.Success)
			assert.NotNil(t, response.Error)
		})
	}
}

func TestAppErrorResponseHidesInternalCause(t *testing.T) {
	w := performErrorResponse(apperrors.Internal("failed to fetch product", errors.New("connection refused")))

	var response APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.NotContains(t, response.Error.Message, "connection refused")
}
