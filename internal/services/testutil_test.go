// internal/services/testutil_test.go
package services

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lavshop/storefront-backend/internal/database"
	"github.com/lavshop/storefront-backend/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, quantity int64) models.Product {
	t.Helper()

	product := models.Product{
		Name:        name,
		Description: "test product",
		Price:       49.90,
		Quantity:    quantity,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func seedCategory(t *testing.T, db *gorm.DB, name string) models.Category {
	t.Helper()

	category := models.Category{Name: name}
	require.NoError(t, db.Create(&category).Error)
	return category
}

func seedEvent(t *testing.T, db *gorm.DB, name string, start, end time.Time) models.Event {
	t.Helper()

	event := models.Event{
		Name:        name,
		Description: "test event",
		StartDate:   start,
		EndDate:     end,
	}
	require.NoError(t, db.Create(&event).Error)
	return event
}

func seedEnrollment(t *testing.T, db *gorm.DB, eventID, productID uuid.UUID, discount float64, start, end time.Time) models.ApplicableProduct {
	t.Helper()

	row := models.ApplicableProduct{
		EventID:   eventID,
		ProductID: productID,
		Discount:  discount,
		StartDate: start,
		EndDate:   end,
	}
	require.NoError(t, db.Create(&row).Error)
	return row
}

func seedUser(t *testing.T, db *gorm.DB, username, email string) models.User {
	t.Helper()

	user := models.User{Username: username, Email: email}
	require.NoError(t, user.SetPassword("correct-horse-battery"))
	require.NoError(t, db.Create(&user).Error)
	return user
}
