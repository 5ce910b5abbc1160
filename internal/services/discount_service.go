// internal/services/discount_service.go
package services

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lavshop/storefront-backend/internal/apperrors"
	"github.com/lavshop/storefront-backend/internal/models"
)

// DiscountService resolves a product's currently active promotional discount
// from its ApplicableProduct rows at read time. Nothing is cached or
// precomputed.
type DiscountService struct {
	db *gorm.DB
}

type DiscountInfo struct {
	EventDiscount float64 `json:"event_discount"`
	IsInEvent     bool    `json:"is_in_event"`
}

func NewDiscountService(db *gorm.DB) *DiscountService {
	return &DiscountService{db: db}
}

// Resolve returns the active discount for the product at the given instant.
// Window bounds are inclusive on both ends. When several windows overlap the
// highest discount wins; among equals the most recently created row does.
func (s *DiscountService) Resolve(productID uuid.UUID, now time.Time) (DiscountInfo, error) {
	var applicable models.ApplicableProduct
	err := s.db.Where("product_id = ? AND start_date <= ? AND end_date >= ?", productID, now, now).
		Order("discount DESC, created_at DESC").
		First(&applicable).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return DiscountInfo{EventDiscount: 0, IsInEvent: false}, nil
		}
		return DiscountInfo{}, apperrors.Internal("failed to resolve discount", err)
	}

	return DiscountInfo{EventDiscount: applicable.Discount, IsInEvent: true}, nil
}
