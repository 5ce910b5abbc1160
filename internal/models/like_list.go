// internal/models/like_list.go
package models

import "github.com/google/uuid"

// LikeList records the products a user has liked. Membership is checked in
// code before appending; there is no uniqueness constraint on the slice.
type LikeList struct {
	BaseModel
	UserID     uuid.UUID `json:"user_id" gorm:"type:uuid;uniqueIndex;not null"`
	ProductIDs []string  `json:"product_ids" gorm:"serializer:json"`
}

func (l *LikeList) Contains(productID uuid.UUID) bool {
	id := productID.String()
	for _, p := range l.ProductIDs {
		if p == id {
			return true
		}
	}
	return false
}
