// internal/models/event.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Event is a promotional campaign with a time window and a set of enrolled
// products. The enrollment manifest is the set of ApplicableProduct rows
// carrying this event's id; there is no separate id list to drift out of sync.
type Event struct {
	BaseModel
	Name        string    `json:"name" gorm:"size:255;not null"`
	Description string    `json:"description" gorm:"type:text;not null"`
	StartDate   time.Time `json:"start_date" gorm:"not null"`
	EndDate     time.Time `json:"end_date" gorm:"not null"`
	Location    string    `json:"location" gorm:"size:255"`
	Images      []string  `json:"images" gorm:"serializer:json"`

	Products []ApplicableProduct `json:"products,omitempty" gorm:"foreignKey:EventID"`
}

// ApplicableProduct enrolls one product in one promotional window with its
// own discount percentage. A product may hold several rows with overlapping
// or disjoint windows.
type ApplicableProduct struct {
	BaseModel
	EventID   uuid.UUID `json:"event_id" gorm:"type:uuid;index;not null"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;index;not null"`
	Discount  float64   `json:"discount" gorm:"type:decimal(5,2);not null"`
	StartDate time.Time `json:"start_date" gorm:"index;not null"`
	EndDate   time.Time `json:"end_date" gorm:"index;not null"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
