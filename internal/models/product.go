// internal/models/product.go
package models

import "github.com/google/uuid"

type Product struct {
	BaseModel
	Name        string  `json:"name" gorm:"size:255;not null"`
	Description string  `json:"description" gorm:"type:text"`
	Price       float64 `json:"price" gorm:"type:decimal(10,2);not null"`
	// Legacy flat discount percentage; superseded by an active
	// ApplicableProduct window when one exists.
	Discount  float64 `json:"discount" gorm:"type:decimal(5,2);default:0"`
	Quantity  int64   `json:"quantity" gorm:"not null;default:0"`
	LikeCount int64   `json:"like_count" gorm:"default:0"`
	ViewCount int64   `json:"view_count" gorm:"default:0"`
	SellCount int64   `json:"sell_count" gorm:"default:0"`

	Images     []Image    `json:"images,omitempty" gorm:"foreignKey:ProductID"`
	Categories []Category `json:"categories,omitempty" gorm:"many2many:product_categories"`
}

type Category struct {
	BaseModel
	Name string `json:"name" gorm:"size:100;uniqueIndex;not null"`

	Products []Product `json:"products,omitempty" gorm:"many2many:product_categories"`
}

// Image is one product image, either a stored upload path or an external URL
// recorded verbatim.
type Image struct {
	BaseModel
	URL       string    `json:"image" gorm:"size:1024;not null"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;index;not null"`
}
