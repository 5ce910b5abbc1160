// internal/models/contact.go
package models

import "github.com/google/uuid"

type Contact struct {
	BaseModel
	UserID  uuid.UUID `json:"user_id" gorm:"type:uuid;index;not null"`
	Name    string    `json:"name" gorm:"size:255;not null"`
	Title   string    `json:"title" gorm:"size:255"`
	Phone   string    `json:"phone" gorm:"size:50"`
	Email   string    `json:"email" gorm:"size:255;not null"`
	Message string    `json:"message" gorm:"type:text;not null"`
}
