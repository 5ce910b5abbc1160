// internal/models/chat.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatSession is a persistent message thread between a buyer and the store
// about one product. LastMessageAt orders session lists newest-first.
type ChatSession struct {
	BaseModel
	BuyerID       uuid.UUID `json:"buyer_id" gorm:"type:uuid;index;not null"`
	RecipientID   uuid.UUID `json:"recipient_id" gorm:"type:uuid;index;not null"`
	ProductID     uuid.UUID `json:"product_id" gorm:"type:uuid;index;not null"`
	LastMessageAt time.Time `json:"last_message_at" gorm:"index"`

	Product  *Product      `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Messages []ChatMessage `json:"messages,omitempty" gorm:"foreignKey:SessionID"`
}

type ChatMessage struct {
	BaseModel
	SessionID uuid.UUID `json:"session_id" gorm:"type:uuid;index;not null"`
	SenderID  uuid.UUID `json:"sender_id" gorm:"type:uuid;not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	IsRead    bool      `json:"is_read" gorm:"default:false"`
}
