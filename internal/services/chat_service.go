// internal/services/chat_service.go
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/lavshop/storefront-backend/internal/apperrors"
	"github.com/lavshop/storefront-backend/internal/models"
	"github.com/lavshop/storefront-backend/internal/realtime"
	"github.com/lavshop/storefront-backend/internal/utils"
)

type ChatService struct {
	db        *gorm.DB
	publisher realtime.Publisher
}

type StartSessionRequest struct {
	SenderID    string `json:"senderId" validate:"required"`
	RecipientID string `json:"recipientId" validate:"required"`
	ProductID   string `json:"productId" validate:"required"`
}

type SendMessageRequest struct {
	ChatID  string `json:"chatId" validate:"required"`
	Content string `json:"content"`
}

// MessagePayload is what subscribers of a session receive over the live
// channel when a message lands.
type MessagePayload struct {
	Event     string             `json:"event"`
	SessionID string             `json:"session_id"`
	Message   models.ChatMessage `json:"message"`
}

func NewChatService(db *gorm.DB, publisher realtime.Publisher) *ChatService {
	return &ChatService{db: db, publisher: publisher}
}

// StartSession opens a thread between a buyer and the store about one
// product. Duplicate sessions for the same pair and product are allowed.
func (s *ChatService) StartSession(req *StartSessionRequest) (*models.ChatSession, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("senderId, recipientId and productId are required")
	}

	buyerID, err := uuid.Parse(req.SenderID)
	if err != nil {
		return nil, apperrors.Validation("invalid sender id")
	}
	recipientID, err := uuid.Parse(req.RecipientID)
	if err != nil {
		return nil, apperrors.Validation("invalid recipient id")
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, apperrors.Validation("invalid product id")
	}

	session := &models.ChatSession{
		BuyerID:       buyerID,
		RecipientID:   recipientID,
		ProductID:     productID,
		LastMessageAt: time.Now(),
	}
	if err := s.db.Create(session).Error; err != nil {
		return nil, apperrors.Internal("failed to create chat session", err)
	}

	s.db.Preload("Product").Preload("Product.Images").First(session, "id = ?", session.ID)

	logrus.WithField("session_id", session.ID).Info("Chat session started")
	return session, nil
}

// ListSessionsByUser returns every session the user participates in,
// newest message first.
func (s *ChatService) ListSessionsByUser(userID uuid.UUID) ([]models.ChatSession, error) {
	var sessions []models.ChatSession
	err := s.db.Where("buyer_id = ? OR recipient_id = ?", userID, userID).
		Order("last_message_at DESC").
		Preload("Product").Preload("Product.Images").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Find(&sessions).Error
	if err != nil {
		return nil, apperrors.Internal("failed to fetch chat sessions", err)
	}
	return sessions, nil
}

func (s *ChatService) ListSessionsByProduct(productID, userID uuid.UUID, page, limit int) ([]models.ChatSession, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	query := s.db.Model(&models.ChatSession{}).
		Where("product_id = ? AND (buyer_id = ? OR recipient_id = ?)", productID, userID, userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to count chat sessions", err)
	}

	var sessions []models.ChatSession
	err := query.Order("last_message_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Preload("Product").Preload("Product.Images").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Find(&sessions).Error
	if err != nil {
		return nil, 0, apperrors.Internal("failed to fetch chat sessions", err)
	}
	return sessions, total, nil
}

// SendMessage appends a message with a server-assigned timestamp and
// publishes it to current subscribers. The publish is best-effort; history
// remains the source of truth for clients that were offline.
func (s *ChatService) SendMessage(sessionID, senderID uuid.UUID, content string) (*models.ChatSession, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.Validation("message content must not be empty")
	}

	var session models.ChatSession
	if err := s.db.First(&session, "id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("chat session not found")
		}
		return nil, apperrors.Internal("failed to fetch chat session", err)
	}

	if session.BuyerID != senderID && session.RecipientID != senderID {
		return nil, apperrors.Forbidden("you are not a participant of this chat")
	}

	message := models.ChatMessage{
		SessionID: sessionID,
		SenderID:  senderID,
		Content:   content,
		IsRead:    false,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&message).Error; err != nil {
			return apperrors.Internal("failed to save message", err)
		}
		if err := tx.Model(&session).UpdateColumn("last_message_at", message.CreatedAt).Error; err != nil {
			return apperrors.Internal("failed to touch chat session", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// The goroutine gets its own copy; the reload below writes into session
	// concurrently with the publish.
	go s.publishMessage(session, message)

	s.db.Preload("Product").Preload("Product.Images").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&session, "id = ?", sessionID)

	return &session, nil
}

// publishMessage notifies live subscribers of the session and the other
// participant. Errors are logged only; a missed publish is reconciled from
// history on the next fetch.
func (s *ChatService) publishMessage(session models.ChatSession, message models.ChatMessage) {
	if s.publisher == nil {
		return
	}

	payload := MessagePayload{
		Event:     realtime.EventReceiveMessage,
		SessionID: session.ID.String(),
		Message:   message,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.publisher.Publish(ctx, realtime.SessionChannel(session.ID.String()), payload); err != nil {
		logrus.WithError(err).WithField("session_id", session.ID).Warn("Failed to publish chat message")
	}

	recipient := session.RecipientID
	if message.SenderID == session.RecipientID {
		recipient = session.BuyerID
	}
	if err := s.publisher.Publish(ctx, realtime.UserChannel(recipient.String()), payload); err != nil {
		logrus.WithError(err).WithField("user_id", recipient).Warn("Failed to publish chat notification")
	}
}
