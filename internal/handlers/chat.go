// internal/handlers/chat.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lavshop/storefront-backend/internal/services"
	"github.com/lavshop/storefront-backend/internal/utils"
)

type ChatHandler struct {
	chatService *services.ChatService
	// Store-side participant used when the client omits recipientId.
	defaultRecipientID string
}

func NewChatHandler(chatService *services.ChatService, defaultRecipientID string) *ChatHandler {
	return &ChatHandler{
		chatService:        chatService,
		defaultRecipientID: defaultRecipientID,
	}
}

// POST /chats
func (h *ChatHandler) StartSession(c *gin.Context) {
	var req services.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}
	if req.RecipientID == "" {
		req.RecipientID = h.defaultRecipientID
	}

	session, err := h.chatService.StartSession(&req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Chat session created", session)
}

// POST /chats/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req services.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	sessionID, err := uuid.Parse(req.ChatID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid chat ID", nil)
		return
	}

	senderIDStr, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "Authentication required")
		return
	}
	senderID, err := uuid.Parse(senderIDStr)
	if err != nil {
		utils.UnauthorizedResponse(c, "Authentication required")
		return
	}

	session, err := h.chatService.SendMessage(sessionID, senderID, req.Content)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Message sent", session)
}

// GET /chats?productId=&userId=&page=&limit=
func (h *ChatHandler) GetSessionsByProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Query("productId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	userID, err := uuid.Parse(c.Query("userId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	sessions, total, err := h.chatService.ListSessionsByProduct(productID, userID, page, limit)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Retrieved chat sessions successfully", gin.H{
		"sessions": sessions,
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}

// GET /chats/user/:userId
func (h *ChatHandler) GetSessionsByUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	sessions, err := h.chatService.ListSessionsByUser(userID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Retrieved chat sessions successfully", sessions)
}
