// internal/handlers/contact.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lavshop/storefront-backend/internal/services"
	"github.com/lavshop/storefront-backend/internal/utils"
)

type ContactHandler struct {
	contactService *services.ContactService
}

func NewContactHandler(contactService *services.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// POST /contacts
func (h *ContactHandler) CreateContact(c *gin.Context) {
	var req services.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	userIDStr, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "Authentication required")
		return
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.UnauthorizedResponse(c, "Authentication required")
		return
	}

	contact, err := h.contactService.CreateContact(userID, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Message received", contact)
}

// GET /contacts (admin)
func (h *ContactHandler) GetContacts(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	contacts, total, err := h.contactService.ListContacts(params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	result := utils.CreatePaginationResult(contacts, total, params)
	utils.PaginatedResponse(c, result)
}
