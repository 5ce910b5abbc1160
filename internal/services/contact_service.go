// internal/services/contact_service.go
package services

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/lavshop/storefront-backend/internal/apperrors"
	"github.com/lavshop/storefront-backend/internal/models"
	"github.com/lavshop/storefront-backend/internal/utils"
)

type ContactService struct {
	db *gorm.DB
}

type CreateContactRequest struct {
	Name    string `json:"name" validate:"required"`
	Title   string `json:"title,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required"`
}

func NewContactService(db *gorm.DB) *ContactService {
	return &ContactService{db: db}
}

func (s *ContactService) CreateContact(userID uuid.UUID, req *CreateContactRequest) (*models.Contact, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("name, email and message are required")
	}

	contact := &models.Contact{
		UserID:  userID,
		Name:    req.Name,
		Title:   req.Title,
		Phone:   req.Phone,
		Email:   req.Email,
		Message: req.Message,
	}
	if err := s.db.Create(contact).Error; err != nil {
		return nil, apperrors.Internal("failed to save contact message", err)
	}

	logrus.WithField("contact_id", contact.ID).Info("Contact message received")
	return contact, nil
}

func (s *ContactService) ListContacts(params utils.PaginationParams) ([]models.Contact, int64, error) {
	query := s.db.Model(&models.Contact{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to count contact messages", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "name", "email"})
	query = utils.ApplyPagination(query, params)

	var contacts []models.Contact
	if err := query.Find(&contacts).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to fetch contact messages", err)
	}
	return contacts, total, nil
}
