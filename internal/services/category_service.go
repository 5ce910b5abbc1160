// internal/services/category_service.go
package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/lavshop/storefront-backend/internal/apperrors"
	"github.com/lavshop/storefront-backend/internal/models"
	"github.com/lavshop/storefront-backend/internal/utils"
)

type CategoryService struct {
	db *gorm.DB
}

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

func (s *CategoryService) CreateCategory(req *CreateCategoryRequest) (*models.Category, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("category name is required")
	}

	var existing models.Category
	err := s.db.Where("name = ?", req.Name).First(&existing).Error
	if err == nil {
		return nil, apperrors.Conflict("category already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Internal("failed to check category", err)
	}

	category := models.Category{Name: req.Name}
	if err := s.db.Create(&category).Error; err != nil {
		return nil, apperrors.Internal("failed to create category", err)
	}
	return &category, nil
}

func (s *CategoryService) ListCategories() ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Internal("failed to list categories", err)
	}
	return categories, nil
}
