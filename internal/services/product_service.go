// internal/services/product_service.go
package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/lavshop/storefront-backend/internal/apperrors"
	"github.com/lavshop/storefront-backend/internal/models"
	"github.com/lavshop/storefront-backend/internal/search"
	"github.com/lavshop/storefront-backend/internal/utils"
)

// ProductIndexer is the full-text provider the catalog writes through.
// Index writes are best-effort; the database remains the source of truth.
type ProductIndexer interface {
	IndexProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string, page, limit int) ([]search.ProductDocument, int64, error)
	HealthCheck(ctx context.Context) error
}

// FileRemover deletes uploaded files once the rows referencing them are gone.
type FileRemover interface {
	KeyForURL(url string) string
	DeleteFile(key string) error
}

type ProductService struct {
	db              *gorm.DB
	discountService *DiscountService
	index           ProductIndexer
	files           FileRemover
}

type CreateProductRequest struct {
	Name        string   `json:"name" validate:"required"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	Categories  []string `json:"categories" validate:"required,min=1"`
	Description string   `json:"description" validate:"required"`
	// A discount or quantity of exactly 0 is rejected, matching the
	// storefront's long-standing create contract.
	Discount   float64  `json:"discount" validate:"required"`
	Quantity   int64    `json:"quantity" validate:"required,gt=0"`
	ImageLinks []string `json:"images,omitempty"`
}

type UpdateProductRequest struct {
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Price       float64  `json:"price,omitempty" validate:"omitempty,gt=0"`
	Quantity    int64    `json:"quantity,omitempty" validate:"omitempty,gt=0"`
	Discount    float64  `json:"discount,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	ImageLinks  []string `json:"images,omitempty"`
}

// ProductDetail is a product read enriched with its resolved promotional
// discount.
type ProductDetail struct {
	models.Product
	DiscountInfo
}

type SearchResult struct {
	Hits  []search.ProductDocument `json:"results"`
	Total int64                    `json:"total"`
	Page  int                      `json:"page"`
	Limit int                      `json:"limit"`
}

func NewProductService(db *gorm.DB, discountService *DiscountService, index ProductIndexer, files FileRemover) *ProductService {
	return &ProductService{
		db:              db,
		discountService: discountService,
		index:           index,
		files:           files,
	}
}

func (s *ProductService) CreateProduct(req *CreateProductRequest, uploadedImages []string) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("please provide all required fields: name, price, categories, description, discount, quantity")
	}

	product := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Discount:    req.Discount,
		Quantity:    req.Quantity,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(product).Error; err != nil {
			return apperrors.Internal("failed to create product", err)
		}

		categories, err := s.findCategories(tx, req.Categories)
		if err != nil {
			return err
		}
		if len(categories) > 0 {
			if err := tx.Model(product).Association("Categories").Append(categories); err != nil {
				return apperrors.Internal("failed to attach categories", err)
			}
		}

		for _, url := range append(uploadedImages, req.ImageLinks...) {
			image := models.Image{URL: url, ProductID: product.ID}
			if err := tx.Create(&image).Error; err != nil {
				return apperrors.Internal("failed to save product image", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.db.Preload("Images").Preload("Categories").First(product, "id = ?", product.ID)

	go s.indexProduct(product)

	logrus.WithField("product_id", product.ID).Info("Product created")
	return product, nil
}

func (s *ProductService) GetProduct(id uuid.UUID, now time.Time) (*ProductDetail, error) {
	var product models.Product
	err := s.db.Preload("Images").Preload("Categories").First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("product not found")
		}
		return nil, apperrors.Internal("failed to fetch product", err)
	}

	info, err := s.discountService.Resolve(product.ID, now)
	if err != nil {
		return nil, err
	}

	return &ProductDetail{Product: product, DiscountInfo: info}, nil
}

func (s *ProductService) ListProducts(params utils.PaginationParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{}).Preload("Images").Preload("Categories")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to count products", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "name", "price", "sell_count", "like_count", "view_count"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to fetch products", err)
	}

	return products, total, nil
}

// UpdateProduct applies field changes. New images are appended to the
// existing list, unlike events where a new list replaces the old one.
func (s *ProductService) UpdateProduct(id uuid.UUID, req *UpdateProductRequest, uploadedImages []string) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("invalid product fields")
	}

	var product models.Product
	if err := s.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("product not found")
		}
		return nil, apperrors.Internal("failed to fetch product", err)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		updates := make(map[string]interface{})
		if req.Name != "" {
			updates["name"] = req.Name
		}
		if req.Description != "" {
			updates["description"] = req.Description
		}
		if req.Price > 0 {
			updates["price"] = req.Price
		}
		if req.Quantity > 0 {
			updates["quantity"] = req.Quantity
		}
		if req.Discount > 0 {
			updates["discount"] = req.Discount
		}
		if len(updates) > 0 {
			if err := tx.Model(&product).Updates(updates).Error; err != nil {
				return apperrors.Internal("failed to update product", err)
			}
		}

		if len(req.Categories) > 0 {
			categories, err := s.findCategories(tx, req.Categories)
			if err != nil {
				return err
			}
			if err := tx.Model(&product).Association("Categories").Replace(categories); err != nil {
				return apperrors.Internal("failed to update categories", err)
			}
		}

		for _, url := range append(uploadedImages, req.ImageLinks...) {
			image := models.Image{URL: url, ProductID: product.ID}
			if err := tx.Create(&image).Error; err != nil {
				return apperrors.Internal("failed to save product image", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.db.Preload("Images").Preload("Categories").First(&product, "id = ?", id)

	go s.indexProduct(&product)

	logrus.WithField("product_id", product.ID).Info("Product updated")
	return &product, nil
}

// DeleteProduct removes the product together with its image rows and any
// promotional enrollments referencing it.
func (s *ProductService) DeleteProduct(id uuid.UUID) error {
	var imageURLs []string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("product not found")
			}
			return apperrors.Internal("failed to fetch product", err)
		}

		var images []models.Image
		if err := tx.Where("product_id = ?", id).Find(&images).Error; err != nil {
			return apperrors.Internal("failed to fetch product images", err)
		}
		for _, image := range images {
			imageURLs = append(imageURLs, image.URL)
		}

		if err := tx.Where("product_id = ?", id).Delete(&models.Image{}).Error; err != nil {
			return apperrors.Internal("failed to delete product images", err)
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.ApplicableProduct{}).Error; err != nil {
			return apperrors.Internal("failed to delete product enrollments", err)
		}
		if err := tx.Delete(&product).Error; err != nil {
			return apperrors.Internal("failed to delete product", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	go s.removeFromIndex(id)
	go s.removeStoredFiles(imageURLs)

	logrus.WithField("product_id", id).Info("Product deleted")
	return nil
}

// IncrementLike records a like for the user and bumps the counter. A second
// like from the same user is rejected, not treated as a no-op.
func (s *ProductService) IncrementLike(productID, userID uuid.UUID) (int64, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, "id = ?", productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("product not found")
			}
			return apperrors.Internal("failed to fetch product", err)
		}

		var likeList models.LikeList
		err := tx.Where("user_id = ?", userID).First(&likeList).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			likeList = models.LikeList{
				UserID:     userID,
				ProductIDs: []string{productID.String()},
			}
			if err := tx.Create(&likeList).Error; err != nil {
				return apperrors.Internal("failed to create like list", err)
			}
		case err != nil:
			return apperrors.Internal("failed to fetch like list", err)
		default:
			if likeList.Contains(productID) {
				return apperrors.Conflict("you have already liked this product")
			}
			likeList.ProductIDs = append(likeList.ProductIDs, productID.String())
			if err := tx.Save(&likeList).Error; err != nil {
				return apperrors.Internal("failed to update like list", err)
			}
		}

		if err := tx.Model(&models.Product{}).Where("id = ?", productID).
			UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error; err != nil {
			return apperrors.Internal("failed to increment like count", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return s.counterValue(productID, "like_count")
}

// IncrementView bumps the view counter unconditionally.
func (s *ProductService) IncrementView(productID uuid.UUID) (int64, error) {
	result := s.db.Model(&models.Product{}).Where("id = ?", productID).
		UpdateColumn("view_count", gorm.Expr("view_count + 1"))
	if result.Error != nil {
		return 0, apperrors.Internal("failed to increment view count", result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, apperrors.NotFound("product not found")
	}

	return s.counterValue(productID, "view_count")
}

// IncrementSell bumps the sell counter, guarded in SQL so concurrent sales
// can never push sell_count past quantity.
func (s *ProductService) IncrementSell(productID uuid.UUID) (int64, error) {
	var product models.Product
	if err := s.db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperrors.NotFound("product not found")
		}
		return 0, apperrors.Internal("failed to fetch product", err)
	}

	result := s.db.Model(&models.Product{}).
		Where("id = ? AND sell_count < quantity", productID).
		UpdateColumn("sell_count", gorm.Expr("sell_count + 1"))
	if result.Error != nil {
		return 0, apperrors.Internal("failed to increment sell count", result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, apperrors.Conflict("product is out of stock")
	}

	return s.counterValue(productID, "sell_count")
}

// SearchProducts delegates to the external full-text index.
func (s *ProductService) SearchProducts(ctx context.Context, query string, page, limit int) (*SearchResult, error) {
	if query == "" {
		return nil, apperrors.Validation("please provide a search keyword")
	}
	if s.index == nil {
		return nil, apperrors.Internal("search index is not available", nil)
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	hits, total, err := s.index.Search(ctx, query, page, limit)
	if err != nil {
		return nil, apperrors.Internal("unable to search for products", err)
	}

	return &SearchResult{
		Hits:  hits,
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}

func (s *ProductService) ListByCategory(categoryID uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	err := s.db.
		Joins("JOIN product_categories pc ON pc.product_id = products.id").
		Where("pc.category_id = ?", categoryID).
		Preload("Images").Preload("Categories").
		Find(&products).Error
	if err != nil {
		return nil, apperrors.Internal("failed to fetch products by category", err)
	}
	return products, nil
}

// Helper methods

func (s *ProductService) findCategories(tx *gorm.DB, ids []string) ([]models.Category, error) {
	categoryIDs := make([]uuid.UUID, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, apperrors.Validation("invalid category id")
		}
		categoryIDs = append(categoryIDs, id)
	}

	var categories []models.Category
	if err := tx.Where("id IN ?", categoryIDs).Find(&categories).Error; err != nil {
		return nil, apperrors.Internal("failed to fetch categories", err)
	}
	return categories, nil
}

func (s *ProductService) counterValue(productID uuid.UUID, column string) (int64, error) {
	var value int64
	if err := s.db.Model(&models.Product{}).Where("id = ?", productID).
		Pluck(column, &value).Error; err != nil {
		return 0, apperrors.Internal("failed to read counter", err)
	}
	return value, nil
}

func (s *ProductService) indexProduct(product *models.Product) {
	if s.index == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.index.IndexProduct(ctx, product); err != nil {
		logrus.WithError(err).WithField("product_id", product.ID).Warn("Failed to index product")
	}
}

// removeStoredFiles is best-effort cleanup for uploads whose image rows were
// just deleted. URLs that never passed through the storage service resolve to
// an empty key and are skipped.
func (s *ProductService) removeStoredFiles(urls []string) {
	if s.files == nil {
		return
	}
	for _, url := range urls {
		key := s.files.KeyForURL(url)
		if key == "" {
			continue
		}
		if err := s.files.DeleteFile(key); err != nil {
			logrus.WithError(err).WithField("key", key).Warn("Failed to remove stored image file")
		}
	}
}

func (s *ProductService) removeFromIndex(id uuid.UUID) {
	if s.index == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.index.DeleteProduct(ctx, id); err != nil {
		logrus.WithError(err).WithField("product_id", id).Warn("Failed to remove product from index")
	}
}
