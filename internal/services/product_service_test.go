// internal/services/product_service_test.go
package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/lavshop/storefront-backend/internal/apperrors"
	"github.com/lavshop/storefront-backend/internal/models"
)

type ProductServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	svc      *ProductService
	category models.Category
}

func (suite *ProductServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.svc = NewProductService(suite.db, NewDiscountService(suite.db), nil, nil)
	suite.category = seedCategory(suite.T(), suite.db, "Kitchen")
}

func (suite *ProductServiceTestSuite) validCreateRequest() *CreateProductRequest {
	return &CreateProductRequest{
		Name:        "Ceramic Mug",
		Price:       12.50,
		Categories:  []string{suite.category.ID.String()},
		Description: "a mug",
		Discount:    5,
		Quantity:    20,
	}
}

func (suite *ProductServiceTestSuite) TestCreateProductRejectsZeroDiscount() {
	req := suite.validCreateRequest()
	req.Discount = 0

	_, err := suite.svc.CreateProduct(req, nil)
	suite.Error(err)
	suite.True(apperrors.IsKind(err, apperrors.KindValidation))
}

func (suite *ProductServiceTestSuite) TestCreateProductRejectsZeroQuantity() {
	req := suite.validCreateRequest()
	req.Quantity = 0

	_, err := suite.svc.CreateProduct(req, nil)
	suite.Error(err)
	suite.True(apperrors.IsKind(err, apperrors.KindValidation))
}

func (suite *ProductServiceTestSuite) TestCreateProductPersistsImagesAndCategories() {
	req := suite.validCreateRequest()
	req.ImageLinks = []string{"https://cdn.example.com/mug.png"}

	product, err := suite.svc.CreateProduct(req, []string{"/uploads/products/mug-front.png"})
	suite.NoError(err)
	suite.Len(product.Images, 2)
	suite.Len(product.Categories, 1)
	suite.Equal("Kitchen", product.Categories[0].Name)
}

func (suite *ProductServiceTestSuite) TestSecondLikeFromSameUserIsRejected() {
	product := seedProduct(suite.T(), suite.db, "Mug", 10)
	userID := uuid.New()

	count, err := suite.svc.IncrementLike(product.ID, userID)
	suite.NoError(err)
	suite.Equal(int64(1), count)

	_, err = suite.svc.IncrementLike(product.ID, userID)
	suite.Error(err)
	suite.True(apperrors.IsKind(err, apperrors.KindConflict))

	var reloaded models.Product
	suite.NoError(suite.db.First(&reloaded, "id = ?", product.ID).Error)
	suite.Equal(int64(1), reloaded.LikeCount)
}

func (suite *ProductServiceTestSuite) TestLikesFromDifferentUsersAccumulate() {
	product := seedProduct(suite.T(), suite.db, "Mug", 10)

	_, err := suite.svc.IncrementLike(product.ID, uuid.New())
	suite.NoError(err)
	count, err := suite.svc.IncrementLike(product.ID, uuid.New())
	suite.NoError(err)
	suite.Equal(int64(2), count)
}

func (suite *ProductServiceTestSuite) TestLikeUnknownProduct() {
	_, err := suite.svc.IncrementLike(uuid.New(), uuid.New())
	suite.Error(err)
	suite.True(apperrors.IsKind(err, apperrors.KindNotFound))
}

func (suite *ProductServiceTestSuite) TestViewsIncrementUnconditionally() {
	product := seedProduct(suite.T(), suite.db, "Mug", 10)

	_, err := suite.svc.IncrementView(product.ID)
	suite.NoError(err)
	count, err := suite.svc.IncrementView(product.ID)
	suite.NoError(err)
	suite.Equal(int64(2), count)
}

func (suite *ProductServiceTestSuite) TestViewUnknownProduct() {
	_, err := suite.svc.IncrementView(uuid.New())
	suite.Error(err)
	suite.True(apperrors.IsKind(err, apperrors.KindNotFound))
}

func (suite *ProductServiceTestSuite) TestSellingNeverExceedsQuantity() {
	product := seedProduct(suite.T(), suite.db, "Mug", 2)

	count, err := suite.svc.IncrementSell(product.ID)
	suite.NoError(err)
	suite.Equal(int64(1), count)

	count, err = suite.svc.IncrementSell(product.ID)
	suite.NoError(err)
	suite.Equal(int64(2), count)

	_, err = suite.svc.IncrementSell(product.ID)
	suite.Error(err)
	suite.True(apperrors.IsKind(err, apperrors.KindConflict))

	var reloaded models.Product
	suite.NoError(suite.db.First(&reloaded, "id = ?", product.ID).Error)
	suite.Equal(int64(2), reloaded.SellCount)
}

func (suite *ProductServiceTestSuite) TestGetProductResolvesActiveDiscount() {
	product := seedProduct(suite.T(), suite.db, "Mug", 10)
	event := seedEvent(suite.T(), suite.db, "Flash Sale",
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC))
	seedEnrollment(suite.T(), suite.db, event.ID, product.ID, 25,
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC))

	inWindow, err := suite.svc.GetProduct(product.ID, time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC))
	suite.NoError(err)
	suite.True(inWindow.IsInEvent)
	suite.Equal(25.0, inWindow.EventDiscount)

	outOfWindow, err := suite.svc.GetProduct(product.ID, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	suite.NoError(err)
	suite.False(outOfWindow.IsInEvent)
	suite.Equal(0.0, outOfWindow.EventDiscount)
}

func (suite *ProductServiceTestSuite) TestSearchRequiresKeyword() {
	_, err := suite.svc.SearchProducts(context.Background(), "", 1, 10)
	suite.Error(err)
	suite.True(apperrors.IsKind(err, apperrors.KindValidation))
}

func (suite *ProductServiceTestSuite) TestSearchWithoutIndexFails() {
	_, err := suite.svc.SearchProducts(context.Background(), "mug", 1, 10)
	suite.Error(err)
	suite.True(apperrors.IsKind(err, apperrors.KindInternal))
}

func (suite *ProductServiceTestSuite) TestListByCategoryFiltersMembership() {
	other := seedCategory(suite.T(), suite.db, "Office")

	req := suite.validCreateRequest()
	req.Name = "Kitchen Mug"
	_, err := suite.svc.CreateProduct(req, nil)
	suite.NoError(err)

	req = suite.validCreateRequest()
	req.Name = "Stapler"
	req.Categories = []string{other.ID.String()}
	_, err = suite.svc.CreateProduct(req, nil)
	suite.NoError(err)

	kitchen, err := suite.svc.ListByCategory(suite.category.ID)
	suite.NoError(err)
	suite.Len(kitchen, 1)
	suite.Equal("Kitchen Mug", kitchen[0].Name)
}

func (suite *ProductServiceTestSuite) TestDeleteProductRemovesImagesAndEnrollments() {
	req := suite.validCreateRequest()
	req.ImageLinks = []string{"https://cdn.example.com/mug.png"}
	product, err := suite.svc.CreateProduct(req, nil)
	suite.NoError(err)

	event := seedEvent(suite.T(), suite.db, "Flash Sale",
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC))
	seedEnrollment(suite.T(), suite.db, event.ID, product.ID, 10,
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC))

	suite.NoError(suite.svc.DeleteProduct(product.ID))

	var imageCount, enrollmentCount int64
	suite.NoError(suite.db.Model(&models.Image{}).Where("product_id = ?", product.ID).Count(&imageCount).Error)
	suite.NoError(suite.db.Model(&models.ApplicableProduct{}).Where("product_id = ?", product.ID).Count(&enrollmentCount).Error)
	suite.Equal(int64(0), imageCount)
	suite.Equal(int64(0), enrollmentCount)

	_, err = suite.svc.GetProduct(product.ID, time.Now())
	suite.Error(err)
	suite.True(apperrors.IsKind(err, apperrors.KindNotFound))
}

type fakeFileRemover struct {
	mu      sync.Mutex
	deleted []string
}

func (f *fakeFileRemover) KeyForURL(url string) string {
	if strings.HasPrefix(url, "/uploads/") {
		return strings.TrimPrefix(url, "/uploads/")
	}
	return ""
}

func (f *fakeFileRemover) DeleteFile(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeFileRemover) deletedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func (suite *ProductServiceTestSuite) TestDeleteProductRemovesStoredFiles() {
	remover := &fakeFileRemover{}
	svc := NewProductService(suite.db, NewDiscountService(suite.db), nil, remover)

	req := suite.validCreateRequest()
	req.ImageLinks = []string{"https://cdn.example.com/mug.png"}
	product, err := svc.CreateProduct(req, []string{"/uploads/products/mug-front.png"})
	suite.Require().NoError(err)

	suite.Require().NoError(svc.DeleteProduct(product.ID))

	suite.Eventually(func() bool {
		return len(remover.deletedKeys()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	suite.Equal([]string{"products/mug-front.png"}, remover.deletedKeys())
}

func TestProductServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ProductServiceTestSuite))
}
