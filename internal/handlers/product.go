// internal/handlers/product.go
package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lavshop/storefront-backend/internal/services"
	"github.com/lavshop/storefront-backend/internal/utils"
)

type ProductHandler struct {
	productService *services.ProductService
	storageService *services.StorageService
}

func NewProductHandler(productService *services.ProductService, storageService *services.StorageService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		storageService: storageService,
	}
}

// POST /products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req services.CreateProductRequest
	var uploaded []string

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		req = services.CreateProductRequest{
			Name:        c.PostForm("name"),
			Description: c.PostForm("description"),
			Price:       parseFloatField(c.PostForm("price")),
			Discount:    parseFloatField(c.PostForm("discount")),
			Quantity:    parseIntField(c.PostForm("quantity")),
			Categories:  parseImageLinks(c.PostForm("categories")),
			ImageLinks:  parseImageLinks(c.PostForm("images")),
		}

		var err error
		uploaded, err = uploadFormImages(c, h.storageService, "products")
		if err != nil {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	product, err := h.productService.CreateProduct(&req, uploaded)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Product created successfully", product)
}

// GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	products, total, err := h.productService.ListProducts(params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	result := utils.CreatePaginationResult(products, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	detail, err := h.productService.GetProduct(id, time.Now())
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Retrieved product successfully", detail)
}

// PUT /products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	var req services.UpdateProductRequest
	var uploaded []string

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		req = services.UpdateProductRequest{
			Name:        c.PostForm("name"),
			Description: c.PostForm("description"),
			Price:       parseFloatField(c.PostForm("price")),
			Discount:    parseFloatField(c.PostForm("discount")),
			Quantity:    parseIntField(c.PostForm("quantity")),
			Categories:  parseImageLinks(c.PostForm("categories")),
			ImageLinks:  parseImageLinks(c.PostForm("images")),
		}

		uploaded, err = uploadFormImages(c, h.storageService, "products")
		if err != nil {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	product, err := h.productService.UpdateProduct(id, &req, uploaded)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Product updated successfully", product)
}

// DELETE /products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	if err := h.productService.DeleteProduct(id); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Product deleted successfully", nil)
}

// POST /products/:id/like
func (h *ProductHandler) LikeProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
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

	count, err := h.productService.IncrementLike(id, userID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Product liked", gin.H{"like_count": count})
}

// POST /products/:id/view
func (h *ProductHandler) ViewProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	count, err := h.productService.IncrementView(id)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "View recorded", gin.H{"view_count": count})
}

// POST /products/:id/sell
func (h *ProductHandler) SellProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	count, err := h.productService.IncrementSell(id)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Sale recorded", gin.H{"sell_count": count})
}

// GET /products/search?q=&page=&limit=
func (h *ProductHandler) SearchProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	result, err := h.productService.SearchProducts(c.Request.Context(), c.Query("q"), page, limit)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Search completed", result)
}

// GET /products/category/:categoryId
func (h *ProductHandler) GetProductsByCategory(c *gin.Context) {
	categoryID, err := uuid.Parse(c.Param("categoryId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid category ID", nil)
		return
	}

	products, err := h.productService.ListByCategory(categoryID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Retrieved products successfully", products)
}

func parseFloatField(raw string) float64 {
	v, _ := strconv.ParseFloat(raw, 64)
	return v
}

func parseIntField(raw string) int64 {
	v, _ := strconv.ParseInt(raw, 10, 64)
	return v
}
