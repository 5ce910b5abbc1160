// internal/router/router.go
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/lavshop/storefront-backend/internal/config"
	"github.com/lavshop/storefront-backend/internal/handlers"
	"github.com/lavshop/storefront-backend/internal/middleware"
	"github.com/lavshop/storefront-backend/internal/realtime"
	"github.com/lavshop/storefront-backend/internal/services"
	"github.com/lavshop/storefront-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config, index services.ProductIndexer, publisher realtime.Publisher) *gin.Engine {
	// Initialize services
	storageService, _ := services.NewStorageService(cfg)
	discountService := services.NewDiscountService(db)

	authService := services.NewAuthService(db, cfg)
	eventService := services.NewEventService(db)
	productService := services.NewProductService(db, discountService, index, storageService)
	categoryService := services.NewCategoryService(db)
	contactService := services.NewContactService(db)
	chatService := services.NewChatService(db, publisher)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	eventHandler := handlers.NewEventHandler(eventService, storageService)
	productHandler := handlers.NewProductHandler(productService, storageService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	contactHandler := handlers.NewContactHandler(contactService)
	chatHandler := handlers.NewChatHandler(chatService, cfg.Chat.DefaultRecipientID)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logrus.WithField("panic", recovered).Error("Recovered from panic")
		utils.InternalErrorResponse(c, "")
		c.Abort()
	}))
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.GeneralRateLimit())

	r.NoRoute(func(c *gin.Context) {
		utils.NotFoundResponse(c, "Route not found")
	})

	// Health check, including the search cluster when one is configured
	r.GET("/health", func(c *gin.Context) {
		health := gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		}
		if index != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := index.HealthCheck(ctx); err != nil {
				health["search"] = "unavailable"
			} else {
				health["search"] = "ok"
			}
		} else {
			health["search"] = "disabled"
		}
		c.JSON(http.StatusOK, health)
	})

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Product routes
		products := v1.Group("/products")
		{
			products.GET("", middleware.OptionalAuth(), productHandler.GetProducts)
			products.GET("/search", productHandler.SearchProducts)
			products.GET("/category/:categoryId", productHandler.GetProductsByCategory)
			products.GET("/:id", middleware.OptionalAuth(), productHandler.GetProduct)
			products.POST("", middleware.AuthRequired(), middleware.AdminRequired(), middleware.UploadRateLimit(), productHandler.CreateProduct)
			products.PUT("/:id", middleware.AuthRequired(), middleware.AdminRequired(), middleware.UploadRateLimit(), productHandler.UpdateProduct)
			products.DELETE("/:id", middleware.AuthRequired(), middleware.AdminRequired(), productHandler.DeleteProduct)
			products.POST("/:id/like", middleware.AuthRequired(), productHandler.LikeProduct)
			products.POST("/:id/view", productHandler.ViewProduct)
			products.POST("/:id/sell", middleware.AuthRequired(), productHandler.SellProduct)
		}

		// Category routes
		categories := v1.Group("/categories")
		{
			categories.GET("", categoryHandler.GetCategories)
			categories.POST("", middleware.AuthRequired(), middleware.AdminRequired(), categoryHandler.CreateCategory)
		}

		// Event routes
		events := v1.Group("/events")
		{
			events.GET("", eventHandler.GetEvents)
			events.GET("/:id", eventHandler.GetEvent)
			events.POST("", middleware.AuthRequired(), middleware.AdminRequired(), middleware.UploadRateLimit(), eventHandler.CreateEvent)
			events.PUT("/:id", middleware.AuthRequired(), middleware.AdminRequired(), middleware.UploadRateLimit(), eventHandler.UpdateEvent)
			events.DELETE("/:id", middleware.AuthRequired(), middleware.AdminRequired(), eventHandler.DeleteEvent)
			events.POST("/:id/products", middleware.AuthRequired(), middleware.AdminRequired(), eventHandler.AddProducts)
			events.POST("/:id/products/remove", middleware.AuthRequired(), middleware.AdminRequired(), eventHandler.RemoveProduct)
			events.DELETE("/:id/minievents/:appId", middleware.AuthRequired(), middleware.AdminRequired(), eventHandler.RemoveApplicableProduct)
			events.DELETE("/:id/timeslot", middleware.AuthRequired(), middleware.AdminRequired(), eventHandler.RemoveTimeSlot)
		}

		// Contact routes
		contacts := v1.Group("/contacts")
		{
			contacts.POST("", middleware.AuthRequired(), contactHandler.CreateContact)
			contacts.GET("", middleware.AuthRequired(), middleware.AdminRequired(), contactHandler.GetContacts)
		}

		// Chat routes
		chats := v1.Group("/chats")
		chats.Use(middleware.AuthRequired())
		{
			chats.POST("", chatHandler.StartSession)
			chats.POST("/messages", chatHandler.SendMessage)
			chats.GET("", chatHandler.GetSessionsByProduct)
			chats.GET("/user/:userId", chatHandler.GetSessionsByUser)
		}
	}

	return r
}
