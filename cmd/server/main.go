// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/lavshop/storefront-backend/internal/config"
	"github.com/lavshop/storefront-backend/internal/database"
	"github.com/lavshop/storefront-backend/internal/realtime"
	"github.com/lavshop/storefront-backend/internal/router"
	"github.com/lavshop/storefront-backend/internal/search"
	"github.com/lavshop/storefront-backend/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize database
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.Close(db)

	// Run database migrations
	if err := database.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Full-text search provider. The catalog stays usable without it;
	// the search endpoint reports unavailability instead.
	var index services.ProductIndexer
	if productIndex, err := search.NewProductIndex(cfg.Elasticsearch); err != nil {
		logrus.WithError(err).Warn("search index unavailable, product search disabled")
	} else {
		index = productIndex
	}

	// Live chat fan-out. Message persistence does not depend on it.
	var publisher realtime.Publisher
	if channel, err := realtime.NewRedisChannel(cfg.Redis); err != nil {
		logrus.WithError(err).Warn("realtime channel unavailable, chat delivery is store-only")
	} else {
		publisher = channel
		defer channel.Close()
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	r := router.Initialize(db, cfg, index, publisher)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Create a deadline for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown server
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
