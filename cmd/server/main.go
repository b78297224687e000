package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/petmarket/petmarket-backend/config"
	"github.com/petmarket/petmarket-backend/internal/app/controller"
	"github.com/petmarket/petmarket-backend/internal/app/repository"
	"github.com/petmarket/petmarket-backend/internal/app/service"
	"github.com/petmarket/petmarket-backend/internal/db"
	"github.com/petmarket/petmarket-backend/internal/middleware"
	"github.com/petmarket/petmarket-backend/internal/monitor"
	"github.com/petmarket/petmarket-backend/internal/router"
	"github.com/petmarket/petmarket-backend/internal/storage"
	"github.com/petmarket/petmarket-backend/internal/websocket"
	"github.com/petmarket/petmarket-backend/pkg/logger"
	"github.com/petmarket/petmarket-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting PetMarket Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis is optional: without it product reads skip the cache.
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, product cache disabled", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		defer redis.Close()
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	cartRepo := repository.NewCartRepository(db.GetDB())
	healthRepo := repository.NewHealthRepository(db.GetDB())

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.TokenExpiry,
		cfg.Google.AllowedClientIDs,
	)
	productService := service.NewProductService(productRepo, redis.GetClient())
	cartService := service.NewCartService(cartRepo, productRepo)
	healthService := service.NewHealthService(healthRepo)

	// Live feed hub for the monitoring dashboard
	hub := websocket.NewHub()
	go hub.Run()

	// S3 storage for product image uploads
	s3Storage := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	userController := controller.NewUserController(authService)
	productController := controller.NewProductController(productService, s3Storage)
	cartController := controller.NewCartController(cartService)
	healthController := controller.NewHealthController(healthService, hub)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Setup router
	r := router.NewRouter(
		authController,
		userController,
		productController,
		cartController,
		healthController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start the health monitor
	mon := monitor.New(cfg.Monitor, healthRepo, hub)
	if err := mon.Start(); err != nil {
		logger.Fatal("Failed to start health monitor", err)
	}
	defer mon.Stop()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
