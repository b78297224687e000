package router

import (
	"github.com/gin-gonic/gin"
	"github.com/petmarket/petmarket-backend/config"
	"github.com/petmarket/petmarket-backend/internal/app/controller"
	"github.com/petmarket/petmarket-backend/internal/middleware"
)

type Router struct {
	authController    *controller.AuthController
	userController    *controller.UserController
	productController *controller.ProductController
	cartController    *controller.CartController
	healthController  *controller.HealthController
	authMiddleware    *middleware.AuthMiddleware
	config            *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	userController *controller.UserController,
	productController *controller.ProductController,
	cartController *controller.CartController,
	healthController *controller.HealthController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:    authController,
		userController:    userController,
		productController: productController,
		cartController:    cartController,
		healthController:  healthController,
		authMiddleware:    authMiddleware,
		config:            cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "PetMarket API is running",
		})
	})

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/google", r.authController.GoogleLogin)
			auth.GET("/health", r.authController.Health)
		}

		users := api.Group("/users", r.authMiddleware.Authenticate())
		{
			users.GET("/me", r.userController.GetProfile)
			users.PUT("/me", r.userController.UpdateProfile)
			users.GET("/me/logs", r.userController.GetLogs)
			users.GET("/me/address", r.userController.GetAddress)
			users.PUT("/me/address", r.userController.SaveAddress)
		}

		products := api.Group("/products")
		{
			products.GET("", r.productController.List)
			products.GET("/random", r.productController.Random)
			products.GET("/export", r.productController.Export)
			products.GET("/health", r.productController.Health)
			products.GET("/:id", r.productController.Get)
			products.POST("", r.authMiddleware.Authenticate(), r.productController.Create)
			products.POST("/upload-url", r.authMiddleware.Authenticate(), r.productController.UploadURL)
		}

		carts := api.Group("/carts")
		{
			carts.POST("", r.cartController.Create)
			carts.GET("", r.cartController.GetUserCart)
			carts.GET("/list", r.cartController.ListUserCarts)
			carts.GET("/:cartId", r.cartController.Get)
			carts.DELETE("/:cartId", r.cartController.Delete)
			carts.GET("/:cartId/summary", r.cartController.Summary)
			carts.POST("/:cartId/items", r.cartController.AddItem)
			carts.DELETE("/:cartId/items/:itemId", r.cartController.RemoveItem)
		}

		monitoring := api.Group("/monitoring")
		{
			monitoring.GET("/logs", r.healthController.Logs)
			monitoring.GET("/series", r.healthController.Series)
			monitoring.GET("/health", r.healthController.Health)
			monitoring.GET("/ws", r.healthController.LiveFeed)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
