package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pix-bridge-api/internal/middleware"
	"pix-bridge-api/internal/services"
)

// RouterConfig holds configuration for setting up routes
type RouterConfig struct {
	GatewayService  services.GatewayService
	TrackingService services.TrackingService
	RelayService    services.RelayService
	WebhookToken    string
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, config *RouterConfig) {
	salesHandler := NewSalesHandler(config.GatewayService)
	statusHandler := NewStatusHandler(config.GatewayService)
	webhookHandler := NewWebhookHandler(config.TrackingService, config.WebhookToken)
	relayHandler := NewRelayHandler(config.RelayService)

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   "pix-bridge-api",
			"version":   "1.0.0",
			"timestamp": time.Now().UTC(),
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		sales := v1.Group("/sales")
		{
			sales.POST("", salesHandler.CreateSale)
			sales.GET("/status", statusHandler.GetStatus)
		}

		webhooks := v1.Group("/webhooks")
		webhooks.Use(middleware.WebhookAuth(config.WebhookToken))
		{
			webhooks.POST("/payment", webhookHandler.ReceiveNotification)
		}

		relay := v1.Group("/relay")
		{
			relay.POST("/record-sale", relayHandler.RecordSale)
		}
	}

	// Unknown paths and wrong methods get the standard envelope instead
	// of gin's plain-text defaults.
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, ErrorResponse{
			Success: false,
			Message: "Method not allowed",
		})
	})
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Success: false,
			Message: "Not found",
		})
	})
}

// SetupMiddleware configures global middleware
func SetupMiddleware(router *gin.Engine) {
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())

	// Orders and notifications are small payloads (1MB)
	router.Use(middleware.RequestSizeLimit(1 * 1024 * 1024))

	// Rate limiting (100 requests per second, burst of 200)
	router.Use(middleware.RateLimiter(100, 200))

	router.Use(middleware.StructuredLogger())
	router.Use(middleware.ErrorHandler())
}
