package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/hansithacreations/storefront-api/internal/api/handlers"
	"github.com/hansithacreations/storefront-api/internal/api/middleware"
	"github.com/hansithacreations/storefront-api/internal/config"
	"github.com/hansithacreations/storefront-api/internal/repository"
	"github.com/hansithacreations/storefront-api/internal/ws"
)

// NewRouter creates and configures the Gin router
func NewRouter(
	cfg *config.Config,
	repos *repository.Repositories,
	orchestrator handlers.FulfillmentService,
	tracking handlers.TrackingService,
	hub *ws.Hub,
	logger *zap.Logger,
) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(customRecovery(logger))
	router.Use(loggingMiddleware(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Payment gateway webhook: signature-verified, drives the fulfillment
	// orchestrator. Registered outside the auth groups on purpose.
	router.POST("/orders/webhook", handlers.HandlePaymentWebhook(cfg, orchestrator, logger))

	// Customer routes (session JWT)
	userRoutes := router.Group("")
	userRoutes.Use(middleware.UserAuthMiddleware(cfg, repos, logger))
	{
		userRoutes.GET("/orders", handlers.HandleListMyOrders(repos, logger))
		userRoutes.POST("/orders/checkout", handlers.HandleCheckout(repos, logger))
		userRoutes.GET("/orders/:id", handlers.HandleGetOrder(repos, logger))
	}

	// Tracking passthrough: customer-authed and rate-limited, the aggregator
	// meters these lookups.
	trackRoutes := router.Group("/shipping")
	trackRoutes.Use(middleware.UserAuthMiddleware(cfg, repos, logger))
	trackRoutes.Use(middleware.RateLimitMiddleware(rate.Limit(1), 5))
	{
		trackRoutes.GET("/track/:orderId", handlers.HandleTrackOrder(tracking, logger))
	}

	// Operator routes (API key)
	adminRoutes := router.Group("/admin")
	adminRoutes.Use(middleware.OperatorAuthMiddleware(cfg, repos, logger))
	{
		adminRoutes.GET("/orders", handlers.HandleListOrders(repos, logger))
		adminRoutes.PATCH("/orders/:id/status", handlers.HandleUpdateOrderStatus(orchestrator, logger))
		adminRoutes.POST("/orders/:id/retry-shipment", handlers.HandleRetryShipment(orchestrator, logger))
	}

	// Realtime channel for operator dashboards
	wsRoutes := router.Group("/ws")
	wsRoutes.Use(middleware.OperatorAuthMiddleware(cfg, repos, logger))
	{
		wsRoutes.GET("", handlers.HandleRealtime(hub, logger))
	}

	return router
}

// customRecovery is a custom recovery middleware that logs panics
func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal server error",
			"details": fmt.Sprintf("%v", recovered),
		})
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
		)
	}
}
