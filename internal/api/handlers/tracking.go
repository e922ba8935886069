package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hansithacreations/storefront-api/pkg/errors"
)

// HandleTrackOrder handles GET /shipping/track/:orderId.
// Passes the aggregator's scan history through unchanged; scans arrive
// chronological ascending and clients reverse for most-recent-first display.
func HandleTrackOrder(tracking TrackingService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := uuid.Parse(c.Param("orderId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
			return
		}

		data, err := tracking.GetOrderTracking(c.Request.Context(), orderID)
		if err != nil {
			switch e := err.(type) {
			case *errors.ErrNotFound:
				c.JSON(http.StatusNotFound, gin.H{"error": "tracking not available"})
			case *errors.ErrUpstream:
				logger.Warn("Tracking passthrough failed",
					zap.String("order_id", orderID.String()),
					zap.Int("upstream_status", e.StatusCode),
					zap.String("upstream_body", e.Body))
				c.JSON(http.StatusBadGateway, gin.H{"error": "tracking service unavailable"})
			default:
				logger.Error("Tracking lookup failed", zap.String("order_id", orderID.String()), zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{"tracking_data": data})
	}
}
