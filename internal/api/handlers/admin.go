package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hansithacreations/storefront-api/internal/domain"
	"github.com/hansithacreations/storefront-api/internal/repository"
	"github.com/hansithacreations/storefront-api/internal/service"
	"github.com/hansithacreations/storefront-api/pkg/errors"
)

// HandleListOrders handles GET /admin/orders with optional status and
// admin_status filters. Operators use admin_status=shipping_error to find
// orders needing manual shipment remediation.
func HandleListOrders(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var status *domain.OrderStatus
		if s := c.Query("status"); s != "" {
			os := domain.OrderStatus(s)
			if !os.IsValid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter"})
				return
			}
			status = &os
		}
		var adminStatus *string
		if a := c.Query("admin_status"); a != "" {
			adminStatus = &a
		}

		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

		orders, err := repos.Order.List(c.Request.Context(), status, adminStatus, limit, offset)
		if err != nil {
			logger.Error("Failed to list orders", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		payloads := make([]map[string]interface{}, 0, len(orders))
		for _, order := range orders {
			payloads = append(payloads, service.OrderPayload(order, nil))
		}
		c.JSON(http.StatusOK, gin.H{"orders": payloads, "count": len(payloads)})
	}
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// HandleUpdateOrderStatus handles PATCH /admin/orders/:id/status.
// Manual operator advance through the fulfillment lifecycle; broadcasts
// orderStatusUpdated to connected clients.
func HandleUpdateOrderStatus(orchestrator FulfillmentService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
			return
		}

		var req updateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON", "details": err.Error()})
			return
		}
		status := domain.OrderStatus(req.Status)
		if !status.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}

		order, err := orchestrator.UpdateStatus(c.Request.Context(), orderID, status)
		if err != nil {
			switch err.(type) {
			case *errors.ErrNotFound:
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			case *errors.ErrInvalidStateTransition:
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			default:
				logger.Error("Failed to update order status", zap.String("order_id", orderID.String()), zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			}
			return
		}

		c.JSON(http.StatusOK, service.OrderPayload(order, nil))
	}
}

// HandleRetryShipment handles POST /admin/orders/:id/retry-shipment.
// Manual remediation for shipping_error orders: re-runs the courier calls and
// clears the flag on success. Upstream failures surface to the operator.
func HandleRetryShipment(orchestrator FulfillmentService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
			return
		}

		order, err := orchestrator.RetryShipment(c.Request.Context(), orderID)
		if err != nil {
			switch e := err.(type) {
			case *errors.ErrNotFound:
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			case *errors.ErrValidation:
				c.JSON(http.StatusConflict, gin.H{"error": e.Error()})
			case *errors.ErrUpstream:
				logger.Error("Shipment retry failed upstream",
					zap.String("order_id", orderID.String()),
					zap.Int("upstream_status", e.StatusCode),
					zap.String("upstream_body", e.Body))
				c.JSON(http.StatusBadGateway, gin.H{"error": "courier aggregator error", "details": e.Body})
			default:
				logger.Error("Shipment retry failed", zap.String("order_id", orderID.String()), zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			}
			return
		}

		c.JSON(http.StatusOK, service.OrderPayload(order, nil))
	}
}
