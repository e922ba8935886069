package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hansithacreations/storefront-api/internal/api/middleware"
	"github.com/hansithacreations/storefront-api/internal/repository"
	"github.com/hansithacreations/storefront-api/internal/service"
	"github.com/hansithacreations/storefront-api/pkg/errors"
)

// HandleGetOrder handles GET /orders/:id.
// Returns 403 when the authenticated caller does not own the order, 404 when
// the order is absent. The response is read-only: tracking pollers hit this
// endpoint repeatedly until shipment details appear.
func HandleGetOrder(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
			return
		}

		order, err := repos.Order.GetByID(c.Request.Context(), orderID)
		if err != nil {
			if _, ok := err.(*errors.ErrNotFound); ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			logger.Error("Failed to get order", zap.String("order_id", orderID.String()), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		if order.UserID != user.ID && !user.IsAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		items, err := repos.OrderItem.GetByOrderID(c.Request.Context(), orderID)
		if err != nil {
			logger.Error("Failed to get order items", zap.String("order_id", orderID.String()), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, service.OrderPayload(order, items))
	}
}

// HandleListMyOrders handles GET /orders for the authenticated customer.
func HandleListMyOrders(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		orders, err := repos.Order.ListByUserID(c.Request.Context(), user.ID, 50, 0)
		if err != nil {
			logger.Error("Failed to list orders", zap.String("user_id", user.ID.String()), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		payloads := make([]map[string]interface{}, 0, len(orders))
		for _, order := range orders {
			payloads = append(payloads, service.OrderPayload(order, nil))
		}
		c.JSON(http.StatusOK, gin.H{"orders": payloads})
	}
}
