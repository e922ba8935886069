package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hansithacreations/storefront-api/internal/api/middleware"
	"github.com/hansithacreations/storefront-api/internal/domain"
	"github.com/hansithacreations/storefront-api/internal/repository"
	"github.com/hansithacreations/storefront-api/internal/service"
)

type checkoutItem struct {
	ProductID string `json:"product_id" binding:"required"`
	SKU       string `json:"sku" binding:"required"`
	Title     string `json:"title" binding:"required"`
	UnitPrice string `json:"unit_price" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

type checkoutRequest struct {
	Items           []checkoutItem         `json:"items" binding:"required,min=1"`
	ShippingAddress map[string]interface{} `json:"shipping_address" binding:"required"`
}

// HandleCheckout handles POST /orders/checkout.
// Creates a pending order snapshotting the submitted line items; the returned
// order id goes into the payment link's notes so the gateway webhook can
// correlate the confirmation back to this order. Payment-link creation itself
// is owned by the storefront frontend.
func HandleCheckout(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON", "details": err.Error()})
			return
		}

		total := decimal.Zero
		items := make([]*domain.OrderItem, 0, len(req.Items))
		for _, it := range req.Items {
			productID, err := uuid.Parse(it.ProductID)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product_id", "details": it.ProductID})
				return
			}
			price, err := decimal.NewFromString(it.UnitPrice)
			if err != nil || price.IsNegative() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid unit_price", "details": it.UnitPrice})
				return
			}
			items = append(items, &domain.OrderItem{
				ProductID: productID,
				SKU:       it.SKU,
				Title:     it.Title,
				UnitPrice: price,
				Quantity:  it.Quantity,
			})
			total = total.Add(price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}

		order := &domain.Order{
			UserID:          user.ID,
			Status:          domain.OrderStatusCreated,
			PaymentStatus:   domain.PaymentStatusPending,
			Total:           total,
			ShippingAddress: req.ShippingAddress,
		}

		if err := repos.Order.Create(c.Request.Context(), order); err != nil {
			logger.Error("Failed to create order", zap.String("user_id", user.ID.String()), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		for _, item := range items {
			item.OrderID = order.ID
		}
		if err := repos.OrderItem.CreateBatch(c.Request.Context(), items); err != nil {
			logger.Error("Failed to create order items", zap.String("order_id", order.ID.String()), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		repos.OrderEvent.Create(c.Request.Context(), &domain.OrderEvent{
			OrderID:   order.ID,
			EventType: "order_created",
			EventData: map[string]interface{}{
				"item_count": len(items),
				"total":      total.StringFixed(2),
			},
		})

		c.JSON(http.StatusCreated, service.OrderPayload(order, items))
	}
}
