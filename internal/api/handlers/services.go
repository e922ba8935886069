package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/hansithacreations/storefront-api/internal/courier"
	"github.com/hansithacreations/storefront-api/internal/domain"
)

// FulfillmentService is the orchestrator surface the handlers depend on.
type FulfillmentService interface {
	ConfirmPayment(ctx context.Context, orderID uuid.UUID, gatewayEventID string) (*domain.Order, error)
	RetryShipment(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) (*domain.Order, error)
}

// TrackingService is the tracking read path surface the handlers depend on.
type TrackingService interface {
	GetOrderTracking(ctx context.Context, orderID uuid.UUID) (*courier.TrackingData, error)
}
