package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/hansithacreations/storefront-api/internal/domain"
)

// UserRepository defines user data access methods
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByOperatorKeyLookup(ctx context.Context, lookupHash string) (*domain.User, string, error)
}

// OrderRepository defines order data access methods
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	// MarkPaid atomically sets payment_status=paid and status=PLACED only if
	// the order is not already paid. Returns true when this call performed
	// the transition, false when another delivery already did.
	MarkPaid(ctx context.Context, id uuid.UUID) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error
	SetAdminStatus(ctx context.Context, id uuid.UUID, adminStatus *string) error
	UpdateShipment(ctx context.Context, id uuid.UUID, shipment *domain.ShipmentDetails) error
	ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Order, error)
	List(ctx context.Context, status *domain.OrderStatus, adminStatus *string, limit, offset int) ([]*domain.Order, error)
}

// OrderItemRepository defines order line item data access methods
type OrderItemRepository interface {
	CreateBatch(ctx context.Context, items []*domain.OrderItem) error
	GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderItem, error)
}

// CartRepository defines cart data access methods. Cart contents are managed
// by the storefront frontend; this subsystem only clears a cart after payment.
type CartRepository interface {
	ClearByUserID(ctx context.Context, userID uuid.UUID) error
}

// OrderEventRepository defines order audit event data access methods
type OrderEventRepository interface {
	Create(ctx context.Context, event *domain.OrderEvent) error
	GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderEvent, error)
}

// Repositories aggregates all repositories
type Repositories struct {
	User       UserRepository
	Order      OrderRepository
	OrderItem  OrderItemRepository
	Cart       CartRepository
	OrderEvent OrderEventRepository
}
