package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User represents a storefront customer. Authentication and profile management
// live elsewhere; this subsystem only reads user identity for ownership checks.
type User struct {
	ID        uuid.UUID
	Email     string
	Name      string
	IsAdmin   bool
	CreatedAt time.Time
}

// Order is the central entity: created at checkout with payment pending,
// advanced by the fulfillment orchestrator on webhook receipt, read by the
// tracking endpoints. Never deleted by this subsystem.
type Order struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Status        OrderStatus
	PaymentStatus PaymentStatus
	// AdminStatus is set to AdminStatusShippingError when courier calls fail
	// after payment; nil otherwise.
	AdminStatus *string
	Total       decimal.Decimal
	// ShippingAddress is the checkout snapshot, stored as JSONB.
	ShippingAddress map[string]interface{}
	Shipment        *ShipmentDetails
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasAWB reports whether a courier waybill has been assigned. Absence after
// payment is an expected transient state, not an error.
func (o *Order) HasAWB() bool {
	return o.Shipment != nil && o.Shipment.AWBCode != ""
}

// ShipmentDetails holds the courier aggregator's identifiers for an order.
// Populated only after payment succeeded and shipment creation returned.
type ShipmentDetails struct {
	AggregatorOrderID string
	ShipmentID        string
	AWBCode           string
	CourierName       string
	CourierStatus     string
}

// OrderItem is a line item snapshotted at order time; it is not live-linked
// to the catalog.
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	SKU       string
	Title     string
	UnitPrice decimal.Decimal
	Quantity  int
	CreatedAt time.Time
}

// CartItem belongs to a user's active cart. The orchestrator clears the cart
// best-effort after payment confirmation.
type CartItem struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	CreatedAt time.Time
}

// TrackingScan is one checkpoint event from the courier aggregator.
// Aggregator order is chronological ascending; not persisted locally.
type TrackingScan struct {
	Date     string `json:"date"`
	Activity string `json:"activity"`
	Location string `json:"location"`
}

// OrderEvent represents an audit event for an order
type OrderEvent struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	EventType string
	EventData map[string]interface{} // JSONB
	CreatedAt time.Time
}
