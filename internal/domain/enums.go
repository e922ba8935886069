package domain

// PaymentStatus represents the payment state of an order
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// IsValid checks if the payment status is valid
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed:
		return true
	default:
		return false
	}
}

// CanTransitionTo enforces payment monotonicity: paid is terminal, failed may
// still become paid on a late confirmation, pending may go either way.
func (s PaymentStatus) CanTransitionTo(newStatus PaymentStatus) bool {
	switch s {
	case PaymentStatusPending:
		return newStatus == PaymentStatusPaid || newStatus == PaymentStatusFailed
	case PaymentStatusFailed:
		return newStatus == PaymentStatusPaid
	case PaymentStatusPaid:
		return false
	default:
		return false
	}
}

// OrderStatus represents the fulfillment lifecycle of an order.
// It advances forward only; there is no defined backward transition.
type OrderStatus string

const (
	// CREATED - order exists, payment not yet confirmed
	OrderStatusCreated OrderStatus = "CREATED"
	// PLACED - payment confirmed, fulfillment starting
	OrderStatusPlaced OrderStatus = "PLACED"
	// PROCESSING - shipment being prepared
	OrderStatusProcessing OrderStatus = "PROCESSING"
	// SHIPPING - handed to courier
	OrderStatusShipping OrderStatus = "SHIPPING"
	// DELIVERED - terminal
	OrderStatusDelivered OrderStatus = "DELIVERED"
)

// AdminStatusShippingError flags an order whose shipment creation failed after
// payment succeeded. Cleared only by manual operator remediation.
const AdminStatusShippingError = "shipping_error"

var orderStatusRank = map[OrderStatus]int{
	OrderStatusCreated:    0,
	OrderStatusPlaced:     1,
	OrderStatusProcessing: 2,
	OrderStatusShipping:   3,
	OrderStatusDelivered:  4,
}

// IsValid checks if the order status is valid
func (s OrderStatus) IsValid() bool {
	_, ok := orderStatusRank[s]
	return ok
}

// CanTransitionTo checks if a status transition is valid. Any forward move is
// allowed (manual operator updates may skip states); backward moves are not.
func (s OrderStatus) CanTransitionTo(newStatus OrderStatus) bool {
	from, okFrom := orderStatusRank[s]
	to, okTo := orderStatusRank[newStatus]
	if !okFrom || !okTo {
		return false
	}
	return to > from
}
