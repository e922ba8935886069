package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentStatusMonotonic(t *testing.T) {
	// Once paid, never anything else.
	assert.False(t, PaymentStatusPaid.CanTransitionTo(PaymentStatusPending))
	assert.False(t, PaymentStatusPaid.CanTransitionTo(PaymentStatusFailed))
	assert.False(t, PaymentStatusPaid.CanTransitionTo(PaymentStatusPaid))

	assert.True(t, PaymentStatusPending.CanTransitionTo(PaymentStatusPaid))
	assert.True(t, PaymentStatusPending.CanTransitionTo(PaymentStatusFailed))

	// A failed payment may still be confirmed late.
	assert.True(t, PaymentStatusFailed.CanTransitionTo(PaymentStatusPaid))
	assert.False(t, PaymentStatusFailed.CanTransitionTo(PaymentStatusPending))
}

func TestOrderStatusForwardOnly(t *testing.T) {
	ordered := []OrderStatus{
		OrderStatusCreated,
		OrderStatusPlaced,
		OrderStatusProcessing,
		OrderStatusShipping,
		OrderStatusDelivered,
	}

	for i, from := range ordered {
		for j, to := range ordered {
			got := from.CanTransitionTo(to)
			if j > i {
				assert.True(t, got, "%s -> %s should be allowed", from, to)
			} else {
				assert.False(t, got, "%s -> %s should be rejected", from, to)
			}
		}
	}
}

func TestOrderStatusUnknownRejected(t *testing.T) {
	assert.False(t, OrderStatus("REFUNDED").IsValid())
	assert.False(t, OrderStatusPlaced.CanTransitionTo(OrderStatus("REFUNDED")))
	assert.False(t, OrderStatus("").CanTransitionTo(OrderStatusPlaced))
}

func TestOrderHasAWB(t *testing.T) {
	order := &Order{}
	assert.False(t, order.HasAWB())

	order.Shipment = &ShipmentDetails{ShipmentID: "SHIP-1"}
	assert.False(t, order.HasAWB(), "shipment without waybill is still in progress")

	order.Shipment.AWBCode = "AWB-1"
	assert.True(t, order.HasAWB())
}
