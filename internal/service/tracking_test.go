package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hansithacreations/storefront-api/internal/courier"
	"github.com/hansithacreations/storefront-api/internal/domain"
	"github.com/hansithacreations/storefront-api/internal/repository"
	"github.com/hansithacreations/storefront-api/pkg/errors"
)

type fakeTrackingGateway struct {
	data    *courier.TrackingData
	err     error
	lastAWB string
}

func (g *fakeTrackingGateway) GetTracking(ctx context.Context, awbCode string) (*courier.TrackingData, error) {
	g.lastAWB = awbCode
	if g.err != nil {
		return nil, g.err
	}
	return g.data, nil
}

func newTrackingService(order *domain.Order, gateway TrackingGateway) *trackingService {
	repos := &repository.Repositories{Order: newFakeOrderRepo(order)}
	return NewTrackingService(repos, gateway, zap.NewNop())
}

func shippedOrder() *domain.Order {
	return &domain.Order{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		Status:        domain.OrderStatusShipping,
		PaymentStatus: domain.PaymentStatusPaid,
		Shipment: &domain.ShipmentDetails{
			ShipmentID:  "SHIP-200",
			AWBCode:     "AWB-300",
			CourierName: "BlueDart",
		},
	}
}

func TestGetOrderTrackingPassesScansThrough(t *testing.T) {
	order := shippedOrder()
	gateway := &fakeTrackingGateway{data: &courier.TrackingData{
		Scans: []domain.TrackingScan{
			{Date: "2026-08-28 10:00", Activity: "Picked up", Location: "Hyderabad"},
			{Date: "2026-08-29 08:15", Activity: "In transit", Location: "Nagpur"},
		},
	}}
	svc := newTrackingService(order, gateway)

	data, err := svc.GetOrderTracking(context.Background(), order.ID)
	require.NoError(t, err)

	assert.Equal(t, "AWB-300", gateway.lastAWB)
	require.Len(t, data.Scans, 2)
	assert.Equal(t, "Picked up", data.Scans[0].Activity)
}

func TestGetOrderTrackingNoAWBYet(t *testing.T) {
	order := shippedOrder()
	order.Shipment = nil
	svc := newTrackingService(order, &fakeTrackingGateway{})

	_, err := svc.GetOrderTracking(context.Background(), order.ID)

	var notFound *errors.ErrNotFound
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "tracking", notFound.Resource)
}

func TestGetOrderTrackingUnknownOrder(t *testing.T) {
	svc := newTrackingService(shippedOrder(), &fakeTrackingGateway{})

	_, err := svc.GetOrderTracking(context.Background(), uuid.New())

	var notFound *errors.ErrNotFound
	require.ErrorAs(t, err, &notFound)
}

func TestGetOrderTrackingGatewayNotConfigured(t *testing.T) {
	order := shippedOrder()
	svc := newTrackingService(order, nil)

	_, err := svc.GetOrderTracking(context.Background(), order.ID)

	var upstream *errors.ErrUpstream
	require.ErrorAs(t, err, &upstream)
}

func TestGetOrderTrackingGatewayErrorPropagates(t *testing.T) {
	order := shippedOrder()
	gateway := &fakeTrackingGateway{err: &errors.ErrUpstream{Op: "getTracking", StatusCode: 503, Body: "try later"}}
	svc := newTrackingService(order, gateway)

	_, err := svc.GetOrderTracking(context.Background(), order.ID)

	var upstream *errors.ErrUpstream
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, 503, upstream.StatusCode)
}

func TestGetOrderTrackingPlainErrorPropagates(t *testing.T) {
	order := shippedOrder()
	cause := fmt.Errorf("connection reset")
	svc := newTrackingService(order, &fakeTrackingGateway{err: cause})

	_, err := svc.GetOrderTracking(context.Background(), order.ID)
	assert.Equal(t, cause, err)
}
