package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hansithacreations/storefront-api/internal/courier"
	"github.com/hansithacreations/storefront-api/internal/repository"
	"github.com/hansithacreations/storefront-api/pkg/errors"
)

// TrackingGateway is the slice of the courier client the tracking read path needs.
type TrackingGateway interface {
	GetTracking(ctx context.Context, awbCode string) (*courier.TrackingData, error)
}

type trackingService struct {
	repos   *repository.Repositories
	gateway TrackingGateway
	logger  *zap.Logger
}

// NewTrackingService creates the tracking read path: resolve an order's AWB,
// fetch the live scan history from the aggregator, pass it through. Nothing
// is persisted.
func NewTrackingService(repos *repository.Repositories, gateway TrackingGateway, logger *zap.Logger) *trackingService {
	return &trackingService{
		repos:   repos,
		gateway: gateway,
		logger:  logger,
	}
}

// GetOrderTracking returns the scan history for an order's shipment.
// An order without an AWB yet is a NotFound for tracking purposes: the
// shipment exists upstream only once a waybill is assigned.
func (s *trackingService) GetOrderTracking(ctx context.Context, orderID uuid.UUID) (*courier.TrackingData, error) {
	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.HasAWB() {
		return nil, &errors.ErrNotFound{Resource: "tracking", ID: orderID.String()}
	}
	if s.gateway == nil {
		return nil, &errors.ErrUpstream{Op: "getTracking", StatusCode: 0, Body: "courier aggregator not configured"}
	}

	data, err := s.gateway.GetTracking(ctx, order.Shipment.AWBCode)
	if err != nil {
		s.logger.Warn("Tracking fetch failed",
			zap.String("order_id", orderID.String()),
			zap.String("awb_code", order.Shipment.AWBCode),
			zap.Error(err))
		return nil, err
	}
	return data, nil
}
