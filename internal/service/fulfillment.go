package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hansithacreations/storefront-api/internal/courier"
	"github.com/hansithacreations/storefront-api/internal/domain"
	"github.com/hansithacreations/storefront-api/internal/repository"
	"github.com/hansithacreations/storefront-api/internal/ws"
	"github.com/hansithacreations/storefront-api/pkg/errors"
)

// CourierGateway is the slice of the courier client the orchestrator needs.
type CourierGateway interface {
	CreateShipment(ctx context.Context, order *domain.Order, items []*domain.OrderItem) (*courier.CreateShipmentResult, error)
	AssignCourier(ctx context.Context, shipmentID string) (*courier.AssignCourierResult, error)
}

// Broadcaster pushes realtime events to connected operator clients.
type Broadcaster interface {
	Broadcast(event string, data interface{})
}

type fulfillmentService struct {
	repos   *repository.Repositories
	courier CourierGateway
	hub     Broadcaster
	ledger  EventLedger
	logger  *zap.Logger
}

// NewFulfillmentService creates the orchestrator that advances orders from
// payment confirmation through shipment creation. courier may be nil when the
// aggregator is not configured; ledger may be nil when dedup is disabled.
func NewFulfillmentService(repos *repository.Repositories, gw CourierGateway, hub Broadcaster, ledger EventLedger, logger *zap.Logger) *fulfillmentService {
	return &fulfillmentService{
		repos:   repos,
		courier: gw,
		hub:     hub,
		ledger:  ledger,
		logger:  logger,
	}
}

// ConfirmPayment applies a verified "payment confirmed" event to an order.
//
// Payment state is persisted before any external call so a crash after that
// point never loses the confirmation. Shipment failures are recorded on the
// order for manual remediation and never surface as an error: payment is
// final and must not be rolled back, and the returned nil keeps the webhook
// answering 2xx so the gateway does not redeliver.
//
// The only error returns happen before any state mutation (order missing,
// storage fault), which are exactly the retry-safe cases.
func (s *fulfillmentService) ConfirmPayment(ctx context.Context, orderID uuid.UUID, gatewayEventID string) (*domain.Order, error) {
	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// Idempotency fast path: the gateway may deliver the same event several
	// times; a replay after the first success is a no-op.
	if order.PaymentStatus == domain.PaymentStatusPaid {
		s.logger.Info("Payment already confirmed, skipping",
			zap.String("order_id", orderID.String()),
			zap.String("gateway_event_id", gatewayEventID))
		return order, nil
	}

	// Optional dedup ledger keyed by the gateway's own delivery id. Ledger
	// faults must not block payment processing; the MarkPaid guard below is
	// the authoritative check.
	if s.ledger != nil && gatewayEventID != "" {
		first, err := s.ledger.FirstDelivery(ctx, gatewayEventID)
		if err != nil {
			s.logger.Warn("Event ledger unavailable, relying on status guard",
				zap.String("gateway_event_id", gatewayEventID), zap.Error(err))
		} else if !first {
			s.logger.Info("Duplicate gateway event suppressed by ledger",
				zap.String("order_id", orderID.String()),
				zap.String("gateway_event_id", gatewayEventID))
			return order, nil
		}
	}

	// Atomic conditional update: of two concurrent deliveries only one
	// observes the row change, the other takes the no-op path.
	transitioned, err := s.repos.Order.MarkPaid(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !transitioned {
		s.logger.Info("Concurrent delivery already marked order paid",
			zap.String("order_id", orderID.String()))
		return s.repos.Order.GetByID(ctx, orderID)
	}
	order.PaymentStatus = domain.PaymentStatusPaid
	order.Status = domain.OrderStatusPlaced

	s.repos.OrderEvent.Create(ctx, &domain.OrderEvent{
		OrderID:   orderID,
		EventType: "payment_confirmed",
		EventData: map[string]interface{}{
			"gateway_event_id": gatewayEventID,
		},
	})

	// Cart clear is best-effort: a failure here must not block fulfillment.
	if err := s.repos.Cart.ClearByUserID(ctx, order.UserID); err != nil {
		s.logger.Warn("Failed to clear cart after payment",
			zap.String("order_id", orderID.String()),
			zap.String("user_id", order.UserID.String()),
			zap.Error(err))
	}

	shipment, err := s.createShipment(ctx, order)
	if err != nil {
		s.flagShippingError(ctx, order, err)
		return order, nil
	}

	if err := s.repos.Order.UpdateShipment(ctx, orderID, shipment); err != nil {
		// Courier side succeeded but the persist did not; flag for operators
		// rather than risk a duplicate shipment on redelivery.
		s.flagShippingError(ctx, order, err)
		return order, nil
	}
	order.Shipment = shipment

	s.repos.OrderEvent.Create(ctx, &domain.OrderEvent{
		OrderID:   orderID,
		EventType: "shipment_created",
		EventData: map[string]interface{}{
			"shipment_id":  shipment.ShipmentID,
			"awb_code":     shipment.AWBCode,
			"courier_name": shipment.CourierName,
		},
	})

	s.broadcastNewOrder(ctx, order)
	return order, nil
}

// RetryShipment is the manual operator remediation for orders flagged with
// shipping_error: it re-runs the courier calls and clears the flag on success.
// Unlike the webhook path, failures propagate so the operator sees them.
func (s *fulfillmentService) RetryShipment(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus != domain.PaymentStatusPaid {
		return nil, &errors.ErrValidation{Message: "order is not paid"}
	}
	if order.HasAWB() {
		return order, nil
	}

	shipment, err := s.createShipment(ctx, order)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Order.UpdateShipment(ctx, orderID, shipment); err != nil {
		return nil, err
	}
	if err := s.repos.Order.SetAdminStatus(ctx, orderID, nil); err != nil {
		return nil, err
	}
	order.Shipment = shipment
	order.AdminStatus = nil

	s.repos.OrderEvent.Create(ctx, &domain.OrderEvent{
		OrderID:   orderID,
		EventType: "shipment_created",
		EventData: map[string]interface{}{
			"shipment_id": shipment.ShipmentID,
			"awb_code":    shipment.AWBCode,
			"retried":     true,
		},
	})

	s.broadcastNewOrder(ctx, order)
	return order, nil
}

// UpdateStatus applies a manual operator status change. The transition must
// move forward through the lifecycle; backward moves are rejected.
func (s *fulfillmentService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == status {
		return order, nil
	}
	if !order.Status.CanTransitionTo(status) {
		return nil, &errors.ErrInvalidStateTransition{From: order.Status, To: status}
	}

	if err := s.repos.Order.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, err
	}
	from := order.Status
	order.Status = status

	s.repos.OrderEvent.Create(ctx, &domain.OrderEvent{
		OrderID:   orderID,
		EventType: "status_change",
		EventData: map[string]interface{}{
			"from": from,
			"to":   status,
		},
	})

	if s.hub != nil {
		s.hub.Broadcast(ws.EventOrderStatusUpdated, map[string]interface{}{
			"id":     orderID.String(),
			"status": status,
		})
	}
	return order, nil
}

func (s *fulfillmentService) createShipment(ctx context.Context, order *domain.Order) (*domain.ShipmentDetails, error) {
	if s.courier == nil {
		return nil, &errors.ErrUpstream{Op: "createShipment", StatusCode: 0, Body: "courier aggregator not configured"}
	}

	items, err := s.repos.OrderItem.GetByOrderID(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	created, err := s.courier.CreateShipment(ctx, order, items)
	if err != nil {
		return nil, err
	}

	// AWB assignment depends on the shipment id from creation; the calls are
	// sequential and neither is retried here.
	assigned, err := s.courier.AssignCourier(ctx, created.ShipmentID)
	if err != nil {
		return nil, err
	}

	return &domain.ShipmentDetails{
		AggregatorOrderID: created.AggregatorOrderID,
		ShipmentID:        created.ShipmentID,
		AWBCode:           assigned.AWBCode,
		CourierName:       assigned.CourierName,
		CourierStatus:     assigned.Status,
	}, nil
}

func (s *fulfillmentService) flagShippingError(ctx context.Context, order *domain.Order, cause error) {
	s.logger.Error("Shipment creation failed after payment, flagging for manual review",
		zap.String("order_id", order.ID.String()),
		zap.Error(cause))

	adminStatus := domain.AdminStatusShippingError
	if err := s.repos.Order.SetAdminStatus(ctx, order.ID, &adminStatus); err != nil {
		s.logger.Error("Failed to persist shipping_error flag",
			zap.String("order_id", order.ID.String()),
			zap.Error(err))
	}
	order.AdminStatus = &adminStatus

	s.repos.OrderEvent.Create(ctx, &domain.OrderEvent{
		OrderID:   order.ID,
		EventType: "shipping_error",
		EventData: map[string]interface{}{
			"error": cause.Error(),
		},
	})
}

func (s *fulfillmentService) broadcastNewOrder(ctx context.Context, order *domain.Order) {
	if s.hub == nil {
		return
	}
	items, err := s.repos.OrderItem.GetByOrderID(ctx, order.ID)
	if err != nil {
		s.logger.Warn("Failed to load items for broadcast", zap.String("order_id", order.ID.String()), zap.Error(err))
	}
	s.hub.Broadcast(ws.EventNewOrder, OrderPayload(order, items))
}
