package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hansithacreations/storefront-api/internal/domain"
	"github.com/hansithacreations/storefront-api/pkg/errors"
)

type orderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB, logger *zap.Logger) *orderRepository {
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

const orderColumns = `id, user_id, status, payment_status, admin_status, total, shipping_address,
	aggregator_order_id, shipment_id, awb_code, courier_name, courier_status,
	created_at, updated_at`

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (
			id, user_id, status, payment_status, admin_status, total, shipping_address,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	now := time.Now()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = now
	}
	if order.Status == "" {
		order.Status = domain.OrderStatusCreated
	}
	if order.PaymentStatus == "" {
		order.PaymentStatus = domain.PaymentStatusPending
	}

	shippingAddressJSON, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query,
		order.ID,
		order.UserID,
		order.Status,
		order.PaymentStatus,
		order.AdminStatus,
		order.Total,
		shippingAddressJSON,
		order.CreatedAt,
		order.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create order", zap.Error(err))
		return err
	}

	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get order", zap.String("order_id", id.String()), zap.Error(err))
		return nil, err
	}
	return order, nil
}

// MarkPaid performs the idempotency-critical transition. The WHERE clause is
// the atomic guard against concurrent duplicate webhook deliveries: only one
// delivery observes a row change.
func (r *orderRepository) MarkPaid(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE orders
		SET payment_status = $1, status = $2, updated_at = now()
		WHERE id = $3 AND payment_status <> $1
	`

	res, err := r.db.ExecContext(ctx, query, domain.PaymentStatusPaid, domain.OrderStatusPlaced, id)
	if err != nil {
		r.logger.Error("Failed to mark order paid", zap.String("order_id", id.String()), zap.Error(err))
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	query := `UPDATE orders SET status = $1, updated_at = now() WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		r.logger.Error("Failed to update order status", zap.String("order_id", id.String()), zap.Error(err))
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	return nil
}

func (r *orderRepository) SetAdminStatus(ctx context.Context, id uuid.UUID, adminStatus *string) error {
	query := `UPDATE orders SET admin_status = $1, updated_at = now() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, adminStatus, id)
	if err != nil {
		r.logger.Error("Failed to set admin status", zap.String("order_id", id.String()), zap.Error(err))
		return err
	}
	return nil
}

func (r *orderRepository) UpdateShipment(ctx context.Context, id uuid.UUID, shipment *domain.ShipmentDetails) error {
	query := `
		UPDATE orders
		SET aggregator_order_id = $1, shipment_id = $2, awb_code = $3,
			courier_name = $4, courier_status = $5, updated_at = now()
		WHERE id = $6
	`

	_, err := r.db.ExecContext(ctx, query,
		nullIfEmpty(shipment.AggregatorOrderID),
		nullIfEmpty(shipment.ShipmentID),
		nullIfEmpty(shipment.AWBCode),
		nullIfEmpty(shipment.CourierName),
		nullIfEmpty(shipment.CourierStatus),
		id,
	)
	if err != nil {
		r.logger.Error("Failed to update shipment details", zap.String("order_id", id.String()), zap.Error(err))
		return err
	}
	return nil
}

func (r *orderRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, normalizeLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *orderRepository) List(ctx context.Context, status *domain.OrderStatus, adminStatus *string, limit, offset int) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE ($1::text IS NULL OR status = $1)
		  AND ($2::text IS NULL OR admin_status = $2)
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`
	rows, err := r.db.QueryContext(ctx, query, status, adminStatus, normalizeLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var shippingAddressJSON []byte
	var adminStatus sql.NullString
	var aggregatorOrderID sql.NullString
	var shipmentID sql.NullString
	var awbCode sql.NullString
	var courierName sql.NullString
	var courierStatus sql.NullString

	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.Status,
		&order.PaymentStatus,
		&adminStatus,
		&order.Total,
		&shippingAddressJSON,
		&aggregatorOrderID,
		&shipmentID,
		&awbCode,
		&courierName,
		&courierStatus,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if adminStatus.Valid {
		order.AdminStatus = &adminStatus.String
	}
	if len(shippingAddressJSON) > 0 {
		if err := json.Unmarshal(shippingAddressJSON, &order.ShippingAddress); err != nil {
			return nil, err
		}
	}
	// Shipment details exist only once the courier gateway has answered.
	if aggregatorOrderID.Valid || shipmentID.Valid || awbCode.Valid {
		order.Shipment = &domain.ShipmentDetails{
			AggregatorOrderID: aggregatorOrderID.String,
			ShipmentID:        shipmentID.String,
			AWBCode:           awbCode.String,
			CourierName:       courierName.String,
			CourierStatus:     courierStatus.String,
		}
	}

	return &order, nil
}

func collectOrders(rows *sql.Rows) ([]*domain.Order, error) {
	orders := make([]*domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 50
	}
	return limit
}
