package courier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hansithacreations/storefront-api/internal/config"
	"github.com/hansithacreations/storefront-api/internal/domain"
	"github.com/hansithacreations/storefront-api/pkg/errors"
)

// tokenLifetime is how long an aggregator auth token is reused before a fresh
// login. The aggregator issues 10-day tokens; 24h keeps a wide safety margin.
const tokenLifetime = 24 * time.Hour

// Client calls the external shipment aggregator. Both shipment operations are
// pure request/response: no caching of results, no retries, no hidden state
// beyond the auth token.
type Client struct {
	baseURL    string
	email      string
	password   string
	pickup     string
	httpClient *http.Client
	logger     *zap.Logger

	mu          sync.Mutex
	token       string
	tokenIssued time.Time
}

// NewClient creates a new courier aggregator client
func NewClient(cfg config.CourierConfig, logger *zap.Logger) *Client {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:  baseURL,
		email:    cfg.Email,
		password: cfg.Password,
		pickup:   cfg.PickupLocation,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// CreateShipmentResult is the aggregator's answer to shipment creation.
type CreateShipmentResult struct {
	AggregatorOrderID string `json:"order_id"`
	ShipmentID        string `json:"shipment_id"`
}

// AssignCourierResult is the aggregator's answer to AWB assignment.
type AssignCourierResult struct {
	AWBCode     string `json:"awb_code"`
	CourierName string `json:"courier_name"`
	Status      string `json:"status"`
}

// TrackingData is the live scan history for a waybill.
type TrackingData struct {
	Scans []domain.TrackingScan `json:"scans"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type createShipmentRequest struct {
	OrderID         string                 `json:"order_id"`
	OrderDate       string                 `json:"order_date"`
	PickupLocation  string                 `json:"pickup_location"`
	BillingCustomer string                 `json:"billing_customer_name"`
	ShippingAddress map[string]interface{} `json:"shipping_address"`
	SubTotal        string                 `json:"sub_total"`
	Items           []createShipmentItem   `json:"order_items"`
}

type createShipmentItem struct {
	Name         string `json:"name"`
	SKU          string `json:"sku"`
	Units        int    `json:"units"`
	SellingPrice string `json:"selling_price"`
}

type assignCourierRequest struct {
	ShipmentID string `json:"shipment_id"`
}

type trackingResponse struct {
	TrackingData TrackingData `json:"tracking_data"`
}

// CreateShipment registers the paid order with the aggregator and returns its
// order and shipment identifiers.
func (c *Client) CreateShipment(ctx context.Context, order *domain.Order, items []*domain.OrderItem) (*CreateShipmentResult, error) {
	reqBody := createShipmentRequest{
		OrderID:         order.ID.String(),
		OrderDate:       order.CreatedAt.Format("2006-01-02 15:04"),
		PickupLocation:  c.pickup,
		ShippingAddress: order.ShippingAddress,
		SubTotal:        order.Total.StringFixed(2),
		Items:           make([]createShipmentItem, 0, len(items)),
	}
	if name, ok := order.ShippingAddress["name"].(string); ok {
		reqBody.BillingCustomer = name
	}
	for _, item := range items {
		reqBody.Items = append(reqBody.Items, createShipmentItem{
			Name:         item.Title,
			SKU:          item.SKU,
			Units:        item.Quantity,
			SellingPrice: item.UnitPrice.StringFixed(2),
		})
	}

	var result CreateShipmentResult
	if err := c.post(ctx, "createShipment", "/v1/external/orders/create/adhoc", reqBody, &result); err != nil {
		return nil, err
	}

	c.logger.Info("Courier shipment created",
		zap.String("order_id", order.ID.String()),
		zap.String("aggregator_order_id", result.AggregatorOrderID),
		zap.String("shipment_id", result.ShipmentID),
	)
	return &result, nil
}

// AssignCourier requests an AWB for a shipment created by CreateShipment.
func (c *Client) AssignCourier(ctx context.Context, shipmentID string) (*AssignCourierResult, error) {
	var result AssignCourierResult
	if err := c.post(ctx, "assignCourier", "/v1/external/courier/assign/awb", assignCourierRequest{ShipmentID: shipmentID}, &result); err != nil {
		return nil, err
	}

	c.logger.Info("Courier AWB assigned",
		zap.String("shipment_id", shipmentID),
		zap.String("awb_code", result.AWBCode),
		zap.String("courier_name", result.CourierName),
	)
	return &result, nil
}

// GetTracking fetches the live scan history for a waybill.
func (c *Client) GetTracking(ctx context.Context, awbCode string) (*TrackingData, error) {
	token, err := c.authToken(ctx)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1/external/courier/track/awb/%s", c.baseURL, awbCode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tracking request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read tracking response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &errors.ErrUpstream{Op: "getTracking", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result trackingResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode tracking response: %w", err)
	}
	return &result.TrackingData, nil
}

// post executes an authenticated POST and decodes the response into out.
// Non-2xx responses become ErrUpstream carrying the aggregator's error body.
func (c *Client) post(ctx context.Context, op, path string, in, out interface{}) error {
	token, err := c.authToken(ctx)
	if err != nil {
		return err
	}

	jsonData, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &errors.ErrUpstream{Op: op, StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}

// authToken returns a cached aggregator token, logging in again when the
// cached one has aged out.
func (c *Client) authToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Since(c.tokenIssued) < tokenLifetime {
		return c.token, nil
	}

	jsonData, err := json.Marshal(loginRequest{Email: c.email, Password: c.password})
	if err != nil {
		return "", fmt.Errorf("failed to marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/external/auth/login", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("aggregator login failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read login response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &errors.ErrUpstream{Op: "login", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result loginResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode login response: %w", err)
	}
	if result.Token == "" {
		return "", &errors.ErrUpstream{Op: "login", StatusCode: resp.StatusCode, Body: "empty token in login response"}
	}

	c.token = result.Token
	c.tokenIssued = time.Now()
	return c.token, nil
}
