package handlers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hansithacreations/storefront-api/internal/config"
	"github.com/hansithacreations/storefront-api/internal/domain"
	"github.com/hansithacreations/storefront-api/pkg/errors"
)

const testSecret = "whsec_test"

type fakeOrchestrator struct {
	confirmCalls int
	lastOrderID  uuid.UUID
	lastEventID  string
	result       *domain.Order
	err          error
}

func (f *fakeOrchestrator) ConfirmPayment(ctx context.Context, orderID uuid.UUID, gatewayEventID string) (*domain.Order, error) {
	f.confirmCalls++
	f.lastOrderID = orderID
	f.lastEventID = gatewayEventID
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &domain.Order{
		ID:            orderID,
		Status:        domain.OrderStatusPlaced,
		PaymentStatus: domain.PaymentStatusPaid,
	}, nil
}

func (f *fakeOrchestrator) RetryShipment(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeOrchestrator) UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	return nil, fmt.Errorf("not implemented")
}

func sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func webhookRequest(t *testing.T, orch FulfillmentService, body []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Payment: config.PaymentConfig{
			WebhookSecret:   testSecret,
			SignatureHeader: "X-Razorpay-Signature",
		},
	}

	router := gin.New()
	router.POST("/orders/webhook", HandlePaymentWebhook(cfg, orch, zap.NewNop()))

	req := httptest.NewRequest(http.MethodPost, "/orders/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("X-Razorpay-Signature", signature)
	}
	req.Header.Set("X-Razorpay-Event-Id", "evt_abc")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func paidEventBody(orderID string) []byte {
	return []byte(fmt.Sprintf(
		`{"event":"payment_link.paid","payload":{"payment_link":{"entity":{"id":"plink_1","notes":{"internal_order_id":"%s"}}}}}`,
		orderID))
}

func TestWebhookValidSignatureConfirmsPayment(t *testing.T) {
	orch := &fakeOrchestrator{}
	orderID := uuid.New()
	body := paidEventBody(orderID.String())

	w := webhookRequest(t, orch, body, sign(body))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, orch.confirmCalls)
	assert.Equal(t, orderID, orch.lastOrderID)
	assert.Equal(t, "evt_abc", orch.lastEventID)
	assert.Contains(t, w.Body.String(), `"payment_status":"paid"`)
}

func TestWebhookBadSignatureRejected(t *testing.T) {
	orch := &fakeOrchestrator{}
	body := paidEventBody(uuid.New().String())

	w := webhookRequest(t, orch, body, "deadbeef")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, orch.confirmCalls)
}

func TestWebhookMissingSignatureRejected(t *testing.T) {
	orch := &fakeOrchestrator{}
	body := paidEventBody(uuid.New().String())

	w := webhookRequest(t, orch, body, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, orch.confirmCalls)
}

func TestWebhookSignatureOverTamperedBodyRejected(t *testing.T) {
	orch := &fakeOrchestrator{}
	body := paidEventBody(uuid.New().String())
	signature := sign(body)
	tampered := bytes.Replace(body, []byte("payment_link.paid"), []byte("payment_link.PAID"), 1)

	w := webhookRequest(t, orch, tampered, signature)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, orch.confirmCalls)
}

func TestWebhookUnrecognizedEventAcknowledged(t *testing.T) {
	orch := &fakeOrchestrator{}
	body := []byte(`{"event":"payment_link.expired","payload":{}}`)

	// 2xx so the gateway stops redelivering, but no side effects.
	w := webhookRequest(t, orch, body, sign(body))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, orch.confirmCalls)
	assert.Contains(t, w.Body.String(), `"status":"ignored"`)
}

func TestWebhookMissingOrderIDIsDataIntegrityFault(t *testing.T) {
	orch := &fakeOrchestrator{}
	body := []byte(`{"event":"payment_link.paid","payload":{"payment_link":{"entity":{"id":"plink_1","notes":{}}}}}`)

	w := webhookRequest(t, orch, body, sign(body))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, orch.confirmCalls)
	assert.Contains(t, w.Body.String(), "internal_order_id")
}

func TestWebhookUnknownOrderReturns404(t *testing.T) {
	orderID := uuid.New()
	orch := &fakeOrchestrator{err: &errors.ErrNotFound{Resource: "order", ID: orderID.String()}}
	body := paidEventBody(orderID.String())

	w := webhookRequest(t, orch, body, sign(body))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWebhookShipmentFailureStill200(t *testing.T) {
	orderID := uuid.New()
	adminStatus := domain.AdminStatusShippingError
	orch := &fakeOrchestrator{result: &domain.Order{
		ID:            orderID,
		Status:        domain.OrderStatusPlaced,
		PaymentStatus: domain.PaymentStatusPaid,
		AdminStatus:   &adminStatus,
	}}
	body := paidEventBody(orderID.String())

	w := webhookRequest(t, orch, body, sign(body))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"admin_status":"shipping_error"`)
}

func TestWebhookMalformedJSONRejected(t *testing.T) {
	orch := &fakeOrchestrator{}
	body := []byte(`{"event":`)

	w := webhookRequest(t, orch, body, sign(body))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, orch.confirmCalls)
}
