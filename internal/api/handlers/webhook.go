package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hansithacreations/storefront-api/internal/config"
	"github.com/hansithacreations/storefront-api/pkg/errors"
)

// eventPaymentLinkPaid is the only event type that produces side effects.
// Everything else is acknowledged so the gateway stops redelivering.
const eventPaymentLinkPaid = "payment_link.paid"

// paymentWebhookBody is the gateway's envelope. The internal order id rides in
// the payment link's notes metadata, set at checkout.
type paymentWebhookBody struct {
	Event   string                `json:"event"`
	Payload paymentWebhookPayload `json:"payload"`
}

type paymentWebhookPayload struct {
	PaymentLink paymentLinkWrapper `json:"payment_link"`
}

type paymentLinkWrapper struct {
	Entity paymentLinkEntity `json:"entity"`
}

type paymentLinkEntity struct {
	ID    string           `json:"id"`
	Notes paymentLinkNotes `json:"notes"`
}

type paymentLinkNotes struct {
	InternalOrderID string `json:"internal_order_id"`
}

func verifyWebhookHMAC(secret string, body []byte, header string) bool {
	if secret == "" || header == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	// constant-time compare
	return hmac.Equal([]byte(expected), []byte(strings.TrimSpace(header)))
}

// HandlePaymentWebhook handles POST /orders/webhook.
//
// Response policy: 2xx whenever payment state is durably settled (including
// replays and shipment failures) so the gateway stops retrying; non-2xx only
// for faults that are safe to redeliver (bad signature, malformed payload,
// unknown order, storage faults before mutation).
func HandlePaymentWebhook(cfg *config.Config, orchestrator FulfillmentService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := strings.TrimSpace(cfg.Payment.WebhookSecret)
		if secret == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "payment webhook not configured"})
			return
		}

		// The HMAC is computed over the exact raw bytes, so read before decoding.
		bodyBytes, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
			return
		}

		signature := c.GetHeader(cfg.Payment.SignatureHeader)
		if !verifyWebhookHMAC(secret, bodyBytes, signature) {
			logger.Warn("Webhook signature verification failed")
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook signature"})
			return
		}

		var body paymentWebhookBody
		if err := json.Unmarshal(bodyBytes, &body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON", "details": err.Error()})
			return
		}

		if body.Event != eventPaymentLinkPaid {
			// Recognized-but-uninteresting: acknowledge, no side effects.
			logger.Debug("Ignoring webhook event", zap.String("event", body.Event))
			c.JSON(http.StatusOK, gin.H{"ok": true, "status": "ignored", "event": body.Event})
			return
		}

		// Missing correlation id is a data-integrity fault on the sender side,
		// logged distinctly from "order not found" so alerts can tell a broken
		// integration from a desynced order store.
		rawOrderID := strings.TrimSpace(body.Payload.PaymentLink.Entity.Notes.InternalOrderID)
		if rawOrderID == "" {
			fault := &errors.ErrDataIntegrity{Field: "notes.internal_order_id"}
			logger.Error("Webhook payload missing internal order id",
				zap.String("event", body.Event),
				zap.String("payment_link_id", body.Payload.PaymentLink.Entity.ID),
				zap.Error(fault))
			c.JSON(http.StatusBadRequest, gin.H{"error": "internal_order_id required"})
			return
		}
		orderID, err := uuid.Parse(rawOrderID)
		if err != nil {
			logger.Error("Webhook carried malformed internal order id", zap.String("internal_order_id", rawOrderID))
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid internal_order_id"})
			return
		}

		gatewayEventID := strings.TrimSpace(c.GetHeader("X-Razorpay-Event-Id"))

		order, err := orchestrator.ConfirmPayment(c.Request.Context(), orderID, gatewayEventID)
		if err != nil {
			if _, ok := err.(*errors.ErrNotFound); ok {
				logger.Error("Webhook referenced unknown order, sender/store desync",
					zap.String("order_id", orderID.String()))
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			logger.Error("Payment confirmation failed",
				zap.String("order_id", orderID.String()),
				zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		resp := gin.H{
			"ok":             true,
			"order_id":       order.ID.String(),
			"payment_status": order.PaymentStatus,
			"status":         order.Status,
		}
		if order.AdminStatus != nil {
			// Shipment failed after payment: still 200, flagged for operators.
			resp["admin_status"] = *order.AdminStatus
		}
		c.JSON(http.StatusOK, resp)
	}
}
