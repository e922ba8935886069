package service

import (
	"github.com/hansithacreations/storefront-api/internal/domain"
)

// OrderPayload is the wire representation of an order used by the order
// endpoints and realtime broadcasts.
func OrderPayload(order *domain.Order, items []*domain.OrderItem) map[string]interface{} {
	payload := map[string]interface{}{
		"id":               order.ID.String(),
		"user_id":          order.UserID.String(),
		"status":           order.Status,
		"payment_status":   order.PaymentStatus,
		"total":            order.Total.StringFixed(2),
		"shipping_address": order.ShippingAddress,
		"created_at":       order.CreatedAt,
		"updated_at":       order.UpdatedAt,
	}
	if order.AdminStatus != nil {
		payload["admin_status"] = *order.AdminStatus
	}
	if order.Shipment != nil {
		payload["shipment_details"] = map[string]interface{}{
			"aggregator_order_id": order.Shipment.AggregatorOrderID,
			"shipment_id":         order.Shipment.ShipmentID,
			"awb_code":            order.Shipment.AWBCode,
			"courier_name":        order.Shipment.CourierName,
			"courier_status":      order.Shipment.CourierStatus,
		}
	}
	if items != nil {
		itemPayloads := make([]map[string]interface{}, 0, len(items))
		for _, item := range items {
			itemPayloads = append(itemPayloads, map[string]interface{}{
				"product_id": item.ProductID.String(),
				"sku":        item.SKU,
				"title":      item.Title,
				"unit_price": item.UnitPrice.StringFixed(2),
				"quantity":   item.Quantity,
			})
		}
		payload["items"] = itemPayloads
	}
	return payload
}
