package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hansithacreations/storefront-api/internal/courier"
)

// HTTPFetcher reads order and tracking state from the storefront API the same
// way a browser client would.
type HTTPFetcher struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPFetcher creates a fetcher against the storefront API. token is a
// session JWT for the order's owner.
func NewHTTPFetcher(baseURL, token string) *HTTPFetcher {
	return &HTTPFetcher{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type orderResponse struct {
	ID              string `json:"id"`
	Status          string `json:"status"`
	PaymentStatus   string `json:"payment_status"`
	ShipmentDetails *struct {
		AWBCode string `json:"awb_code"`
	} `json:"shipment_details"`
}

type trackingResponse struct {
	TrackingData courier.TrackingData `json:"tracking_data"`
}

func (f *HTTPFetcher) FetchOrder(ctx context.Context, orderID string) (*OrderView, error) {
	var resp orderResponse
	if err := f.get(ctx, "/orders/"+orderID, &resp); err != nil {
		return nil, err
	}

	view := &OrderView{
		ID:            resp.ID,
		Status:        resp.Status,
		PaymentStatus: resp.PaymentStatus,
	}
	if resp.ShipmentDetails != nil {
		view.AWBCode = resp.ShipmentDetails.AWBCode
	}
	return view, nil
}

func (f *HTTPFetcher) FetchTracking(ctx context.Context, orderID string) (*courier.TrackingData, error) {
	var resp trackingResponse
	if err := f.get(ctx, "/shipping/track/"+orderID, &resp); err != nil {
		return nil, err
	}
	return &resp.TrackingData, nil
}

func (f *HTTPFetcher) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+f.token)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, string(body))
	}
	return json.Unmarshal(body, out)
}
