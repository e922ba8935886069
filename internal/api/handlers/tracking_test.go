package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hansithacreations/storefront-api/internal/courier"
	"github.com/hansithacreations/storefront-api/internal/domain"
	"github.com/hansithacreations/storefront-api/pkg/errors"
)

type fakeTracking struct {
	data *courier.TrackingData
	err  error
}

func (f *fakeTracking) GetOrderTracking(ctx context.Context, orderID uuid.UUID) (*courier.TrackingData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

func trackRequest(t *testing.T, tracking TrackingService, orderID string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/shipping/track/:orderId", HandleTrackOrder(tracking, zap.NewNop()))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/shipping/track/"+orderID, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestTrackOrderReturnsScanEnvelope(t *testing.T) {
	tracking := &fakeTracking{data: &courier.TrackingData{
		Scans: []domain.TrackingScan{
			{Date: "2026-08-28 10:00", Activity: "Picked up", Location: "Hyderabad"},
			{Date: "2026-08-29 08:15", Activity: "In transit", Location: "Nagpur"},
		},
	}}

	w := trackRequest(t, tracking, uuid.NewString())
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		TrackingData struct {
			Scans []domain.TrackingScan `json:"scans"`
		} `json:"tracking_data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.TrackingData.Scans, 2)
	assert.Equal(t, "Picked up", body.TrackingData.Scans[0].Activity)
	assert.Equal(t, "Nagpur", body.TrackingData.Scans[1].Location)
}

func TestTrackOrderNoAWBYetIsNotFound(t *testing.T) {
	orderID := uuid.NewString()
	tracking := &fakeTracking{err: &errors.ErrNotFound{Resource: "tracking", ID: orderID}}

	w := trackRequest(t, tracking, orderID)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTrackOrderUpstreamFailureIsBadGateway(t *testing.T) {
	tracking := &fakeTracking{err: &errors.ErrUpstream{Op: "getTracking", StatusCode: 503, Body: "try later"}}

	w := trackRequest(t, tracking, uuid.NewString())
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestTrackOrderInvalidID(t *testing.T) {
	w := trackRequest(t, &fakeTracking{}, "not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTrackOrderUnexpectedErrorIsInternal(t *testing.T) {
	tracking := &fakeTracking{err: context.DeadlineExceeded}

	w := trackRequest(t, tracking, uuid.NewString())
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
