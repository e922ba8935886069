// Package poller implements the order-tracking watcher used by operator
// tooling: it re-fetches an order on a fixed cadence until a courier waybill
// appears, then fetches the scan history once and stops.
package poller

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hansithacreations/storefront-api/internal/courier"
)

// State of a watcher. Terminal states are StateSuccess and StateError.
type State string

const (
	StateLoading State = "loading"
	StatePolling State = "polling"
	StateSuccess State = "success"
	StateError   State = "error"
)

// DefaultInterval is the fixed polling cadence. There is deliberately no
// backoff and no attempt cap: the watcher runs until an AWB appears or the
// caller cancels the context.
const DefaultInterval = 5 * time.Second

// OrderView is the slice of an order the watcher cares about.
type OrderView struct {
	ID            string
	Status        string
	PaymentStatus string
	AWBCode       string
}

// Fetcher retrieves order and tracking state, typically over HTTP.
type Fetcher interface {
	FetchOrder(ctx context.Context, orderID string) (*OrderView, error)
	FetchTracking(ctx context.Context, orderID string) (*courier.TrackingData, error)
}

// Result is produced when a watcher reaches StateSuccess.
type Result struct {
	Order    *OrderView
	Tracking *courier.TrackingData
}

// Watcher polls one order. Safe for a single Run call; State may be read
// concurrently.
type Watcher struct {
	fetcher  Fetcher
	interval time.Duration
	logger   *zap.Logger

	mu    sync.Mutex
	state State
}

// NewWatcher creates a watcher. A non-positive interval falls back to
// DefaultInterval.
func NewWatcher(fetcher Fetcher, interval time.Duration, logger *zap.Logger) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Watcher{
		fetcher:  fetcher,
		interval: interval,
		logger:   logger,
		state:    StateLoading,
	}
}

// State returns the watcher's current state.
func (w *Watcher) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Watcher) setState(s State) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
}

// Run drives the watcher to a terminal state. Any failure of the initial
// fetch is terminal with no retry. Once polling, the watcher issues at most
// one fetch per tick and stops within one tick of the AWB appearing or of
// ctx being cancelled; no fetch is issued after cancellation.
func (w *Watcher) Run(ctx context.Context, orderID string) (*Result, error) {
	w.setState(StateLoading)

	order, err := w.fetcher.FetchOrder(ctx, orderID)
	if err != nil {
		w.setState(StateError)
		return nil, err
	}

	if order.AWBCode != "" {
		return w.finish(ctx, order)
	}

	w.setState(StatePolling)
	w.logger.Info("Waiting for waybill assignment",
		zap.String("order_id", orderID),
		zap.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.setState(StateError)
			return nil, ctx.Err()
		case <-ticker.C:
			order, err = w.fetcher.FetchOrder(ctx, orderID)
			if err != nil {
				// Transient mid-poll failures just wait for the next tick.
				w.logger.Warn("Order fetch failed, will retry next tick",
					zap.String("order_id", orderID), zap.Error(err))
				continue
			}
			if order.AWBCode != "" {
				return w.finish(ctx, order)
			}
		}
	}
}

func (w *Watcher) finish(ctx context.Context, order *OrderView) (*Result, error) {
	tracking, err := w.fetcher.FetchTracking(ctx, order.ID)
	if err != nil {
		w.setState(StateError)
		return nil, err
	}
	w.setState(StateSuccess)
	return &Result{Order: order, Tracking: tracking}, nil
}
