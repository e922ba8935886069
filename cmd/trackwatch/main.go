package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/hansithacreations/storefront-api/internal/poller"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: go run cmd/trackwatch/main.go <order_id> <session_token>")
		fmt.Println("Example: go run cmd/trackwatch/main.go 0b7a2f64-... eyJhbGciOi...")
		fmt.Println("Set API_BASE_URL to override the default http://localhost:8080")
		os.Exit(1)
	}

	orderID := os.Args[1]
	token := os.Args[2]

	baseURL := os.Getenv("API_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// Ctrl-C tears the watcher down; no fetch is issued after that.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fetcher := poller.NewHTTPFetcher(baseURL, token)
	watcher := poller.NewWatcher(fetcher, poller.DefaultInterval, logger)

	fmt.Printf("Watching order %s for waybill assignment (every %s)...\n\n", orderID, poller.DefaultInterval)

	result, err := watcher.Run(ctx, orderID)
	if err != nil {
		if ctx.Err() != nil {
			fmt.Println("Cancelled.")
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Could not load order: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Order %s\n", result.Order.ID)
	fmt.Printf("  status:         %s\n", result.Order.Status)
	fmt.Printf("  payment_status: %s\n", result.Order.PaymentStatus)
	fmt.Printf("  awb_code:       %s\n\n", result.Order.AWBCode)

	if len(result.Tracking.Scans) == 0 {
		fmt.Println("No scans reported yet.")
		return
	}

	// Most recent scan first for display.
	fmt.Println("Tracking history:")
	for i := len(result.Tracking.Scans) - 1; i >= 0; i-- {
		scan := result.Tracking.Scans[i]
		fmt.Printf("  %-20s %-30s %s\n", scan.Date, scan.Location, scan.Activity)
	}
}
