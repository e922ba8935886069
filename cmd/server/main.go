package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hansithacreations/storefront-api/internal/api"
	"github.com/hansithacreations/storefront-api/internal/config"
	"github.com/hansithacreations/storefront-api/internal/courier"
	"github.com/hansithacreations/storefront-api/internal/repository/postgres"
	"github.com/hansithacreations/storefront-api/internal/service"
	"github.com/hansithacreations/storefront-api/internal/ws"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	var logger *zap.Logger
	if cfg.Environment == "production" {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	logger.Info("Starting storefront API server",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
	)

	// Initialize database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := postgres.RunMigrations(db); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize repositories
	repos := postgres.NewRepositories(db, logger)

	// Realtime hub: lifecycle tied to this context, injected where needed
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	hub := ws.NewHub(logger)
	go hub.Run(hubCtx)

	// Courier aggregator client; nil when not configured so shipment
	// creation flags orders instead of dialing nowhere
	var gateway *courier.Client
	if cfg.Courier.BaseURL != "" {
		gateway = courier.NewClient(cfg.Courier, logger)
	} else {
		logger.Warn("Courier aggregator not configured; paid orders will be flagged for manual shipment")
	}

	// Optional Redis dedup ledger for webhook deliveries
	ledger := service.NewRedisEventLedger(cfg.Redis, logger)
	if ledger == nil {
		logger.Info("Webhook dedup ledger disabled, relying on payment status guard")
	}

	var courierGateway service.CourierGateway
	var trackingGateway service.TrackingGateway
	if gateway != nil {
		courierGateway = gateway
		trackingGateway = gateway
	}
	orchestrator := service.NewFulfillmentService(repos, courierGateway, hub, ledger, logger)
	tracking := service.NewTrackingService(repos, trackingGateway, logger)

	// Initialize router
	router := api.NewRouter(cfg, repos, orchestrator, tracking, hub, logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Server started successfully", zap.String("address", srv.Addr))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	stopHub()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
