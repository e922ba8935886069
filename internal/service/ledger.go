package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hansithacreations/storefront-api/internal/config"
)

// ledgerTTL bounds how long delivery ids are remembered. Gateways stop
// redelivering well inside this window.
const ledgerTTL = 48 * time.Hour

// EventLedger deduplicates webhook deliveries by the gateway's own event id.
type EventLedger interface {
	// FirstDelivery returns true the first time an event id is seen.
	FirstDelivery(ctx context.Context, eventID string) (bool, error)
}

type redisEventLedger struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisEventLedger creates a Redis-backed dedup ledger. Returns nil when
// Redis is not configured; the orchestrator then relies on the paid-status
// guard alone.
func NewRedisEventLedger(cfg config.RedisConfig, logger *zap.Logger) EventLedger {
	if cfg.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &redisEventLedger{client: client, logger: logger}
}

func (l *redisEventLedger) FirstDelivery(ctx context.Context, eventID string) (bool, error) {
	// SET NX is atomic: exactly one delivery wins the key.
	ok, err := l.client.SetNX(ctx, "webhook:event:"+eventID, 1, ledgerTTL).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}
