package util

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Deduper is a best-effort once-only gate backed by Redis SetNX.
type Deduper struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewDeduper(rdb *redis.Client, ttl time.Duration) *Deduper {
	return &Deduper{
		rdb: rdb,
		ttl: ttl,
	}
}

// NewDeduperWithLogger creates a deduper that logs dedup hits.
func NewDeduperWithLogger(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Deduper {
	return &Deduper{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

// AcquireOnce tries to claim the (scope, key) pair for the TTL window.
// Returns true if this caller is the first; false on a duplicate.
// When Redis is unavailable it fails open and returns true, so callers
// must not rely on it as their only idempotency guarantee.
func (d *Deduper) AcquireOnce(ctx context.Context, scope, key string) bool {
	dedupKey := fmt.Sprintf("dedup:%s:%s", scope, key)

	ok, err := d.rdb.SetNX(ctx, dedupKey, 1, d.ttl).Result()
	if err != nil {
		if d.logger != nil {
			d.logger.Warn("Redis dedup check failed, allowing processing",
				zap.String("scope", scope),
				zap.String("key", key),
				zap.Error(err),
			)
		}
		return true
	}

	if !ok && d.logger != nil {
		d.logger.Info("Skipped duplicated event",
			zap.String("scope", scope),
			zap.String("key", key),
			zap.String("dedup_key", dedupKey),
		)
	}

	return ok
}

// Release frees a claimed (scope, key) pair so a later attempt can claim
// it again. Callers use this when processing fails after AcquireOnce, so
// a redelivery is not swallowed as a duplicate.
func (d *Deduper) Release(ctx context.Context, scope, key string) {
	dedupKey := fmt.Sprintf("dedup:%s:%s", scope, key)
	if err := d.rdb.Del(ctx, dedupKey).Err(); err != nil && d.logger != nil {
		d.logger.Warn("Failed to release dedup key",
			zap.String("dedup_key", dedupKey),
			zap.Error(err),
		)
	}
}
