// Package ratelimit counts requests per key in fixed windows.
package ratelimit

//go:generate go run go.uber.org/mock/mockgen -source=./ratelimit.go -destination=./mocks/ratelimit_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"elc/config"
	"elc/shared/cache"
	"elc/shared/clock"

	"github.com/rs/zerolog/log"
)

const (
	StoreRedis  = "redis"
	StoreMemory = "memory"

	defaultCleanupPeriod = 5 * time.Minute
)

// Store increments the hit counter for key inside the current window and
// returns the count including this hit.
type Store interface {
	Incr(ctx context.Context, key string, window time.Duration) (int, error)
	Close() error
}

// New picks the store named by APP_RATE_LIMITER_STORE. The returned cleanup
// releases whatever the store owns.
func New(cfg *config.Config, redisCache cache.RedisCache, clk clock.Clock) (Store, func()) {
	var store Store

	switch cfg.App.RateLimiter.Store {
	case StoreMemory:
		cleanupPeriod := time.Duration(cfg.App.RateLimiter.CleanupPeriodSeconds) * time.Second
		store = NewMemoryStore(cleanupPeriod, clk)
	default:
		store = NewRedisStore(redisCache)
	}

	log.Info().Str("store", cfg.App.RateLimiter.Store).Msg("Rate limiter store initialized")

	return store, func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close rate limiter store")
		}
	}
}

type redisStore struct {
	cache cache.RedisCache
}

func NewRedisStore(redisCache cache.RedisCache) Store {
	return &redisStore{cache: redisCache}
}

func (s *redisStore) Incr(ctx context.Context, key string, window time.Duration) (int, error) {
	count, err := s.cache.Incr(ctx, key, window)
	if err != nil {
		return 0, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	return int(count), nil
}

// Close is a no-op; the redis client is owned by the cache.
func (s *redisStore) Close() error {
	return nil
}
