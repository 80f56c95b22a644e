package ratelimit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"elc/config"
	cacheMocks "elc/shared/cache/mocks"
	"elc/shared/clock"
	"elc/shared/ratelimit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestMemoryStore_Incr(t *testing.T) {
	manual := clock.NewManual(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	store := ratelimit.NewMemoryStore(time.Hour, manual)
	defer store.Close()

	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		count, err := store.Incr(ctx, "limiter:10.0.0.1:curl", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, count)
	}

	other, err := store.Incr(ctx, "limiter:10.0.0.2:curl", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, other)

	manual.Advance(time.Minute)

	count, err := store.Incr(ctx, "limiter:10.0.0.1:curl", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "a new window starts once the previous one expires")
}

func TestMemoryStore_Sweep(t *testing.T) {
	manual := clock.NewManual(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	store := ratelimit.NewMemoryStore(time.Hour, manual)
	defer store.Close()

	ctx := context.Background()

	_, _ = store.Incr(ctx, "short", time.Minute)
	_, _ = store.Incr(ctx, "long", time.Hour)

	assert.Equal(t, 0, store.Sweep())
	assert.Equal(t, 2, store.Len())

	manual.Advance(2 * time.Minute)

	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_CloseIsIdempotent(t *testing.T) {
	store := ratelimit.NewMemoryStore(0, clock.New())

	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}

func TestRedisStore_Incr(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	store := ratelimit.NewRedisStore(mockCache)

	mockCache.EXPECT().
		Incr(gomock.Any(), "limiter:ip:ua", time.Minute).
		Return(int64(4), nil)

	count, err := store.Incr(context.Background(), "limiter:ip:ua", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	mockCache.EXPECT().
		Incr(gomock.Any(), "limiter:ip:ua", time.Minute).
		Return(int64(0), errors.New("redis down"))

	_, err = store.Incr(context.Background(), "limiter:ip:ua", time.Minute)
	assert.Error(t, err)
	assert.NoError(t, store.Close())
}

func TestNew_SelectsStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cfg := &config.Config{}
	cfg.App.RateLimiter.Store = ratelimit.StoreMemory

	store, cleanup := ratelimit.New(cfg, cacheMocks.NewMockRedisCache(ctrl), clock.New())
	defer cleanup()

	_, isMemory := store.(*ratelimit.MemoryStore)
	assert.True(t, isMemory)

	cfg.App.RateLimiter.Store = ratelimit.StoreRedis

	store, cleanupRedis := ratelimit.New(cfg, cacheMocks.NewMockRedisCache(ctrl), clock.New())
	defer cleanupRedis()

	_, isMemory = store.(*ratelimit.MemoryStore)
	assert.False(t, isMemory)
}
