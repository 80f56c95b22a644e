package ratelimit

import (
	"context"
	"sync"
	"time"

	"elc/shared/clock"

	"github.com/rs/zerolog/log"
)

type window struct {
	count     int
	expiresAt time.Time
}

// MemoryStore keeps counters in process. A single goroutine drops expired
// windows every cleanup period until Close is called.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]window
	clock   clock.Clock
	done    chan struct{}
	once    sync.Once
}

func NewMemoryStore(cleanupPeriod time.Duration, clk clock.Clock) *MemoryStore {
	if cleanupPeriod <= 0 {
		cleanupPeriod = defaultCleanupPeriod
	}

	store := &MemoryStore{
		windows: make(map[string]window),
		clock:   clk,
		done:    make(chan struct{}),
	}

	go store.cleanup(cleanupPeriod)

	return store
}

func (s *MemoryStore) Incr(_ context.Context, key string, ttl time.Duration) (int, error) {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.windows[key]
	if !ok || !now.Before(current.expiresAt) {
		current = window{expiresAt: now.Add(ttl)}
	}

	current.count++
	s.windows[key] = current

	return current.count, nil
}

// Sweep removes expired windows and returns how many were dropped.
func (s *MemoryStore) Sweep() int {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0

	for key, current := range s.windows {
		if !now.Before(current.expiresAt) {
			delete(s.windows, key)

			removed++
		}
	}

	return removed
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.windows)
}

func (s *MemoryStore) Close() error {
	s.once.Do(func() {
		close(s.done)
	})

	return nil
}

func (s *MemoryStore) cleanup(period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if removed := s.Sweep(); removed > 0 {
				log.Debug().Int("removed", removed).Msg("rate limiter windows swept")
			}
		}
	}
}
