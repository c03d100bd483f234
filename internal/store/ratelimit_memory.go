package store

import (
	"context"
	"sync"
	"time"
)

type window struct {
	start time.Time
	count int64
}

// RateLimitMemoryStore is an in-memory implementation of ratelimit.Store
// using fixed windows.
type RateLimitMemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window
}

// NewRateLimitMemoryStore creates a new in-memory rate limit store.
func NewRateLimitMemoryStore() *RateLimitMemoryStore {
	return &RateLimitMemoryStore{
		windows: make(map[string]*window),
	}
}

func (s *RateLimitMemoryStore) Record(_ context.Context, key string, windowSize time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()

	w, ok := s.windows[key]
	if !ok || now.Sub(w.start) >= windowSize {
		w = &window{start: now}
		s.windows[key] = w
	}

	w.count++

	return w.count, nil
}
