package ratelimit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gatelink/gatelink/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRateStore struct {
	count int64
	err   error
	calls int
}

func (m *mockRateStore) Record(_ context.Context, _ string, _ time.Duration) (int64, error) {
	m.calls++
	m.count++

	return m.count, m.err
}

func TestFixedWindowLimiter_Allow(t *testing.T) {
	t.Run("allows requests under the limit", func(t *testing.T) {
		limiter := ratelimit.NewFixedWindowLimiter(&mockRateStore{}, 10, time.Minute)

		for i := 0; i < 10; i++ {
			allowed, err := limiter.Allow(context.Background(), "client")

			require.NoError(t, err)
			assert.True(t, allowed)
		}
	})

	t.Run("denies requests over the limit", func(t *testing.T) {
		s := &mockRateStore{count: 10}
		limiter := ratelimit.NewFixedWindowLimiter(s, 10, time.Minute)

		allowed, err := limiter.Allow(context.Background(), "client")

		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("propagates store errors", func(t *testing.T) {
		s := &mockRateStore{err: errors.New("redis down")}
		limiter := ratelimit.NewFixedWindowLimiter(s, 10, time.Minute)

		allowed, err := limiter.Allow(context.Background(), "client")

		assert.False(t, allowed)
		assert.Error(t, err)
	})
}
