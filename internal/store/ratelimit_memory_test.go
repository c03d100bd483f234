package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/gatelink/gatelink/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitMemoryStore_Record(t *testing.T) {
	t.Run("counts requests within the window", func(t *testing.T) {
		s := store.NewRateLimitMemoryStore()

		for want := int64(1); want <= 3; want++ {
			count, err := s.Record(context.Background(), "client", time.Minute)

			require.NoError(t, err)
			assert.Equal(t, want, count)
		}
	})

	t.Run("tracks keys independently", func(t *testing.T) {
		s := store.NewRateLimitMemoryStore()

		_, err := s.Record(context.Background(), "first", time.Minute)
		require.NoError(t, err)

		count, err := s.Record(context.Background(), "second", time.Minute)

		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("resets the counter when the window elapses", func(t *testing.T) {
		s := store.NewRateLimitMemoryStore()

		_, err := s.Record(context.Background(), "client", 10*time.Millisecond)
		require.NoError(t, err)

		time.Sleep(20 * time.Millisecond)

		count, err := s.Record(context.Background(), "client", 10*time.Millisecond)

		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}
