package container_test

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gatelink/gatelink/internal/analytics"
	analyticsstore "github.com/gatelink/gatelink/internal/analytics/store"
	"github.com/gatelink/gatelink/internal/container"
	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
)

func newConsumerInjector(t *testing.T, options *container.Options) *do.Injector {
	t.Helper()

	mr := miniredis.RunT(t)
	options.RedisAddr = mr.Addr()

	injector := do.New()
	container.RegisterConsumerPackages(injector, options)

	return injector
}

func TestConsumerGroupPackage_StoreSelection(t *testing.T) {
	t.Run("persists to Redis by default", func(t *testing.T) {
		injector := newConsumerInjector(t, &container.Options{PersistStats: true})

		analyticsStore := do.MustInvoke[analytics.Store](injector)

		assert.IsType(t, &analyticsstore.Redis{}, analyticsStore)
	})

	t.Run("falls back to the logging store when persistence is disabled", func(t *testing.T) {
		injector := newConsumerInjector(t, &container.Options{PersistStats: false})

		analyticsStore := do.MustInvoke[analytics.Store](injector)

		assert.IsType(t, &analyticsstore.Noop{}, analyticsStore)
	})
}
