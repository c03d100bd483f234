package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gatelink/gatelink/internal/container"
	"github.com/gatelink/gatelink/internal/messaging"
	"github.com/samber/do"
	"go.uber.org/zap"
)

// The consumer process drains the link lifecycle topics into the Redis
// analytics store. It shares the container packages with the server but only
// needs the Redis-facing subset.
func main() {
	options := &container.Options{
		RedisAddr:    envOr("REDIS_ADDR", "localhost:6379"),
		LogFormat:    envOr("LOG_FORMAT", "console"),
		PersistStats: os.Getenv("PERSIST_STATS") != "false",
	}

	injector := do.New()
	container.RegisterConsumerPackages(injector, options)

	logger := do.MustInvoke[*zap.Logger](injector)
	group := do.MustInvoke[*messaging.ConsumerGroup](injector)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := group.Start(ctx); err != nil {
		logger.Fatal("consumer group failed to start", zap.Error(err))
	}

	logger.Info("consuming link lifecycle events")

	waitForSignal()

	logger.Info("draining")
	cancel()

	if err := injector.Shutdown(); err != nil {
		logger.Error("container shutdown failed", zap.Error(err))
	}

	logger.Info("stopped")
}

func waitForSignal() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	<-signals
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}
