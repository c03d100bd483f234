package store

import (
	"context"

	"github.com/gatelink/gatelink/internal/analytics"
	"go.uber.org/zap"
)

// Noop is a no-op implementation of analytics.Store that logs events.
type Noop struct {
	logger *zap.Logger
}

// NewNoop creates a new no-op analytics store.
func NewNoop(logger *zap.Logger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) SaveLinkIssued(_ context.Context, event *analytics.LinkIssuedEvent) error {
	n.logger.Info("link issued event received",
		zap.String("key", event.Key),
		zap.String("destination", event.Destination),
		zap.Time("issuedAt", event.IssuedAt),
	)

	return nil
}

func (n *Noop) SaveLinkResolved(_ context.Context, event *analytics.LinkResolvedEvent) error {
	n.logger.Info("link resolved event received",
		zap.String("key", event.Key),
		zap.Bool("challenged", event.Challenged),
		zap.Time("resolvedAt", event.ResolvedAt),
	)

	return nil
}

func (n *Noop) SaveLinkDenied(_ context.Context, event *analytics.LinkDeniedEvent) error {
	n.logger.Info("link denied event received",
		zap.String("key", event.Key),
		zap.String("reason", event.Reason),
		zap.Time("deniedAt", event.DeniedAt),
	)

	return nil
}

// Compile-time check.
var _ analytics.Store = (*Noop)(nil)
