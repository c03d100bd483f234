package analytics

import (
	"context"

	"github.com/gatelink/gatelink/internal/messaging"
)

// IssuedHandler binds a store to the link.issued topic.
func IssuedHandler(store Store) messaging.Handler[LinkIssuedEvent] {
	return func(ctx context.Context, event *LinkIssuedEvent) error {
		return store.SaveLinkIssued(ctx, event)
	}
}

// ResolvedHandler binds a store to the link.resolved topic.
func ResolvedHandler(store Store) messaging.Handler[LinkResolvedEvent] {
	return func(ctx context.Context, event *LinkResolvedEvent) error {
		return store.SaveLinkResolved(ctx, event)
	}
}

// DeniedHandler binds a store to the link.denied topic.
func DeniedHandler(store Store) messaging.Handler[LinkDeniedEvent] {
	return func(ctx context.Context, event *LinkDeniedEvent) error {
		return store.SaveLinkDenied(ctx, event)
	}
}
