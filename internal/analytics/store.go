package analytics

import "context"

// Store defines the interface for persisting link lifecycle events.
type Store interface {
	SaveLinkIssued(ctx context.Context, event *LinkIssuedEvent) error
	SaveLinkResolved(ctx context.Context, event *LinkResolvedEvent) error
	SaveLinkDenied(ctx context.Context, event *LinkDeniedEvent) error
}
