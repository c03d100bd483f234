package store

import (
	"context"
	"encoding/json"

	"github.com/gatelink/gatelink/internal/analytics"
	"github.com/redis/go-redis/v9"
)

const recentDenialsMax = 100

// Redis persists link lifecycle counters in Redis: per-key resolution counts,
// per-reason denial counts, and a capped list of recent denials.
type Redis struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed analytics store.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) SaveLinkIssued(ctx context.Context, event *analytics.LinkIssuedEvent) error {
	pipe := r.client.Pipeline()
	pipe.Incr(ctx, "stats:issued_total")
	pipe.HSet(ctx, "stats:issued:"+event.Key, map[string]interface{}{
		"destination": event.Destination,
		"slug":        event.Slug,
		"issued_at":   event.IssuedAt.UnixNano(),
	})

	_, err := pipe.Exec(ctx)

	return err
}

func (r *Redis) SaveLinkResolved(ctx context.Context, event *analytics.LinkResolvedEvent) error {
	pipe := r.client.Pipeline()
	pipe.Incr(ctx, "stats:resolved_total")
	pipe.HIncrBy(ctx, "stats:resolved_by_key", event.Key, 1)

	_, err := pipe.Exec(ctx)

	return err
}

func (r *Redis) SaveLinkDenied(ctx context.Context, event *analytics.LinkDeniedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	pipe := r.client.Pipeline()
	pipe.Incr(ctx, "stats:denied_total")
	pipe.HIncrBy(ctx, "stats:denied_by_reason", event.Reason, 1)
	pipe.LPush(ctx, "stats:recent_denials", payload)
	pipe.LTrim(ctx, "stats:recent_denials", 0, recentDenialsMax-1)

	_, err = pipe.Exec(ctx)

	return err
}

// Compile-time check.
var _ analytics.Store = (*Redis)(nil)
