package resolver

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/gatelink/gatelink/internal/botgate"
	"github.com/gatelink/gatelink/internal/redirect"
	"github.com/gatelink/gatelink/internal/token"
	"go.uber.org/zap"
)

// Kind identifies an Outcome variant.
type Kind int

const (
	KindRedirect Kind = iota
	KindChallenge
	KindNotFound
	KindForbidden
	KindBadRequest
)

// Outcome is the result of a resolution. Key and Destination are set for
// Redirect and Challenge. Reason is diagnostic detail for server-side logs;
// the HTTP layer must map Forbidden to a generic denial with no explanation.
type Outcome struct {
	Kind        Kind
	Key         string
	Destination string
	Reason      string
}

// Request carries one resolution attempt. Exactly one of Key or Slug
// identifies the record; Slug takes the slug lookup path.
type Request struct {
	Key     string
	Slug    string
	Token   string
	Email   string
	Signals botgate.Signals
}

// mailboxPattern is a basic mailbox-shape check, not a full RFC 5322 parse.
var mailboxPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Engine orchestrates a resolution: bot gating, token verification, record
// lookup, token binding recheck, and destination composition. It holds no
// per-request state; every call is independent and idempotent.
type Engine struct {
	gate      *botgate.Gate
	codec     *token.Codec
	store     redirect.Repository
	challenge bool
	logger    *zap.Logger
}

// NewEngine creates a resolution engine. When challenge is true, successful
// resolutions return KindChallenge so the HTTP layer serves the interstitial
// page instead of an immediate redirect.
func NewEngine(
	gate *botgate.Gate,
	codec *token.Codec,
	store redirect.Repository,
	challenge bool,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		gate:      gate,
		codec:     codec,
		store:     store,
		challenge: challenge,
		logger:    logger,
	}
}

// Resolve runs the resolution pipeline. A non-nil error means the store
// failed; every other failure is expressed as an Outcome variant.
func (e *Engine) Resolve(ctx context.Context, req Request) (Outcome, error) {
	// The gate runs first so denied traffic never touches the store.
	if decision := e.gate.Classify(req.Signals); !decision.Allowed {
		e.logger.Info("bot gate denied request",
			zap.String("rule", decision.Reason),
			zap.String("key", req.Key),
			zap.String("slug", req.Slug),
			zap.String("user_agent", req.Signals.UserAgent),
		)

		return Outcome{Kind: KindForbidden, Reason: "bot:" + decision.Reason}, nil
	}

	if req.Email != "" && !mailboxPattern.MatchString(req.Email) {
		return Outcome{Kind: KindBadRequest, Reason: "malformed email"}, nil
	}

	// Expired, malformed, and mis-signed tokens are treated identically.
	boundKey, err := e.codec.Verify(req.Token)
	if err != nil {
		e.logger.Info("token verification failed",
			zap.String("key", req.Key),
			zap.String("slug", req.Slug),
		)

		return Outcome{Kind: KindForbidden, Reason: "invalid token"}, nil
	}

	record, err := e.lookup(ctx, req)
	if err != nil {
		if errors.Is(err, redirect.ErrNotFound) {
			return Outcome{Kind: KindNotFound}, nil
		}

		return Outcome{}, err
	}

	// Exact string match against the stored token, beyond signature validity.
	// A token validly signed for a different key, or an old signature that
	// still verifies after a secret rotation, fails here.
	if record.Token != req.Token || record.Key != boundKey {
		e.logger.Info("token does not match record",
			zap.String("key", record.Key),
		)

		return Outcome{Kind: KindForbidden, Reason: "token mismatch"}, nil
	}

	destination := composeDestination(record.Destination, req.Email)

	e.logger.Info("redirect resolved",
		zap.String("key", record.Key),
		zap.String("destination", destination),
		zap.Bool("challenge", e.challenge),
	)

	if e.challenge {
		return Outcome{Kind: KindChallenge, Key: record.Key, Destination: destination}, nil
	}

	return Outcome{Kind: KindRedirect, Key: record.Key, Destination: destination}, nil
}

func (e *Engine) lookup(ctx context.Context, req Request) (*redirect.Record, error) {
	if req.Slug != "" {
		return e.store.GetBySlug(ctx, req.Slug)
	}

	return e.store.GetByKey(ctx, req.Key)
}

// composeDestination appends email as an extra path segment, inserting a
// slash only when the destination does not already end with one.
func composeDestination(destination, email string) string {
	if email == "" {
		return destination
	}

	if strings.HasSuffix(destination, "/") {
		return destination + email
	}

	return destination + "/" + email
}
