package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gatelink/gatelink/internal/analytics"
	"github.com/gatelink/gatelink/internal/issuer"
	"github.com/gatelink/gatelink/internal/messaging"
	"github.com/gatelink/gatelink/internal/redirect"
	"github.com/gatelink/gatelink/internal/resolver"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LinkHandler handles link issuance and resolution.
type LinkHandler struct {
	issuer          *issuer.Service
	engine          *resolver.Engine
	publishIssued   messaging.Publish[analytics.LinkIssuedEvent]
	publishResolved messaging.Publish[analytics.LinkResolvedEvent]
	publishDenied   messaging.Publish[analytics.LinkDeniedEvent]
	logger          *zap.Logger
}

// NewLinkHandler creates a new link handler.
func NewLinkHandler(
	issuerService *issuer.Service,
	engine *resolver.Engine,
	publishIssued messaging.Publish[analytics.LinkIssuedEvent],
	publishResolved messaging.Publish[analytics.LinkResolvedEvent],
	publishDenied messaging.Publish[analytics.LinkDeniedEvent],
	logger *zap.Logger,
) *LinkHandler {
	return &LinkHandler{
		issuer:          issuerService,
		engine:          engine,
		publishIssued:   publishIssued,
		publishResolved: publishResolved,
		publishDenied:   publishDenied,
		logger:          logger,
	}
}

// AddRedirect issues a new signed redirect link and returns both shareable
// URL forms anchored to the request's own host.
func (h *LinkHandler) AddRedirect(ctx context.Context, req *AddRedirectRequest) (*AddRedirectResponse, error) {
	record, err := h.issuer.Issue(ctx, req.Body.Destination, req.Body.Slug)
	if err != nil {
		switch {
		case errors.Is(err, issuer.ErrInvalidDestination):
			return nil, huma.Error400BadRequest("Invalid destination URL.")
		case errors.Is(err, issuer.ErrInvalidSlug):
			return nil, huma.Error400BadRequest("Invalid slug.")
		case errors.Is(err, redirect.ErrDuplicateSlug):
			return nil, huma.Error400BadRequest("Slug already in use.")
		default:
			h.logger.Error("failed to save redirect", zap.Error(err))

			return nil, huma.Error500InternalServerError("Failed to save redirect.")
		}
	}

	meta := RequestMetaFromContext(ctx)

	event := &analytics.LinkIssuedEvent{
		EventID:     uuid.NewString(),
		Key:         record.Key,
		Slug:        record.Slug,
		Destination: record.Destination,
		IssuedAt:    record.CreatedAt,
		ClientIP:    meta.ClientIP,
		UserAgent:   meta.UserAgent,
	}

	if err := h.publishIssued(event); err != nil {
		h.logger.Error("failed to publish link issued event",
			zap.String("key", record.Key),
			zap.Error(err),
		)
	}

	baseURL := meta.BaseURL()

	resp := &AddRedirectResponse{}
	resp.Body.Message = "Redirect added successfully!"
	resp.Body.RedirectURL = fmt.Sprintf("%s/%s?token=%s", baseURL, record.Key, record.Token)
	resp.Body.PathRedirectURL = fmt.Sprintf("%s/%s/%s", baseURL, record.Key, record.Token)

	if record.Slug != "" {
		resp.Body.SlugRedirectURL = fmt.Sprintf("%s/s/%s/%s", baseURL, record.Slug, record.Token)
	}

	return resp, nil
}

// ResolvePath resolves the path form GET /{key}/{token}.
func (h *LinkHandler) ResolvePath(ctx context.Context, req *ResolvePathRequest) (*ResolveResponse, error) {
	return h.resolve(ctx, resolver.Request{
		Key:   req.Key,
		Token: req.Token,
		Email: req.Email,
	})
}

// ResolveQuery resolves the query form GET /{key}?token=...
func (h *LinkHandler) ResolveQuery(ctx context.Context, req *ResolveQueryRequest) (*ResolveResponse, error) {
	return h.resolve(ctx, resolver.Request{
		Key:   req.Key,
		Token: req.Token,
		Email: req.Email,
	})
}

// ResolveSlug resolves the slug form GET /s/{slug}/{token}.
func (h *LinkHandler) ResolveSlug(ctx context.Context, req *ResolveSlugRequest) (*ResolveResponse, error) {
	return h.resolve(ctx, resolver.Request{
		Slug:  req.Slug,
		Token: req.Token,
		Email: req.Email,
	})
}

func (h *LinkHandler) resolve(ctx context.Context, req resolver.Request) (*ResolveResponse, error) {
	meta := RequestMetaFromContext(ctx)
	req.Signals = meta.Signals()

	outcome, err := h.engine.Resolve(ctx, req)
	if err != nil {
		h.logger.Error("failed to resolve redirect",
			zap.String("key", req.Key),
			zap.String("slug", req.Slug),
			zap.Error(err),
		)

		return nil, huma.Error500InternalServerError("Failed to resolve redirect.")
	}

	switch outcome.Kind {
	case resolver.KindForbidden:
		// The reason is published and logged but never echoed to the caller.
		h.publishDeniedEvent(req, outcome, meta)

		return nil, huma.Error403Forbidden("Access denied.")

	case resolver.KindNotFound:
		return nil, huma.Error404NotFound("Redirect not found.")

	case resolver.KindBadRequest:
		return nil, huma.Error400BadRequest("Invalid email format.")

	case resolver.KindChallenge:
		body, err := renderChallengePage(outcome.Destination)
		if err != nil {
			h.logger.Error("failed to render challenge page", zap.Error(err))

			return nil, huma.Error500InternalServerError("Failed to resolve redirect.")
		}

		h.publishResolvedEvent(req, outcome, meta)

		return &ResolveResponse{
			Status:      http.StatusOK,
			ContentType: "text/html; charset=utf-8",
			Body:        body,
		}, nil

	default:
		h.publishResolvedEvent(req, outcome, meta)

		return &ResolveResponse{
			Status:   http.StatusFound,
			Location: outcome.Destination,
		}, nil
	}
}

func (h *LinkHandler) publishResolvedEvent(req resolver.Request, outcome resolver.Outcome, meta RequestMeta) {
	event := &analytics.LinkResolvedEvent{
		EventID:     uuid.NewString(),
		Key:         outcome.Key,
		Destination: outcome.Destination,
		WithEmail:   req.Email != "",
		Challenged:  outcome.Kind == resolver.KindChallenge,
		ResolvedAt:  time.Now(),
		ClientIP:    meta.ClientIP,
		UserAgent:   meta.UserAgent,
		Referrer:    meta.Referrer,
	}

	if err := h.publishResolved(event); err != nil {
		h.logger.Error("failed to publish link resolved event",
			zap.String("key", req.Key),
			zap.Error(err),
		)
	}
}

func (h *LinkHandler) publishDeniedEvent(req resolver.Request, outcome resolver.Outcome, meta RequestMeta) {
	event := &analytics.LinkDeniedEvent{
		EventID:   uuid.NewString(),
		Key:       req.Key,
		Slug:      req.Slug,
		Reason:    outcome.Reason,
		DeniedAt:  time.Now(),
		ClientIP:  meta.ClientIP,
		UserAgent: meta.UserAgent,
	}

	if err := h.publishDenied(event); err != nil {
		h.logger.Error("failed to publish link denied event",
			zap.String("key", req.Key),
			zap.Error(err),
		)
	}
}
