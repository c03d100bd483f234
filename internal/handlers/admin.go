package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gatelink/gatelink/internal/issuer"
	"github.com/gatelink/gatelink/internal/redirect"
	"go.uber.org/zap"
)

// AdminHandler exposes the administrative record interface.
//
// These endpoints carry no authentication, matching the surface they were
// modeled on. Deploy them behind a trusted boundary or add auth explicitly.
type AdminHandler struct {
	store  redirect.Repository
	logger *zap.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(store redirect.Repository, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{store: store, logger: logger}
}

// ListRedirects returns every stored record.
func (h *AdminHandler) ListRedirects(ctx context.Context, _ *struct{}) (*ListRedirectsResponse, error) {
	records, err := h.store.GetAll(ctx)
	if err != nil {
		h.logger.Error("failed to fetch redirects", zap.Error(err))

		return nil, huma.Error500InternalServerError("Failed to fetch redirects.")
	}

	resp := &ListRedirectsResponse{Body: make([]RecordDTO, 0, len(records))}

	for _, record := range records {
		resp.Body = append(resp.Body, RecordDTO{
			Key:         record.Key,
			Slug:        record.Slug,
			Destination: record.Destination,
			Token:       record.Token,
			CreatedAt:   record.CreatedAt,
			UpdatedAt:   record.UpdatedAt,
		})
	}

	return resp, nil
}

// UpdateRedirect changes a record's destination. The stored token is left
// untouched.
func (h *AdminHandler) UpdateRedirect(ctx context.Context, req *UpdateRedirectRequest) (*MessageResponse, error) {
	if err := issuer.ValidateDestination(req.Body.Destination); err != nil {
		return nil, huma.Error400BadRequest("Invalid destination URL.")
	}

	if err := h.store.UpdateDestination(ctx, req.Key, req.Body.Destination); err != nil {
		if errors.Is(err, redirect.ErrNotFound) {
			return nil, huma.Error404NotFound("Redirect not found.")
		}

		h.logger.Error("failed to update redirect",
			zap.String("key", req.Key),
			zap.Error(err),
		)

		return nil, huma.Error500InternalServerError("Failed to update redirect.")
	}

	resp := &MessageResponse{}
	resp.Body.Message = "Redirect updated."

	return resp, nil
}

// DeleteRedirect removes a record.
func (h *AdminHandler) DeleteRedirect(ctx context.Context, req *DeleteRedirectRequest) (*MessageResponse, error) {
	if err := h.store.Delete(ctx, req.Key); err != nil {
		if errors.Is(err, redirect.ErrNotFound) {
			return nil, huma.Error404NotFound("Redirect not found.")
		}

		h.logger.Error("failed to delete redirect",
			zap.String("key", req.Key),
			zap.Error(err),
		)

		return nil, huma.Error500InternalServerError("Failed to delete redirect.")
	}

	resp := &MessageResponse{}
	resp.Body.Message = "Redirect deleted."

	return resp, nil
}
