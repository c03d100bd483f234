package handlers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gatelink/gatelink/internal/botgate"
)

type requestMetaKey struct{}

// RequestMeta holds HTTP request metadata captured by middleware: client
// identity for analytics, the header and query sets the bot gate inspects,
// and the scheme/host pair shareable URLs are anchored to.
type RequestMeta struct {
	ClientIP  string
	UserAgent string
	Referrer  string
	Scheme    string
	Host      string
	Header    http.Header
	Query     url.Values
}

// Signals converts the captured metadata into bot gate signals.
func (m RequestMeta) Signals() botgate.Signals {
	return botgate.Signals{
		UserAgent: m.UserAgent,
		Header:    m.Header,
		Query:     m.Query,
	}
}

// BaseURL returns the request's own origin, e.g. "https://example.com".
func (m RequestMeta) BaseURL() string {
	scheme := m.Scheme
	if scheme == "" {
		scheme = "http"
	}

	return scheme + "://" + m.Host
}

// ContextWithRequestMeta adds request metadata to context.
func ContextWithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFromContext extracts request metadata from context.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	if v, ok := ctx.Value(requestMetaKey{}).(RequestMeta); ok {
		return v
	}

	return RequestMeta{}
}
