package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gatelink/gatelink/internal/handlers"
)

// RequestMeta captures client identity, the full header set, and the query
// parameters into the request context. The bot gate and the shareable-URL
// composition both read from this snapshot instead of touching the transport
// directly.
func RequestMeta(_ huma.API) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		header := make(http.Header)
		ctx.EachHeader(func(name, value string) {
			header.Add(name, value)
		})

		requestURL := ctx.URL()

		meta := handlers.RequestMeta{
			ClientIP:  extractClientIP(ctx),
			UserAgent: ctx.Header("User-Agent"),
			Referrer:  ctx.Header("Referer"),
			Scheme:    extractScheme(ctx),
			Host:      ctx.Host(),
			Header:    header,
			Query:     requestURL.Query(),
		}

		newCtx := handlers.ContextWithRequestMeta(ctx.Context(), meta)
		ctx = huma.WithContext(ctx, newCtx)

		next(ctx)
	}
}

func extractClientIP(ctx huma.Context) string {
	// Check X-Forwarded-For first (may contain multiple IPs)
	if xff := ctx.Header("X-Forwarded-For"); xff != "" {
		// Take the first IP (original client)
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}

		return strings.TrimSpace(xff)
	}

	// Check X-Real-IP
	if xri := ctx.Header("X-Real-IP"); xri != "" {
		return xri
	}

	// Fall back to remote addr; SplitHostPort keeps bare IPv6 intact.
	addr := ctx.RemoteAddr()

	ip, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}

	return ip
}

func extractScheme(ctx huma.Context) string {
	if proto := ctx.Header("X-Forwarded-Proto"); proto != "" {
		return proto
	}

	if ctx.TLS() != nil {
		return "https"
	}

	return "http"
}
