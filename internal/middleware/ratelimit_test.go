package middleware_test

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"mime/multipart"
	"net/url"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/gatelink/gatelink/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

const (
	testRemoteAddr = "192.168.1.1:12345"
	testUserAgent  = "Mozilla/5.0 (X11; Linux x86_64)"
)

var errMultipartNotSupported = errors.New("multipart not supported in mock")

func newTestAPI() huma.API {
	return humachi.New(chi.NewMux(), huma.DefaultConfig("Test", "1.0.0"))
}

type mockLimiter struct {
	allowed bool
	err     error
}

func (m *mockLimiter) Allow(_ context.Context, _ string) (bool, error) {
	return m.allowed, m.err
}

type capturingLimiter struct {
	allowed     bool
	capturedKey *string
}

func (c *capturingLimiter) Allow(_ context.Context, key string) (bool, error) {
	*c.capturedKey = key

	return c.allowed, nil
}

// mockHumaContext implements huma.Context for testing.
type mockHumaContext struct {
	ctx        context.Context
	headers    map[string]string
	host       string
	remoteAddr string
	requestURL url.URL
	written    []byte
	statusCode int
	method     string
	operation  *huma.Operation
}

func newMockHumaContext() *mockHumaContext {
	return &mockHumaContext{
		ctx:        context.Background(),
		headers:    make(map[string]string),
		method:     "GET",
		remoteAddr: testRemoteAddr,
	}
}

func (m *mockHumaContext) Operation() *huma.Operation { return m.operation }
func (m *mockHumaContext) Context() context.Context   { return m.ctx }
func (m *mockHumaContext) TLS() *tls.ConnectionState  { return nil }
func (m *mockHumaContext) Version() huma.ProtoVersion { return huma.ProtoVersion{} }
func (m *mockHumaContext) Method() string             { return m.method }
func (m *mockHumaContext) Host() string               { return m.host }
func (m *mockHumaContext) RemoteAddr() string         { return m.remoteAddr }
func (m *mockHumaContext) URL() url.URL               { return m.requestURL }
func (m *mockHumaContext) Param(_ string) string      { return "" }
func (m *mockHumaContext) Query(_ string) string      { return "" }
func (m *mockHumaContext) Header(name string) string  { return m.headers[name] }
func (m *mockHumaContext) EachHeader(cb func(name, value string)) {
	for name, value := range m.headers {
		cb(name, value)
	}
}
func (m *mockHumaContext) BodyReader() io.Reader { return nil }
func (m *mockHumaContext) GetMultipartForm() (*multipart.Form, error) {
	return nil, errMultipartNotSupported
}
func (m *mockHumaContext) SetReadDeadline(_ time.Time) error { return nil }
func (m *mockHumaContext) SetStatus(code int)                { m.statusCode = code }
func (m *mockHumaContext) Status() int                       { return m.statusCode }
func (m *mockHumaContext) AppendHeader(_, _ string)          {}
func (m *mockHumaContext) SetHeader(_, _ string)             {}
func (m *mockHumaContext) BodyWriter() io.Writer             { return &mockBodyWriter{ctx: m} }

type mockBodyWriter struct {
	ctx *mockHumaContext
}

func (w *mockBodyWriter) Write(p []byte) (n int, err error) {
	w.ctx.written = append(w.ctx.written, p...)

	return len(p), nil
}

func TestRateLimiter(t *testing.T) {
	t.Run("allows request when limiter allows", func(t *testing.T) {
		mw := middleware.RateLimiter(newTestAPI(), &mockLimiter{allowed: true}, zap.NewNop())

		ctx := newMockHumaContext()
		ctx.headers["User-Agent"] = testUserAgent

		nextCalled := false

		mw(ctx, func(_ huma.Context) {
			nextCalled = true
		})

		assert.True(t, nextCalled, "next should be called when allowed")
	})

	t.Run("returns 429 when rate limited", func(t *testing.T) {
		mw := middleware.RateLimiter(newTestAPI(), &mockLimiter{allowed: false}, zap.NewNop())

		ctx := newMockHumaContext()
		ctx.headers["User-Agent"] = testUserAgent

		nextCalled := false

		mw(ctx, func(_ huma.Context) {
			nextCalled = true
		})

		assert.False(t, nextCalled, "next should not be called when rate limited")
		assert.Equal(t, 429, ctx.statusCode)
		assert.Contains(t, string(ctx.written), "Too many requests")
	})

	t.Run("returns 500 when the limiter errors", func(t *testing.T) {
		mw := middleware.RateLimiter(newTestAPI(), &mockLimiter{err: errors.New("limiter error")}, zap.NewNop())

		ctx := newMockHumaContext()
		ctx.headers["User-Agent"] = testUserAgent

		nextCalled := false

		mw(ctx, func(_ huma.Context) {
			nextCalled = true
		})

		assert.False(t, nextCalled, "next should not be called when limiter errors")
		assert.Equal(t, 500, ctx.statusCode)
	})

	t.Run("keys on IP and User-Agent", func(t *testing.T) {
		var capturedKey string
		mw := middleware.RateLimiter(newTestAPI(), &capturingLimiter{allowed: true, capturedKey: &capturedKey}, zap.NewNop())

		ctx1 := newMockHumaContext()
		ctx1.headers["User-Agent"] = testUserAgent
		mw(ctx1, func(_ huma.Context) {})
		key1 := capturedKey

		ctx2 := newMockHumaContext()
		ctx2.headers["User-Agent"] = testUserAgent
		mw(ctx2, func(_ huma.Context) {})

		assert.Equal(t, key1, capturedKey, "same IP and User-Agent should produce same key")

		ctx3 := newMockHumaContext()
		ctx3.headers["User-Agent"] = "DifferentAgent/2.0"
		mw(ctx3, func(_ huma.Context) {})

		assert.NotEqual(t, key1, capturedKey, "different User-Agent should produce different key")
	})

	t.Run("uses the first X-Forwarded-For hop as the client IP", func(t *testing.T) {
		var capturedKey string
		mw := middleware.RateLimiter(newTestAPI(), &capturingLimiter{allowed: true, capturedKey: &capturedKey}, zap.NewNop())

		ctx1 := newMockHumaContext()
		ctx1.remoteAddr = "10.0.0.1:12345"
		ctx1.headers["X-Forwarded-For"] = "203.0.113.195, 70.41.3.18"
		ctx1.headers["User-Agent"] = testUserAgent
		mw(ctx1, func(_ huma.Context) {})
		key1 := capturedKey

		ctx2 := newMockHumaContext()
		ctx2.remoteAddr = "10.0.0.2:54321"
		ctx2.headers["X-Forwarded-For"] = "203.0.113.195"
		ctx2.headers["User-Agent"] = testUserAgent
		mw(ctx2, func(_ huma.Context) {})

		assert.Equal(t, key1, capturedKey, "should use first IP from X-Forwarded-For")
	})

	t.Run("falls back to X-Real-IP", func(t *testing.T) {
		var capturedKey string
		mw := middleware.RateLimiter(newTestAPI(), &capturingLimiter{allowed: true, capturedKey: &capturedKey}, zap.NewNop())

		ctx1 := newMockHumaContext()
		ctx1.remoteAddr = "10.0.0.1:12345"
		ctx1.headers["X-Real-IP"] = "203.0.113.100"
		ctx1.headers["User-Agent"] = testUserAgent
		mw(ctx1, func(_ huma.Context) {})
		key1 := capturedKey

		ctx2 := newMockHumaContext()
		ctx2.remoteAddr = "10.0.0.2:54321"
		ctx2.headers["X-Real-IP"] = "203.0.113.100"
		ctx2.headers["User-Agent"] = testUserAgent
		mw(ctx2, func(_ huma.Context) {})

		assert.Equal(t, key1, capturedKey, "should use X-Real-IP when present")
	})
}
