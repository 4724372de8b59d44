package client

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/vitalvas/rentdynamics/rdsig"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for calls. Config.Timeout is
// ignored when this option is given.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithTracerProvider sets the OpenTelemetry tracer provider. Defaults to
// the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) { c.tracerProvider = tp }
}

// WithRateLimit throttles calls to r per second with the given burst,
// overriding Config.RateLimit.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(r, burst) }
}

// WithClock sets the time source for x-rd-timestamp.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithCrypto sets the HMAC and digest provider. Defaults to rdsig.SHA1.
func WithCrypto(cr rdsig.Crypto) Option {
	return func(c *Client) { c.crypto = cr }
}

// WithBaseURL overrides the base URL derived from Config.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURLOverride = u }
}

// WithRequestIDHeader sends a fresh UUIDv7 under name with every call.
func WithRequestIDHeader(name string) Option {
	return func(c *Client) { c.requestIDHeader = name }
}
