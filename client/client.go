package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/vitalvas/rentdynamics/payload"
	"github.com/vitalvas/rentdynamics/query"
	"github.com/vitalvas/rentdynamics/rdsig"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/http/httpguts"
	"golang.org/x/time/rate"
)

const tracerName = "github.com/vitalvas/rentdynamics/client"

// Client issues signed calls against the Rent Dynamics API. It is safe
// for concurrent use; the auth token is the only mutable state.
type Client struct {
	cfg     Config
	baseURL string
	signer  *rdsig.Signer

	httpClient     *http.Client
	logger         *slog.Logger
	tracerProvider trace.TracerProvider
	tracer         trace.Tracer
	limiter        *rate.Limiter
	now            func() time.Time
	crypto         rdsig.Crypto

	baseURLOverride string
	requestIDHeader string

	mu        sync.RWMutex
	authToken string
}

// New returns a Client for cfg.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		cfg:       cfg,
		authToken: cfg.AuthToken,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.requestIDHeader != "" && !httpguts.ValidHeaderFieldName(c.requestIDHeader) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidHeaderName, c.requestIDHeader)
	}

	if c.httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}

		c.httpClient = &http.Client{Timeout: timeout}
	}

	if c.logger == nil {
		c.logger = slog.Default().With("component", "rentdynamics")
	}

	if c.tracerProvider == nil {
		c.tracerProvider = otel.GetTracerProvider()
	}

	c.tracer = c.tracerProvider.Tracer(tracerName)

	if c.limiter == nil && cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst == 0 {
			burst = 1
		}

		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	c.baseURL = cfg.ResolveBaseURL()
	if c.baseURLOverride != "" {
		c.baseURL = strings.TrimRight(c.baseURLOverride, "/")
	}

	signer, err := rdsig.NewSigner(rdsig.SignerConfig{
		Credentials: c,
		Crypto:      c.crypto,
		Now:         c.now,
	})
	if err != nil {
		return nil, err
	}

	c.signer = signer

	return c, nil
}

// BaseURL returns the API root calls are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Signer returns the signer the client computes headers with.
func (c *Client) Signer() *rdsig.Signer {
	return c.signer
}

// Credentials returns a snapshot of the signing credentials, including
// the current auth token. It makes Client an rdsig.CredentialSource.
func (c *Client) Credentials() rdsig.Credentials {
	creds := c.cfg.Credentials()
	creds.AuthToken = c.AuthToken()

	return creds
}

// AuthToken returns the session token, or "" when logged out.
func (c *Client) AuthToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.authToken
}

// SetAuthToken replaces the session token. An empty token removes the
// Authorization header from later calls.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	c.authToken = token
	c.mu.Unlock()
}

// Get calls endpoint with the query string built from opts. The nonce
// covers the endpoint and query; the URL on the wire has '|' escaped.
func (c *Client) Get(ctx context.Context, endpoint string, opts query.Options) (*http.Response, error) {
	return c.do(ctx, http.MethodGet, endpoint+query.Stringify(opts), nil)
}

// Put sends body as JSON to endpoint. A nil body sends no payload.
func (c *Client) Put(ctx context.Context, endpoint string, body any) (*http.Response, error) {
	return c.do(ctx, http.MethodPut, endpoint, body)
}

// Post sends body as JSON to endpoint. A nil body sends no payload.
func (c *Client) Post(ctx context.Context, endpoint string, body any) (*http.Response, error) {
	return c.do(ctx, http.MethodPost, endpoint, body)
}

// Delete calls endpoint without a body.
func (c *Client) Delete(ctx context.Context, endpoint string) (*http.Response, error) {
	return c.do(ctx, http.MethodDelete, endpoint, nil)
}

// EncryptPassword returns the hex SHA-1 digest the API expects in place
// of a plain-text password.
func (c *Client) EncryptPassword(ctx context.Context, password string) (string, error) {
	return c.signer.EncryptPassword(ctx, password)
}

// do runs one call inside a client span. Responses of any status are
// returned with a nil error; the caller owns the body.
func (c *Client) do(ctx context.Context, method, endpoint string, body any) (*http.Response, error) {
	path, _, _ := strings.Cut(endpoint, "?")

	ctx, span := c.tracer.Start(ctx, "rentdynamics "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("rentdynamics.endpoint", path),
		),
	)
	defer span.End()

	start := time.Now()

	resp, err := c.send(ctx, method, endpoint, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		c.logger.DebugContext(ctx, "request failed",
			"method", method,
			"endpoint", path,
			"error", err,
		)

		return nil, err
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, resp.Status)
	}

	c.logger.DebugContext(ctx, "request",
		"method", method,
		"endpoint", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	return resp, nil
}

func (c *Client) send(ctx context.Context, method, endpoint string, body any) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var (
		reader   io.Reader
		signBody any
	)

	if body != nil {
		raw, err := encodeBody(body)
		if err != nil {
			return nil, err
		}

		reader = bytes.NewReader(raw)
		signBody = json.RawMessage(raw)
	}

	headers, err := c.signer.Headers(ctx, endpoint, signBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+rdsig.EncodeURI(endpoint), reader)
	if err != nil {
		return nil, err
	}

	headers.Apply(req.Header)

	if c.requestIDHeader != "" {
		id, err := newRequestID()
		if err != nil {
			return nil, err
		}

		req.Header.Set(c.requestIDHeader, id)
	}

	return c.httpClient.Do(req)
}

// encodeBody marshals the wire body. HTML characters are left unescaped
// so the body matches what JSON.stringify would send.
func encodeBody(body any) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(body); err != nil {
		return nil, fmt.Errorf("%w: %w", payload.ErrUnsupported, err)
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
