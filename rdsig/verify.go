package rdsig

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vitalvas/rentdynamics/payload"
)

// KeyResolver returns the secret key for an API key. It is called during
// request verification. The request is provided for context (e.g., to
// select keys per tenant or host).
type KeyResolver func(r *http.Request, apiKey string) (secret string, err error)

// VerifyConfig configures server-side nonce verification.
type VerifyConfig struct {
	// Resolver looks up the secret for the x-rd-api-key value. Required.
	Resolver KeyResolver

	// MaxAge bounds the difference between x-rd-timestamp and the server
	// clock, in either direction. Zero disables the check.
	MaxAge time.Duration

	// PathPrefix is removed from the request path before the nonce is
	// recomputed, for APIs mounted below the root.
	PathPrefix string

	// Crypto computes the HMAC. Defaults to SHA1.
	Crypto Crypto

	// Now returns the server time for MaxAge checks. Defaults to
	// time.Now.
	Now func() time.Time
}

// VerifyRequest checks the x-rd-api-nonce header of r against a nonce
// recomputed from x-rd-timestamp, the request URI and the canonicalized
// body. The body is restored after reading.
func VerifyRequest(r *http.Request, cfg VerifyConfig) error {
	if cfg.Resolver == nil {
		return ErrNoResolver
	}

	apiKey := r.Header.Get(HeaderAPIKey)
	nonce := r.Header.Get(HeaderAPINonce)
	if apiKey == "" || nonce == "" {
		return ErrSignatureNotFound
	}

	timestamp, err := strconv.ParseInt(r.Header.Get(HeaderTimestamp), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrMalformedHeader, HeaderTimestamp)
	}

	// Check request age.
	if cfg.MaxAge > 0 {
		now := time.Now
		if cfg.Now != nil {
			now = cfg.Now
		}

		age := now().Sub(time.UnixMilli(timestamp))
		if age > cfg.MaxAge || age < -cfg.MaxAge {
			return ErrSignatureExpired
		}
	}

	secret, err := cfg.Resolver(r, apiKey)
	if err != nil {
		return err
	}

	if secret == "" {
		return ErrInvalidKey
	}

	body, err := readAndRestoreBody(r)
	if err != nil {
		return err
	}

	var payloadJSON []byte
	if len(body) > 0 {
		payloadJSON, err = payload.CanonicalJSON(json.RawMessage(body))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrMalformedBody, err)
		}
	}

	c := cfg.Crypto
	if c == nil {
		c = SHA1{}
	}

	expected, err := computeNonce(r.Context(), c, secret, timestamp, requestSigningURL(r.URL, cfg.PathPrefix), payloadJSON)
	if err != nil {
		return err
	}

	if subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(nonce))) != 1 {
		return ErrSignatureInvalid
	}

	return nil
}

// AuthToken returns the session token from an "Authorization: TOKEN x"
// header, or "" when the header is absent or uses another scheme.
func AuthToken(r *http.Request) string {
	v := r.Header.Get(HeaderAuthorization)
	if len(v) <= len(authScheme) || !strings.EqualFold(v[:len(authScheme)], authScheme) {
		return ""
	}

	return strings.TrimSpace(v[len(authScheme):])
}
