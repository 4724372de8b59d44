package rdsig

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/vitalvas/rentdynamics/payload"
	"golang.org/x/net/http/httpguts"
)

// Header names of the signature scheme. Their casing is part of the wire
// contract and is preserved by HeaderSet.Apply.
const (
	HeaderAuthorization = "Authorization"
	HeaderAPIKey        = "x-rd-api-key"
	HeaderAPINonce      = "x-rd-api-nonce"
	HeaderTimestamp     = "x-rd-timestamp"
	HeaderContentType   = "Content-Type"
)

// ContentTypeJSON is the Content-Type sent with every signed request.
const ContentTypeJSON = "application/json"

// authScheme prefixes the session token in the Authorization header.
const authScheme = "TOKEN "

// HeaderSet is the set of headers produced for one request. It is empty,
// not partially filled, when the API key or secret is missing.
type HeaderSet map[string]string

// Apply copies the headers into h, keeping the exact key casing instead
// of canonicalizing it. Existing values under any casing are replaced.
func (hs HeaderSet) Apply(h http.Header) {
	for k, v := range hs {
		h.Del(k)
		h[k] = []string{v}
	}
}

// SignerConfig configures a Signer.
type SignerConfig struct {
	// Credentials supplies the API key, secret and auth token. Required.
	Credentials CredentialSource

	// Crypto computes HMACs and digests. Defaults to SHA1.
	Crypto Crypto

	// Now returns the current time for x-rd-timestamp. Defaults to
	// time.Now.
	Now func() time.Time

	// PathPrefix is removed from request paths before signing in
	// SignRequest, for base URLs that carry a path of their own.
	PathPrefix string
}

// Signer computes request nonces and assembles signature headers.
// A Signer holds no mutable state and is safe for concurrent use.
type Signer struct {
	creds      CredentialSource
	crypto     Crypto
	now        func() time.Time
	pathPrefix string
}

// NewSigner returns a Signer for cfg. It returns ErrNoCredentials if
// cfg.Credentials is nil.
func NewSigner(cfg SignerConfig) (*Signer, error) {
	if cfg.Credentials == nil {
		return nil, ErrNoCredentials
	}

	c := cfg.Crypto
	if c == nil {
		c = SHA1{}
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Signer{
		creds:      cfg.Credentials,
		crypto:     c,
		now:        now,
		pathPrefix: cfg.PathPrefix,
	}, nil
}

// Nonce returns the hex HMAC of timestamp, url and payloadJSON under the
// configured secret key. url is encoded with SigningURL first.
// payloadJSON is appended verbatim; pass nil to sign without a payload.
//
// When no secret key is configured Nonce returns "" without hashing.
func (s *Signer) Nonce(ctx context.Context, timestamp int64, url string, payloadJSON []byte) (string, error) {
	secret := s.creds.Credentials().APISecretKey
	if secret == "" {
		return "", nil
	}

	return computeNonce(ctx, s.crypto, secret, timestamp, SigningURL(url), payloadJSON)
}

// Headers returns the signature headers for a call to endpoint. When body
// is non-nil it is canonicalized and its JSON is covered by the nonce;
// pass nil for requests without a body. endpoint should include the
// query string, if any.
//
// The result is empty unless both the API key and secret are configured.
func (s *Signer) Headers(ctx context.Context, endpoint string, body any) (HeaderSet, error) {
	creds := s.creds.Credentials()
	if !creds.CanSign() {
		return HeaderSet{}, nil
	}

	var payloadJSON []byte
	if body != nil {
		var err error

		payloadJSON, err = payload.CanonicalJSON(body)
		if err != nil {
			return nil, err
		}
	}

	return s.headers(ctx, creds, SigningURL(endpoint), payloadJSON)
}

// SignRequest adds signature headers to r in place. The signed URL is
// r's escaped path (less PathPrefix) and raw query; a non-empty body is
// read, canonicalized and restored so it can be sent afterwards.
func (s *Signer) SignRequest(r *http.Request) error {
	creds := s.creds.Credentials()
	if !creds.CanSign() {
		return nil
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

	headers, err := s.headers(r.Context(), creds, requestSigningURL(r.URL, s.pathPrefix), payloadJSON)
	if err != nil {
		return err
	}

	headers.Apply(r.Header)

	return nil
}

// EncryptPassword returns the hex digest of password using the signer's
// Crypto.
func (s *Signer) EncryptPassword(ctx context.Context, password string) (string, error) {
	return EncryptPassword(ctx, s.crypto, password)
}

func (s *Signer) headers(ctx context.Context, creds Credentials, signingURL string, payloadJSON []byte) (HeaderSet, error) {
	if !httpguts.ValidHeaderFieldValue(creds.APIKey) {
		return nil, fmt.Errorf("%w: api key", ErrInvalidHeaderValue)
	}

	if !httpguts.ValidHeaderFieldValue(creds.AuthToken) {
		return nil, fmt.Errorf("%w: auth token", ErrInvalidHeaderValue)
	}

	timestamp := s.now().UnixMilli()

	nonce, err := computeNonce(ctx, s.crypto, creds.APISecretKey, timestamp, signingURL, payloadJSON)
	if err != nil {
		return nil, err
	}

	headers := HeaderSet{
		HeaderAPIKey:      creds.APIKey,
		HeaderAPINonce:    nonce,
		HeaderTimestamp:   strconv.FormatInt(timestamp, 10),
		HeaderContentType: ContentTypeJSON,
	}

	if creds.AuthToken != "" {
		headers[HeaderAuthorization] = authScheme + creds.AuthToken
	}

	return headers, nil
}

// computeNonce signs timestamp + signingURL + payloadJSON. signingURL must
// already be in signing form.
func computeNonce(ctx context.Context, c Crypto, secret string, timestamp int64, signingURL string, payloadJSON []byte) (string, error) {
	ts := strconv.FormatInt(timestamp, 10)

	msg := make([]byte, 0, len(ts)+len(signingURL)+len(payloadJSON))
	msg = append(msg, ts...)
	msg = append(msg, signingURL...)
	msg = append(msg, payloadJSON...)

	sig, err := c.HMAC(ctx, []byte(secret), msg)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(sig), nil
}
