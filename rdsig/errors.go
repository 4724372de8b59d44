package rdsig

import "errors"

// Signing errors.
var (
	// ErrNoCredentials is returned when SignerConfig has no credential
	// source configured.
	ErrNoCredentials = errors.New("rdsig: credential source must not be nil")

	// ErrInvalidHeaderValue is returned when a credential cannot be sent
	// as an HTTP header value, for example because it contains a newline.
	ErrInvalidHeaderValue = errors.New("rdsig: invalid header value")
)

// Verification errors.
var (
	// ErrNoResolver is returned when VerifyConfig has no KeyResolver
	// configured.
	ErrNoResolver = errors.New("rdsig: key resolver must not be nil")

	// ErrSignatureNotFound is returned when the request carries no API key
	// or nonce header.
	ErrSignatureNotFound = errors.New("rdsig: signature not found")

	// ErrSignatureInvalid is returned when the nonce does not match the
	// request.
	ErrSignatureInvalid = errors.New("rdsig: signature verification failed")

	// ErrSignatureExpired is returned when the request timestamp is
	// outside the allowed window.
	ErrSignatureExpired = errors.New("rdsig: signature expired")

	// ErrMalformedHeader is returned when the timestamp header is not a
	// decimal integer.
	ErrMalformedHeader = errors.New("rdsig: malformed signature header")

	// ErrMalformedBody is returned when a request body cannot be
	// canonicalized for verification.
	ErrMalformedBody = errors.New("rdsig: malformed request body")
)

// Key material errors.
var (
	// ErrInvalidKey is returned when a resolver yields an empty secret.
	ErrInvalidKey = errors.New("rdsig: invalid key material")
)
