package client

import "errors"

// Configuration errors.
var (
	// ErrInvalidConfig is returned by New and LoadConfig when a
	// configuration value is out of range.
	ErrInvalidConfig = errors.New("client: invalid configuration")

	// ErrInvalidTokenFormat is returned for a token_format other than
	// "text" or "json".
	ErrInvalidTokenFormat = errors.New("client: invalid token format")

	// ErrInvalidHeaderName is returned when WithRequestIDHeader is given a
	// name that is not a valid HTTP header field name.
	ErrInvalidHeaderName = errors.New("client: invalid header name")
)

// Session errors.
var (
	// ErrInvalidToken is returned by Login when a successful response does
	// not carry a usable auth token. The stored token is left unchanged.
	ErrInvalidToken = errors.New("client: invalid auth token in login response")
)
