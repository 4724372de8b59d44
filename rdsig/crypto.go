package rdsig

import (
	"context"
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // the API's signature scheme is fixed to SHA-1
	"encoding/hex"
)

// Crypto provides the keyed-hash and digest primitives used for signing.
// Implementations may call out to an HSM or remote provider, so both
// methods take a context and can fail.
type Crypto interface {
	// HMAC returns the keyed hash of message under key.
	HMAC(ctx context.Context, key, message []byte) ([]byte, error)

	// Digest returns the hash of data.
	Digest(ctx context.Context, data []byte) ([]byte, error)
}

// SHA1 implements Crypto with HMAC-SHA1 and SHA-1 from the standard
// library. It is the scheme the API expects and the default everywhere a
// Crypto is optional.
type SHA1 struct{}

// HMAC returns HMAC-SHA1(key, message).
func (SHA1) HMAC(ctx context.Context, key, message []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h := hmac.New(sha1.New, key)
	h.Write(message)

	return h.Sum(nil), nil
}

// Digest returns SHA-1(data).
func (SHA1) Digest(ctx context.Context, data []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sum := sha1.Sum(data) //nolint:gosec // fixed by the API

	return sum[:], nil
}

// EncryptPassword returns the lower-case hex digest of password. The
// login endpoint expects this transform instead of the plain password; it
// is obfuscation, not password storage.
func EncryptPassword(ctx context.Context, c Crypto, password string) (string, error) {
	if c == nil {
		c = SHA1{}
	}

	sum, err := c.Digest(ctx, []byte(password))
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(sum), nil
}
