package client

import "github.com/google/uuid"

// newRequestID returns a time-ordered UUIDv7 string.
func newRequestID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}

	return id.String(), nil
}
