package payload

import "errors"

var (
	// ErrUnsupported is returned when a Go value has no JSON form, for
	// example a cyclic map or a channel.
	ErrUnsupported = errors.New("payload: value cannot be represented as JSON")

	// ErrMalformed is returned when input bytes are not a single valid
	// JSON document.
	ErrMalformed = errors.New("payload: malformed JSON")

	// ErrInvalidNumber is returned by Number for text that is not a JSON
	// number literal.
	ErrInvalidNumber = errors.New("payload: invalid number literal")

	// ErrTooDeep is returned when a document nests deeper than the
	// decoder allows.
	ErrTooDeep = errors.New("payload: nesting too deep")
)
