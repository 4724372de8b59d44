package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// maxDepth bounds nesting while decoding, the same limit encoding/json
// applies.
const maxDepth = 10000

// Parse decodes a single JSON document into a Value. Object members keep
// their document order and numbers keep their literal text. A key that
// appears twice keeps its first position and its last value, as
// JSON.parse does.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec, 0)
	if err != nil {
		if errors.Is(err, ErrTooDeep) {
			return Value{}, err
		}

		return Value{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, fmt.Errorf("%w: trailing data after value", ErrMalformed)
	}

	return v, nil
}

// From converts a Go value into a Value. Anything encoding/json can
// marshal is accepted: structs honour their json tags, maps come out with
// sorted keys. Value, *Value and json.RawMessage are taken as-is.
//
// Values json.Marshal rejects (cycles, channels, functions, NaN) return
// an error wrapping ErrUnsupported.
func From(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case *Value:
		if t == nil {
			return Null(), nil
		}

		return *t, nil
	case json.RawMessage:
		return Parse(t)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %w", ErrUnsupported, err)
	}

	return Parse(data)
}

func decodeValue(dec *json.Decoder, depth int) (Value, error) {
	if depth > maxDepth {
		return Value{}, ErrTooDeep
	}

	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}

	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		return Value{kind: KindNumber, text: string(t)}, nil
	case string:
		return String(t), nil
	case json.Delim:
		switch t {
		case '[':
			return decodeArray(dec, depth)
		case '{':
			return decodeObject(dec, depth)
		}
	}

	return Value{}, fmt.Errorf("unexpected token %v", tok)
}

func decodeArray(dec *json.Decoder, depth int) (Value, error) {
	items := make([]Value, 0)

	for dec.More() {
		item, err := decodeValue(dec, depth+1)
		if err != nil {
			return Value{}, err
		}

		items = append(items, item)
	}

	// Closing bracket.
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}

	return Value{kind: KindArray, items: items}, nil
}

func decodeObject(dec *json.Decoder, depth int) (Value, error) {
	members := make([]Member, 0)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}

		key, ok := tok.(string)
		if !ok {
			return Value{}, fmt.Errorf("object key is %T, not string", tok)
		}

		val, err := decodeValue(dec, depth+1)
		if err != nil {
			return Value{}, err
		}

		members = append(members, Member{Key: key, Value: val})
	}

	// Closing brace.
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}

	return Object(members...), nil
}
