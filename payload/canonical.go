package payload

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf16"

	"github.com/gowebpki/jcs"
)

// Canonicalize returns the canonical form of v:
//
//   - object members are sorted by key in ascending order;
//   - every space character is removed from string values;
//   - arrays keep their order, with each item canonicalized;
//   - numbers, booleans and null are returned unchanged.
//
// The result is a new Value; v is not modified. Canonicalize is
// idempotent.
func Canonicalize(v Value) Value {
	switch v.kind {
	case KindString:
		return String(stripSpaces(v.text))
	case KindArray:
		items := make([]Value, len(v.items))
		for i, item := range v.items {
			items[i] = Canonicalize(item)
		}

		return Value{kind: KindArray, items: items}
	case KindObject:
		members := make([]Member, len(v.members))
		for i, m := range v.members {
			members[i] = Member{Key: m.Key, Value: Canonicalize(m.Value)}
		}

		slices.SortFunc(members, func(a, b Member) int {
			return compareKeys(a.Key, b.Key)
		})

		return Value{kind: KindObject, members: members}
	default:
		return v
	}
}

// CanonicalJSON converts v with From, canonicalizes it and serializes the
// result the way JSON.stringify would: no insignificant whitespace,
// ECMAScript number formatting and minimal string escaping (RFC 8785).
// This is the exact byte sequence the request signature covers.
func CanonicalJSON(v any) ([]byte, error) {
	val, err := From(v)
	if err != nil {
		return nil, err
	}

	raw, err := Canonicalize(val).MarshalJSON()
	if err != nil {
		return nil, err
	}

	// The transform only accepts an object or array at the top level, so
	// the value is wrapped in a one-element array and unwrapped after.
	wrapped := make([]byte, 0, len(raw)+2)
	wrapped = append(wrapped, '[')
	wrapped = append(wrapped, raw...)
	wrapped = append(wrapped, ']')

	out, err := jcs.Transform(wrapped)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupported, err)
	}

	if len(out) < 2 || out[0] != '[' || out[len(out)-1] != ']' {
		return nil, fmt.Errorf("%w: unexpected canonical form", ErrUnsupported)
	}

	return out[1 : len(out)-1], nil
}

// Equal reports whether a and b canonicalize to the same JSON.
func Equal(a, b any) (bool, error) {
	ca, err := CanonicalJSON(a)
	if err != nil {
		return false, err
	}

	cb, err := CanonicalJSON(b)
	if err != nil {
		return false, err
	}

	return string(ca) == string(cb), nil
}

func stripSpaces(s string) string {
	if !strings.Contains(s, " ") {
		return s
	}

	return strings.ReplaceAll(s, " ", "")
}

// compareKeys orders keys by UTF-16 code units, which is how both
// Array.prototype.sort and RFC 8785 compare strings. For keys made only of
// BMP characters this matches plain byte order.
func compareKeys(a, b string) int {
	if isBMPOnly(a) && isBMPOnly(b) {
		return strings.Compare(a, b)
	}

	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}

func isBMPOnly(s string) bool {
	for _, r := range s {
		if r > 0xFFFF {
			return false
		}
	}

	return true
}
