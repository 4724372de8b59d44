package payload

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	// KindNull is the JSON null literal. It is the zero Kind, so the zero
	// Value is null.
	KindNull Kind = iota

	// KindBool is a JSON boolean.
	KindBool

	// KindNumber is a JSON number, kept as its literal text.
	KindNumber

	// KindString is a JSON string.
	KindString

	// KindArray is an ordered JSON array.
	KindArray

	// KindObject is a JSON object with ordered members.
	KindObject
)

// String returns the lower-case JSON type name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Member is a single key/value pair of an object Value.
type Member struct {
	Key   string
	Value Value
}

// Value is an immutable JSON value. Exactly one of the variant fields is
// meaningful, selected by kind. Objects keep their members in the order
// they were built or parsed; Canonicalize is what imposes sorted order.
type Value struct {
	kind    Kind
	boolean bool
	text    string // number literal or string contents
	items   []Value
	members []Member
}

// Null returns the JSON null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, boolean: b} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, text: s} }

// Int returns a number value for an integer.
func Int(n int64) Value { return Value{kind: KindNumber, text: strconv.FormatInt(n, 10)} }

// Float returns a number value for a float in its shortest round-trip
// form. NaN and infinities have no JSON form and become null, as
// JSON.stringify does.
func Float(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Null()
	}

	return Value{kind: KindNumber, text: strconv.FormatFloat(f, 'g', -1, 64)}
}

// Number returns a number value from its JSON literal text. The literal
// is validated; ErrInvalidNumber is returned for anything json.Valid
// would reject as a bare number.
func Number(literal string) (Value, error) {
	if !isNumberLiteral(literal) {
		return Value{}, ErrInvalidNumber
	}

	return Value{kind: KindNumber, text: literal}, nil
}

// Array returns an array value holding items in order.
func Array(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)

	return Value{kind: KindArray, items: cp}
}

// Object returns an object value holding members in the given order.
// A repeated key keeps its first position and takes the last value.
func Object(members ...Member) Value {
	out := make([]Member, 0, len(members))
	index := make(map[string]int, len(members))

	for _, m := range members {
		if i, ok := index[m.Key]; ok {
			out[i].Value = m.Value
			continue
		}

		index[m.Key] = len(out)
		out = append(out, m)
	}

	return Value{kind: KindObject, members: out}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is JSON null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Boolean returns the boolean held by v. It is false for non-bool kinds.
func (v Value) Boolean() bool { return v.kind == KindBool && v.boolean }

// Str returns the contents of a string value, or "" for other kinds.
func (v Value) Str() string {
	if v.kind != KindString {
		return ""
	}

	return v.text
}

// NumberText returns the literal text of a number value, or "" for other
// kinds.
func (v Value) NumberText() string {
	if v.kind != KindNumber {
		return ""
	}

	return v.text
}

// Len returns the number of array items or object members.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.items)
	case KindObject:
		return len(v.members)
	default:
		return 0
	}
}

// Index returns the i-th array item. It returns null when v is not an
// array or i is out of range.
func (v Value) Index(i int) Value {
	if v.kind != KindArray || i < 0 || i >= len(v.items) {
		return Null()
	}

	return v.items[i]
}

// Get returns the member value stored under key and whether it exists.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindObject {
		return Null(), false
	}

	for _, m := range v.members {
		if m.Key == key {
			return m.Value, true
		}
	}

	return Null(), false
}

// Keys returns the object keys in member order.
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}

	keys := make([]string, len(v.members))
	for i, m := range v.members {
		keys[i] = m.Key
	}

	return keys
}

// Members returns a copy of the object members in order.
func (v Value) Members() []Member {
	if v.kind != KindObject {
		return nil
	}

	out := make([]Member, len(v.members))
	copy(out, v.members)

	return out
}

// Items returns a copy of the array items in order.
func (v Value) Items() []Value {
	if v.kind != KindArray {
		return nil
	}

	out := make([]Value, len(v.items))
	copy(out, v.items)

	return out
}

// MarshalJSON encodes v with object members in their stored order.
// HTML characters are not escaped, matching what JSON.stringify emits.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// UnmarshalJSON decodes JSON into v, keeping object member order.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}

	*v = parsed

	return nil
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.boolean))
	case KindNumber:
		buf.WriteString(v.text)
	case KindString:
		return encodeString(buf, v.text)
	case KindArray:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}

			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				buf.WriteByte(',')
			}

			if err := encodeString(buf, m.Key); err != nil {
				return err
			}

			buf.WriteByte(':')

			if err := m.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return ErrUnsupported
	}

	return nil
}

func encodeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer

	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(s); err != nil {
		return err
	}

	// json.Encoder terminates every value with a newline.
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte{'\n'}))

	return nil
}

func isNumberLiteral(s string) bool {
	if s == "" {
		return false
	}

	var n json.Number
	if err := json.Unmarshal([]byte(s), &n); err != nil {
		return false
	}

	return string(n) == s
}
