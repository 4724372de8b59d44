package query

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Filters maps a field name to its filter value. A value is a scalar, a
// slice of scalars (rendered as field__in), or nested Filters (rendered
// as field__subkey).
type Filters map[string]any

// Options are the query parameters understood by the API.
type Options struct {
	// Filters narrows the result set. Rendered as a single filters=
	// segment with terms joined by '|'.
	Filters Filters `json:"filters,omitempty" yaml:"filters,omitempty"`

	// Include lists related resources to embed.
	Include []string `json:"include,omitempty" yaml:"include,omitempty"`

	// Exclude lists fields to leave out.
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`

	// Fields restricts the returned fields.
	Fields []string `json:"fields,omitempty" yaml:"fields,omitempty"`

	// OrderBy names the sort field, e.g. "-createdAt".
	OrderBy string `json:"orderBy,omitempty" yaml:"order_by,omitempty"`

	// Page is the 1-based page number. Zero is omitted.
	Page int `json:"page,omitempty" yaml:"page,omitempty"`

	// PageSize is the number of items per page. Zero is omitted.
	PageSize int `json:"pageSize,omitempty" yaml:"page_size,omitempty"`

	// Distinct requests de-duplicated results. Only true is sent.
	Distinct bool `json:"distinct,omitempty" yaml:"distinct,omitempty"`
}

// Stringify renders o as a query string. The result is either empty or
// starts with '?'. Segments appear in a fixed order: filters, include,
// exclude, fields, orderBy, page, pageSize, distinct.
//
// Values are not percent-encoded; the signer and the transport handle
// encoding.
func Stringify(o Options) string {
	segments := make([]string, 0, 8)

	if f := FilterString(o.Filters); f != "" {
		segments = append(segments, "filters="+f)
	}

	if len(o.Include) > 0 {
		segments = append(segments, "include="+strings.Join(o.Include, ","))
	}

	if len(o.Exclude) > 0 {
		segments = append(segments, "exclude="+strings.Join(o.Exclude, ","))
	}

	if len(o.Fields) > 0 {
		segments = append(segments, "fields="+strings.Join(o.Fields, ","))
	}

	if o.OrderBy != "" {
		segments = append(segments, "orderBy="+o.OrderBy)
	}

	if o.Page != 0 {
		segments = append(segments, "page="+strconv.Itoa(o.Page))
	}

	if o.PageSize != 0 {
		segments = append(segments, "pageSize="+strconv.Itoa(o.PageSize))
	}

	if o.Distinct {
		segments = append(segments, "distinct=true")
	}

	if len(segments) == 0 {
		return ""
	}

	return "?" + strings.Join(segments, "&")
}

// FilterString flattens f into the filter dialect: field=value,
// field__in=a,b,c and field__sub=value terms joined by '|'. Fields are
// visited in ascending key order. Nil values, empty strings, empty
// slices and empty nested filters produce no term.
func FilterString(f Filters) string {
	if len(f) == 0 {
		return ""
	}

	return strings.Join(flattenMap(reflect.ValueOf(map[string]any(f)), "", false), "|")
}

func flattenMap(m reflect.Value, prefix string, nested bool) []string {
	keys := make([]string, 0, m.Len())
	byKey := make(map[string]reflect.Value, m.Len())

	iter := m.MapRange()
	for iter.Next() {
		k := fmt.Sprint(iter.Key().Interface())
		keys = append(keys, k)
		byKey[k] = iter.Value()
	}

	slices.Sort(keys)

	terms := make([]string, 0, len(keys))
	for _, k := range keys {
		name := k
		if nested {
			name = prefix + "__" + k
		}

		if sub := flattenTerm(name, byKey[k]); len(sub) > 0 {
			terms = append(terms, strings.Join(sub, "|"))
		}
	}

	return terms
}

func flattenTerm(key string, v reflect.Value) []string {
	v, ok := indirect(v)
	if !ok {
		return nil
	}

	// json.Number and []byte are scalars despite their kinds.
	switch v.Interface().(type) {
	case json.Number, []byte, json.RawMessage:
		if s := scalarString(v); s != "" {
			return []string{key + "=" + s}
		}

		return nil
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			return nil
		}

		return []string{key + "__in=" + joinList(v)}
	case reflect.Map:
		if v.Len() == 0 {
			return nil
		}

		return flattenMap(v, key, true)
	}

	s := scalarString(v)
	if s == "" {
		return nil
	}

	return []string{key + "=" + s}
}

// joinList renders a list the way Array.prototype.join(",") does: nil
// elements become empty strings and nested lists are flattened.
func joinList(v reflect.Value) string {
	parts := make([]string, v.Len())

	for i := 0; i < v.Len(); i++ {
		item, ok := indirect(v.Index(i))
		if !ok {
			continue
		}

		if k := item.Kind(); (k == reflect.Slice || k == reflect.Array) && !isByteSlice(item) {
			parts[i] = joinList(item)
			continue
		}

		parts[i] = scalarString(item)
	}

	return strings.Join(parts, ",")
}

// indirect unwraps interfaces and pointers. It reports false for nil.
func indirect(v reflect.Value) (reflect.Value, bool) {
	for v.IsValid() && (v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer) {
		if v.IsNil() {
			return reflect.Value{}, false
		}

		v = v.Elem()
	}

	if !v.IsValid() {
		return reflect.Value{}, false
	}

	if (v.Kind() == reflect.Slice || v.Kind() == reflect.Map) && v.IsNil() {
		return reflect.Value{}, false
	}

	return v, true
}

func isByteSlice(v reflect.Value) bool {
	return v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8
}

func scalarString(v reflect.Value) string {
	if v.CanInterface() {
		switch t := v.Interface().(type) {
		case json.Number:
			return t.String()
		case json.RawMessage:
			return string(t)
		case []byte:
			return string(t)
		case fmt.Stringer:
			return t.String()
		}
	}

	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32:
		return formatFloat(v.Float(), 32)
	case reflect.Float64:
		return formatFloat(v.Float(), 64)
	default:
		return fmt.Sprint(v.Interface())
	}
}

// formatFloat renders floats as JavaScript does in template strings:
// integral values without a fraction, others in shortest form.
func formatFloat(f float64, bits int) string {
	switch {
	case f == 0:
		return "0"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}

	return strconv.FormatFloat(f, 'f', -1, bits)
}
