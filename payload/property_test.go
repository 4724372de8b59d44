package payload

import (
	"slices"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func canonicalString(t *testing.T, v Value) string {
	t.Helper()

	out, err := CanonicalJSON(v)
	if err != nil {
		t.Fatalf("canonical json: %v", err)
	}

	return string(out)
}

// genScalar yields null, booleans, integers, floats and strings.
func genScalar() gopter.Gen {
	return gen.OneGenOf(
		gen.Const(Null()),
		gen.Bool().Map(func(b bool) Value { return Bool(b) }),
		gen.Int64().Map(func(n int64) Value { return Int(n) }),
		gen.Float64Range(-1e9, 1e9).Map(func(f float64) Value { return Float(f) }),
		gen.AnyString().Map(func(s string) Value { return String(s) }),
		gen.Const(String("a  b c")),
	)
}

// genValue yields arbitrary JSON values nested up to depth levels.
func genValue(depth int) gopter.Gen {
	if depth == 0 {
		return genScalar()
	}

	child := genValue(depth - 1)

	member := gopter.CombineGens(gen.Identifier(), child).Map(func(vals []any) Member {
		return Member{Key: vals[0].(string), Value: vals[1].(Value)}
	})

	return gen.OneGenOf(
		genScalar(),
		gen.SliceOf(child).Map(func(items []Value) Value { return Array(items...) }),
		gen.SliceOf(member).Map(func(members []Member) Value { return Object(uniqueKeys(members)...) }),
	)
}

// uniqueKeys drops repeated keys so that member order cannot change which
// value a key ends up with.
func uniqueKeys(members []Member) []Member {
	seen := make(map[string]bool, len(members))
	out := members[:0:0]

	for _, m := range members {
		if seen[m.Key] {
			continue
		}

		seen[m.Key] = true
		out = append(out, m)
	}

	return out
}

// reverseMembers rebuilds v with every object's members in reverse order.
func reverseMembers(v Value) Value {
	switch v.Kind() {
	case KindArray:
		items := v.Items()
		for i, item := range items {
			items[i] = reverseMembers(item)
		}

		return Array(items...)
	case KindObject:
		members := v.Members()
		slices.Reverse(members)

		for i := range members {
			members[i].Value = reverseMembers(members[i].Value)
		}

		return Object(members...)
	default:
		return v
	}
}

func TestCanonicalizeProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.MaxSize = 6
	properties := gopter.NewProperties(parameters)

	properties.Property("canonicalize is idempotent", prop.ForAll(
		func(v Value) bool {
			once := Canonicalize(v)
			twice := Canonicalize(once)

			return canonicalString(t, once) == canonicalString(t, twice)
		},
		genValue(3),
	))

	properties.Property("key order does not matter", prop.ForAll(
		func(v Value) bool {
			return canonicalString(t, v) == canonicalString(t, reverseMembers(v))
		},
		genValue(3),
	))

	properties.Property("canonical json parses back to a fixed point", prop.ForAll(
		func(v Value) bool {
			out := canonicalString(t, v)

			parsed, err := Parse([]byte(out))
			if err != nil {
				return false
			}

			return canonicalString(t, parsed) == out
		},
		genValue(3),
	))

	properties.Property("strings never keep spaces", prop.ForAll(
		func(s string) bool {
			got := Canonicalize(Array(String(s))).Index(0).Str()

			return !strings.Contains(got, " ") && got == strings.ReplaceAll(s, " ", "")
		},
		gen.OneGenOf(gen.AnyString(), gen.Const("x  y  z"), gen.Const("   ")),
	))

	properties.Property("arrays keep length and order", prop.ForAll(
		func(nums []int64) bool {
			items := make([]Value, len(nums))
			for i, n := range nums {
				items[i] = Int(n)
			}

			c := Canonicalize(Array(items...))
			if c.Len() != len(nums) {
				return false
			}

			for i, n := range nums {
				if c.Index(i).NumberText() != Int(n).NumberText() {
					return false
				}
			}

			return true
		},
		gen.SliceOf(gen.Int64()),
	))

	properties.TestingRun(t)
}
