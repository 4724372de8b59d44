package payload

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("scalars", func(t *testing.T) {
		tests := []struct {
			in   string
			kind Kind
		}{
			{`null`, KindNull},
			{`true`, KindBool},
			{`-1.25e3`, KindNumber},
			{`"text"`, KindString},
			{`[]`, KindArray},
			{`{}`, KindObject},
		}

		for _, tt := range tests {
			v, err := Parse([]byte(tt.in))
			require.NoError(t, err, tt.in)
			assert.Equal(t, tt.kind, v.Kind(), tt.in)
		}
	})

	t.Run("number literal preserved", func(t *testing.T) {
		v, err := Parse([]byte(`12345678901234567890`))
		require.NoError(t, err)
		assert.Equal(t, "12345678901234567890", v.NumberText())
	})

	t.Run("member order preserved", func(t *testing.T) {
		v, err := Parse([]byte(`{"orange": 5, "blue": [1, 5, 2], "apple": {"z": null, "y": "a b"}}`))
		require.NoError(t, err)

		assert.Equal(t, []string{"orange", "blue", "apple"}, v.Keys())

		apple, ok := v.Get("apple")
		require.True(t, ok)
		assert.Equal(t, []string{"z", "y"}, apple.Keys())

		blue, ok := v.Get("blue")
		require.True(t, ok)
		assert.Equal(t, 3, blue.Len())
		assert.Equal(t, "2", blue.Index(2).NumberText())
	})

	t.Run("duplicate key keeps first position and last value", func(t *testing.T) {
		v, err := Parse([]byte(`{"a":1,"b":2,"a":3}`))
		require.NoError(t, err)

		assert.Equal(t, []string{"a", "b"}, v.Keys())

		a, _ := v.Get("a")
		assert.Equal(t, "3", a.NumberText())
	})

	t.Run("malformed", func(t *testing.T) {
		for _, in := range []string{``, `{`, `[1,]`, `{"a" 1}`, `tru`, `1 2`, `{} x`} {
			_, err := Parse([]byte(in))
			assert.ErrorIs(t, err, ErrMalformed, in)
		}
	})

	t.Run("too deep", func(t *testing.T) {
		deep := make([]byte, 0, 2*(maxDepth+2))
		for i := 0; i < maxDepth+2; i++ {
			deep = append(deep, '[')
		}
		for i := 0; i < maxDepth+2; i++ {
			deep = append(deep, ']')
		}

		_, err := Parse(deep)
		assert.ErrorIs(t, err, ErrTooDeep)
	})
}

func TestFrom(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		v, err := From(nil)
		require.NoError(t, err)
		assert.True(t, v.IsNull())
	})

	t.Run("value passthrough", func(t *testing.T) {
		in := Object(Member{Key: "z", Value: Int(1)}, Member{Key: "a", Value: Int(2)})

		v, err := From(in)
		require.NoError(t, err)
		assert.Equal(t, []string{"z", "a"}, v.Keys())

		v, err = From(&in)
		require.NoError(t, err)
		assert.Equal(t, []string{"z", "a"}, v.Keys())

		var nilPtr *Value
		v, err = From(nilPtr)
		require.NoError(t, err)
		assert.True(t, v.IsNull())
	})

	t.Run("raw message keeps order", func(t *testing.T) {
		v, err := From(json.RawMessage(`{"z":1,"a":2}`))
		require.NoError(t, err)
		assert.Equal(t, []string{"z", "a"}, v.Keys())
	})

	t.Run("struct uses json tags", func(t *testing.T) {
		type unit struct {
			Name     string `json:"name"`
			Floor    int    `json:"floor"`
			Occupied bool   `json:"occupied,omitempty"`
		}

		v, err := From(unit{Name: "Suite 4", Floor: 2})
		require.NoError(t, err)
		assert.Equal(t, []string{"name", "floor"}, v.Keys())
	})

	t.Run("cyclic map fails fast", func(t *testing.T) {
		m := map[string]any{}
		m["self"] = m

		_, err := From(m)
		assert.ErrorIs(t, err, ErrUnsupported)
	})

	t.Run("channel unsupported", func(t *testing.T) {
		_, err := From(map[string]any{"ch": make(chan int)})
		assert.ErrorIs(t, err, ErrUnsupported)
	})
}
