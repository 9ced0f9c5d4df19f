package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_Constructors(t *testing.T) {
	assert.True(t, Null().IsNull())
	assert.True(t, Value{}.IsNull(), "zero value is null")

	s, ok := String("abc").AsString()
	assert.True(t, ok)
	assert.Equal(t, "abc", s)

	f, ok := Number(1.5).AsNumber()
	assert.True(t, ok)
	assert.Equal(t, 1.5, f)

	b, ok := Bool(true).AsBool()
	assert.True(t, ok)
	assert.True(t, b)

	assert.True(t, Number(math.NaN()).IsNull())
	assert.True(t, Number(math.Inf(1)).IsNull())
}

func TestValue_IsEmpty(t *testing.T) {
	assert.True(t, Null().IsEmpty())
	assert.True(t, String("").IsEmpty())
	assert.False(t, String(" ").IsEmpty())
	assert.False(t, Number(0).IsEmpty())
	assert.False(t, Bool(false).IsEmpty())
}

func TestValue_Text(t *testing.T) {
	assert.Equal(t, "", Null().Text())
	assert.Equal(t, "42", Number(42).Text())
	assert.Equal(t, "0.25", Number(0.25).Text())
	assert.Equal(t, "false", Bool(false).Text())
	assert.Equal(t, "x", String("x").Text())
}

func TestValue_JSON(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		json  string
	}{
		{"null", Null(), `null`},
		{"string", String("a<b>&c"), `"a<b>&c"`},
		{"integral number", Number(3), `3`},
		{"fractional number", Number(-2.75), `-2.75`},
		{"large number", Number(1e21), `1000000000000000000000`},
		{"bool", Bool(true), `true`},
		{"int beyond float precision", Int(9007199254740993), `9007199254740993`},
		{"uint", Uint(math.MaxUint64), `18446744073709551615`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.value.MarshalJSON()
			require.NoError(t, err)
			assert.Equal(t, tt.json, string(data))

			var got Value
			require.NoError(t, got.UnmarshalJSON(data))
			assert.True(t, got.Equal(tt.value), "got %v want %v", got, tt.value)
		})
	}
}

func TestParseNumber_KeepsIntegerDigits(t *testing.T) {
	a, ok := ParseNumber("9007199254740993")
	require.True(t, ok)
	b, ok := ParseNumber("9007199254740992")
	require.True(t, ok)
	assert.False(t, a.Equal(b), "integers differing past float64 precision stay distinct")
	assert.Equal(t, "9007199254740993", a.Text())

	i, ok := a.AsInt()
	require.True(t, ok)
	assert.Equal(t, int64(9007199254740993), i)

	huge, ok := ParseNumber("123456789012345678901234567890")
	require.True(t, ok)
	assert.Equal(t, "123456789012345678901234567890", huge.Text())
	_, ok = huge.AsInt()
	assert.False(t, ok, "out of int64 range")

	for in, want := range map[string]Value{"+5": Int(5), "007": Int(7), "1e3": Number(1000), "2.50": Number(2.5)} {
		got, ok := ParseNumber(in)
		require.True(t, ok, in)
		assert.True(t, got.Equal(want), "%q: got %v want %v", in, got, want)
	}
	for _, bad := range []string{"", "0x10", "1_000", "NaN", "1e999", "--1"} {
		_, ok := ParseNumber(bad)
		assert.False(t, ok, bad)
	}
}

func TestPayload_CanonicalDistinguishesLargeIntegers(t *testing.T) {
	var a, b Payload
	require.NoError(t, a.UnmarshalJSON([]byte(`{"id":12345678901234567}`)))
	require.NoError(t, b.UnmarshalJSON([]byte(`{"id":12345678901234568}`)))

	ca, err := a.Canonical()
	require.NoError(t, err)
	cb, err := b.Canonical()
	require.NoError(t, err)
	assert.Equal(t, `{"id":12345678901234567}`, string(ca))
	assert.NotEqual(t, ca, cb)
}

func TestValue_UnmarshalRejectsNested(t *testing.T) {
	var v Value
	assert.ErrorIs(t, v.UnmarshalJSON([]byte(`{"a":1}`)), ErrInvalidValue)
	assert.ErrorIs(t, v.UnmarshalJSON([]byte(`[1]`)), ErrInvalidValue)
	assert.ErrorIs(t, v.UnmarshalJSON([]byte(`nope`)), ErrInvalidValue)
}

func TestPayload_PreservesOrder(t *testing.T) {
	p := Payload{
		{Key: "b", Value: Number(1)},
		{Key: "a", Value: String("x")},
		{Key: "c", Value: Null()},
	}

	data, err := p.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"b":1,"a":"x","c":null}`, string(data))

	decoded, err := ParsePayload(string(data))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, decoded.Keys())
	assert.Equal(t, p, decoded)
}

func TestPayload_CanonicalIgnoresKeyOrder(t *testing.T) {
	p1 := Payload{{Key: "x", Value: Number(1)}, {Key: "y", Value: String("two")}}
	p2 := Payload{{Key: "y", Value: String("two")}, {Key: "x", Value: Number(1)}}

	c1, err := p1.Canonical()
	require.NoError(t, err)
	c2, err := p2.Canonical()
	require.NoError(t, err)

	assert.Equal(t, string(c1), string(c2))
	assert.Equal(t, `{"x":1,"y":"two"}`, string(c1))
	assert.Equal(t, []string{"y", "x"}, p2.Keys(), "Canonical must not reorder the receiver")
}

func TestPayload_Get(t *testing.T) {
	p := Payload{{Key: "a", Value: String("1")}}

	v, ok := p.Get("a")
	assert.True(t, ok)
	assert.Equal(t, String("1"), v)

	v, ok = p.Get("missing")
	assert.False(t, ok)
	assert.True(t, v.IsNull())
}

func TestParsePayload_Invalid(t *testing.T) {
	for _, input := range []string{``, `[]`, `"x"`, `{"a":{"b":1}}`, `{"a":1`} {
		_, err := ParsePayload(input)
		assert.ErrorIs(t, err, ErrInvalidPayload, "input %q", input)
	}
}
