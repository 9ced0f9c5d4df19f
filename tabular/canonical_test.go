package tabular

import (
	"math"
	"testing"
	"time"

	"github.com/poiesic/stratum/core"
	"github.com/stretchr/testify/assert"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  core.Value
	}{
		{"nil", nil, core.Null()},
		{"string", "abc", core.String("abc")},
		{"invalid utf8 bytes", []byte("a\xffb"), core.String("ab")},
		{"int", 42, core.Number(42)},
		{"int64", int64(-7), core.Number(-7)},
		{"float", 1.25, core.Number(1.25)},
		{"nan", math.NaN(), core.Null()},
		{"bool", true, core.Bool(true)},
		{"timestamp", time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC), core.String("2020-01-02T03:04:05")},
		{"timestamp with micros", time.Date(2020, 1, 2, 3, 4, 5, 123456000, time.UTC), core.String("2020-01-02T03:04:05.123456")},
		{"passthrough value", core.String("v"), core.String("v")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Canonicalize(tt.input))
		})
	}
}

func TestCanonicalRow_MissingBecomesNull(t *testing.T) {
	row := CanonicalRow([]string{"a", "b"}, []any{"x"})
	assert.Equal(t, core.Payload{
		{Key: "a", Value: core.String("x")},
		{Key: "b", Value: core.Null()},
	}, row)
}

func TestUniqueHeader(t *testing.T) {
	assert.Equal(t,
		[]string{"x", "x.1", "x.1.1", "Unnamed: 3"},
		uniqueHeader([]string{"x", "x", "x.1", ""}))
}
