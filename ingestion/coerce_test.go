package ingestion

import (
	"testing"
	"time"

	"github.com/poiesic/stratum/core"
	"github.com/stretchr/testify/assert"
)

func TestCoerce(t *testing.T) {
	ts := func(s string) time.Time {
		v, err := time.Parse("2006-01-02T15:04:05.999999", s)
		if err != nil {
			panic(err)
		}
		return v
	}

	tests := []struct {
		name    string
		value   core.Value
		typ     core.ColumnType
		want    any
		wantErr bool
	}{
		{name: "null", value: core.Null(), typ: core.ColumnInteger, want: nil},
		{name: "string as string", value: core.String("abc"), typ: core.ColumnString, want: "abc"},
		{name: "number as text", value: core.Number(12.5), typ: core.ColumnText, want: "12.5"},
		{name: "integral number as string", value: core.Number(7), typ: core.ColumnString, want: "7"},
		{name: "bool as string", value: core.Bool(true), typ: core.ColumnString, want: "true"},

		{name: "integral number", value: core.Number(42), typ: core.ColumnInteger, want: int64(42)},
		{name: "integer beyond float precision", value: core.Int(9007199254740993), typ: core.ColumnInteger, want: int64(9007199254740993)},
		{name: "fractional number", value: core.Number(4.5), typ: core.ColumnInteger, wantErr: true},
		{name: "integer string", value: core.String(" 17 "), typ: core.ColumnInteger, want: int64(17)},
		{name: "float string", value: core.String("17.0"), typ: core.ColumnInteger, want: int64(17)},
		{name: "fractional string", value: core.String("17.2"), typ: core.ColumnInteger, wantErr: true},
		{name: "word as integer", value: core.String("many"), typ: core.ColumnInteger, wantErr: true},
		{name: "empty string as integer", value: core.String(""), typ: core.ColumnInteger, want: nil},
		{name: "bool as integer", value: core.Bool(true), typ: core.ColumnInteger, want: int64(1)},
		{name: "huge number", value: core.Number(1e20), typ: core.ColumnInteger, wantErr: true},

		{name: "bool", value: core.Bool(false), typ: core.ColumnBoolean, want: false},
		{name: "yes", value: core.String("Yes"), typ: core.ColumnBoolean, want: true},
		{name: "f", value: core.String("f"), typ: core.ColumnBoolean, want: false},
		{name: "number one", value: core.Number(1), typ: core.ColumnBoolean, want: true},
		{name: "number zero", value: core.Number(0), typ: core.ColumnBoolean, want: false},
		{name: "number two", value: core.Number(2), typ: core.ColumnBoolean, wantErr: true},
		{name: "maybe", value: core.String("maybe"), typ: core.ColumnBoolean, wantErr: true},

		{name: "date", value: core.String("2024-03-05"), typ: core.ColumnTimestamp, want: ts("2024-03-05T00:00:00")},
		{name: "datetime", value: core.String("2024-03-05T10:11:12"), typ: core.ColumnTimestamp, want: ts("2024-03-05T10:11:12")},
		{name: "space separator", value: core.String("2024-03-05 10:11"), typ: core.ColumnTimestamp, want: ts("2024-03-05T10:11:00")},
		{name: "fraction", value: core.String("2024-03-05T10:11:12.250000"), typ: core.ColumnTimestamp, want: ts("2024-03-05T10:11:12.25")},
		{name: "zulu", value: core.String("2024-03-05T10:11:12Z"), typ: core.ColumnTimestamp, want: ts("2024-03-05T10:11:12")},
		{name: "offset", value: core.String("2024-03-05T10:11:12+02:00"), typ: core.ColumnTimestamp, want: ts("2024-03-05T10:11:12")},
		{name: "not a date", value: core.String("yesterday"), typ: core.ColumnTimestamp, wantErr: true},
		{name: "number as timestamp", value: core.Number(20240305), typ: core.ColumnTimestamp, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := coerce(tt.value, tt.typ)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrCoercion)
				assert.Nil(t, got)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
