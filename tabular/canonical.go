package tabular

import (
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/stratum/core"
)

// TimestampLayout is the ISO-8601 rendering of zone-less timestamps.
const TimestampLayout = "2006-01-02T15:04:05"

// FormatTimestamp renders t as TimestampLayout with microseconds appended
// when the sub-second part is non-zero.
func FormatTimestamp(t time.Time) string {
	s := t.Format(TimestampLayout)
	if us := t.Nanosecond() / 1000; us != 0 {
		s += fmt.Sprintf(".%06d", us)
	}
	return s
}

// Canonicalize converts a decoded cell into a canonical value.
//
// Timestamps become ISO strings, text and byte strings become valid UTF-8
// with invalid bytes dropped, floats become Number (non-finite ones Null),
// integers keep their exact value and nil becomes Null. Any other type
// renders through fmt.
func Canonicalize(v any) core.Value {
	switch x := v.(type) {
	case nil:
		return core.Null()
	case core.Value:
		return x
	case string:
		return core.String(strings.ToValidUTF8(x, ""))
	case []byte:
		return core.String(strings.ToValidUTF8(string(x), ""))
	case bool:
		return core.Bool(x)
	case time.Time:
		return core.String(FormatTimestamp(x))
	case *time.Time:
		if x == nil {
			return core.Null()
		}
		return core.String(FormatTimestamp(*x))
	case float64:
		return core.Number(x)
	case float32:
		return core.Number(float64(x))
	case int:
		return core.Int(int64(x))
	case int8:
		return core.Int(int64(x))
	case int16:
		return core.Int(int64(x))
	case int32:
		return core.Int(int64(x))
	case int64:
		return core.Int(x)
	case uint:
		return core.Uint(uint64(x))
	case uint8:
		return core.Uint(uint64(x))
	case uint16:
		return core.Uint(uint64(x))
	case uint32:
		return core.Uint(uint64(x))
	case uint64:
		return core.Uint(x)
	case fmt.Stringer:
		return core.String(strings.ToValidUTF8(x.String(), ""))
	default:
		return core.String(strings.ToValidUTF8(fmt.Sprint(x), ""))
	}
}

// CanonicalRow builds a payload with one entry per column in column order.
// Cells beyond the end of a short row are Null.
func CanonicalRow(columns []string, cells []any) core.Payload {
	row := make(core.Payload, len(columns))
	for i, name := range columns {
		var v any
		if i < len(cells) {
			v = cells[i]
		}
		row[i] = core.Field{Key: name, Value: Canonicalize(v)}
	}
	return row
}
