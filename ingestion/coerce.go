package ingestion

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/stratum/core"
)

// coerce converts a resolved payload value to the Go type of a column.
// Null yields nil. A value that cannot be converted yields nil and ErrCoercion.
func coerce(v core.Value, t core.ColumnType) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	switch t {
	case core.ColumnString, core.ColumnText:
		return v.Text(), nil
	case core.ColumnInteger:
		return coerceInteger(v)
	case core.ColumnTimestamp:
		return coerceTimestamp(v)
	case core.ColumnBoolean:
		return coerceBoolean(v)
	default:
		return nil, fmt.Errorf("%w: unknown column type %s", ErrCoercion, t)
	}
}

func coerceInteger(v core.Value) (any, error) {
	switch v.Kind() {
	case core.KindNumber:
		if i, ok := v.AsInt(); ok {
			return i, nil
		}
		f, _ := v.AsNumber()
		return integral(f, v)
	case core.KindBool:
		if b, _ := v.AsBool(); b {
			return int64(1), nil
		}
		return int64(0), nil
	case core.KindString:
		s, _ := v.AsString()
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", ErrCoercion, s)
		}
		return integral(f, v)
	}
	return nil, fmt.Errorf("%w: %s is not an integer", ErrCoercion, v.Kind())
}

// integral accepts floats with no fractional part that fit in an int64.
func integral(f float64, v core.Value) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return nil, fmt.Errorf("%w: %s is not an integer", ErrCoercion, v)
	}
	return int64(f), nil
}

var (
	trueWords  = map[string]bool{"true": true, "1": true, "yes": true, "t": true, "y": true}
	falseWords = map[string]bool{"false": true, "0": true, "no": true, "f": true, "n": true}
)

func coerceBoolean(v core.Value) (any, error) {
	switch v.Kind() {
	case core.KindBool:
		b, _ := v.AsBool()
		return b, nil
	case core.KindNumber, core.KindString:
		s := strings.ToLower(strings.TrimSpace(v.Text()))
		if s == "" {
			return nil, nil
		}
		if trueWords[s] {
			return true, nil
		}
		if falseWords[s] {
			return false, nil
		}
	}
	return nil, fmt.Errorf("%w: %s is not a boolean", ErrCoercion, v)
}

var zoneSuffix = regexp.MustCompile(`(Z|[+-]\d{2}:?\d{2})$`)

var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// coerceTimestamp parses ISO-8601 dates and date-times. A trailing zone
// designator is dropped and the wall-clock time kept.
func coerceTimestamp(v core.Value) (any, error) {
	s, ok := v.AsString()
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a timestamp", ErrCoercion, v.Kind())
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if len(s) > 10 {
		s = strings.Replace(s, " ", "T", 1)
		s = zoneSuffix.ReplaceAllString(s, "")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: %q is not a timestamp", ErrCoercion, s)
}
