package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// ValueKind enumerates the primitive variants a canonical payload value may hold.
type ValueKind uint8

const (
	// KindNull is an explicit missing value.
	KindNull ValueKind = iota
	// KindString is UTF-8 text.
	KindString
	// KindNumber is a finite decimal number.
	KindNumber
	// KindBool is a boolean.
	KindBool
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return fmt.Sprintf("ValueKind(%d)", uint8(k))
	}
}

// Value is a canonical payload value. The zero Value is null.
// A number keeps its canonical decimal literal in str, so integers beyond
// float64 precision survive unchanged.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	b    bool
}

// Null returns the null value.
func Null() Value { return Value{} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number returns a number value. NaN and infinities are not representable
// in JSON and become null.
func Number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Null()
	}
	return Value{kind: KindNumber, num: f, str: formatNumber(f)}
}

// Int returns an integer number value.
func Int(i int64) Value {
	return Value{kind: KindNumber, num: float64(i), str: strconv.FormatInt(i, 10)}
}

// Uint returns an unsigned integer number value.
func Uint(u uint64) Value {
	return Value{kind: KindNumber, num: float64(u), str: strconv.FormatUint(u, 10)}
}

var integerLiteral = regexp.MustCompile(`^[+-]?[0-9]+$`)

// ParseNumber parses a decimal literal. Integer literals of any length are
// kept exactly, with sign and leading zeros normalized. Other literals are
// parsed as float64. Hexadecimal, underscores, infinities and NaN are
// rejected.
func ParseNumber(s string) (Value, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Null(), false
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789+-.eE", r) {
			return Null(), false
		}
	}
	if integerLiteral.MatchString(s) {
		n, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return Null(), false
		}
		f, _ := new(big.Float).SetInt(n).Float64()
		return Value{kind: KindNumber, num: f, str: n.String()}, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Null(), false
	}
	v := Number(f)
	return v, !v.IsNull()
}
// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Kind reports the variant held by v.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsEmpty reports whether v is null or the empty string.
func (v Value) IsEmpty() bool {
	return v.kind == KindNull || (v.kind == KindString && v.str == "")
}

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsNumber returns the number held by v, rounded to the nearest float64.
func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == KindNumber }

// AsInt returns the number held by v when it is an integer that fits in an int64.
func (v Value) AsInt() (int64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	i, err := strconv.ParseInt(v.str, 10, 64)
	return i, err == nil
}

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// Text renders v as plain text. Null renders as the empty string.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.str
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// Equal reports whether two values hold the same variant and content.
func (v Value) Equal(o Value) bool {
	return v == o
}

func (v Value) String() string {
	if v.kind == KindNull {
		return "null"
	}
	return v.Text()
}

// MarshalJSON encodes v as a JSON primitive.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindString:
		return marshalString(v.str)
	case KindNumber:
		return []byte(v.str), nil
	case KindBool:
		return []byte(strconv.FormatBool(v.b)), nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %d", ErrInvalidValue, v.kind)
	}
}

// UnmarshalJSON decodes a JSON primitive into v. Objects and arrays are rejected.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("%w: empty input", ErrInvalidValue)
	}
	switch data[0] {
	case 'n':
		if string(data) != "null" {
			return fmt.Errorf("%w: %s", ErrInvalidValue, data)
		}
		*v = Null()
	case 't', 'f':
		b, err := strconv.ParseBool(string(data))
		if err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidValue, data)
		}
		*v = Bool(b)
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}
		*v = String(s)
	case '{', '[':
		return fmt.Errorf("%w: nested values are not supported", ErrInvalidValue)
	default:
		n, ok := ParseNumber(string(data))
		if !ok {
			return fmt.Errorf("%w: %s", ErrInvalidValue, data)
		}
		*v = n
	}
	return nil
}

// Field is one key/value pair of a payload.
type Field struct {
	Key   string
	Value Value
}

// Payload is an ordered mapping of column name to canonical value.
// Keys are unique; order is the source column order.
type Payload []Field

// Get returns the value stored under key.
func (p Payload) Get(key string) (Value, bool) {
	for _, f := range p {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Null(), false
}

// Keys returns the payload keys in order.
func (p Payload) Keys() []string {
	keys := make([]string, len(p))
	for i, f := range p {
		keys[i] = f.Key
	}
	return keys
}

// Sorted returns a copy of p with keys in lexical order.
func (p Payload) Sorted() Payload {
	sorted := slices.Clone(p)
	slices.SortStableFunc(sorted, func(a, b Field) int {
		return strings.Compare(a.Key, b.Key)
	})
	return sorted
}

// Canonical returns the key-sorted JSON serialization of p.
// Two payloads with the same key/value content produce identical bytes
// regardless of their key order.
func (p Payload) Canonical() ([]byte, error) {
	return p.Sorted().MarshalJSON()
}

// MarshalJSON encodes p as a JSON object preserving key order.
func (p Payload) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalString(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := f.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a flat JSON object into p preserving key order.
func (p *Payload) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: expected object", ErrInvalidPayload)
	}

	var fields Payload
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("%w: expected key", ErrInvalidPayload)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
		var v Value
		if err := v.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("%w: key %q: %w", ErrInvalidPayload, key, err)
		}
		fields = append(fields, Field{Key: key, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	*p = fields
	return nil
}

// ParsePayload decodes a stored raw payload.
func ParsePayload(s string) (Payload, error) {
	var p Payload
	if err := p.UnmarshalJSON([]byte(s)); err != nil {
		return nil, err
	}
	return p, nil
}

// marshalString encodes s as a JSON string without HTML escaping.
func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// formatNumber renders f in its shortest round-trip decimal form.
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
