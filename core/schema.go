package core

import (
	"fmt"
	"time"
)

// ColumnType is the storage type of a canonical column.
type ColumnType uint8

const (
	// ColumnString is short text.
	ColumnString ColumnType = iota + 1
	// ColumnText is unbounded text.
	ColumnText
	// ColumnInteger is a 64-bit signed integer.
	ColumnInteger
	// ColumnTimestamp is a zone-less date and time.
	ColumnTimestamp
	// ColumnBoolean is a boolean.
	ColumnBoolean
)

func (t ColumnType) String() string {
	switch t {
	case ColumnString:
		return "string"
	case ColumnText:
		return "text"
	case ColumnInteger:
		return "integer"
	case ColumnTimestamp:
		return "timestamp"
	case ColumnBoolean:
		return "boolean"
	default:
		return fmt.Sprintf("ColumnType(%d)", uint8(t))
	}
}

// Column describes one canonical column and how to reach its field in Columns.
type Column struct {
	Name string
	Type ColumnType

	str func(*Columns) **string
	i64 func(*Columns) **int64
	ts  func(*Columns) **time.Time
	b   func(*Columns) **bool
}

func stringColumn(name string, typ ColumnType, f func(*Columns) **string) Column {
	return Column{Name: name, Type: typ, str: f}
}

func integerColumn(name string, f func(*Columns) **int64) Column {
	return Column{Name: name, Type: ColumnInteger, i64: f}
}

func timestampColumn(name string, f func(*Columns) **time.Time) Column {
	return Column{Name: name, Type: ColumnTimestamp, ts: f}
}

func booleanColumn(name string, f func(*Columns) **bool) Column {
	return Column{Name: name, Type: ColumnBoolean, b: f}
}

// Schema lists the canonical columns in storage order.
var Schema = []Column{
	integerColumn("unit_id", func(c *Columns) **int64 { return &c.UnitID }),
	timestampColumn("source_created_at", func(c *Columns) **time.Time { return &c.SourceCreatedAt }),
	integerColumn("source_id", func(c *Columns) **int64 { return &c.SourceID }),
	timestampColumn("started_at", func(c *Columns) **time.Time { return &c.StartedAt }),
	booleanColumn("tainted", func(c *Columns) **bool { return &c.Tainted }),
	stringColumn("channel", ColumnString, func(c *Columns) **string { return &c.Channel }),
	integerColumn("trust", func(c *Columns) **int64 { return &c.Trust }),
	integerColumn("worker_id", func(c *Columns) **int64 { return &c.WorkerID }),
	stringColumn("country", ColumnString, func(c *Columns) **string { return &c.Country }),
	stringColumn("region", ColumnString, func(c *Columns) **string { return &c.Region }),
	stringColumn("city", ColumnString, func(c *Columns) **string { return &c.City }),
	stringColumn("ip_address", ColumnString, func(c *Columns) **string { return &c.IPAddress }),
	stringColumn("appeal_to_reader", ColumnString, func(c *Columns) **string { return &c.AppealToReader }),
	integerColumn("conjunctions", func(c *Columns) **int64 { return &c.Conjunctions }),
	integerColumn("connectivity", func(c *Columns) **int64 { return &c.Connectivity }),
	stringColumn("narrative_perspective", ColumnString, func(c *Columns) **string { return &c.NarrativePerspective }),
	integerColumn("sensory_language", func(c *Columns) **int64 { return &c.SensoryLanguage }),
	stringColumn("setting", ColumnString, func(c *Columns) **string { return &c.Setting }),
	stringColumn("ab", ColumnText, func(c *Columns) **string { return &c.Abstract }),
	stringColumn("appeal_to_reader_gold", ColumnString, func(c *Columns) **string { return &c.AppealToReaderGold }),
	stringColumn("conjunctions_gold", ColumnString, func(c *Columns) **string { return &c.ConjunctionsGold }),
	stringColumn("connectivity_gold", ColumnString, func(c *Columns) **string { return &c.ConnectivityGold }),
	stringColumn("narrative_perspective_gold", ColumnString, func(c *Columns) **string { return &c.NarrativePerspectiveGold }),
	integerColumn("pmid", func(c *Columns) **int64 { return &c.PMID }),
	integerColumn("py", func(c *Columns) **int64 { return &c.PublicationYear }),
	stringColumn("sensory_language_gold", ColumnString, func(c *Columns) **string { return &c.SensoryLanguageGold }),
	stringColumn("setting_gold", ColumnString, func(c *Columns) **string { return &c.SettingGold }),
	stringColumn("so", ColumnText, func(c *Columns) **string { return &c.Source }),
	stringColumn("tc", ColumnString, func(c *Columns) **string { return &c.TimesCited }),
	integerColumn("cin_mas", func(c *Columns) **int64 { return &c.CinMAS }),
	stringColumn("first_author", ColumnString, func(c *Columns) **string { return &c.FirstAuthor }),
	integerColumn("number_authors", func(c *Columns) **int64 { return &c.NumberAuthors }),
	integerColumn("pid_mas", func(c *Columns) **int64 { return &c.PidMAS }),
	stringColumn("title", ColumnText, func(c *Columns) **string { return &c.Title }),
}

var schemaIndex = func() map[string]int {
	idx := make(map[string]int, len(Schema))
	for i, col := range Schema {
		idx[col.Name] = i
	}
	return idx
}()

// LookupColumn returns the canonical column with the given name.
func LookupColumn(name string) (Column, bool) {
	i, ok := schemaIndex[name]
	if !ok {
		return Column{}, false
	}
	return Schema[i], true
}

// ColumnNames returns the canonical column names in storage order.
func ColumnNames() []string {
	names := make([]string, len(Schema))
	for i, col := range Schema {
		names[i] = col.Name
	}
	return names
}

// IsNull reports whether the column holds no value in c.
func (col Column) IsNull(c *Columns) bool {
	return col.Get(c) == nil
}

// Get returns the column value in c, or nil when null.
// Non-null values are string, int64, time.Time or bool depending on Type.
func (col Column) Get(c *Columns) any {
	switch {
	case col.str != nil:
		if p := *col.str(c); p != nil {
			return *p
		}
	case col.i64 != nil:
		if p := *col.i64(c); p != nil {
			return *p
		}
	case col.ts != nil:
		if p := *col.ts(c); p != nil {
			return *p
		}
	case col.b != nil:
		if p := *col.b(c); p != nil {
			return *p
		}
	}
	return nil
}

// Set stores v into the column of c. A nil v clears the column.
// The dynamic type of v must match the column type.
func (col Column) Set(c *Columns, v any) error {
	if v == nil {
		col.clear(c)
		return nil
	}
	switch val := v.(type) {
	case string:
		if col.str == nil {
			break
		}
		*col.str(c) = &val
		return nil
	case int64:
		if col.i64 == nil {
			break
		}
		*col.i64(c) = &val
		return nil
	case time.Time:
		if col.ts == nil {
			break
		}
		*col.ts(c) = &val
		return nil
	case bool:
		if col.b == nil {
			break
		}
		*col.b(c) = &val
		return nil
	}
	return fmt.Errorf("%w: column %s of type %s cannot hold %T", ErrColumnType, col.Name, col.Type, v)
}

// Pointer returns the address of the column field in c (a **string, **int64,
// **time.Time or **bool) suitable for database scanning.
func (col Column) Pointer(c *Columns) any {
	switch {
	case col.str != nil:
		return col.str(c)
	case col.i64 != nil:
		return col.i64(c)
	case col.ts != nil:
		return col.ts(c)
	default:
		return col.b(c)
	}
}

func (col Column) clear(c *Columns) {
	switch {
	case col.str != nil:
		*col.str(c) = nil
	case col.i64 != nil:
		*col.i64(c) = nil
	case col.ts != nil:
		*col.ts(c) = nil
	case col.b != nil:
		*col.b(c) = nil
	}
}
