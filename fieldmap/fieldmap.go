// Package fieldmap maps canonical columns to the source field names that may
// carry them.
//
// Each canonical column has an ordered alias list. Resolution walks the list
// and takes the first alias whose value is present, non-null and not the
// empty string; order is therefore significant.
package fieldmap

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/poiesic/stratum/core"
	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownColumn indicates a field map entry for a column not in the schema.
	ErrUnknownColumn = errors.New("unknown canonical column")

	// ErrDuplicateColumn indicates a column listed twice in one field map file.
	ErrDuplicateColumn = errors.New("duplicate column entry")
)

// Entry is one column's alias list as it appears in a field map file.
type Entry struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
}

// File is the on-disk field map format.
type File struct {
	Columns []Entry `yaml:"columns"`
}

// FieldMap holds an alias list for every canonical column.
type FieldMap struct {
	aliases map[string][]string
}

// builtin lists the primary source alias of each canonical column.
var builtin = map[string]string{
	"unit_id":                    "X_unit_id",
	"source_created_at":          "X_created_at",
	"source_id":                  "X_id",
	"started_at":                 "X_started_at",
	"tainted":                    "X_tainted",
	"channel":                    "X_channel",
	"trust":                      "X_trust",
	"worker_id":                  "X_worker_id",
	"country":                    "X_country",
	"region":                     "X_region",
	"city":                       "X_city",
	"ip_address":                 "X_ip",
	"appeal_to_reader":           "appeal_to_reader",
	"conjunctions":               "conjunctions",
	"connectivity":               "connectivity",
	"narrative_perspective":      "narrative_perspective",
	"sensory_language":           "sensory_language",
	"setting":                    "setting",
	"ab":                         "ab",
	"appeal_to_reader_gold":      "appeal_to_reader_gold",
	"conjunctions_gold":          "conjunctions_gold",
	"connectivity_gold":          "connectivity_gold",
	"narrative_perspective_gold": "narrative_perspective_gold",
	"pmid":                       "pmid",
	"py":                         "py",
	"sensory_language_gold":      "sensory_language_gold",
	"setting_gold":               "setting_gold",
	"so":                         "so",
	"tc":                         "tc",
	"cin_mas":                    "cin_mas",
	"first_author":               "firstauthor",
	"number_authors":             "numberauthors",
	"pid_mas":                    "pid_mas",
	"title":                      "title",
}

// Default returns the built-in field map. Each column resolves from its
// primary source alias, then from its canonical name when that differs.
func Default() *FieldMap {
	fm := &FieldMap{aliases: make(map[string][]string, len(core.Schema))}
	for _, col := range core.Schema {
		aliases := []string{col.Name}
		if primary, ok := builtin[col.Name]; ok && primary != col.Name {
			aliases = []string{primary, col.Name}
		}
		fm.aliases[col.Name] = aliases
	}
	return fm
}

// New returns the built-in field map with the given entries overriding the
// alias lists of their columns.
func New(entries []Entry) (*FieldMap, error) {
	fm := Default()
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if _, ok := core.LookupColumn(e.Name); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, e.Name)
		}
		if seen[e.Name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, e.Name)
		}
		seen[e.Name] = true
		fm.aliases[e.Name] = slices.Clone(e.Aliases)
	}
	return fm, nil
}

// Load reads a YAML field map file and overlays it on the built-in map.
func Load(path string) (*FieldMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read field map file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse field map file: %w", err)
	}

	return New(file.Columns)
}

// Aliases returns the ordered alias list of a canonical column.
func (fm *FieldMap) Aliases(column string) []string {
	return slices.Clone(fm.aliases[column])
}

// Resolve returns the value of column in payload.
func (fm *FieldMap) Resolve(payload core.Payload, column string) core.Value {
	return Resolve(payload, fm.aliases[column])
}

// Resolve returns the value of the first alias present in payload with a
// non-null, non-empty value, or Null when no alias matches.
func Resolve(payload core.Payload, aliases []string) core.Value {
	for _, alias := range aliases {
		if v, ok := payload.Get(alias); ok && !v.IsEmpty() {
			return v
		}
	}
	return core.Null()
}

// Entries returns the field map in schema order.
func (fm *FieldMap) Entries() []Entry {
	entries := make([]Entry, 0, len(core.Schema))
	for _, col := range core.Schema {
		entries = append(entries, Entry{Name: col.Name, Aliases: fm.Aliases(col.Name)})
	}
	return entries
}

// WriteYAML writes the field map in the on-disk format.
func (fm *FieldMap) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(File{Columns: fm.Entries()}); err != nil {
		return fmt.Errorf("failed to marshal field map: %w", err)
	}
	return enc.Close()
}
