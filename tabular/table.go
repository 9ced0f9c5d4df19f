package tabular

import (
	"fmt"
	"strings"

	"github.com/poiesic/stratum/core"
)

// Table is a parsed file: unique header names and canonical rows.
type Table struct {
	Columns []string
	Rows    []core.Payload
}

// newTable canonicalizes a header and raw cell grid into a Table.
// Rows longer than the header are rejected.
func newTable(header []string, rows [][]any) (*Table, error) {
	if len(header) == 0 {
		return nil, fmt.Errorf("%w: no header row", ErrParse)
	}

	columns := uniqueHeader(header)
	table := &Table{
		Columns: columns,
		Rows:    make([]core.Payload, 0, len(rows)),
	}
	for i, row := range rows {
		if len(row) > len(columns) {
			return nil, fmt.Errorf("%w: expected %d fields in row %d, saw %d", ErrParse, len(columns), i+2, len(row))
		}
		table.Rows = append(table.Rows, CanonicalRow(columns, row))
	}
	return table, nil
}

// uniqueHeader names blank headers "Unnamed: <i>" and suffixes repeats ".1", ".2", ...
func uniqueHeader(header []string) []string {
	columns := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	counts := make(map[string]int, len(header))

	for i, raw := range header {
		name := strings.ToValidUTF8(raw, "")
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if seen[name] {
			base := name
			for {
				counts[base]++
				name = fmt.Sprintf("%s.%d", base, counts[base])
				if !seen[name] {
					break
				}
			}
		}
		seen[name] = true
		columns[i] = name
	}
	return columns
}
