package tabular

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/poiesic/stratum/core"
)

// naValues are the cell spellings read as missing.
var naValues = map[string]bool{
	"":         true,
	"#N/A":     true,
	"#N/A N/A": true,
	"#NA":      true,
	"-1.#IND":  true,
	"-1.#QNAN": true,
	"-NaN":     true,
	"-nan":     true,
	"1.#IND":   true,
	"1.#QNAN":  true,
	"<NA>":     true,
	"N/A":      true,
	"NA":       true,
	"NULL":     true,
	"NaN":      true,
	"None":     true,
	"n/a":      true,
	"nan":      true,
	"null":     true,
}

// IsNA reports whether a text cell denotes a missing value.
func IsNA(s string) bool {
	return naValues[s]
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVParser parses delimited text files.
type CSVParser struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune
}

// NewCSVParser returns a comma-separated parser.
func NewCSVParser() *CSVParser {
	return &CSVParser{Comma: ','}
}

// FileType implements Parser.
func (p *CSVParser) FileType() core.FileType {
	return core.FileTypeCSV
}

// Parse implements Parser.
//
// Blank lines are skipped and rows shorter than the header are padded with
// Null. Each column is typed as a whole: if every non-missing cell parses as
// a number the column is numeric, if every non-missing cell is true/false the
// column is boolean, otherwise cells stay text.
func (p *CSVParser) Parse(r io.Reader) (*Table, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	if p.Comma != 0 {
		reader.Comma = p.Comma
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: no header row", ErrParse)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	var records [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}
		records = append(records, record)
	}

	kinds := inferColumnKinds(len(header), records)
	rows := make([][]any, len(records))
	for i, record := range records {
		cells := make([]any, len(record))
		for j, raw := range record {
			kind := core.KindString
			if j < len(kinds) {
				kind = kinds[j]
			}
			cells[j] = typedCell(raw, kind)
		}
		rows[i] = cells
	}

	return newTable(header, rows)
}

// inferColumnKinds picks Number, Bool or String for each column.
// Columns with no non-missing cells are String, so every cell is Null.
func inferColumnKinds(width int, records [][]string) []core.ValueKind {
	kinds := make([]core.ValueKind, width)
	for j := range width {
		numeric, boolean, present := true, true, false
		for _, record := range records {
			if j >= len(record) || IsNA(record[j]) {
				continue
			}
			present = true
			if numeric {
				if _, ok := parseNumber(record[j]); !ok {
					numeric = false
				}
			}
			if boolean {
				if _, ok := parseBool(record[j]); !ok {
					boolean = false
				}
			}
			if !numeric && !boolean {
				break
			}
		}
		switch {
		case !present:
			kinds[j] = core.KindString
		case numeric:
			kinds[j] = core.KindNumber
		case boolean:
			kinds[j] = core.KindBool
		default:
			kinds[j] = core.KindString
		}
	}
	return kinds
}

func typedCell(raw string, kind core.ValueKind) any {
	if IsNA(raw) {
		return nil
	}
	switch kind {
	case core.KindNumber:
		if v, ok := parseNumber(raw); ok {
			return v
		}
	case core.KindBool:
		if b, ok := parseBool(raw); ok {
			return b
		}
	}
	return raw
}

// parseNumber accepts decimal integers and floats with optional exponent.
// Integer cells keep their exact digits.
func parseNumber(s string) (core.Value, bool) {
	return core.ParseNumber(s)
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}
