package tabular

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/poiesic/stratum/core"
	"github.com/xuri/excelize/v2"
)

// XLSXParser parses the first worksheet of an Office Open XML workbook.
type XLSXParser struct{}

// NewXLSXParser returns a spreadsheet parser.
func NewXLSXParser() *XLSXParser {
	return &XLSXParser{}
}

// FileType implements Parser.
func (p *XLSXParser) FileType() core.FileType {
	return core.FileTypeXLSX
}

// Parse implements Parser.
//
// Cells keep the type stored in the workbook. Numeric cells whose number
// format is a date or time format decode to timestamps. Rows whose cells are
// all empty are skipped.
func (p *XLSXParser) Parse(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrParse)
	}
	sheet := sheets[0]

	grid, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	cells := &cellDecoder{file: f, sheet: sheet, dateStyles: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		cells.date1904 = *props.Date1904
	}

	headerRow := -1
	for i, row := range grid {
		if !blankRow(row) {
			headerRow = i
			break
		}
	}
	if headerRow < 0 {
		return nil, fmt.Errorf("%w: no header row", ErrParse)
	}

	header := make([]string, len(grid[headerRow]))
	for j, raw := range grid[headerRow] {
		v, err := cells.decode(j, headerRow, raw)
		if err != nil {
			return nil, err
		}
		header[j] = Canonicalize(v).Text()
	}

	var rows [][]any
	for i := headerRow + 1; i < len(grid); i++ {
		if blankRow(grid[i]) {
			continue
		}
		row := make([]any, len(grid[i]))
		for j, raw := range grid[i] {
			if row[j], err = cells.decode(j, i, raw); err != nil {
				return nil, err
			}
		}
		rows = append(rows, row)
	}

	return newTable(header, rows)
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}

// cellDecoder resolves raw cell text to a typed value using the cell's
// stored type and number format.
type cellDecoder struct {
	file       *excelize.File
	sheet      string
	date1904   bool
	dateStyles map[int]bool
}

// decode returns the typed value of the cell at zero-based col/row.
func (d *cellDecoder) decode(col, row int, raw string) (any, error) {
	if raw == "" {
		return nil, nil
	}

	name, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	cellType, err := d.file.GetCellType(d.sheet, name)
	if err != nil {
		return nil, fmt.Errorf("%w: cell %s: %w", ErrParse, name, err)
	}

	switch cellType {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true"), nil
	case excelize.CellTypeError:
		return nil, nil
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		if IsNA(raw) {
			return nil, nil
		}
		return raw, nil
	case excelize.CellTypeDate:
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			return t, nil
		}
	}

	num, ok := core.ParseNumber(raw)
	if !ok {
		if IsNA(raw) {
			return nil, nil
		}
		return raw, nil
	}

	isDate, err := d.isDateCell(name)
	if err != nil {
		return nil, err
	}
	if isDate {
		f, _ := num.AsNumber()
		t, err := excelize.ExcelDateToTime(f, d.date1904)
		if err != nil {
			return nil, fmt.Errorf("%w: cell %s: %w", ErrParse, name, err)
		}
		return t.Round(time.Millisecond), nil
	}
	return num, nil
}

func (d *cellDecoder) isDateCell(name string) (bool, error) {
	styleID, err := d.file.GetCellStyle(d.sheet, name)
	if err != nil {
		return false, fmt.Errorf("%w: cell %s: %w", ErrParse, name, err)
	}
	if isDate, ok := d.dateStyles[styleID]; ok {
		return isDate, nil
	}

	style, err := d.file.GetStyle(styleID)
	if err != nil {
		return false, fmt.Errorf("%w: style %d: %w", ErrParse, styleID, err)
	}
	isDate := isDateNumFmt(style.NumFmt)
	if style.CustomNumFmt != nil {
		isDate = isDateFormatCode(*style.CustomNumFmt)
	}
	d.dateStyles[styleID] = isDate
	return isDate, nil
}

// isDateNumFmt reports whether a built-in number format id is a date or time format.
func isDateNumFmt(id int) bool {
	switch {
	case id >= 14 && id <= 22:
		return true
	case id >= 27 && id <= 36:
		return true
	case id >= 45 && id <= 47:
		return true
	case id >= 50 && id <= 58:
		return true
	default:
		return false
	}
}

var formatNoise = regexp.MustCompile(`"[^"]*"|\[[^\]]*\]|\\.`)

// isDateFormatCode reports whether a custom number format contains date or
// time tokens outside quoted literals and bracketed modifiers.
func isDateFormatCode(code string) bool {
	code = strings.ToLower(formatNoise.ReplaceAllString(code, ""))
	if code == "general" {
		return false
	}
	return strings.ContainsAny(code, "ymdhs")
}
