package tabular

import (
	"bytes"
	"testing"
	"time"

	"github.com/poiesic/stratum/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows ...[]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestXLSXParser_TypedCells(t *testing.T) {
	created := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)
	buf := buildWorkbook(t,
		[]any{"title", "py", "X_created_at", "X_tainted"},
		[]any{"Paper", 2001, created, true},
	)

	table, err := NewXLSXParser().Parse(buf)
	require.NoError(t, err)

	assert.Equal(t, []string{"title", "py", "X_created_at", "X_tainted"}, table.Columns)
	require.Len(t, table.Rows, 1)

	row := table.Rows[0]
	assert.Equal(t, core.String("Paper"), row[0].Value)
	assert.Equal(t, core.Number(2001), row[1].Value)
	assert.Equal(t, core.String("2021-03-04T05:06:07"), row[2].Value, "date cells render as ISO strings")
	assert.Equal(t, core.Bool(true), row[3].Value)
}

func TestXLSXParser_SkipsBlankRowsAndPads(t *testing.T) {
	buf := buildWorkbook(t,
		[]any{"a", "b"},
		[]any{"x"},
		[]any{},
		[]any{"y", "z"},
	)

	table, err := NewXLSXParser().Parse(buf)
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.True(t, table.Rows[0][1].Value.IsNull())
	assert.Equal(t, core.String("z"), table.Rows[1][1].Value)
}

func TestXLSXParser_Corrupt(t *testing.T) {
	_, err := NewXLSXParser().Parse(bytes.NewBufferString("not a workbook"))
	assert.ErrorIs(t, err, ErrParse)
}

func TestXLSXParser_EmptySheet(t *testing.T) {
	_, err := NewXLSXParser().Parse(buildWorkbook(t))
	assert.ErrorIs(t, err, ErrParse)
}

func TestIsDateFormatCode(t *testing.T) {
	assert.True(t, isDateFormatCode("yyyy-mm-dd"))
	assert.True(t, isDateFormatCode("[$-409]h:mm AM/PM"))
	assert.False(t, isDateFormatCode("0.00"))
	assert.False(t, isDateFormatCode(`"days"0`))
	assert.False(t, isDateFormatCode("General"))
}
