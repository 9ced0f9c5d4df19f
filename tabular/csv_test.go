package tabular

import (
	"strings"
	"testing"

	"github.com/poiesic/stratum/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseCSV(t *testing.T, input string) *Table {
	t.Helper()
	table, err := NewCSVParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	return table
}

func TestCSVParser_InfersColumnTypes(t *testing.T) {
	table := parseCSV(t, "id,score,flag,name\n1,2.5,true,alpha\n2,,FALSE,beta\n3,4,,7\n")

	assert.Equal(t, []string{"id", "score", "flag", "name"}, table.Columns)
	require.Len(t, table.Rows, 3)

	first := table.Rows[0]
	assert.Equal(t, core.Number(1), first[0].Value)
	assert.Equal(t, core.Number(2.5), first[1].Value)
	assert.Equal(t, core.Bool(true), first[2].Value)
	assert.Equal(t, core.String("alpha"), first[3].Value)

	second := table.Rows[1]
	assert.True(t, second[1].Value.IsNull(), "empty numeric cell is null")
	assert.Equal(t, core.Bool(false), second[2].Value)

	third := table.Rows[2]
	assert.True(t, third[2].Value.IsNull())
	assert.Equal(t, core.String("7"), third[3].Value, "mixed column stays text")
}

func TestCSVParser_NAValues(t *testing.T) {
	table := parseCSV(t, "a,b\nNA,n/a\nNULL,x\n")
	assert.True(t, table.Rows[0][0].Value.IsNull())
	assert.True(t, table.Rows[0][1].Value.IsNull())
	assert.True(t, table.Rows[1][0].Value.IsNull())
	assert.Equal(t, core.String("x"), table.Rows[1][1].Value)
}

func TestCSVParser_ShortRowsPadWithNull(t *testing.T) {
	table := parseCSV(t, "a,b,c\n1\n")
	require.Len(t, table.Rows, 1)
	row := table.Rows[0]
	assert.Equal(t, []string{"a", "b", "c"}, row.Keys())
	assert.True(t, row[1].Value.IsNull())
	assert.True(t, row[2].Value.IsNull())
}

func TestCSVParser_LongRowFails(t *testing.T) {
	_, err := NewCSVParser().Parse(strings.NewReader("a,b\n1,2,3\n"))
	assert.ErrorIs(t, err, ErrParse)
}

func TestCSVParser_EmptyInput(t *testing.T) {
	_, err := NewCSVParser().Parse(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrParse)
}

func TestCSVParser_HeaderOnly(t *testing.T) {
	table := parseCSV(t, "a,b\n")
	assert.Equal(t, []string{"a", "b"}, table.Columns)
	assert.Empty(t, table.Rows)
}

func TestCSVParser_BlankLinesSkipped(t *testing.T) {
	table := parseCSV(t, "a\n1\n\n2\n")
	assert.Len(t, table.Rows, 2)
}

func TestCSVParser_HeaderDisambiguation(t *testing.T) {
	table := parseCSV(t, "a,a,,a\n1,2,3,4\n")
	assert.Equal(t, []string{"a", "a.1", "Unnamed: 2", "a.2"}, table.Columns)
}

func TestCSVParser_StripsBOM(t *testing.T) {
	table := parseCSV(t, "\xEF\xBB\xBFtitle\nx\n")
	assert.Equal(t, []string{"title"}, table.Columns)
}

func TestCSVParser_InvalidUTF8Dropped(t *testing.T) {
	table := parseCSV(t, "title\nab\xffc\n")
	assert.Equal(t, core.String("abc"), table.Rows[0][0].Value)
}

func TestCSVParser_Delimiter(t *testing.T) {
	p := &CSVParser{Comma: ';'}
	table, err := p.Parse(strings.NewReader("a;b\n1;x\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, table.Columns)
	assert.Equal(t, core.Number(1), table.Rows[0][0].Value)
}

func TestParseNumber(t *testing.T) {
	for _, ok := range []string{"1", "-2", "3.5", "1e3", " 4 ", "+5"} {
		_, got := parseNumber(ok)
		assert.True(t, got, "%q should be numeric", ok)
	}
	for _, bad := range []string{"0x10", "1_000", "inf", "Infinity", "abc", "1,0", ""} {
		_, got := parseNumber(bad)
		assert.False(t, got, "%q should not be numeric", bad)
	}
}

func TestCSVParser_LargeIntegersKeepDigits(t *testing.T) {
	table := parseCSV(t, "X_id,title\n12345678901234567,a\n12345678901234568,a\n")
	require.Len(t, table.Rows, 2)

	first, second := table.Rows[0][0].Value, table.Rows[1][0].Value
	assert.Equal(t, core.KindNumber, first.Kind())
	assert.Equal(t, "12345678901234567", first.Text())
	assert.Equal(t, "12345678901234568", second.Text())
}
