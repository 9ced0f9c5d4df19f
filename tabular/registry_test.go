package tabular

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/stratum/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Lookup(t *testing.T) {
	r := NewRegistry()

	p, err := r.Lookup("data.CSV")
	require.NoError(t, err)
	assert.Equal(t, core.FileTypeCSV, p.FileType())

	p, err = r.Lookup("/tmp/book.xlsx")
	require.NoError(t, err)
	assert.Equal(t, core.FileTypeXLSX, p.FileType())

	_, err = r.Lookup("notes.pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = r.Lookup("noext")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	assert.Equal(t, []core.FileType{core.FileTypeCSV, core.FileTypeXLSX}, r.FileTypes())
}

func TestRegistry_ParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rows.csv")
	require.NoError(t, os.WriteFile(path, []byte("a\n1\n"), 0644))

	table, err := NewRegistry().ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, table.Rows, 1)

	_, err = NewRegistry().ParseFile(filepath.Join(dir, "rows.txt"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat, "extension is checked before opening")
}

func TestDetectFileType(t *testing.T) {
	ft, err := DetectFileType("upload.XLSX")
	require.NoError(t, err)
	assert.Equal(t, core.FileTypeXLSX, ft)

	_, err = DetectFileType("upload.xls")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
