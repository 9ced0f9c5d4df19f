package fieldmap

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/stratum/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_CoversSchema(t *testing.T) {
	fm := Default()
	for _, col := range core.Schema {
		assert.NotEmpty(t, fm.Aliases(col.Name), "column %s has no aliases", col.Name)
	}
	assert.Equal(t, []string{"X_unit_id", "unit_id"}, fm.Aliases("unit_id"))
	assert.Equal(t, []string{"firstauthor", "first_author"}, fm.Aliases("first_author"))
	assert.Equal(t, []string{"title"}, fm.Aliases("title"))
}

func TestResolve_FirstMatchWins(t *testing.T) {
	tests := []struct {
		name    string
		payload core.Payload
		want    core.Value
	}{
		{
			name: "first alias present",
			payload: core.Payload{
				{Key: "a", Value: core.String("A")},
				{Key: "b", Value: core.String("B")},
			},
			want: core.String("A"),
		},
		{
			name: "empty string skipped",
			payload: core.Payload{
				{Key: "a", Value: core.String("")},
				{Key: "b", Value: core.String("B")},
			},
			want: core.String("B"),
		},
		{
			name: "null skipped",
			payload: core.Payload{
				{Key: "a", Value: core.Null()},
				{Key: "b", Value: core.Number(3)},
			},
			want: core.Number(3),
		},
		{
			name:    "no alias present",
			payload: core.Payload{{Key: "c", Value: core.String("C")}},
			want:    core.Null(),
		},
		{
			name: "all aliases empty",
			payload: core.Payload{
				{Key: "a", Value: core.String("")},
				{Key: "b", Value: core.Null()},
			},
			want: core.Null(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.payload, []string{"a", "b"}))
		})
	}
}

func TestNew_OverridesAndRejectsUnknown(t *testing.T) {
	fm, err := New([]Entry{{Name: "title", Aliases: []string{"Title", "paper_title"}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Title", "paper_title"}, fm.Aliases("title"))
	assert.Equal(t, []string{"X_unit_id", "unit_id"}, fm.Aliases("unit_id"), "untouched columns keep built-ins")

	_, err = New([]Entry{{Name: "nonexistent", Aliases: []string{"x"}}})
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, err = New([]Entry{{Name: "title"}, {Name: "title"}})
	assert.ErrorIs(t, err, ErrDuplicateColumn)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fieldmap.yaml")
	content := "columns:\n  - name: py\n    aliases: [year, py]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	fm, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"year", "py"}, fm.Aliases("py"))

	payload := core.Payload{{Key: "year", Value: core.Number(1999)}}
	assert.Equal(t, core.Number(1999), fm.Resolve(payload, "py"))
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("columns: [\n"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestWriteYAML_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Default().WriteYAML(&buf))

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	fm, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Entries(), fm.Entries())
}
