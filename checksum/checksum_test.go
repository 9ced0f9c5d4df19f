package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/stratum/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint_SHA256MatchesCanonicalDigest(t *testing.T) {
	payload := core.Payload{
		{Key: "title", Value: core.String("A")},
		{Key: "py", Value: core.Number(2001)},
	}

	got, err := Fingerprint(payload, SHA256)
	require.NoError(t, err)

	sum := sha256.Sum256([]byte(`{"py":2001,"title":"A"}`))
	assert.Equal(t, hex.EncodeToString(sum[:]), got)
	assert.Len(t, got, core.FingerprintLength)
}

func TestFingerprint_StableUnderColumnReorder(t *testing.T) {
	for _, algo := range []Algorithm{SHA256, BLAKE2b} {
		t.Run(string(algo), func(t *testing.T) {
			a := core.Payload{
				{Key: "x", Value: core.Number(1)},
				{Key: "y", Value: core.Null()},
			}
			b := core.Payload{
				{Key: "y", Value: core.Null()},
				{Key: "x", Value: core.Number(1)},
			}

			fa, err := Fingerprint(a, algo)
			require.NoError(t, err)
			fb, err := Fingerprint(b, algo)
			require.NoError(t, err)
			assert.Equal(t, fa, fb)
			assert.Len(t, fa, core.FingerprintLength)
		})
	}
}

func TestFingerprint_DistinguishesContent(t *testing.T) {
	a := core.Payload{{Key: "x", Value: core.Number(1)}}
	b := core.Payload{{Key: "x", Value: core.String("1")}}

	fa, err := Fingerprint(a, SHA256)
	require.NoError(t, err)
	fb, err := Fingerprint(b, SHA256)
	require.NoError(t, err)
	assert.NotEqual(t, fa, fb, "number and string must fingerprint differently")
}

func TestFingerprint_AlgorithmsDiffer(t *testing.T) {
	p := core.Payload{{Key: "x", Value: core.Number(1)}}
	fs, err := Fingerprint(p, SHA256)
	require.NoError(t, err)
	fb, err := Fingerprint(p, BLAKE2b)
	require.NoError(t, err)
	assert.NotEqual(t, fs, fb)
}

func TestParseAlgorithm(t *testing.T) {
	a, err := ParseAlgorithm("")
	require.NoError(t, err)
	assert.Equal(t, SHA256, a)

	a, err = ParseAlgorithm("BLAKE2b")
	require.NoError(t, err)
	assert.Equal(t, BLAKE2b, a)

	_, err = ParseAlgorithm("md5")
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestFileChecksum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0644))

	got, err := FileChecksum(path)
	require.NoError(t, err)
	assert.Len(t, got, 16)

	fromReader, err := ReaderChecksum(strings.NewReader("a,b\n1,2\n"))
	require.NoError(t, err)
	assert.Equal(t, got, fromReader)

	_, err = FileChecksum(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
