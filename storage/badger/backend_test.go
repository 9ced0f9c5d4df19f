package badger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/stratum/core"
	"github.com/poiesic/stratum/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true, nil)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "nested", "db")
	backend, err := OpenBackend(tmpDir, false, nil)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	info, err := os.Stat(tmpDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir(), "missing directories are created")
}

func TestOpenBackend_FilePath(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(tmpFile, []byte("x"), 0644))

	_, err := OpenBackend(tmpFile, false, nil)
	assert.Error(t, err)
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true, nil)
	require.NoError(t, err)

	assert.False(t, backend.IsClosed())
	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())

	err = backend.WithTx(func(tx *badger.Txn) error { return nil }, false)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestWithUpdate_RetriesConflicts(t *testing.T) {
	backend, err := OpenBackend("", true, nil)
	require.NoError(t, err)
	defer backend.Close()

	key := []byte("test:key")
	attempts := 0
	err = backend.WithUpdate(context.Background(), func(tx *badger.Txn) error {
		attempts++
		if _, err := keyExists(tx, key); err != nil {
			return err
		}
		if attempts == 1 {
			// A concurrent writer commits the key this transaction just read.
			require.NoError(t, backend.db.Update(func(other *badger.Txn) error {
				return other.Set(key, []byte("other"))
			}))
		}
		return tx.Set(key, []byte("mine"))
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestWithUpdate_CanceledContext(t *testing.T) {
	backend, err := OpenBackend("", true, nil)
	require.NoError(t, err)
	defer backend.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = backend.WithUpdate(ctx, func(tx *badger.Txn) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNextID_SkipsZero(t *testing.T) {
	backend, err := OpenBackend("", true, nil)
	require.NoError(t, err)
	defer backend.Close()

	seq, err := backend.GetSequence("seq:test")
	require.NoError(t, err)
	defer seq.Release()

	first, err := nextID(seq)
	require.NoError(t, err)
	second, err := nextID(seq)
	require.NoError(t, err)

	assert.NotZero(t, first)
	assert.Greater(t, second, first)
}

func TestKeys_OrderFollowsID(t *testing.T) {
	a := makeRawKey(core.ID(255))
	b := makeRawKey(core.ID(256))
	assert.Less(t, string(a), string(b))
	assert.Equal(t, core.ID(256), idFromKey(b, rawPrefix))
	assert.Equal(t, core.ID(7), idFromKeyTail(makeRawUploadKey(3, 7)))
}
