package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/stratum/core"
	"github.com/poiesic/stratum/storage"
)

// UploadRepository implements storage.UploadRepository for BadgerDB.
type UploadRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.UploadRepository = (*UploadRepository)(nil)

func newUploadRepository(backend *Backend) (*UploadRepository, error) {
	idSeq, err := backend.GetSequence(uploadIDSeq)
	if err != nil {
		return nil, err
	}
	return &UploadRepository{backend: backend, idSeq: idSeq}, nil
}

// AddUpload stores a new upload.
func (r *UploadRepository) AddUpload(ctx context.Context, upload *core.Upload) (*core.Upload, error) {
	if err := core.ValidateUpload(upload); err != nil {
		return nil, err
	}
	if upload.UploadedAt.IsZero() {
		upload.UploadedAt = time.Now().UTC()
	}

	err := r.backend.WithUpdate(ctx, func(tx *badger.Txn) error {
		id, err := nextID(r.idSeq)
		if err != nil {
			return err
		}
		upload.Id = id
		return tx.Set(makeUploadKey(id), storage.MarshalUpload(upload))
	})
	if err != nil {
		return nil, err
	}
	return upload, nil
}

// GetUpload retrieves an upload by ID.
func (r *UploadRepository) GetUpload(ctx context.Context, id core.ID) (*core.Upload, error) {
	var result *core.Upload
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readValue(tx, makeUploadKey(id), storage.UnmarshalUpload)
		return err
	}, false)
	return result, err
}

// ListUploads returns all uploads ordered by ID.
func (r *UploadRepository) ListUploads(ctx context.Context) ([]*core.Upload, error) {
	var results []*core.Upload
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		results, err = scanPrefix(tx, []byte(uploadPrefix), storage.UnmarshalUpload)
		return err
	}, false)
	return results, err
}

// CountUploads returns the number of stored uploads.
func (r *UploadRepository) CountUploads(ctx context.Context) (int, error) {
	var count int
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		count = countPrefix(tx, uploadPrefix)
		return nil
	}, false)
	return count, err
}
