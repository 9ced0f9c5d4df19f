package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/stratum/core"
	"github.com/poiesic/stratum/storage"
)

// RawRepository implements storage.RawRepository for BadgerDB.
//
// Each raw record owns three keys: the record itself, the fingerprint
// index rawfp:<fingerprint> and the ownership index rawupl:<upload>:<id>.
type RawRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.RawRepository = (*RawRepository)(nil)

func newRawRepository(backend *Backend) (*RawRepository, error) {
	idSeq, err := backend.GetSequence(rawIDSeq)
	if err != nil {
		return nil, err
	}
	return &RawRepository{backend: backend, idSeq: idSeq}, nil
}

// AddRawRecord stores a new raw record unless its fingerprint is already stored.
func (r *RawRepository) AddRawRecord(ctx context.Context, record *core.RawRecord) (*core.RawRecord, error) {
	if err := core.ValidateRawRecord(record); err != nil {
		return nil, err
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	err := r.backend.WithUpdate(ctx, func(tx *badger.Txn) error {
		fpKey := makeFingerprintKey(record.Fingerprint)
		exists, err := keyExists(tx, fpKey)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: fingerprint %s", storage.ErrDuplicateKey, record.Fingerprint)
		}

		exists, err = keyExists(tx, makeUploadKey(record.UploadId))
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: upload %d", storage.ErrForeignKey, record.UploadId)
		}

		id, err := nextID(r.idSeq)
		if err != nil {
			return err
		}
		record.Id = id

		if err := tx.Set(makeRawKey(id), storage.MarshalRawRecord(record)); err != nil {
			return err
		}
		if err := tx.Set(fpKey, storage.MarshalID(id)); err != nil {
			return err
		}
		return tx.Set(makeRawUploadKey(record.UploadId, id), storage.MarshalID(id))
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// HasFingerprint reports whether a raw record with the fingerprint exists.
func (r *RawRepository) HasFingerprint(ctx context.Context, fingerprint string) (bool, error) {
	var exists bool
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		exists, err = keyExists(tx, makeFingerprintKey(fingerprint))
		return err
	}, false)
	return exists, err
}

// GetRawRecord retrieves a raw record by ID.
func (r *RawRepository) GetRawRecord(ctx context.Context, id core.ID) (*core.RawRecord, error) {
	var result *core.RawRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readValue(tx, makeRawKey(id), storage.UnmarshalRawRecord)
		return err
	}, false)
	return result, err
}

// GetRawRecordsByUpload returns the raw records owned by an upload, ordered by ID.
func (r *RawRepository) GetRawRecordsByUpload(ctx context.Context, uploadID core.ID) ([]*core.RawRecord, error) {
	var results []*core.RawRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = makeIDKey(rawUploadPrefix, uploadID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		var ids []core.ID
		for iter.Rewind(); iter.Valid(); iter.Next() {
			ids = append(ids, idFromKeyTail(iter.Item().Key()))
		}

		for _, id := range ids {
			record, err := readValue(tx, makeRawKey(id), storage.UnmarshalRawRecord)
			if err != nil {
				return err
			}
			results = append(results, record)
		}
		return nil
	}, false)
	return results, err
}

// UnnormalizedRawRecords returns raw records with no normalized record.
func (r *RawRepository) UnnormalizedRawRecords(ctx context.Context) (*storage.Backlog[core.RawRecord], error) {
	var backlog *storage.Backlog[core.RawRecord]
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		backlog, err = scanWithoutChild(tx, rawPrefix, normalizedRawPrefix, storage.UnmarshalRawRecord)
		return err
	}, false)
	return backlog, err
}

// CountRawRecords returns the number of stored raw records.
func (r *RawRepository) CountRawRecords(ctx context.Context) (int, error) {
	var count int
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		count = countPrefix(tx, rawPrefix)
		return nil
	}, false)
	return count, err
}
