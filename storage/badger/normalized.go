package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/stratum/core"
	"github.com/poiesic/stratum/storage"
)

// NormalizedRepository implements storage.NormalizedRepository for BadgerDB.
// The index nrmraw:<rawID> holds the normalized ID and enforces one
// normalized record per raw record.
type NormalizedRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.NormalizedRepository = (*NormalizedRepository)(nil)

func newNormalizedRepository(backend *Backend) (*NormalizedRepository, error) {
	idSeq, err := backend.GetSequence(normalizedIDSeq)
	if err != nil {
		return nil, err
	}
	return &NormalizedRepository{backend: backend, idSeq: idSeq}, nil
}

// AddNormalizedRecord stores a new normalized record.
func (r *NormalizedRepository) AddNormalizedRecord(ctx context.Context, record *core.NormalizedRecord) (*core.NormalizedRecord, error) {
	if err := core.ValidateNormalizedRecord(record); err != nil {
		return nil, err
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	err := r.backend.WithUpdate(ctx, func(tx *badger.Txn) error {
		indexKey := makeNormalizedRawKey(record.RawId)
		exists, err := keyExists(tx, indexKey)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: raw record %d already normalized", storage.ErrDuplicateKey, record.RawId)
		}

		exists, err = keyExists(tx, makeRawKey(record.RawId))
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: raw record %d", storage.ErrForeignKey, record.RawId)
		}

		id, err := nextID(r.idSeq)
		if err != nil {
			return err
		}
		record.Id = id

		if err := tx.Set(makeNormalizedKey(id), storage.MarshalNormalizedRecord(record)); err != nil {
			return err
		}
		return tx.Set(indexKey, storage.MarshalID(id))
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// GetNormalizedRecord retrieves a normalized record by ID.
func (r *NormalizedRepository) GetNormalizedRecord(ctx context.Context, id core.ID) (*core.NormalizedRecord, error) {
	var result *core.NormalizedRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readValue(tx, makeNormalizedKey(id), storage.UnmarshalNormalizedRecord)
		return err
	}, false)
	return result, err
}

// GetNormalizedRecordByRaw retrieves the normalized record of a raw record.
func (r *NormalizedRepository) GetNormalizedRecordByRaw(ctx context.Context, rawID core.ID) (*core.NormalizedRecord, error) {
	var result *core.NormalizedRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readIndexed(tx, makeNormalizedRawKey(rawID), makeNormalizedKey, storage.UnmarshalNormalizedRecord)
		return err
	}, false)
	return result, err
}

// UnenrichedNormalizedRecords returns normalized records with no enrichment record.
func (r *NormalizedRepository) UnenrichedNormalizedRecords(ctx context.Context) (*storage.Backlog[core.NormalizedRecord], error) {
	var backlog *storage.Backlog[core.NormalizedRecord]
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		backlog, err = scanWithoutChild(tx, normalizedPrefix, enrichmentNormPrefix, storage.UnmarshalNormalizedRecord)
		return err
	}, false)
	return backlog, err
}

// CountNormalizedRecords returns the number of stored normalized records.
func (r *NormalizedRepository) CountNormalizedRecords(ctx context.Context) (int, error) {
	var count int
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		count = countPrefix(tx, normalizedPrefix)
		return nil
	}, false)
	return count, err
}
