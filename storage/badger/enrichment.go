package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/stratum/core"
	"github.com/poiesic/stratum/storage"
)

// EnrichmentRepository implements storage.EnrichmentRepository for BadgerDB.
// The index enrnrm:<normalizedID> enforces one enrichment per normalized record.
type EnrichmentRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.EnrichmentRepository = (*EnrichmentRepository)(nil)

func newEnrichmentRepository(backend *Backend) (*EnrichmentRepository, error) {
	idSeq, err := backend.GetSequence(enrichmentIDSeq)
	if err != nil {
		return nil, err
	}
	return &EnrichmentRepository{backend: backend, idSeq: idSeq}, nil
}

// AddEnrichmentRecord stores a new enrichment record.
func (r *EnrichmentRepository) AddEnrichmentRecord(ctx context.Context, record *core.EnrichmentRecord) (*core.EnrichmentRecord, error) {
	if err := core.ValidateEnrichmentRecord(record); err != nil {
		return nil, err
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	err := r.backend.WithUpdate(ctx, func(tx *badger.Txn) error {
		indexKey := makeEnrichmentNormKey(record.NormalizedId)
		exists, err := keyExists(tx, indexKey)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: normalized record %d already enriched", storage.ErrDuplicateKey, record.NormalizedId)
		}

		exists, err = keyExists(tx, makeNormalizedKey(record.NormalizedId))
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: normalized record %d", storage.ErrForeignKey, record.NormalizedId)
		}

		id, err := nextID(r.idSeq)
		if err != nil {
			return err
		}
		record.Id = id

		if err := tx.Set(makeEnrichmentKey(id), storage.MarshalEnrichmentRecord(record)); err != nil {
			return err
		}
		return tx.Set(indexKey, storage.MarshalID(id))
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// GetEnrichmentRecordByNormalized retrieves the enrichment of a normalized record.
func (r *EnrichmentRepository) GetEnrichmentRecordByNormalized(ctx context.Context, normalizedID core.ID) (*core.EnrichmentRecord, error) {
	var result *core.EnrichmentRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readIndexed(tx, makeEnrichmentNormKey(normalizedID), makeEnrichmentKey, storage.UnmarshalEnrichmentRecord)
		return err
	}, false)
	return result, err
}

// CountEnrichmentRecords returns the number of stored enrichment records.
func (r *EnrichmentRepository) CountEnrichmentRecords(ctx context.Context) (int, error) {
	var count int
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		count = countPrefix(tx, enrichmentPrefix)
		return nil
	}, false)
	return count, err
}
