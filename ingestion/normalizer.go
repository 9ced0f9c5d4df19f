package ingestion

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/stratum/core"
	"github.com/poiesic/stratum/fieldmap"
	"github.com/poiesic/stratum/storage"
)

// Normalizer maps raw records onto the canonical schema.
type Normalizer struct {
	raw        storage.RawRepository
	normalized storage.NormalizedRepository
	fieldMap   *fieldmap.FieldMap
	logger     *slog.Logger
}

// NewNormalizer creates a Normalizer reading raw and writing normalized.
func NewNormalizer(raw storage.RawRepository, normalized storage.NormalizedRepository, opts ...Option) (*Normalizer, error) {
	if raw == nil || normalized == nil {
		return nil, ErrRepositoryRequired
	}
	s, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return newNormalizer(raw, normalized, s), nil
}

func newNormalizer(raw storage.RawRepository, normalized storage.NormalizedRepository, s *settings) *Normalizer {
	return &Normalizer{
		raw:        raw,
		normalized: normalized,
		fieldMap:   s.fieldMap,
		logger:     s.logger.With("stage", string(StageNormalize)),
	}
}

// NormalizeAll normalizes every raw record that has no normalized record yet.
// Records normalized before the scan, and records another run normalized
// concurrently, count as skipped.
func (n *Normalizer) NormalizeAll(ctx context.Context) (Result, error) {
	var result Result

	backlog, err := n.raw.UnnormalizedRawRecords(ctx)
	if err != nil {
		return result, stageError(StageNormalize, result, err)
	}
	result.Skipped = backlog.Processed

	for _, raw := range backlog.Pending {
		if err := ctx.Err(); err != nil {
			return result, stageError(StageNormalize, result, err)
		}

		record := n.Normalize(raw)
		_, err := n.normalized.AddNormalizedRecord(ctx, record)
		switch {
		case errors.Is(err, storage.ErrDuplicateKey):
			result.Skipped++
		case err != nil:
			n.logger.Error("error storing normalized record", "raw", raw.Id, "err", err)
			return result, stageError(StageNormalize, result, err)
		default:
			result.Inserted++
		}
	}

	n.logger.Info("normalized records", "inserted", result.Inserted, "skipped", result.Skipped)
	return result, nil
}

// Normalize builds the normalized record for one raw record. Columns whose
// value is missing or cannot be coerced are left null.
func (n *Normalizer) Normalize(raw *core.RawRecord) *core.NormalizedRecord {
	record := &core.NormalizedRecord{RawId: raw.Id}

	payload, err := core.ParsePayload(raw.Payload)
	if err != nil {
		n.logger.Warn("undecodable raw payload, all columns null", "raw", raw.Id, "err", err)
		return record
	}

	for _, col := range core.Schema {
		value, err := coerce(n.fieldMap.Resolve(payload, col.Name), col.Type)
		if err != nil {
			n.logger.Debug("column coerced to null", "raw", raw.Id, "column", col.Name, "err", err)
			continue
		}
		if err := col.Set(&record.Columns, value); err != nil {
			n.logger.Debug("column coerced to null", "raw", raw.Id, "column", col.Name, "err", err)
		}
	}
	return record
}
