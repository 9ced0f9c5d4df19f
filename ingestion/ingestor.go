package ingestion

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/stratum/checksum"
	"github.com/poiesic/stratum/core"
	"github.com/poiesic/stratum/storage"
	"github.com/poiesic/stratum/tabular"
)

// Ingestor loads the rows of a tabular file into the raw layer.
// Rows whose fingerprint is already stored are skipped.
type Ingestor struct {
	raw       storage.RawRepository
	registry  *tabular.Registry
	algorithm checksum.Algorithm
	logger    *slog.Logger
}

// NewIngestor creates an Ingestor writing to raw.
func NewIngestor(raw storage.RawRepository, opts ...Option) (*Ingestor, error) {
	if raw == nil {
		return nil, ErrRepositoryRequired
	}
	s, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return newIngestor(raw, s), nil
}

func newIngestor(raw storage.RawRepository, s *settings) *Ingestor {
	return &Ingestor{
		raw:       raw,
		registry:  s.registry,
		algorithm: s.algorithm,
		logger:    s.logger.With("stage", string(StageIngest)),
	}
}

// Ingest parses the file at path and stores each new row under uploadID.
// Errors are returned as *StageError carrying the counts reached so far.
func (i *Ingestor) Ingest(ctx context.Context, path string, uploadID core.ID) (Result, error) {
	var result Result

	table, err := i.registry.ParseFile(path)
	if err != nil {
		return result, stageError(StageIngest, result, err)
	}

	for n, row := range table.Rows {
		if err := ctx.Err(); err != nil {
			return result, stageError(StageIngest, result, err)
		}

		inserted, err := i.ingestRow(ctx, row, uploadID)
		if err != nil {
			i.logger.Error("error storing raw record", "path", path, "row", n+1, "err", err)
			return result, stageError(StageIngest, result, err)
		}
		if inserted {
			result.Inserted++
		} else {
			result.Skipped++
		}
	}

	i.logger.Info("ingested file", "path", path, "upload", uploadID,
		"inserted", result.Inserted, "skipped", result.Skipped)
	return result, nil
}

// ingestRow stores one canonical row and reports whether it was new.
func (i *Ingestor) ingestRow(ctx context.Context, row core.Payload, uploadID core.ID) (bool, error) {
	fingerprint, err := checksum.Fingerprint(row, i.algorithm)
	if err != nil {
		return false, err
	}

	exists, err := i.raw.HasFingerprint(ctx, fingerprint)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	payload, err := row.MarshalJSON()
	if err != nil {
		return false, err
	}
	_, err = i.raw.AddRawRecord(ctx, &core.RawRecord{
		UploadId:    uploadID,
		Payload:     string(payload),
		Fingerprint: fingerprint,
	})
	if errors.Is(err, storage.ErrDuplicateKey) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
