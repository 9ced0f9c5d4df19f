package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/stratum/ai"
	"github.com/poiesic/stratum/core"
	"github.com/poiesic/stratum/storage"
)

// Enricher derives annotations for normalized records on a bounded worker pool.
type Enricher struct {
	normalized  storage.NormalizedRepository
	enrichments storage.EnrichmentRepository
	deriver     ai.Deriver
	pool        *ants.Pool
	timeout     time.Duration
	logger      *slog.Logger
}

// NewEnricher creates an Enricher. Call Release when done.
func NewEnricher(normalized storage.NormalizedRepository, enrichments storage.EnrichmentRepository, deriver ai.Deriver, opts ...Option) (*Enricher, error) {
	s, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return newEnricher(normalized, enrichments, deriver, s)
}

func newEnricher(normalized storage.NormalizedRepository, enrichments storage.EnrichmentRepository, deriver ai.Deriver, s *settings) (*Enricher, error) {
	if normalized == nil || enrichments == nil {
		return nil, ErrRepositoryRequired
	}
	if deriver == nil {
		return nil, ErrDeriverRequired
	}
	pool, err := ants.NewPool(s.poolSize)
	if err != nil {
		return nil, err
	}
	return &Enricher{
		normalized:  normalized,
		enrichments: enrichments,
		deriver:     deriver,
		pool:        pool,
		timeout:     s.deriveTimeout,
		logger:      s.logger.With("stage", string(StageEnrich)),
	}, nil
}

// outcome is the result of enriching one record.
type outcome int

const (
	outcomeInserted outcome = iota
	outcomeSkipped
	outcomeFailed
)

// EnrichAll enriches every normalized record that has no enrichment yet.
// Each record is derived at most once; derivation failures are counted
// and the batch continues. A storage failure stops submitting new work
// and is returned as a *StageError after in-flight records finish.
func (e *Enricher) EnrichAll(ctx context.Context) (Result, error) {
	var result Result

	backlog, err := e.normalized.UnenrichedNormalizedRecords(ctx)
	if err != nil {
		return result, stageError(StageEnrich, result, err)
	}
	result.Skipped = backlog.Processed

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
	)
	// fail must be called with mu held.
	fail := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	record := func(o outcome, err error) {
		mu.Lock()
		defer mu.Unlock()
		fail(err)
		switch o {
		case outcomeInserted:
			result.Inserted++
		case outcomeSkipped:
			result.Skipped++
		case outcomeFailed:
			result.Failed++
		}
	}
	failed := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return firstErr != nil
	}

	for _, rec := range backlog.Pending {
		if failed() {
			break
		}
		if err := ctx.Err(); err != nil {
			mu.Lock()
			fail(err)
			mu.Unlock()
			break
		}

		wg.Add(1)
		if err := e.pool.Submit(func() {
			defer wg.Done()
			record(e.enrich(ctx, rec))
		}); err != nil {
			wg.Done()
			mu.Lock()
			fail(fmt.Errorf("error submitting enrichment: %w", err))
			mu.Unlock()
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return result, stageError(StageEnrich, result, firstErr)
	}
	e.logger.Info("enriched records", "inserted", result.Inserted, "skipped", result.Skipped, "failed", result.Failed)
	return result, nil
}

// enrich derives and stores the annotation of one record. The returned
// error is non-nil only for storage failures.
func (e *Enricher) enrich(ctx context.Context, record *core.NormalizedRecord) (outcome, error) {
	annotation, err := e.derive(ctx, record)
	if err != nil {
		e.logger.Warn("derivation failed", "normalized", record.Id, "err", err)
		return outcomeFailed, nil
	}

	encoded, err := annotation.Encode()
	if err != nil {
		e.logger.Warn("derivation returned an unencodable annotation", "normalized", record.Id, "err", err)
		return outcomeFailed, nil
	}

	_, err = e.enrichments.AddEnrichmentRecord(ctx, &core.EnrichmentRecord{
		NormalizedId: record.Id,
		Annotation:   encoded,
	})
	switch {
	case errors.Is(err, storage.ErrDuplicateKey):
		return outcomeSkipped, nil
	case err != nil:
		e.logger.Error("error storing enrichment record", "normalized", record.Id, "err", err)
		return outcomeFailed, err
	}
	return outcomeInserted, nil
}

// derive calls the deriver bounded by the derive timeout. A deriver that
// ignores its context is abandoned when the timeout fires and its late
// result is discarded.
func (e *Enricher) derive(ctx context.Context, record *core.NormalizedRecord) (ai.Annotation, error) {
	deriveCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	type derived struct {
		annotation ai.Annotation
		err        error
	}
	done := make(chan derived, 1)
	go func() {
		annotation, err := e.deriver.Derive(deriveCtx, record)
		done <- derived{annotation: annotation, err: err}
	}()

	select {
	case d := <-done:
		return d.annotation, d.err
	case <-deriveCtx.Done():
		return nil, fmt.Errorf("%w: record %d: %w", ai.ErrDerivation, record.Id, deriveCtx.Err())
	}
}

// Release releases the worker pool.
// The enricher should not be used after calling Release.
func (e *Enricher) Release() {
	if e.pool != nil {
		e.pool.Release()
	}
}
