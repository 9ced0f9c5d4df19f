package ingestion

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/poiesic/stratum/ai"
	"github.com/poiesic/stratum/checksum"
	"github.com/poiesic/stratum/core"
	"github.com/poiesic/stratum/metrics"
	"github.com/poiesic/stratum/storage"
	"github.com/poiesic/stratum/tabular"
)

// Pipeline runs the three stages over one store: raw ingestion of a file,
// normalization of the raw backlog and enrichment of the normalized backlog.
type Pipeline struct {
	store      storage.Store
	ingestor   *Ingestor
	normalizer *Normalizer
	enricher   *Enricher
	registry   *tabular.Registry
	metrics    *metrics.Collector
	logger     *slog.Logger
}

// Report summarizes one pipeline run.
type Report struct {
	Upload     *core.Upload  `json:"upload,omitempty"`
	Raw        Result        `json:"raw"`
	Normalized Result        `json:"normalized"`
	Enriched   Result        `json:"enriched"`
	Duration   time.Duration `json:"duration"`
}

// NewPipeline creates a pipeline over store using deriver for enrichment.
func NewPipeline(store storage.Store, deriver ai.Deriver, opts ...Option) (*Pipeline, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if deriver == nil {
		return nil, ErrDeriverRequired
	}
	s, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}

	enricher, err := newEnricher(store.Normalized(), store.Enrichments(), deriver, s)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		store:      store,
		ingestor:   newIngestor(store.Raw(), s),
		normalizer: newNormalizer(store.Raw(), store.Normalized(), s),
		enricher:   enricher,
		registry:   s.registry,
		metrics:    s.metrics,
		logger:     s.logger.With("component", "pipeline"),
	}, nil
}

// Register records an upload for the file at path under its base name.
func (p *Pipeline) Register(ctx context.Context, path string) (*core.Upload, error) {
	return p.RegisterAs(ctx, path, filepath.Base(path))
}

// RegisterAs records an upload for the file at path under filename.
// Files of an unsupported type are rejected with tabular.ErrUnsupportedFormat
// before anything is stored.
func (p *Pipeline) RegisterAs(ctx context.Context, path, filename string) (*core.Upload, error) {
	parser, err := p.registry.Lookup(filename)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	sum, err := checksum.FileChecksum(path)
	if err != nil {
		return nil, err
	}

	upload, err := p.store.Uploads().AddUpload(ctx, &core.Upload{
		Filename: filename,
		FileType: parser.FileType(),
		Size:     info.Size(),
		Checksum: sum,
	})
	if err != nil {
		return nil, err
	}
	p.metrics.ObserveUpload()
	p.logger.Info("registered upload", "upload", upload.Id, "filename", filename, "size_kb", upload.SizeKB())
	return upload, nil
}

// Run registers the file at path and runs all three stages for it.
func (p *Pipeline) Run(ctx context.Context, path string) (*Report, error) {
	return p.RunAs(ctx, path, filepath.Base(path))
}

// RunAs registers the file at path under filename and runs all three stages.
func (p *Pipeline) RunAs(ctx context.Context, path, filename string) (*Report, error) {
	upload, err := p.RegisterAs(ctx, path, filename)
	if err != nil {
		return nil, err
	}
	return p.Process(ctx, path, upload)
}

// Process runs ingestion of the file at path for an already registered
// upload, then normalization and enrichment of everything pending.
// A failing stage stops the run; its *StageError is returned with the
// report of the stages completed so far.
func (p *Pipeline) Process(ctx context.Context, path string, upload *core.Upload) (*Report, error) {
	start := time.Now()
	report := &Report{Upload: upload}
	defer func() { report.Duration = time.Since(start) }()

	var err error
	report.Raw, err = p.Ingest(ctx, path, upload.Id)
	if err != nil {
		return report, err
	}
	report.Normalized, err = p.Normalize(ctx)
	if err != nil {
		return report, err
	}
	report.Enriched, err = p.Enrich(ctx)
	if err != nil {
		return report, err
	}
	return report, nil
}

// Ingest runs the raw stage for one file.
func (p *Pipeline) Ingest(ctx context.Context, path string, uploadID core.ID) (Result, error) {
	return p.observe(StageIngest, func() (Result, error) {
		return p.ingestor.Ingest(ctx, path, uploadID)
	})
}

// Normalize runs the normalization stage over the whole raw backlog.
func (p *Pipeline) Normalize(ctx context.Context) (Result, error) {
	return p.observe(StageNormalize, func() (Result, error) {
		return p.normalizer.NormalizeAll(ctx)
	})
}

// Enrich runs the enrichment stage over the whole normalized backlog.
func (p *Pipeline) Enrich(ctx context.Context) (Result, error) {
	return p.observe(StageEnrich, func() (Result, error) {
		return p.enricher.EnrichAll(ctx)
	})
}

func (p *Pipeline) observe(stage Stage, run func() (Result, error)) (Result, error) {
	start := time.Now()
	result, err := run()
	p.metrics.ObserveStage(string(stage), result.Inserted, result.Skipped, result.Failed, time.Since(start), err)
	if err != nil {
		p.logger.Error("stage failed", "stage", string(stage), "err", err)
	}
	return result, err
}

// Release releases resources including worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.enricher != nil {
		p.enricher.Release()
	}
}
