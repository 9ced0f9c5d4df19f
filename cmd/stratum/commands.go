package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/poiesic/stratum"
	"github.com/poiesic/stratum/ingestion"
	"github.com/poiesic/stratum/tabular"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func ingestCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("at least one file or glob is required")
	}
	jobs := c.Int("jobs")
	if jobs <= 0 {
		return errors.New("jobs must be greater than 0")
	}

	files, err := expandPatterns(c.Args().Slice())
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("no files matched")
	}

	return withPipeline(c, nil, func(_ *stratum.Database, pipeline *ingestion.Pipeline) error {
		ctx := c.Context
		progress := NewProgressTracker(os.Stderr, len(files), 1)
		progress.Start()

		var (
			mu     sync.Mutex
			failed []string
			total  ingestion.Result
		)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(jobs)
		for _, path := range files {
			g.Go(func() error {
				defer progress.Increment(1)
				result, err := ingestFile(gctx, pipeline, path)

				mu.Lock()
				defer mu.Unlock()
				total.Inserted += result.Inserted
				total.Skipped += result.Skipped
				total.Failed += result.Failed
				if err != nil {
					slog.Error("error ingesting file", "path", path, "err", err)
					failed = append(failed, path)
				}
				return gctx.Err()
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		progress.Finish()
		printResult(ingestion.StageIngest, total, progress.Elapsed())

		if err := runStage(c, ingestion.StageNormalize, pipeline.Normalize); err != nil {
			return err
		}
		if err := runStage(c, ingestion.StageEnrich, pipeline.Enrich); err != nil {
			return err
		}

		if len(failed) > 0 {
			return fmt.Errorf("%d of %d files failed to ingest", len(failed), len(files))
		}
		return nil
	})
}

func ingestFile(ctx context.Context, pipeline *ingestion.Pipeline, path string) (ingestion.Result, error) {
	upload, err := pipeline.Register(ctx, path)
	if err != nil {
		return ingestion.Result{}, err
	}
	return pipeline.Ingest(ctx, path, upload.Id)
}

// expandPatterns resolves each argument as a doublestar glob. Plain paths
// are kept as given so that missing files surface as errors. Glob matches
// are limited to supported file types.
func expandPatterns(patterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, pattern := range patterns {
		if !hasMeta(pattern) {
			add(filepath.Clean(pattern))
			continue
		}
		if !doublestar.ValidatePathPattern(pattern) {
			return nil, fmt.Errorf("invalid glob %q", pattern)
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("failed to expand %q: %w", pattern, err)
		}
		slices.Sort(matches)
		for _, m := range matches {
			if tabular.DefaultRegistry.Supports(m) {
				add(m)
			}
		}
	}
	return files, nil
}

func hasMeta(pattern string) bool {
	for _, r := range pattern {
		switch r {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}

func runStage(c *cli.Context, stage ingestion.Stage, run func(context.Context) (ingestion.Result, error)) error {
	start := time.Now()
	result, err := run(c.Context)
	printResult(stage, result, time.Since(start))
	return err
}

func normalizeCommand(c *cli.Context) error {
	return withPipeline(c, nil, func(_ *stratum.Database, pipeline *ingestion.Pipeline) error {
		return runStage(c, ingestion.StageNormalize, pipeline.Normalize)
	})
}

func enrichCommand(c *cli.Context) error {
	return withPipeline(c, nil, func(_ *stratum.Database, pipeline *ingestion.Pipeline) error {
		return runStage(c, ingestion.StageEnrich, pipeline.Enrich)
	})
}

func runCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("exactly one file is required")
	}
	path := c.Args().First()

	return withPipeline(c, nil, func(_ *stratum.Database, pipeline *ingestion.Pipeline) error {
		report, err := pipeline.Run(c.Context, path)
		if report != nil {
			printReport(c, report)
		}
		if err != nil {
			var stageErr *ingestion.StageError
			if errors.As(err, &stageErr) {
				return cli.Exit(fmt.Sprintf("Error during %s: %v", stageErr.Stage, stageErr.Err), 1)
			}
			return cli.Exit(fmt.Sprintf("Error during upload: %v", err), 1)
		}
		return nil
	})
}

func printReport(c *cli.Context, report *ingestion.Report) {
	w := c.App.Writer
	if report.Upload != nil {
		fmt.Fprintf(w, "Upload %d: %s (%.2f KB)\n", report.Upload.Id, report.Upload.Filename, report.Upload.SizeKB())
	}
	fmt.Fprintf(w, "Raw:        %d inserted, %d skipped\n", report.Raw.Inserted, report.Raw.Skipped)
	fmt.Fprintf(w, "Normalized: %d inserted, %d skipped\n", report.Normalized.Inserted, report.Normalized.Skipped)
	fmt.Fprintf(w, "Enriched:   %d inserted, %d skipped, %d failed\n", report.Enriched.Inserted, report.Enriched.Skipped, report.Enriched.Failed)
	fmt.Fprintf(w, "Duration:   %s\n", report.Duration.Round(time.Millisecond))
}

func statsCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := c.Context
	store := db.Store()
	counts := []struct {
		name  string
		count func() (int, error)
	}{
		{"uploads", func() (int, error) { return store.Uploads().CountUploads(ctx) }},
		{"raw", func() (int, error) { return store.Raw().CountRawRecords(ctx) }},
		{"normalized", func() (int, error) { return store.Normalized().CountNormalizedRecords(ctx) }},
		{"enriched", func() (int, error) { return store.Enrichments().CountEnrichmentRecords(ctx) }},
	}
	for _, entry := range counts {
		n, err := entry.count()
		if err != nil {
			return fmt.Errorf("failed to count %s: %w", entry.name, err)
		}
		fmt.Fprintf(c.App.Writer, "%-11s %d\n", entry.name+":", n)
	}
	return nil
}

func fieldmapCommand(c *cli.Context) error {
	fm, err := loadFieldMap(c)
	if err != nil {
		return err
	}
	return fm.WriteYAML(c.App.Writer)
}
