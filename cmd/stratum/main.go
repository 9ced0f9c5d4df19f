// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/stratum"
	"github.com/poiesic/stratum/ai"
	"github.com/poiesic/stratum/checksum"
	"github.com/poiesic/stratum/fieldmap"
	"github.com/poiesic/stratum/ingestion"
	"github.com/urfave/cli/v2"
)

func main() {
	// A missing .env is fine; flags and the environment still apply.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:   "stratum",
		Usage:  "Layered ingestion of tabular research data",
		Flags:  globalFlags(),
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest files matching the given paths or globs, then normalize and enrich",
				ArgsUsage: "<file|glob>...",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "jobs",
						Usage: "Number of files ingested concurrently",
						Value: 4,
					},
				},
			},
			{
				Name:   "normalize",
				Usage:  "Normalize all raw records that lack a normalized record",
				Action: normalizeCommand,
			},
			{
				Name:   "enrich",
				Usage:  "Enrich all normalized records that lack an enrichment",
				Action: enrichCommand,
			},
			{
				Name:      "run",
				Usage:     "Run the full pipeline for one file",
				ArgsUsage: "<file>",
				Action:    runCommand,
			},
			{
				Name:   "serve",
				Usage:  "Serve the HTTP upload API",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "addr",
						Usage:   "Listen address",
						Value:   ":8000",
						EnvVars: []string{"STRATUM_ADDR"},
					},
					&cli.StringFlag{
						Name:    "upload-dir",
						Usage:   "Directory for saved uploads",
						Value:   "uploads",
						EnvVars: []string{"STRATUM_UPLOAD_DIR"},
					},
				},
			},
			{
				Name:      "watch",
				Usage:     "Ingest supported files as they appear in a directory",
				ArgsUsage: "<dir>",
				Action:    watchCommand,
			},
			{
				Name:   "stats",
				Usage:  "Print record counts per layer",
				Action: statsCommand,
			},
			{
				Name:   "fieldmap",
				Usage:  "Print the effective field map as YAML",
				Action: fieldmapCommand,
			},
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Aliases: []string{"l"},
			Usage:   "Set logging level (debug, info, warn, error)",
			Value:   "info",
			EnvVars: []string{"STRATUM_LOG_LEVEL"},
		},
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to BadgerDB database directory",
			Value:   "stratum.db",
			EnvVars: []string{"STRATUM_DB"},
		},
		&cli.StringFlag{
			Name:    "postgres-url",
			Usage:   "PostgreSQL connection string; overrides --db",
			EnvVars: []string{"STRATUM_POSTGRES_URL", "DATABASE_URL"},
		},
		&cli.StringFlag{
			Name:    "field-map",
			Usage:   "YAML file overriding the built-in field map",
			EnvVars: []string{"STRATUM_FIELD_MAP"},
		},
		&cli.StringFlag{
			Name:    "fingerprint",
			Usage:   "Raw record fingerprint algorithm (sha256, blake2b)",
			Value:   string(checksum.SHA256),
			EnvVars: []string{"STRATUM_FINGERPRINT"},
		},
		&cli.StringFlag{
			Name:    "deriver",
			Usage:   "Enrichment deriver (mock, openai)",
			Value:   "mock",
			EnvVars: []string{"STRATUM_DERIVER"},
		},
		&cli.StringFlag{
			Name:    "llm-host",
			Usage:   "OpenAI-compatible service host URL",
			Value:   ai.DefaultConfig().Host,
			EnvVars: []string{"STRATUM_LLM_HOST"},
		},
		&cli.StringFlag{
			Name:    "llm-model",
			Usage:   "Model used for enrichment",
			Value:   ai.DefaultConfig().Model,
			EnvVars: []string{"STRATUM_LLM_MODEL"},
		},
		&cli.StringFlag{
			Name:    "llm-token",
			Usage:   "API token for the enrichment service",
			EnvVars: []string{"STRATUM_LLM_TOKEN", "OPENAI_API_KEY"},
		},
		&cli.DurationFlag{
			Name:    "llm-timeout",
			Usage:   "Timeout for one enrichment request",
			Value:   ai.DefaultConfig().Timeout,
			EnvVars: []string{"STRATUM_LLM_TIMEOUT"},
		},
		&cli.IntFlag{
			Name:    "workers",
			Usage:   "Concurrent enrichment requests (0 uses the default)",
			EnvVars: []string{"STRATUM_WORKERS"},
		},
	}
}

// openDatabase opens the store and enrichment provider selected by the global flags.
func openDatabase(c *cli.Context) (*stratum.Database, error) {
	opts := []stratum.DatabaseOption{stratum.WithLogger(slog.Default())}

	if url := c.String("postgres-url"); url != "" {
		opts = append(opts, stratum.WithPostgres(url))
	}

	switch strings.ToLower(c.String("deriver")) {
	case "mock":
	case "openai":
		cfg := ai.NewConfig(
			ai.WithHost(c.String("llm-host")),
			ai.WithModel(c.String("llm-model")),
			ai.WithToken(c.String("llm-token")),
			ai.WithTimeout(c.Duration("llm-timeout")),
		)
		cfg.Normalize()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid AI configuration: %w", err)
		}
		opts = append(opts, stratum.WithAIConfig(cfg))
	default:
		return nil, fmt.Errorf("invalid deriver %q: must be one of mock, openai", c.String("deriver"))
	}

	db, err := stratum.NewDatabase(c.Context, c.String("db"), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// pipelineOptions translates the global flags into pipeline options.
func pipelineOptions(c *cli.Context) ([]ingestion.Option, error) {
	opts := []ingestion.Option{
		ingestion.WithFingerprint(checksum.Algorithm(strings.ToLower(c.String("fingerprint")))),
		ingestion.WithDeriveTimeout(c.Duration("llm-timeout")),
	}
	if workers := c.Int("workers"); workers > 0 {
		opts = append(opts, ingestion.WithPoolSize(workers))
	}
	fm, err := loadFieldMap(c)
	if err != nil {
		return nil, err
	}
	return append(opts, ingestion.WithFieldMap(fm)), nil
}

func loadFieldMap(c *cli.Context) (*fieldmap.FieldMap, error) {
	path := c.String("field-map")
	if path == "" {
		return fieldmap.Default(), nil
	}
	fm, err := fieldmap.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load field map: %w", err)
	}
	return fm, nil
}

// withPipeline opens the database and a pipeline, runs fn and releases both.
func withPipeline(c *cli.Context, extra []ingestion.Option, fn func(*stratum.Database, *ingestion.Pipeline) error) error {
	opts, err := pipelineOptions(c)
	if err != nil {
		return err
	}
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewPipeline(append(opts, extra...)...)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	return fn(db, pipeline)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

func printResult(stage ingestion.Stage, result ingestion.Result, elapsed time.Duration) {
	fmt.Fprintf(os.Stderr, "%s: %d inserted, %d skipped, %d failed (%s)\n",
		stage, result.Inserted, result.Skipped, result.Failed, elapsed.Round(time.Millisecond))
}
