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


// Package stratum ingests tabular files into a layered store: raw rows
// deduplicated by content fingerprint, typed normalized rows, and derived
// enrichment annotations.
package stratum

import (
	"context"
	"log/slog"

	"github.com/poiesic/stratum/ai"
	"github.com/poiesic/stratum/ai/mock"
	"github.com/poiesic/stratum/ai/openai"
	"github.com/poiesic/stratum/ingestion"
	"github.com/poiesic/stratum/storage"
	"github.com/poiesic/stratum/storage/badger"
	"github.com/poiesic/stratum/storage/postgres"
)

// Database ties a storage engine to an enrichment provider.
type Database struct {
	store    storage.Store
	provider ai.Provider
	logger   *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	postgresURL string
	inMemory    bool
	provider    ai.Provider
	aiConfig    *ai.Config
	logger      *slog.Logger
}

// WithPostgres stores data in PostgreSQL instead of badger.
func WithPostgres(connString string) DatabaseOption {
	return func(o *databaseOptions) {
		o.postgresURL = connString
	}
}

// WithInMemory keeps badger data in memory only.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithProvider sets the enrichment provider. It takes precedence over WithAIConfig.
func WithProvider(provider ai.Provider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithAIConfig enriches through an OpenAI-compatible service configured by cfg.
// Without it, and without WithProvider, records get placeholder annotations.
func WithAIConfig(cfg *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = cfg
	}
}

// WithLogger sets the logger shared by the store and pipelines.
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		o.logger = logger
	}
}

// NewDatabase opens the store at path (a badger directory) and the
// enrichment provider. path is ignored for Postgres and in-memory stores.
func NewDatabase(ctx context.Context, path string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	store, err := openStore(ctx, path, options)
	if err != nil {
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		if options.aiConfig != nil {
			provider, err = openai.NewProvider(options.aiConfig)
			if err != nil {
				store.Close()
				return nil, err
			}
		} else {
			provider = mock.NewMockProvider()
		}
	}

	return &Database{
		store:    store,
		provider: provider,
		logger:   options.logger,
	}, nil
}

func openStore(ctx context.Context, path string, options *databaseOptions) (storage.Store, error) {
	switch {
	case options.postgresURL != "":
		return postgres.NewStore(ctx, options.postgresURL, options.logger)
	case options.inMemory:
		return badger.NewMemoryStore()
	default:
		return badger.NewStore(path, options.logger)
	}
}

// Store returns the storage engine.
func (db *Database) Store() storage.Store {
	return db.store
}

// Provider returns the enrichment provider.
func (db *Database) Provider() ai.Provider {
	return db.provider
}

// NewPipeline creates an ingestion pipeline over the database.
// The caller must Release it.
func (db *Database) NewPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	opts = append([]ingestion.Option{ingestion.WithLogger(db.logger)}, opts...)
	return ingestion.NewPipeline(db.store, db.provider.Deriver(), opts...)
}

// Close closes the provider and the store.
func (db *Database) Close() error {
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}
	if err := db.store.Close(); err != nil {
		db.logger.Error("error closing store", "err", err)
		return err
	}
	return nil
}
