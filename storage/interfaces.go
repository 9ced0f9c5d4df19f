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


package storage

import (
	"context"

	"github.com/poiesic/stratum/core"
)

// Backlog is the result of an anti-join scan: the parents still lacking a
// child, and how many parents already had one when the scan ran.
type Backlog[T any] struct {
	Pending   []*T
	Processed int
}

// Store bundles the repositories of one storage engine.
type Store interface {
	Uploads() UploadRepository
	Raw() RawRepository
	Normalized() NormalizedRepository
	Enrichments() EnrichmentRepository

	// Close closes the storage backend and releases resources.
	Close() error
}

// UploadRepository provides operations for upload metadata.
type UploadRepository interface {
	// AddUpload stores a new upload.
	// Generates the ID and sets UploadedAt if not already set.
	AddUpload(ctx context.Context, upload *core.Upload) (*core.Upload, error)

	// GetUpload retrieves an upload by ID.
	// Returns ErrNotFound if the upload doesn't exist.
	GetUpload(ctx context.Context, id core.ID) (*core.Upload, error)

	// ListUploads returns all uploads ordered by ID.
	ListUploads(ctx context.Context) ([]*core.Upload, error)

	// CountUploads returns the number of stored uploads.
	CountUploads(ctx context.Context) (int, error)
}

// RawRepository provides operations for the raw layer.
type RawRepository interface {
	// AddRawRecord stores a new raw record.
	// Generates the ID and sets CreatedAt if not already set.
	// Returns ErrDuplicateKey if the fingerprint is already stored and
	// ErrForeignKey if the upload doesn't exist.
	AddRawRecord(ctx context.Context, record *core.RawRecord) (*core.RawRecord, error)

	// HasFingerprint reports whether a raw record with the fingerprint exists.
	HasFingerprint(ctx context.Context, fingerprint string) (bool, error)

	// GetRawRecord retrieves a raw record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	GetRawRecord(ctx context.Context, id core.ID) (*core.RawRecord, error)

	// GetRawRecordsByUpload returns the raw records owned by an upload, ordered by ID.
	GetRawRecordsByUpload(ctx context.Context, uploadID core.ID) ([]*core.RawRecord, error)

	// UnnormalizedRawRecords returns raw records that have no normalized record,
	// ordered by ID.
	UnnormalizedRawRecords(ctx context.Context) (*Backlog[core.RawRecord], error)

	// CountRawRecords returns the number of stored raw records.
	CountRawRecords(ctx context.Context) (int, error)
}

// NormalizedRepository provides operations for the normalized layer.
type NormalizedRepository interface {
	// AddNormalizedRecord stores a new normalized record.
	// Generates the ID and sets CreatedAt if not already set.
	// Returns ErrDuplicateKey if the raw record is already normalized and
	// ErrForeignKey if the raw record doesn't exist.
	AddNormalizedRecord(ctx context.Context, record *core.NormalizedRecord) (*core.NormalizedRecord, error)

	// GetNormalizedRecord retrieves a normalized record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	GetNormalizedRecord(ctx context.Context, id core.ID) (*core.NormalizedRecord, error)

	// GetNormalizedRecordByRaw retrieves the normalized record of a raw record.
	// Returns ErrNotFound if the raw record is not normalized.
	GetNormalizedRecordByRaw(ctx context.Context, rawID core.ID) (*core.NormalizedRecord, error)

	// UnenrichedNormalizedRecords returns normalized records that have no
	// enrichment record, ordered by ID.
	UnenrichedNormalizedRecords(ctx context.Context) (*Backlog[core.NormalizedRecord], error)

	// CountNormalizedRecords returns the number of stored normalized records.
	CountNormalizedRecords(ctx context.Context) (int, error)
}

// EnrichmentRepository provides operations for the enrichment layer.
type EnrichmentRepository interface {
	// AddEnrichmentRecord stores a new enrichment record.
	// Generates the ID and sets CreatedAt if not already set.
	// Returns ErrDuplicateKey if the normalized record is already enriched and
	// ErrForeignKey if the normalized record doesn't exist.
	AddEnrichmentRecord(ctx context.Context, record *core.EnrichmentRecord) (*core.EnrichmentRecord, error)

	// GetEnrichmentRecordByNormalized retrieves the enrichment of a normalized record.
	// Returns ErrNotFound if the normalized record is not enriched.
	GetEnrichmentRecordByNormalized(ctx context.Context, normalizedID core.ID) (*core.EnrichmentRecord, error)

	// CountEnrichmentRecords returns the number of stored enrichment records.
	CountEnrichmentRecords(ctx context.Context) (int, error)
}
