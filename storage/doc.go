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


// Package storage provides the storage abstraction layer for stratum.
//
// This package defines repository interfaces that decouple the layered
// record store from the pipeline stages. Two engines implement them:
// storage/badger (embedded, the default) and storage/postgres.
//
// # Constructor Return Type Pattern
//
// Public engine constructors return the storage.Store interface:
//
//	store, err := badger.NewStore(path, logger)  // returns storage.Store
//
// Internal package constructors (newRawRepository, newBackend, etc.) may
// return concrete types since they're only used within the engine package.
//
// # Architecture
//
// The store holds four layers, each with its own repository:
//
//   - UploadRepository: one Upload per accepted file
//   - RawRepository: deduplicated rows keyed by a unique fingerprint
//   - NormalizedRepository: typed rows, at most one per raw record
//   - EnrichmentRepository: annotations, at most one per normalized record
//
// A child record's existence is the only marker that its parent has been
// processed. UnnormalizedRawRecords and UnenrichedNormalizedRecords are the
// anti-join queries the stages scan for work.
//
// # Uniqueness
//
// Engines enforce fingerprint uniqueness and one-to-one ownership
// themselves. Inserts that would violate them fail with ErrDuplicateKey,
// even under concurrent writers. Inserts whose parent is missing fail with
// ErrForeignKey.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
