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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidUpload indicates an Upload failed validation.
	ErrInvalidUpload = errors.New("invalid upload")

	// ErrInvalidRawRecord indicates a RawRecord failed validation.
	ErrInvalidRawRecord = errors.New("invalid raw record")

	// ErrInvalidNormalizedRecord indicates a NormalizedRecord failed validation.
	ErrInvalidNormalizedRecord = errors.New("invalid normalized record")

	// ErrInvalidEnrichmentRecord indicates an EnrichmentRecord failed validation.
	ErrInvalidEnrichmentRecord = errors.New("invalid enrichment record")

	// ErrEmptyFilename indicates the upload Filename field is empty.
	ErrEmptyFilename = errors.New("filename cannot be empty")

	// ErrInvalidFileType indicates a FileType other than .csv or .xlsx.
	ErrInvalidFileType = errors.New("invalid file type")

	// ErrMissingParent indicates a record does not reference its parent.
	ErrMissingParent = errors.New("parent id cannot be zero")

	// ErrInvalidFingerprint indicates a fingerprint that is not 64 hex characters.
	ErrInvalidFingerprint = errors.New("invalid fingerprint")

	// ErrInvalidPayload indicates a payload that is not a flat JSON object.
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrInvalidValue indicates a JSON value outside the canonical variants.
	ErrInvalidValue = errors.New("invalid value")

	// ErrInvalidAnnotation indicates an annotation that is not a JSON object.
	ErrInvalidAnnotation = errors.New("invalid annotation")

	// ErrColumnType indicates a value whose type does not match its column.
	ErrColumnType = errors.New("column type mismatch")
)
