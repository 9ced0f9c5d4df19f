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

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// FingerprintLength is the length of a hex-encoded 256-bit digest.
const FingerprintLength = 64

// ParseFileType returns the FileType for a filename extension, case-insensitively.
func ParseFileType(ext string) (FileType, error) {
	switch ft := FileType(strings.ToLower(ext)); ft {
	case FileTypeCSV, FileTypeXLSX:
		return ft, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFileType, ext)
	}
}

// ValidateUpload validates an Upload according to domain rules.
//
// Validation rules:
//   - Filename must not be empty
//   - FileType must be .csv or .xlsx
//   - Size must not be negative
//
// NOT validated:
//   - Checksum (informational only)
//   - ID (0 is valid before the store assigns one)
func ValidateUpload(upload *Upload) error {
	if upload == nil {
		return fmt.Errorf("%w: upload is nil", ErrInvalidUpload)
	}

	if upload.Filename == "" {
		return fmt.Errorf("%w: %w", ErrInvalidUpload, ErrEmptyFilename)
	}

	if _, err := ParseFileType(string(upload.FileType)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidUpload, err)
	}

	if upload.Size < 0 {
		return fmt.Errorf("%w: negative size %d", ErrInvalidUpload, upload.Size)
	}

	return nil
}

// ValidateRawRecord validates a RawRecord according to domain rules.
//
// Validation rules:
//   - UploadId must be set
//   - Fingerprint must be 64 hex characters
//   - Payload must decode as a flat JSON object
func ValidateRawRecord(record *RawRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRawRecord)
	}

	if record.UploadId == 0 {
		return fmt.Errorf("%w: upload: %w", ErrInvalidRawRecord, ErrMissingParent)
	}

	if err := ValidateFingerprint(record.Fingerprint); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRawRecord, err)
	}

	if _, err := ParsePayload(record.Payload); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRawRecord, err)
	}

	return nil
}

// ValidateFingerprint checks that fp is a hex-encoded 256-bit digest.
func ValidateFingerprint(fp string) error {
	if len(fp) != FingerprintLength {
		return fmt.Errorf("%w: length %d", ErrInvalidFingerprint, len(fp))
	}
	if _, err := hex.DecodeString(fp); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFingerprint, err)
	}
	return nil
}

// ValidateNormalizedRecord validates a NormalizedRecord according to domain rules.
//
// Validation rules:
//   - RawId must be set
//
// Every column is individually nullable, so column contents are not checked.
func ValidateNormalizedRecord(record *NormalizedRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidNormalizedRecord)
	}

	if record.RawId == 0 {
		return fmt.Errorf("%w: raw record: %w", ErrInvalidNormalizedRecord, ErrMissingParent)
	}

	return nil
}

// ValidateEnrichmentRecord validates an EnrichmentRecord according to domain rules.
//
// Validation rules:
//   - NormalizedId must be set
//   - Annotation must be a JSON object
func ValidateEnrichmentRecord(record *EnrichmentRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidEnrichmentRecord)
	}

	if record.NormalizedId == 0 {
		return fmt.Errorf("%w: normalized record: %w", ErrInvalidEnrichmentRecord, ErrMissingParent)
	}

	annotation := bytes.TrimSpace([]byte(record.Annotation))
	if len(annotation) == 0 || annotation[0] != '{' || !json.Valid(annotation) {
		return fmt.Errorf("%w: %w", ErrInvalidEnrichmentRecord, ErrInvalidAnnotation)
	}

	return nil
}
