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
	"fmt"

	"github.com/poiesic/stratum/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return id, nil
}

// MarshalUpload serializes an Upload to bytes.
func MarshalUpload(upload *core.Upload) []byte {
	buf := make([]byte, core.UploadMUS.Size(*upload))
	core.UploadMUS.Marshal(*upload, buf)
	return buf
}

// UnmarshalUpload deserializes an Upload from bytes.
func UnmarshalUpload(data []byte) (*core.Upload, error) {
	upload, _, err := core.UploadMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &upload, nil
}

// MarshalRawRecord serializes a RawRecord to bytes.
func MarshalRawRecord(record *core.RawRecord) []byte {
	buf := make([]byte, core.RawRecordMUS.Size(*record))
	core.RawRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalRawRecord deserializes a RawRecord from bytes.
func UnmarshalRawRecord(data []byte) (*core.RawRecord, error) {
	record, _, err := core.RawRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &record, nil
}

// MarshalNormalizedRecord serializes a NormalizedRecord to bytes.
func MarshalNormalizedRecord(record *core.NormalizedRecord) []byte {
	buf := make([]byte, core.NormalizedRecordMUS.Size(*record))
	core.NormalizedRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalNormalizedRecord deserializes a NormalizedRecord from bytes.
func UnmarshalNormalizedRecord(data []byte) (*core.NormalizedRecord, error) {
	record, _, err := core.NormalizedRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &record, nil
}

// MarshalEnrichmentRecord serializes an EnrichmentRecord to bytes.
func MarshalEnrichmentRecord(record *core.EnrichmentRecord) []byte {
	buf := make([]byte, core.EnrichmentRecordMUS.Size(*record))
	core.EnrichmentRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalEnrichmentRecord deserializes an EnrichmentRecord from bytes.
func UnmarshalEnrichmentRecord(data []byte) (*core.EnrichmentRecord, error) {
	record, _, err := core.EnrichmentRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &record, nil
}
