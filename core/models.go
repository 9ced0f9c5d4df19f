package core

import (
	"math"
	"time"
)

// ID is a unique identifier for stored records.
// IDs are generated from storage sequences and are never zero once persisted.
type ID uint64

// FileType identifies the tabular format of an uploaded file by its extension.
type FileType string

const (
	// FileTypeCSV is a comma-separated values file.
	FileTypeCSV FileType = ".csv"
	// FileTypeXLSX is an Office Open XML spreadsheet.
	FileTypeXLSX FileType = ".xlsx"
)

// Upload identifies one file-ingestion event.
// It is created once when a file is accepted and is immutable afterwards.
type Upload struct {
	Id         ID
	Filename   string    // Original filename as supplied by the client
	FileType   FileType  // Detected from the filename extension
	Size       int64     // File size in bytes
	Checksum   string    // xxhash64 of the file contents, informational only
	UploadedAt time.Time // When the upload was accepted
}

// SizeKB returns the upload size in kilobytes rounded to two decimals.
func (u *Upload) SizeKB() float64 {
	return math.Round(float64(u.Size)/1024*100) / 100
}

// RawRecord is one source row stored as its canonical serialization.
// The fingerprint is unique across the whole raw layer.
type RawRecord struct {
	Id          ID
	UploadId    ID
	Payload     string // Canonical JSON object in source column order
	Fingerprint string // Hex digest of the key-sorted canonical payload
	CreatedAt   time.Time
}

// NormalizedRecord is the typed view of a RawRecord under the canonical schema.
// At most one NormalizedRecord exists per RawRecord.
type NormalizedRecord struct {
	Id        ID
	RawId     ID
	CreatedAt time.Time
	Columns
}

// Columns holds one nullable field per canonical schema column.
// Field order matches Schema.
type Columns struct {
	UnitID                   *int64
	SourceCreatedAt          *time.Time
	SourceID                 *int64
	StartedAt                *time.Time
	Tainted                  *bool
	Channel                  *string
	Trust                    *int64
	WorkerID                 *int64
	Country                  *string
	Region                   *string
	City                     *string
	IPAddress                *string
	AppealToReader           *string
	Conjunctions             *int64
	Connectivity             *int64
	NarrativePerspective     *string
	SensoryLanguage          *int64
	Setting                  *string
	Abstract                 *string
	AppealToReaderGold       *string
	ConjunctionsGold         *string
	ConnectivityGold         *string
	NarrativePerspectiveGold *string
	PMID                     *int64
	PublicationYear          *int64
	SensoryLanguageGold      *string
	SettingGold              *string
	Source                   *string
	TimesCited               *string
	CinMAS                   *int64
	FirstAuthor              *string
	NumberAuthors            *int64
	PidMAS                   *int64
	Title                    *string
}

// EnrichmentRecord is a derived annotation for one NormalizedRecord.
// At most one EnrichmentRecord exists per NormalizedRecord.
type EnrichmentRecord struct {
	Id           ID
	NormalizedId ID
	Annotation   string // JSON object returned by the deriver
	CreatedAt    time.Time
}
