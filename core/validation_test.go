package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name    string
		upload  *Upload
		wantErr error
	}{
		{
			name:    "valid csv upload",
			upload:  &Upload{Filename: "a.csv", FileType: FileTypeCSV, Size: 10, UploadedAt: time.Now()},
			wantErr: nil,
		},
		{
			name:    "valid xlsx upload",
			upload:  &Upload{Filename: "a.xlsx", FileType: FileTypeXLSX},
			wantErr: nil,
		},
		{
			name:    "nil upload",
			upload:  nil,
			wantErr: ErrInvalidUpload,
		},
		{
			name:    "empty filename",
			upload:  &Upload{FileType: FileTypeCSV},
			wantErr: ErrEmptyFilename,
		},
		{
			name:    "unsupported type",
			upload:  &Upload{Filename: "a.pdf", FileType: ".pdf"},
			wantErr: ErrInvalidFileType,
		},
		{
			name:    "negative size",
			upload:  &Upload{Filename: "a.csv", FileType: FileTypeCSV, Size: -1},
			wantErr: ErrInvalidUpload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpload(tt.upload)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateUpload() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateUpload() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateRawRecord(t *testing.T) {
	fp := strings.Repeat("a", FingerprintLength)

	tests := []struct {
		name    string
		record  *RawRecord
		wantErr error
	}{
		{
			name:    "valid record",
			record:  &RawRecord{UploadId: 1, Payload: `{"a":null}`, Fingerprint: fp},
			wantErr: nil,
		},
		{
			name:    "missing upload",
			record:  &RawRecord{Payload: `{}`, Fingerprint: fp},
			wantErr: ErrMissingParent,
		},
		{
			name:    "short fingerprint",
			record:  &RawRecord{UploadId: 1, Payload: `{}`, Fingerprint: "abc"},
			wantErr: ErrInvalidFingerprint,
		},
		{
			name:    "non-hex fingerprint",
			record:  &RawRecord{UploadId: 1, Payload: `{}`, Fingerprint: strings.Repeat("z", FingerprintLength)},
			wantErr: ErrInvalidFingerprint,
		},
		{
			name:    "payload not an object",
			record:  &RawRecord{UploadId: 1, Payload: `[1,2]`, Fingerprint: fp},
			wantErr: ErrInvalidPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRawRecord(tt.record)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateRawRecord() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateRawRecord() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidRawRecord) {
				t.Errorf("ValidateRawRecord() error = %v, want wrapped %v", err, ErrInvalidRawRecord)
			}
		})
	}
}

func TestValidateNormalizedRecord(t *testing.T) {
	if err := ValidateNormalizedRecord(&NormalizedRecord{RawId: 1}); err != nil {
		t.Errorf("ValidateNormalizedRecord() unexpected error = %v", err)
	}
	if err := ValidateNormalizedRecord(&NormalizedRecord{}); !errors.Is(err, ErrMissingParent) {
		t.Errorf("ValidateNormalizedRecord() error = %v, want %v", err, ErrMissingParent)
	}
	if err := ValidateNormalizedRecord(nil); !errors.Is(err, ErrInvalidNormalizedRecord) {
		t.Errorf("ValidateNormalizedRecord() error = %v, want %v", err, ErrInvalidNormalizedRecord)
	}
}

func TestValidateEnrichmentRecord(t *testing.T) {
	tests := []struct {
		name       string
		annotation string
		wantErr    error
	}{
		{"object", `{"summary":"x"}`, nil},
		{"array", `["x"]`, ErrInvalidAnnotation},
		{"empty", ``, ErrInvalidAnnotation},
		{"malformed", `{"summary":`, ErrInvalidAnnotation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEnrichmentRecord(&EnrichmentRecord{NormalizedId: 1, Annotation: tt.annotation})
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateEnrichmentRecord() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateEnrichmentRecord() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseFileType(t *testing.T) {
	ft, err := ParseFileType(".CSV")
	if err != nil || ft != FileTypeCSV {
		t.Errorf("ParseFileType(.CSV) = %q, %v", ft, err)
	}
	if _, err := ParseFileType(".xls"); !errors.Is(err, ErrInvalidFileType) {
		t.Errorf("ParseFileType(.xls) error = %v, want %v", err, ErrInvalidFileType)
	}
}

func TestUpload_SizeKB(t *testing.T) {
	u := &Upload{Size: 1536}
	if got := u.SizeKB(); got != 1.5 {
		t.Errorf("SizeKB() = %v, want 1.5", got)
	}
}
