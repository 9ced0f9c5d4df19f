// Package server exposes the pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/stratum/core"
	"github.com/poiesic/stratum/ingestion"
	"github.com/poiesic/stratum/storage"
	"github.com/poiesic/stratum/tabular"
)

// maxMemory is the part of a multipart upload kept in memory; the rest
// spills to temporary files.
const maxMemory = 32 << 20

// Processor runs the pipeline for a saved upload.
type Processor interface {
	RunAs(ctx context.Context, path, filename string) (*ingestion.Report, error)
}

// Handler serves the upload API.
type Handler struct {
	processor Processor
	uploads   storage.UploadRepository
	registry  *tabular.Registry
	uploadDir string
	metrics   http.Handler
	logger    *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithMetricsHandler serves h on GET /metrics.
func WithMetricsHandler(metrics http.Handler) Option {
	return func(h *Handler) {
		h.metrics = metrics
	}
}

// WithRegistry sets the accepted file types. Default is tabular.DefaultRegistry.
func WithRegistry(r *tabular.Registry) Option {
	return func(h *Handler) {
		if r != nil {
			h.registry = r
		}
	}
}

// NewHandler creates a Handler saving uploads under uploadDir.
func NewHandler(processor Processor, uploads storage.UploadRepository, uploadDir string, opts ...Option) (*Handler, error) {
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating upload directory: %w", err)
	}
	h := &Handler{
		processor: processor,
		uploads:   uploads,
		registry:  tabular.DefaultRegistry,
		uploadDir: uploadDir,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With("component", "server")
	return h, nil
}

// Routes returns the HTTP routes of the handler.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /upload", h.Upload)
	mux.HandleFunc("GET /uploads/{id}", h.GetUpload)
	mux.HandleFunc("GET /healthz", h.Health)
	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics)
	}
	return mux
}

type detail struct {
	Detail string `json:"detail"`
}

type uploadMetadata struct {
	Filename         string  `json:"filename"`
	RowsInserted     int     `json:"rows_inserted_bronze"`
	RowsSkipped      int     `json:"rows_skipped_duplicates_bronze"`
	UploadID         core.ID `json:"upload_id"`
	NormalizedRows   int     `json:"rows_inserted_silver"`
	EnrichedRows     int     `json:"rows_inserted_gold"`
	EnrichmentFailed int     `json:"rows_failed_gold"`
}

type uploadResponse struct {
	Message  string         `json:"message"`
	Metadata uploadMetadata `json:"metadata"`
}

// Upload accepts a multipart "file" field, saves it and runs the pipeline.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, detail{Detail: "Invalid multipart upload"})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, detail{Detail: "Missing file field"})
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	if !h.registry.Supports(filename) {
		writeJSON(w, http.StatusBadRequest, detail{Detail: "Only CSV or Excel files allowed"})
		return
	}

	path, err := h.save(file, filename)
	if err != nil {
		h.logger.Error("error saving upload", "filename", filename, "err", err)
		writeJSON(w, http.StatusInternalServerError, detail{Detail: "Error saving file: " + err.Error()})
		return
	}

	report, err := h.processor.RunAs(r.Context(), path, filename)
	if err != nil {
		h.logger.Error("error processing upload", "filename", filename, "err", err)
		writeJSON(w, http.StatusInternalServerError, detail{Detail: failureDetail(err)})
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		Message: "File uploaded and processed successfully",
		Metadata: uploadMetadata{
			Filename:         filename,
			RowsInserted:     report.Raw.Inserted,
			RowsSkipped:      report.Raw.Skipped,
			UploadID:         report.Upload.Id,
			NormalizedRows:   report.Normalized.Inserted,
			EnrichedRows:     report.Enriched.Inserted,
			EnrichmentFailed: report.Enriched.Failed,
		},
	})
}

func failureDetail(err error) string {
	var stageErr *ingestion.StageError
	if errors.As(err, &stageErr) {
		return fmt.Sprintf("Error during %s: %v", stageErr.Stage, stageErr.Err)
	}
	return "Error during upload: " + err.Error()
}

// save copies the upload to a uniquely named file in the upload directory.
func (h *Handler) save(src io.Reader, filename string) (string, error) {
	path := filepath.Join(h.uploadDir, uuid.NewString()+"_"+filename)
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", err
	}
	return path, dst.Close()
}

type uploadView struct {
	ID         core.ID   `json:"id"`
	Filename   string    `json:"filename"`
	FileType   string    `json:"file_type"`
	SizeKB     float64   `json:"file_size_kb"`
	Checksum   string    `json:"checksum"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// GetUpload returns the metadata of one upload.
func (h *Handler) GetUpload(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		writeJSON(w, http.StatusBadRequest, detail{Detail: "Invalid upload id"})
		return
	}

	upload, err := h.uploads.GetUpload(r.Context(), core.ID(id))
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, detail{Detail: "Upload not found"})
		return
	}
	if err != nil {
		h.logger.Error("error reading upload", "id", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, detail{Detail: "Failed to retrieve upload"})
		return
	}

	writeJSON(w, http.StatusOK, uploadView{
		ID:         upload.Id,
		Filename:   upload.Filename,
		FileType:   string(upload.FileType),
		SizeKB:     upload.SizeKB(),
		Checksum:   upload.Checksum,
		UploadedAt: upload.UploadedAt,
	})
}

// Health reports that the server is up.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("error encoding response", "err", err)
	}
}
