package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/poiesic/stratum/core"
	"github.com/poiesic/stratum/storage"
)

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// UploadRepository implements storage.UploadRepository on file_uploads.
type UploadRepository struct {
	pool *pgxpool.Pool
}

var _ storage.UploadRepository = (*UploadRepository)(nil)

const uploadColumns = "id, filename, file_type, size, checksum, uploaded_at"

func scanUpload(row pgx.Row) (*core.Upload, error) {
	var (
		u  core.Upload
		id int64
		ft string
	)
	if err := row.Scan(&id, &u.Filename, &ft, &u.Size, &u.Checksum, &u.UploadedAt); err != nil {
		return nil, err
	}
	u.Id = core.ID(id)
	u.FileType = core.FileType(ft)
	return &u, nil
}

func (r *UploadRepository) AddUpload(ctx context.Context, upload *core.Upload) (*core.Upload, error) {
	if err := core.ValidateUpload(upload); err != nil {
		return nil, err
	}
	if upload.UploadedAt.IsZero() {
		upload.UploadedAt = now()
	}

	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO file_uploads (filename, file_type, size, checksum, uploaded_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		upload.Filename, string(upload.FileType), upload.Size, upload.Checksum, upload.UploadedAt,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("error inserting upload: %w", mapError(err))
	}
	upload.Id = core.ID(id)
	return upload, nil
}

func (r *UploadRepository) GetUpload(ctx context.Context, id core.ID) (*core.Upload, error) {
	u, err := scanUpload(r.pool.QueryRow(ctx,
		"SELECT "+uploadColumns+" FROM file_uploads WHERE id = $1", int64(id)))
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func (r *UploadRepository) ListUploads(ctx context.Context) ([]*core.Upload, error) {
	return collect(ctx, r.pool, func(rows pgx.Rows) (*core.Upload, error) { return scanUpload(rows) },
		"SELECT "+uploadColumns+" FROM file_uploads ORDER BY id")
}

func (r *UploadRepository) CountUploads(ctx context.Context) (int, error) {
	return count(ctx, r.pool, "SELECT count(*) FROM file_uploads")
}

// RawRepository implements storage.RawRepository on bronze_data.
type RawRepository struct {
	pool *pgxpool.Pool
}

var _ storage.RawRepository = (*RawRepository)(nil)

const rawColumns = "id, upload_id, raw_data::text, record_hash, created_at"

func scanRawRecord(row pgx.Row) (*core.RawRecord, error) {
	var (
		rec          core.RawRecord
		id, uploadID int64
	)
	if err := row.Scan(&id, &uploadID, &rec.Payload, &rec.Fingerprint, &rec.CreatedAt); err != nil {
		return nil, err
	}
	rec.Id = core.ID(id)
	rec.UploadId = core.ID(uploadID)
	return &rec, nil
}

func (r *RawRepository) AddRawRecord(ctx context.Context, record *core.RawRecord) (*core.RawRecord, error) {
	if err := core.ValidateRawRecord(record); err != nil {
		return nil, err
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now()
	}

	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO bronze_data (upload_id, raw_data, record_hash, created_at)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		int64(record.UploadId), record.Payload, record.Fingerprint, record.CreatedAt,
	).Scan(&id)
	if err != nil {
		return nil, mapError(err)
	}
	record.Id = core.ID(id)
	return record, nil
}

func (r *RawRepository) HasFingerprint(ctx context.Context, fingerprint string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM bronze_data WHERE record_hash = $1)", fingerprint,
	).Scan(&exists)
	if err != nil {
		return false, mapError(err)
	}
	return exists, nil
}

func (r *RawRepository) GetRawRecord(ctx context.Context, id core.ID) (*core.RawRecord, error) {
	rec, err := scanRawRecord(r.pool.QueryRow(ctx,
		"SELECT "+rawColumns+" FROM bronze_data WHERE id = $1", int64(id)))
	if err != nil {
		return nil, mapError(err)
	}
	return rec, nil
}

func (r *RawRepository) GetRawRecordsByUpload(ctx context.Context, uploadID core.ID) ([]*core.RawRecord, error) {
	return collect(ctx, r.pool, func(rows pgx.Rows) (*core.RawRecord, error) { return scanRawRecord(rows) },
		"SELECT "+rawColumns+" FROM bronze_data WHERE upload_id = $1 ORDER BY id", int64(uploadID))
}

func (r *RawRepository) UnnormalizedRawRecords(ctx context.Context) (*storage.Backlog[core.RawRecord], error) {
	return backlog(ctx, r.pool,
		antiJoinQuery(prefixed("p", rawColumns), rawTable, normalizedTable, "raw_id"),
		semiJoinCountQuery(rawTable, normalizedTable, "raw_id"),
		func(rows pgx.Rows) (*core.RawRecord, error) { return scanRawRecord(rows) })
}

func (r *RawRepository) CountRawRecords(ctx context.Context) (int, error) {
	return count(ctx, r.pool, "SELECT count(*) FROM bronze_data")
}

// NormalizedRepository implements storage.NormalizedRepository on silver_data.
// Its columns beyond id, raw_id and created_at follow core.Schema.
type NormalizedRepository struct {
	pool *pgxpool.Pool
}

var _ storage.NormalizedRepository = (*NormalizedRepository)(nil)

func normalizedColumns() string {
	return "id, raw_id, created_at, " + normalizedColumnList()
}

func scanNormalizedRecord(row pgx.Row) (*core.NormalizedRecord, error) {
	var (
		rec       core.NormalizedRecord
		id, rawID int64
	)
	dest := make([]any, 0, len(core.Schema)+3)
	dest = append(dest, &id, &rawID, &rec.CreatedAt)
	for _, col := range core.Schema {
		dest = append(dest, col.Pointer(&rec.Columns))
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	rec.Id = core.ID(id)
	rec.RawId = core.ID(rawID)
	return &rec, nil
}

func insertNormalizedQuery() string {
	placeholders := make([]string, len(core.Schema)+2)
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO silver_data (raw_id, created_at, %s) VALUES (%s) RETURNING id",
		normalizedColumnList(), strings.Join(placeholders, ", "))
}

func (r *NormalizedRepository) AddNormalizedRecord(ctx context.Context, record *core.NormalizedRecord) (*core.NormalizedRecord, error) {
	if err := core.ValidateNormalizedRecord(record); err != nil {
		return nil, err
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now()
	}

	args := make([]any, 0, len(core.Schema)+2)
	args = append(args, int64(record.RawId), record.CreatedAt)
	for _, col := range core.Schema {
		args = append(args, col.Get(&record.Columns))
	}

	var id int64
	if err := r.pool.QueryRow(ctx, insertNormalizedQuery(), args...).Scan(&id); err != nil {
		return nil, mapError(err)
	}
	record.Id = core.ID(id)
	return record, nil
}

func (r *NormalizedRepository) GetNormalizedRecord(ctx context.Context, id core.ID) (*core.NormalizedRecord, error) {
	rec, err := scanNormalizedRecord(r.pool.QueryRow(ctx,
		"SELECT "+normalizedColumns()+" FROM silver_data WHERE id = $1", int64(id)))
	if err != nil {
		return nil, mapError(err)
	}
	return rec, nil
}

func (r *NormalizedRepository) GetNormalizedRecordByRaw(ctx context.Context, rawID core.ID) (*core.NormalizedRecord, error) {
	rec, err := scanNormalizedRecord(r.pool.QueryRow(ctx,
		"SELECT "+normalizedColumns()+" FROM silver_data WHERE raw_id = $1", int64(rawID)))
	if err != nil {
		return nil, mapError(err)
	}
	return rec, nil
}

func (r *NormalizedRepository) UnenrichedNormalizedRecords(ctx context.Context) (*storage.Backlog[core.NormalizedRecord], error) {
	return backlog(ctx, r.pool,
		antiJoinQuery(prefixed("p", normalizedColumns()), normalizedTable, enrichmentsTable, "silver_id"),
		semiJoinCountQuery(normalizedTable, enrichmentsTable, "silver_id"),
		func(rows pgx.Rows) (*core.NormalizedRecord, error) { return scanNormalizedRecord(rows) })
}

func (r *NormalizedRepository) CountNormalizedRecords(ctx context.Context) (int, error) {
	return count(ctx, r.pool, "SELECT count(*) FROM silver_data")
}

// EnrichmentRepository implements storage.EnrichmentRepository on gold_data.
type EnrichmentRepository struct {
	pool *pgxpool.Pool
}

var _ storage.EnrichmentRepository = (*EnrichmentRepository)(nil)

func (r *EnrichmentRepository) AddEnrichmentRecord(ctx context.Context, record *core.EnrichmentRecord) (*core.EnrichmentRecord, error) {
	if err := core.ValidateEnrichmentRecord(record); err != nil {
		return nil, err
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now()
	}

	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO gold_data (silver_id, enrichment, created_at)
		VALUES ($1, $2, $3) RETURNING id`,
		int64(record.NormalizedId), record.Annotation, record.CreatedAt,
	).Scan(&id)
	if err != nil {
		return nil, mapError(err)
	}
	record.Id = core.ID(id)
	return record, nil
}

func (r *EnrichmentRepository) GetEnrichmentRecordByNormalized(ctx context.Context, normalizedID core.ID) (*core.EnrichmentRecord, error) {
	var (
		rec              core.EnrichmentRecord
		id, normalizedPK int64
	)
	err := r.pool.QueryRow(ctx,
		"SELECT id, silver_id, enrichment::text, created_at FROM gold_data WHERE silver_id = $1",
		int64(normalizedID),
	).Scan(&id, &normalizedPK, &rec.Annotation, &rec.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	rec.Id = core.ID(id)
	rec.NormalizedId = core.ID(normalizedPK)
	return &rec, nil
}

func (r *EnrichmentRepository) CountEnrichmentRecords(ctx context.Context) (int, error) {
	return count(ctx, r.pool, "SELECT count(*) FROM gold_data")
}
