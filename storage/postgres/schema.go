package postgres

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/poiesic/stratum/core"
)

const (
	uploadsTable     = "file_uploads"
	rawTable         = "bronze_data"
	normalizedTable  = "silver_data"
	enrichmentsTable = "gold_data"
)

// sqlType returns the column type for a canonical column.
func sqlType(t core.ColumnType) string {
	switch t {
	case core.ColumnText:
		return "TEXT"
	case core.ColumnInteger:
		return "BIGINT"
	case core.ColumnTimestamp:
		return "TIMESTAMP"
	case core.ColumnBoolean:
		return "BOOLEAN"
	default:
		return "VARCHAR"
	}
}

// schemaStatements returns the DDL for all four tables in dependency order.
func schemaStatements() []string {
	var normalizedColumns strings.Builder
	for _, col := range core.Schema {
		fmt.Fprintf(&normalizedColumns, ",\n\t\t%s %s", pgx.Identifier{col.Name}.Sanitize(), sqlType(col.Type))
	}

	return []string{
		`CREATE TABLE IF NOT EXISTS file_uploads (
		id BIGSERIAL PRIMARY KEY,
		filename TEXT NOT NULL,
		file_type VARCHAR(10) NOT NULL,
		size BIGINT NOT NULL,
		checksum VARCHAR(16) NOT NULL DEFAULT '',
		uploaded_at TIMESTAMP NOT NULL
	)`,
		`CREATE TABLE IF NOT EXISTS bronze_data (
		id BIGSERIAL PRIMARY KEY,
		upload_id BIGINT NOT NULL REFERENCES file_uploads(id),
		raw_data JSON NOT NULL,
		record_hash VARCHAR(64) NOT NULL UNIQUE,
		created_at TIMESTAMP NOT NULL
	)`,
		`CREATE INDEX IF NOT EXISTS idx_bronze_data_upload_id ON bronze_data (upload_id)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS silver_data (
		id BIGSERIAL PRIMARY KEY,
		raw_id BIGINT NOT NULL UNIQUE REFERENCES bronze_data(id),
		created_at TIMESTAMP NOT NULL%s
	)`, normalizedColumns.String()),
		`CREATE TABLE IF NOT EXISTS gold_data (
		id BIGSERIAL PRIMARY KEY,
		silver_id BIGINT NOT NULL UNIQUE REFERENCES silver_data(id),
		enrichment JSONB NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	}
}

// normalizedColumnList returns the quoted canonical column names joined by commas.
func normalizedColumnList() string {
	names := make([]string, len(core.Schema))
	for i, col := range core.Schema {
		names[i] = pgx.Identifier{col.Name}.Sanitize()
	}
	return strings.Join(names, ", ")
}

// antiJoinQuery selects the rows of parent that no row of child references
// through fk, ordered by id.
func antiJoinQuery(columns, parent, child, fk string) string {
	return fmt.Sprintf(
		`SELECT %s FROM %s p WHERE NOT EXISTS (SELECT 1 FROM %s c WHERE c.%s = p.id) ORDER BY p.id`,
		columns, parent, child, fk)
}

// semiJoinCountQuery counts the rows of parent that some row of child references.
func semiJoinCountQuery(parent, child, fk string) string {
	return fmt.Sprintf(
		`SELECT count(*) FROM %s p WHERE EXISTS (SELECT 1 FROM %s c WHERE c.%s = p.id)`,
		parent, child, fk)
}

// prefixed qualifies every comma-separated column with alias.
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, p := range parts {
		parts[i] = alias + "." + p
	}
	return strings.Join(parts, ", ")
}
