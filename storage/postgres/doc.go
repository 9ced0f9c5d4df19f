// Package postgres implements the storage interfaces on PostgreSQL via pgx.
//
// The four layers map onto the tables file_uploads, bronze_data,
// silver_data and gold_data. Uniqueness of raw fingerprints and one-to-one
// ownership between layers are UNIQUE constraints; their violations
// surface as storage.ErrDuplicateKey and foreign key violations as
// storage.ErrForeignKey.
//
// Tables are created on first connection if they don't exist. There is no
// migration support.
package postgres
