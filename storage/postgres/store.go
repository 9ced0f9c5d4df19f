package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/poiesic/stratum/storage"
)

// Store implements storage.Store on a pgx connection pool.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger

	uploads     *UploadRepository
	raw         *RawRepository
	normalized  *NormalizedRepository
	enrichments *EnrichmentRepository
}

var _ storage.Store = (*Store)(nil)

// NewStore connects to connString and creates the tables if needed.
func NewStore(ctx context.Context, connString string, logger *slog.Logger) (*Store, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("error parsing connection string: %w", err)
	}
	return NewStoreWithConfig(ctx, config, logger)
}

// NewStoreWithConfig connects with a prepared pool configuration.
func NewStoreWithConfig(ctx context.Context, config *pgxpool.Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("error creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	s := newStore(pool, logger.With("component", "postgres"))
	if err := s.CreateTables(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func newStore(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	return &Store{
		pool:        pool,
		logger:      logger,
		uploads:     &UploadRepository{pool: pool},
		raw:         &RawRepository{pool: pool},
		normalized:  &NormalizedRepository{pool: pool},
		enrichments: &EnrichmentRepository{pool: pool},
	}
}

// CreateTables creates the four layer tables if they don't exist.
func (s *Store) CreateTables(ctx context.Context) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting schema transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, stmt := range schemaStatements() {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("error creating tables: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error committing schema: %w", err)
	}
	s.logger.Debug("tables ready")
	return nil
}

func (s *Store) Uploads() storage.UploadRepository { return s.uploads }
func (s *Store) Raw() storage.RawRepository { return s.raw }
func (s *Store) Normalized() storage.NormalizedRepository { return s.normalized }
func (s *Store) Enrichments() storage.EnrichmentRepository { return s.enrichments }

// Pool returns the underlying connection pool.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Close closes the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func count(ctx context.Context, q querier, sql string, args ...any) (int, error) {
	var n int64
	if err := q.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, mapError(err)
	}
	return int(n), nil
}

// backlog runs the anti-join and the processed count in one read-only
// repeatable-read transaction so both observe the same snapshot.
func backlog[T any](ctx context.Context, pool *pgxpool.Pool, pendingSQL, processedSQL string, scan func(pgx.Rows) (*T, error)) (*storage.Backlog[T], error) {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, mapError(err)
	}
	defer tx.Rollback(ctx)

	pending, err := collect(ctx, tx, scan, pendingSQL)
	if err != nil {
		return nil, err
	}
	processed, err := count(ctx, tx, processedSQL)
	if err != nil {
		return nil, err
	}
	return &storage.Backlog[T]{Pending: pending, Processed: processed}, nil
}

func collect[T any](ctx context.Context, q querier, scan func(pgx.Rows) (*T, error), sql string, args ...any) ([]*T, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []*T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, mapError(err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}
