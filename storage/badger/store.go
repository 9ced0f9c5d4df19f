package badger

import (
	"errors"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/stratum/storage"
)

// Store implements storage.Store on a single BadgerDB database.
type Store struct {
	backend     *Backend
	uploads     *UploadRepository
	raw         *RawRepository
	normalized  *NormalizedRepository
	enrichments *EnrichmentRepository
}

var _ storage.Store = (*Store)(nil)

// NewStore opens (or creates) a BadgerDB store in the directory at path.
// A nil logger uses slog.Default().
func NewStore(path string, logger *slog.Logger) (storage.Store, error) {
	backend, err := OpenBackend(path, false, logger)
	if err != nil {
		return nil, err
	}
	return wrapStore(backend)
}

// wrapStore returns the store as a storage.Store, with a nil interface
// rather than a typed nil on failure.
func wrapStore(backend *Backend) (storage.Store, error) {
	s, err := newStore(backend)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// newStore wires the repositories onto an open backend.
// The backend is closed if any repository fails to initialize.
func newStore(backend *Backend) (*Store, error) {
	s := &Store{backend: backend}

	var err error
	if s.uploads, err = newUploadRepository(backend); err != nil {
		return nil, s.abort(err)
	}
	if s.raw, err = newRawRepository(backend); err != nil {
		return nil, s.abort(err)
	}
	if s.normalized, err = newNormalizedRepository(backend); err != nil {
		return nil, s.abort(err)
	}
	if s.enrichments, err = newEnrichmentRepository(backend); err != nil {
		return nil, s.abort(err)
	}
	return s, nil
}

func (s *Store) abort(err error) error {
	return errors.Join(err, s.Close())
}

// Uploads implements storage.Store.
func (s *Store) Uploads() storage.UploadRepository { return s.uploads }

// Raw implements storage.Store.
func (s *Store) Raw() storage.RawRepository { return s.raw }

// Normalized implements storage.Store.
func (s *Store) Normalized() storage.NormalizedRepository { return s.normalized }

// Enrichments implements storage.Store.
func (s *Store) Enrichments() storage.EnrichmentRepository { return s.enrichments }

// Backend returns the underlying backend.
func (s *Store) Backend() *Backend { return s.backend }

// Close releases the ID sequences and closes the database.
func (s *Store) Close() error {
	if s.backend.IsClosed() {
		return nil
	}
	var errs []error
	release := func(seq *badger.Sequence) {
		if seq != nil {
			errs = append(errs, seq.Release())
		}
	}
	if s.uploads != nil {
		release(s.uploads.idSeq)
	}
	if s.raw != nil {
		release(s.raw.idSeq)
	}
	if s.normalized != nil {
		release(s.normalized.idSeq)
	}
	if s.enrichments != nil {
		release(s.enrichments.idSeq)
	}
	errs = append(errs, s.backend.Close())
	return errors.Join(errs...)
}
