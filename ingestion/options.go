package ingestion

import (
	"errors"
	"log/slog"
	"runtime"
	"time"

	"github.com/poiesic/stratum/checksum"
	"github.com/poiesic/stratum/fieldmap"
	"github.com/poiesic/stratum/metrics"
	"github.com/poiesic/stratum/tabular"
)

// DefaultDeriveTimeout bounds one derivation call.
const DefaultDeriveTimeout = 30 * time.Second

// settings carries the configuration shared by the stages and the pipeline.
type settings struct {
	logger        *slog.Logger
	poolSize      int
	fieldMap      *fieldmap.FieldMap
	algorithm     checksum.Algorithm
	deriveTimeout time.Duration
	metrics       *metrics.Collector
	registry      *tabular.Registry
}

func defaultSettings() *settings {
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	return &settings{
		logger:        slog.Default(),
		poolSize:      poolSize,
		fieldMap:      fieldmap.Default(),
		algorithm:     checksum.SHA256,
		deriveTimeout: DefaultDeriveTimeout,
		registry:      tabular.DefaultRegistry,
	}
}

func applyOptions(opts []Option) (*settings, error) {
	s := defaultSettings()
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Option configures a stage or a Pipeline.
type Option func(*settings) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithPoolSize sets the worker pool size for concurrent derivation.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(s *settings) error {
		if size < 1 {
			size = 1
		}
		s.poolSize = size
		return nil
	}
}

// WithFieldMap sets the alias table used by normalization.
// Default is fieldmap.Default().
func WithFieldMap(fm *fieldmap.FieldMap) Option {
	return func(s *settings) error {
		if fm == nil {
			return errors.New("field map must not be nil")
		}
		s.fieldMap = fm
		return nil
	}
}

// WithFingerprint sets the digest used for raw fingerprints.
// Default is checksum.SHA256.
func WithFingerprint(algo checksum.Algorithm) Option {
	return func(s *settings) error {
		parsed, err := checksum.ParseAlgorithm(string(algo))
		if err != nil {
			return err
		}
		s.algorithm = parsed
		return nil
	}
}

// WithDeriveTimeout bounds each derivation call.
// Default is DefaultDeriveTimeout.
func WithDeriveTimeout(timeout time.Duration) Option {
	return func(s *settings) error {
		if timeout <= 0 {
			return errors.New("derive timeout must be positive")
		}
		s.deriveTimeout = timeout
		return nil
	}
}

// WithMetrics records stage outcomes on the collector.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *settings) error {
		s.metrics = c
		return nil
	}
}

// WithRegistry sets the tabular parsers available to ingestion.
// Default is tabular.DefaultRegistry.
func WithRegistry(r *tabular.Registry) Option {
	return func(s *settings) error {
		if r == nil {
			return errors.New("registry must not be nil")
		}
		s.registry = r
		return nil
	}
}
