package ai

import (
	"context"

	"github.com/poiesic/stratum/core"
)

// Deriver produces an annotation for one normalized record.
// Implementations must be thread-safe for concurrent use.
type Deriver interface {
	// Derive analyzes the record and returns its annotation.
	// Failures, including context deadline, are reported wrapped in ErrDerivation.
	Derive(ctx context.Context, record *core.NormalizedRecord) (Annotation, error)
}

// DeriverFunc adapts an ordinary function to the Deriver interface.
type DeriverFunc func(ctx context.Context, record *core.NormalizedRecord) (Annotation, error)

// Derive calls f(ctx, record).
func (f DeriverFunc) Derive(ctx context.Context, record *core.NormalizedRecord) (Annotation, error) {
	return f(ctx, record)
}

// Provider aggregates AI services for convenient initialization and lifecycle management.
type Provider interface {
	// Deriver returns the derivation service.
	// The returned Deriver is safe for concurrent use.
	Deriver() Deriver

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
