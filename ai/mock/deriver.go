package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/poiesic/stratum/ai"
	"github.com/poiesic/stratum/core"
)

// MockDeriver is a test double for ai.Deriver. It is safe for concurrent use.
type MockDeriver struct {
	// DeriveFunc is called by Derive if set.
	// If nil, the placeholder annotation is returned.
	DeriveFunc func(ctx context.Context, record *core.NormalizedRecord) (ai.Annotation, error)

	mu        sync.Mutex
	callCount int
}

// NewMockDeriver creates a mock deriver with default behavior.
// Returns the concrete type so tests can inspect it.
func NewMockDeriver() *MockDeriver {
	return &MockDeriver{}
}

// Derive returns a placeholder annotation for the record.
func (m *MockDeriver) Derive(ctx context.Context, record *core.NormalizedRecord) (ai.Annotation, error) {
	m.mu.Lock()
	m.callCount++
	fn := m.DeriveFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, record)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ai.ErrDerivation, err)
	}
	return Placeholder(record), nil
}

// Placeholder returns the default annotation for a record.
func Placeholder(record *core.NormalizedRecord) ai.Annotation {
	title := ""
	if record.Title != nil {
		title = *record.Title
	}
	return ai.Annotation{
		"summary": fmt.Sprintf("Mock summary for record ID %d", record.Id),
		"insight": fmt.Sprintf("Generated placeholder enrichment for '%s'", title),
	}
}

// CallCount returns the number of times Derive was called.
func (m *MockDeriver) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the call count and custom function.
func (m *MockDeriver) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.DeriveFunc = nil
}
