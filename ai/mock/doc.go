// Package mock provides a deterministic deriver for tests and offline runs.
//
// Example:
//
//	deriver := mock.NewMockDeriver()
//	deriver.DeriveFunc = func(ctx context.Context, r *core.NormalizedRecord) (ai.Annotation, error) {
//	    return nil, fmt.Errorf("%w: model offline", ai.ErrDerivation)
//	}
//
//	// Check call counts
//	count := deriver.CallCount()
//
// # Default Behavior
//
// MockDeriver returns a placeholder annotation built from the record id and
// title. MockProvider wraps a MockDeriver.
package mock
