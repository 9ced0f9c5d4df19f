package mock

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/poiesic/stratum/ai"
	"github.com/poiesic/stratum/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockDeriverDefault(t *testing.T) {
	d := NewMockDeriver()
	title := "Deep Sea Vents"
	record := &core.NormalizedRecord{Id: 42}
	record.Title = &title

	a, err := d.Derive(context.Background(), record)
	require.NoError(t, err)
	assert.Equal(t, ai.Annotation{
		"summary": "Mock summary for record ID 42",
		"insight": "Generated placeholder enrichment for 'Deep Sea Vents'",
	}, a)

	a, err = d.Derive(context.Background(), &core.NormalizedRecord{Id: 1})
	require.NoError(t, err)
	assert.Equal(t, "Generated placeholder enrichment for ''", a["insight"])
	assert.Equal(t, 2, d.CallCount())
}

func TestMockDeriverCustomFunc(t *testing.T) {
	d := NewMockDeriver()
	d.DeriveFunc = func(ctx context.Context, r *core.NormalizedRecord) (ai.Annotation, error) {
		return nil, ai.ErrDerivation
	}

	_, err := d.Derive(context.Background(), &core.NormalizedRecord{Id: 1})
	assert.ErrorIs(t, err, ai.ErrDerivation)

	d.Reset()
	assert.Equal(t, 0, d.CallCount())
	_, err = d.Derive(context.Background(), &core.NormalizedRecord{Id: 1})
	assert.NoError(t, err)
}

func TestMockDeriverCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMockDeriver().Derive(ctx, &core.NormalizedRecord{Id: 1})
	assert.ErrorIs(t, err, ai.ErrDerivation)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestMockDeriverConcurrent(t *testing.T) {
	d := NewMockDeriver()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = d.Derive(context.Background(), &core.NormalizedRecord{Id: core.ID(i + 1)})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, d.CallCount())
}

func TestMockProvider(t *testing.T) {
	p := NewMockProvider()
	require.NotNil(t, p.Deriver())
	mp := p.(*MockProvider)
	assert.Same(t, mp.GetMockDeriver(), p.Deriver())
	assert.NoError(t, p.Close())

	custom := NewMockDeriver()
	assert.Same(t, custom, NewMockProviderWithDeriver(custom).Deriver())
}
