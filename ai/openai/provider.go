package openai

import (
	"log/slog"

	"github.com/poiesic/stratum/ai"
)

// Provider implements ai.Provider using an OpenAI-compatible service.
type Provider struct {
	config  *ai.Config
	deriver *Deriver
	logger  *slog.Logger
}

// NewProvider creates a new AI provider backed by an OpenAI-compatible service.
// The config is validated and normalized before use.
//
// Returns ai.Provider interface (not *Provider) to keep callers decoupled
// from the OpenAI-specific implementation.
func NewProvider(config *ai.Config) (ai.Provider, error) {
	deriver, err := newDeriver(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:  config,
		deriver: deriver,
		logger:  slog.Default().With("component", "openai-provider"),
	}, nil
}

// Deriver returns the derivation service.
func (p *Provider) Deriver() ai.Deriver {
	return p.deriver
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying client doesn't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
