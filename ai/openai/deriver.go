package openai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/stratum/ai"
	"github.com/poiesic/stratum/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Deriver implements ai.Deriver using an OpenAI-compatible chat API.
type Deriver struct {
	client     llms.Model
	timeout    time.Duration
	attempts   int
	retryDelay time.Duration
	logger     *slog.Logger
}

// newDeriver is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newDeriver(config *ai.Config) (*Deriver, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(config.Token),
		openai.WithModel(config.Model),
	)
	if err != nil {
		return nil, err
	}
	return newDeriverWithModel(client, config), nil
}

func newDeriverWithModel(client llms.Model, config *ai.Config) *Deriver {
	return &Deriver{
		client:     client,
		timeout:    config.Timeout,
		attempts:   config.MaxRetries,
		retryDelay: config.RetryDelay,
		logger:     slog.Default().With("component", "openai-deriver"),
	}
}

// NewDeriver creates a new deriver using the provided configuration.
//
// Returns ai.Deriver interface to enforce abstraction.
func NewDeriver(config *ai.Config) (ai.Deriver, error) {
	return newDeriver(config)
}

// Derive asks the model to summarize the record's abstract (or title).
// Each attempt is bounded by the configured timeout.
func (d *Deriver) Derive(ctx context.Context, record *core.NormalizedRecord) (ai.Annotation, error) {
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, buildUserPrompt(record)),
	}

	var annotation ai.Annotation
	err := ai.RetryWithBackoff(ctx, func() error {
		callCtx, cancel := context.WithTimeout(ctx, d.timeout)
		defer cancel()

		response, err := d.client.GenerateContent(callCtx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			return err
		}
		if len(response.Choices) < 1 {
			return fmt.Errorf("no choices returned from model")
		}

		parsed, err := parseAnnotation(response.Choices[0].Content)
		if err != nil {
			d.logger.Warn("error parsing deriver response", "record", record.Id, "response", response.Choices[0].Content, "err", err)
			return err
		}
		annotation = parsed
		return nil
	}, d.attempts, d.retryDelay)
	if err != nil {
		return nil, fmt.Errorf("%w: record %d: %w", ai.ErrDerivation, record.Id, err)
	}

	d.logger.Debug("derived annotation", "record", record.Id)
	return annotation, nil
}
