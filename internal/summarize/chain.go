package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pep299/news-briefing/internal/llm"
	"github.com/pep299/news-briefing/internal/search"
)

// Outcome of a single model attempt
type Outcome string

const (
	OutcomeSuccess       Outcome = "success"
	OutcomeProviderError Outcome = "provider_error"
	OutcomeEmpty         Outcome = "empty"
)

// Attempt records one step of the fallback chain
type Attempt struct {
	Model   string  `json:"model"`
	Outcome Outcome `json:"outcome"`
	Err     string  `json:"error,omitempty"`
}

// AggregateError is returned when every model failed or answered with nothing
type AggregateError struct {
	Attempts []Attempt
}

func (e *AggregateError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		if a.Err != "" {
			parts = append(parts, fmt.Sprintf("%s: %s (%s)", a.Model, a.Outcome, a.Err))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %s", a.Model, a.Outcome))
		}
	}
	return fmt.Sprintf("all %d models failed: %s", len(e.Attempts), strings.Join(parts, "; "))
}

// Chain tries models in fixed priority order until one returns text
type Chain struct {
	provider llm.Provider
	models   []string
	prompt   *Prompt
	timeout  time.Duration
	logger   *zap.Logger
}

// NewChain creates a fallback chain over models
func NewChain(provider llm.Provider, models []string, prompt *Prompt, timeout time.Duration, logger *zap.Logger) (*Chain, error) {
	if provider == nil {
		return nil, errors.New("provider is required")
	}
	if len(models) == 0 {
		return nil, errors.New("at least one model is required")
	}
	if prompt == nil {
		prompt = DefaultPrompt()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{
		provider: provider,
		models:   append([]string(nil), models...),
		prompt:   prompt,
		timeout:  timeout,
		logger:   logger,
	}, nil
}

// Models returns the configured priority order
func (c *Chain) Models() []string {
	return append([]string(nil), c.models...)
}

// Summarize returns the text of the first model that answers. The prompt is
// rendered once, so every attempt sees identical input. A cancelled ctx stops
// the chain without trying further models.
func (c *Chain) Summarize(ctx context.Context, items search.ResultSet, apiKey string) (string, []Attempt, error) {
	messages, err := c.prompt.Render(items)
	if err != nil {
		return "", nil, err
	}

	attempts := make([]Attempt, 0, len(c.models))
	for _, model := range c.models {
		if err := ctx.Err(); err != nil {
			return "", attempts, err
		}

		text, err := c.complete(ctx, llm.Request{Model: model, Messages: messages, APIKey: apiKey})
		switch {
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", attempts, ctxErr
			}
			attempts = append(attempts, Attempt{Model: model, Outcome: OutcomeProviderError, Err: err.Error()})
			c.logger.Warn("model attempt failed", zap.String("model", model), zap.String("provider", c.provider.Name()), zap.Error(err))
		case strings.TrimSpace(text) == "":
			attempts = append(attempts, Attempt{Model: model, Outcome: OutcomeEmpty})
			c.logger.Warn("model returned empty text", zap.String("model", model), zap.String("provider", c.provider.Name()))
		default:
			attempts = append(attempts, Attempt{Model: model, Outcome: OutcomeSuccess})
			c.logger.Info("model attempt succeeded", zap.String("model", model), zap.Int("chars", len(text)))
			return text, attempts, nil
		}
	}

	return "", attempts, &AggregateError{Attempts: attempts}
}

func (c *Chain) complete(ctx context.Context, req llm.Request) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.provider.Complete(ctx, req)
}
