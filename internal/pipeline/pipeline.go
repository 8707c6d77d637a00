// Package pipeline runs one briefing end to end:
// retrieve, summarize, sanitize, render, persist.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pep299/news-briefing/internal/artifact"
	"github.com/pep299/news-briefing/internal/config"
	"github.com/pep299/news-briefing/internal/report"
	"github.com/pep299/news-briefing/internal/sanitize"
	"github.com/pep299/news-briefing/internal/search"
	"github.com/pep299/news-briefing/internal/slack"
	"github.com/pep299/news-briefing/internal/summarize"
)

// State is a step of a run
type State string

const (
	StateInit        State = "init"
	StateRetrieving  State = "retrieving"
	StateSummarizing State = "summarizing"
	StateRendering   State = "rendering"
	StatePersisted   State = "persisted"
	StateFailed      State = "failed"
)

const notifyTimeout = 10 * time.Second

// Credentials are the per-run secrets handed to the providers
type Credentials struct {
	SearchAPIKey string
	ModelAPIKey  string
}

// Validate requires both keys to be non-empty after trimming
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.SearchAPIKey) == "" {
		return &config.ConfigError{Field: "TAVILY_API_KEY", Message: "search provider API key is required"}
	}
	if strings.TrimSpace(c.ModelAPIKey) == "" {
		return &config.ConfigError{Field: "MODEL_API_KEY", Message: "model provider API key is required"}
	}
	return nil
}

// Summarizer turns retrieved items into report text
type Summarizer interface {
	Summarize(ctx context.Context, items search.ResultSet, apiKey string) (string, []summarize.Attempt, error)
}

// Renderer builds the final document
type Renderer interface {
	Render(content string, meta report.Metadata) (string, error)
}

// Notifier is told about finished runs. Its errors never change the outcome.
type Notifier interface {
	NotifyPublished(ctx context.Context, summary slack.RunSummary) error
	NotifyFailed(ctx context.Context, summary slack.RunSummary, runErr error) error
}

// Options wires a Pipeline
type Options struct {
	Retriever   search.Retriever
	Summarizer  Summarizer
	Renderer    Renderer
	Writer      artifact.Writer
	Notifier    Notifier
	Query       search.Query
	Credentials Credentials
	// NoUpdatesText replaces the summary when retrieval finds nothing
	NoUpdatesText string
	// Metadata for the page; Timestamp is filled at render time
	Metadata report.Metadata
	Now      func() time.Time
	Logger   *zap.Logger
}

// Result describes a finished run, successful or not
type Result struct {
	State     State               `json:"state"`
	Items     int                 `json:"items"`
	NoUpdates bool                `json:"no_updates"`
	Model     string              `json:"model,omitempty"`
	Attempts  []summarize.Attempt `json:"attempts,omitempty"`
	Location  string              `json:"location,omitempty"`
	Bytes     int                 `json:"bytes,omitempty"`
}

// StageError names the state a run failed in
type StageError struct {
	Stage State
	Err   error
}

func (e *StageError) Error() string {
	return string(e.Stage) + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Pipeline runs the briefing. It holds no per-run state and may be reused.
type Pipeline struct {
	retriever     search.Retriever
	summarizer    Summarizer
	renderer      Renderer
	writer        artifact.Writer
	notifier      Notifier
	query         search.Query
	creds         Credentials
	noUpdatesText string
	meta          report.Metadata
	now           func() time.Time
	logger        *zap.Logger
}

// New creates a Pipeline
func New(opts Options) (*Pipeline, error) {
	switch {
	case opts.Retriever == nil:
		return nil, errors.New("retriever is required")
	case opts.Summarizer == nil:
		return nil, errors.New("summarizer is required")
	case opts.Renderer == nil:
		return nil, errors.New("renderer is required")
	case opts.Writer == nil:
		return nil, errors.New("writer is required")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Pipeline{
		retriever:     opts.Retriever,
		summarizer:    opts.Summarizer,
		renderer:      opts.Renderer,
		writer:        opts.Writer,
		notifier:      opts.Notifier,
		query:         opts.Query,
		creds:         opts.Credentials,
		noUpdatesText: opts.NoUpdatesText,
		meta:          opts.Metadata,
		now:           opts.Now,
		logger:        opts.Logger,
	}, nil
}

// Run executes one briefing. On error the returned Result is in StateFailed and
// nothing has been written.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	result := &Result{State: StateInit}

	if err := p.creds.Validate(); err != nil {
		return p.abort(result, err)
	}

	p.enter(result, StateRetrieving)
	items, err := p.retriever.Retrieve(ctx, p.query, p.creds.SearchAPIKey)
	if err != nil {
		return p.fail(ctx, result, err)
	}
	result.Items = len(items)
	p.logger.Info("retrieved items", zap.Int("items", len(items)))

	p.enter(result, StateSummarizing)
	var text string
	if len(items) == 0 {
		result.NoUpdates = true
		text = p.noUpdatesText
		p.logger.Info("no items retrieved, publishing notice")
	} else {
		var attempts []summarize.Attempt
		text, attempts, err = p.summarizer.Summarize(ctx, items, p.creds.ModelAPIKey)
		result.Attempts = attempts
		if err != nil {
			return p.fail(ctx, result, err)
		}
		if n := len(attempts); n > 0 {
			result.Model = attempts[n-1].Model
		}
	}

	p.enter(result, StateRendering)
	meta := p.meta
	meta.Timestamp = p.now()
	doc, err := p.renderer.Render(sanitize.Sanitize(text), meta)
	if err != nil {
		return p.fail(ctx, result, err)
	}

	if err := ctx.Err(); err != nil {
		return p.fail(ctx, result, err)
	}
	if err := p.writer.Write(ctx, []byte(doc)); err != nil {
		return p.fail(ctx, result, err)
	}
	result.Location = p.writer.Location()
	result.Bytes = len(doc)
	result.State = StatePersisted
	p.logger.Info("report published",
		zap.String("location", result.Location),
		zap.Int("bytes", result.Bytes),
		zap.String("model", result.Model),
		zap.Bool("no_updates", result.NoUpdates))

	p.notifyPublished(ctx, result)
	return result, nil
}

func (p *Pipeline) enter(result *Result, state State) {
	result.State = state
	p.logger.Debug("pipeline state", zap.String("state", string(state)))
}

// abort marks the run failed without notifying anyone
func (p *Pipeline) abort(result *Result, err error) (*Result, error) {
	stageErr := &StageError{Stage: result.State, Err: err}
	result.State = StateFailed

	fields := []zap.Field{zap.String("stage", string(stageErr.Stage)), zap.Error(err)}
	var aggErr *summarize.AggregateError
	if errors.As(err, &aggErr) {
		for _, a := range aggErr.Attempts {
			fields = append(fields, zap.String("attempt."+a.Model, string(a.Outcome)))
		}
	}
	p.logger.Error("briefing run failed", fields...)
	return result, stageErr
}

func (p *Pipeline) fail(ctx context.Context, result *Result, err error) (*Result, error) {
	stage := result.State
	result, runErr := p.abort(result, err)
	if p.notifier != nil {
		summary := p.summary(result)
		summary.Stage = string(stage)
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		if nerr := p.notifier.NotifyFailed(nctx, summary, err); nerr != nil {
			p.logger.Warn("failure notification not sent", zap.Error(nerr))
		}
	}
	return result, runErr
}

func (p *Pipeline) notifyPublished(ctx context.Context, result *Result) {
	if p.notifier == nil {
		return
	}
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := p.notifier.NotifyPublished(nctx, p.summary(result)); err != nil {
		p.logger.Warn("publish notification not sent", zap.Error(err))
	}
}

func (p *Pipeline) summary(result *Result) slack.RunSummary {
	return slack.RunSummary{
		Title:     p.meta.Title,
		Location:  result.Location,
		Model:     result.Model,
		Items:     result.Items,
		NoUpdates: result.NoUpdates,
		Finished:  p.now(),
	}
}
