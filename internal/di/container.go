package di

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pep299/news-briefing/internal/artifact"
	"github.com/pep299/news-briefing/internal/config"
	"github.com/pep299/news-briefing/internal/llm"
	"github.com/pep299/news-briefing/internal/pipeline"
	"github.com/pep299/news-briefing/internal/report"
	"github.com/pep299/news-briefing/internal/search"
	"github.com/pep299/news-briefing/internal/slack"
	"github.com/pep299/news-briefing/internal/summarize"
)

// Container holds all dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	Retriever   *search.TavilyClient
	Provider    llm.Provider
	Chain       *summarize.Chain
	Renderer    *report.Renderer
	Writer      artifact.Writer
	SlackClient *slack.Client
	Metadata    report.Metadata
	Pipeline    *pipeline.Pipeline

	closers []func() error
}

// NewContainer creates a new dependency container
func NewContainer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	location, err := time.LoadLocation(cfg.ReportTimezone)
	if err != nil {
		return nil, &config.ConfigError{Field: "REPORT_TIMEZONE", Message: err.Error()}
	}

	prompt, err := loadPrompt(cfg.PromptFile)
	if err != nil {
		return nil, err
	}

	provider, err := llm.NewProvider(cfg.ModelProvider, cfg.ModelBaseURL, cfg.ModelTimeout)
	if err != nil {
		return nil, &config.ConfigError{Field: "MODEL_PROVIDER", Message: err.Error()}
	}

	chain, err := summarize.NewChain(provider, cfg.Models, prompt, cfg.ModelTimeout, logger.Named("summarize"))
	if err != nil {
		return nil, fmt.Errorf("creating fallback chain: %w", err)
	}

	renderer, err := report.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("creating renderer: %w", err)
	}

	c := &Container{
		Config:    cfg,
		Logger:    logger,
		Retriever: search.NewTavilyClient(cfg.SearchEndpoint, cfg.SearchTimeout),
		Provider:  provider,
		Chain:     chain,
		Renderer:  renderer,
		Metadata: report.Metadata{
			Title:    cfg.ReportTitle,
			Locale:   cfg.ReportLocale,
			Location: location,
			Footer:   footer(cfg.Models),
		},
	}

	if cfg.OutputBucket != "" {
		gcsWriter, err := artifact.NewGCSWriter(ctx, cfg.OutputBucket, cfg.OutputObject)
		if err != nil {
			return nil, fmt.Errorf("creating GCS writer: %w", err)
		}
		c.Writer = gcsWriter
		c.closers = append(c.closers, gcsWriter.Close)
	} else {
		c.Writer = artifact.NewFileWriter(cfg.OutputPath)
	}

	opts := pipeline.Options{
		Retriever:  c.Retriever,
		Summarizer: chain,
		Renderer:   renderer,
		Writer:     c.Writer,
		Query: search.Query{
			Text:       cfg.SearchQuery,
			MaxResults: cfg.SearchMaxResults,
			Depth:      search.Depth(cfg.SearchDepth),
		},
		Credentials: pipeline.Credentials{
			SearchAPIKey: cfg.SearchAPIKey,
			ModelAPIKey:  cfg.ModelAPIKey,
		},
		NoUpdatesText: cfg.NoUpdatesText,
		Metadata:      c.Metadata,
		Logger:        logger.Named("pipeline"),
	}
	if cfg.SlackBotToken != "" {
		c.SlackClient = slack.NewClient(cfg.SlackBotToken, cfg.SlackChannel, location)
		opts.Notifier = c.SlackClient
	}

	c.Pipeline, err = pipeline.New(opts)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("creating pipeline: %w", err)
	}

	return c, nil
}

// Close cleans up resources
func (c *Container) Close() error {
	var firstErr error
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.closers = nil
	return firstErr
}

// loadPrompt reads a user template from path, or returns the built-in prompt
func loadPrompt(path string) (*summarize.Prompt, error) {
	if path == "" {
		return summarize.DefaultPrompt(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &config.ConfigError{Field: "PROMPT_FILE", Message: err.Error()}
	}
	prompt, err := summarize.NewPrompt(summarize.DefaultSystemPrompt, string(data))
	if err != nil {
		return nil, &config.ConfigError{Field: "PROMPT_FILE", Message: err.Error()}
	}
	// unknown slots only surface on execution
	if _, err := prompt.Render(search.ResultSet{}); err != nil {
		return nil, &config.ConfigError{Field: "PROMPT_FILE", Message: err.Error()}
	}
	return prompt, nil
}

func footer(models []string) string {
	return fmt.Sprintf("Powered by %s & Tavily", strings.Join(models, ", "))
}
