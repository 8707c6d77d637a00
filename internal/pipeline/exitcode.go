package pipeline

import (
	"context"
	"errors"

	"github.com/pep299/news-briefing/internal/artifact"
	"github.com/pep299/news-briefing/internal/config"
	"github.com/pep299/news-briefing/internal/report"
	"github.com/pep299/news-briefing/internal/search"
	"github.com/pep299/news-briefing/internal/summarize"
)

// Process exit codes
const (
	ExitOK            = 0
	ExitFailure       = 1
	ExitConfiguration = 2
	ExitRetrieval     = 3
	ExitSummarization = 4
	ExitRender        = 5
	ExitPersistence   = 6
	ExitCancelled     = 130
)

// ExitCode maps a run error to a process exit status
func ExitCode(err error) int {
	var (
		cfgErr     *config.ConfigError
		retErr     *search.RetrievalError
		aggErr     *summarize.AggregateError
		renderErr  *report.RenderError
		persistErr *artifact.PersistenceError
	)
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitCancelled
	case errors.As(err, &cfgErr):
		return ExitConfiguration
	case errors.As(err, &retErr):
		return ExitRetrieval
	case errors.As(err, &aggErr):
		return ExitSummarization
	case errors.As(err, &renderErr):
		return ExitRender
	case errors.As(err, &persistErr):
		return ExitPersistence
	default:
		return ExitFailure
	}
}
