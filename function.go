// Package briefing registers the Cloud Functions entry point.
package briefing

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	_ "time/tzdata"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"go.uber.org/zap"

	"github.com/pep299/news-briefing/internal/config"
	"github.com/pep299/news-briefing/internal/di"
	"github.com/pep299/news-briefing/internal/handlers"
	"github.com/pep299/news-briefing/internal/logging"
)

// Version is reported by the health endpoint
var Version = "dev"

func init() {
	functions.HTTP("RunBriefing", RunBriefing)
}

var (
	setupOnce sync.Once
	router    http.Handler
	setupErr  error
)

// setup builds the container once per instance; warm invocations reuse it
func setup() {
	cfg, err := config.Load()
	if err != nil {
		setupErr = fmt.Errorf("loading configuration: %w", err)
		return
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		setupErr = fmt.Errorf("creating logger: %w", err)
		return
	}

	container, err := di.NewContainer(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to create container", zap.Error(err))
		setupErr = fmt.Errorf("creating container: %w", err)
		return
	}

	router = handlers.NewServer(container.Pipeline, cfg.RunAuthToken, Version, logger.Named("http")).SetupRoutes()
}

// RunBriefing is the HTTP function. It serves the same routes as cmd/server.
func RunBriefing(w http.ResponseWriter, r *http.Request) {
	setupOnce.Do(setup)
	if setupErr != nil {
		handlers.WriteError(w, http.StatusInternalServerError, setupErr.Error())
		return
	}
	router.ServeHTTP(w, r)
}
