package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/pep299/news-briefing/internal/config"
	"github.com/pep299/news-briefing/internal/di"
	"github.com/pep299/news-briefing/internal/logging"
	"github.com/pep299/news-briefing/internal/pipeline"
)

var (
	// Version information (set by build flags)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("News Briefing CLI\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Commit: %s\n", Commit)
		fmt.Printf("Build Time: %s\n", BuildTime)
		os.Exit(0)
	}

	if *showHelp {
		showHelpMessage()
		os.Exit(0)
	}

	os.Exit(run())
}

func run() int {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return pipeline.ExitCode(err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return pipeline.ExitConfiguration
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := di.NewContainer(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "setup failed: %v\n", err)
		return pipeline.ExitCode(err)
	}
	defer container.Close()

	result, err := container.Pipeline.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "briefing failed: %v\n", err)
		return pipeline.ExitCode(err)
	}

	logger.Info("briefing completed",
		zap.String("location", result.Location),
		zap.Int("items", result.Items),
		zap.String("model", result.Model))
	fmt.Printf("Report written to %s\n", result.Location)
	return pipeline.ExitOK
}

func showHelpMessage() {
	fmt.Printf(`News Briefing CLI

Retrieves today's news, summarizes it with the first available model and
writes a static HTML report.

USAGE:
    briefing [OPTIONS]

OPTIONS:
    -help       Show this help message
    -version    Show version information

ENVIRONMENT VARIABLES:
    TAVILY_API_KEY       Search provider API key (required)
    MODEL_API_KEY        Model provider API key (required; falls back to
                         OPENAI_API_KEY, ANTHROPIC_API_KEY or GEMINI_API_KEY)
    MODEL_PROVIDER       openai, anthropic or gemini (default: openai)
    MODEL_BASE_URL       Override the provider endpoint
    MODELS               Comma separated models in priority order
    MODEL_TIMEOUT        Per-model timeout, 30s to 60s (default: 45s)
    SEARCH_QUERY         Search query
    SEARCH_DEPTH         basic or advanced (default: advanced)
    SEARCH_MAX_RESULTS   1 to 20 (default: 5)
    SEARCH_TIMEOUT       15s to 45s (default: 30s)
    PROMPT_FILE          User prompt template with {{.Count}} and {{.Items}}
    OUTPUT_PATH          Local output file (default: index.html)
    OUTPUT_BUCKET        Write to this GCS bucket instead
    OUTPUT_OBJECT        GCS object name (default: index.html)
    REPORT_TITLE         Page title
    REPORT_TIMEZONE      Timezone for the update time (default: Asia/Shanghai)
    SLACK_BOT_TOKEN      Post a Slack notification after each run
    SLACK_CHANNEL        Slack channel (default: #dev-null)
    LOG_LEVEL            debug, info, warn or error (default: info)

EXIT CODES:
    0    report written
    1    unexpected error
    2    configuration error
    3    search failed
    4    every model failed
    5    rendering failed
    6    writing the report failed
    130  interrupted
`)
}
