package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Model provider kinds
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Bounds for per-call timeouts
const (
	MinSearchTimeout = 15 * time.Second
	MaxSearchTimeout = 45 * time.Second
	MinModelTimeout  = 30 * time.Second
	MaxModelTimeout  = 60 * time.Second
)

const (
	defaultSearchQuery = "latest AI and tech news today"
	defaultNoUpdates   = "<p>今日暂无值得关注的科技动态。</p>"
)

var defaultModels = map[string]string{
	ProviderOpenAI:    "gpt-4o-mini,gpt-4.1-mini",
	ProviderAnthropic: "claude-3-5-haiku-latest,claude-3-7-sonnet-latest",
	ProviderGemini:    "gemini-2.0-flash,gemini-1.5-flash-latest",
}

var providerKeyEnv = map[string]string{
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderAnthropic: "ANTHROPIC_API_KEY",
	ProviderGemini:    "GEMINI_API_KEY",
}

// Config holds all configuration for the application.
// It is built once by Load and treated as read-only afterwards.
type Config struct {
	// Server settings
	Port string `json:"port"`
	Host string `json:"host"`

	// Search provider settings
	SearchAPIKey     string        `json:"-"` // Don't expose in JSON
	SearchEndpoint   string        `json:"search_endpoint"`
	SearchQuery      string        `json:"search_query"`
	SearchDepth      string        `json:"search_depth"`
	SearchMaxResults int           `json:"search_max_results"`
	SearchTimeout    time.Duration `json:"search_timeout"`

	// Model provider settings
	ModelProvider string        `json:"model_provider"`
	ModelAPIKey   string        `json:"-"` // Don't expose in JSON
	ModelBaseURL  string        `json:"model_base_url"`
	Models        []string      `json:"models"`
	ModelTimeout  time.Duration `json:"model_timeout"`
	PromptFile    string        `json:"prompt_file"`
	NoUpdatesText string        `json:"no_updates_text"`

	// Output settings
	OutputPath   string `json:"output_path"`
	OutputBucket string `json:"output_bucket"`
	OutputObject string `json:"output_object"`

	// Report settings
	ReportTitle    string `json:"report_title"`
	ReportLocale   string `json:"report_locale"`
	ReportTimezone string `json:"report_timezone"`

	// Slack settings
	SlackBotToken string `json:"-"` // Don't expose in JSON
	SlackChannel  string `json:"slack_channel"`

	// Trigger settings
	RunAuthToken string `json:"-"` // Don't expose in JSON

	LogLevel string `json:"log_level"`
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	provider := strings.ToLower(getEnvOrDefault("MODEL_PROVIDER", ProviderOpenAI))

	maxResults, err := getEnvOrDefaultInt("SEARCH_MAX_RESULTS", 5)
	if err != nil {
		return nil, err
	}
	searchTimeout, err := getEnvOrDefaultDuration("SEARCH_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	modelTimeout, err := getEnvOrDefaultDuration("MODEL_TIMEOUT", 45*time.Second)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Port:             getEnvOrDefault("PORT", "8080"),
		Host:             getEnvOrDefault("HOST", "0.0.0.0"),
		SearchAPIKey:     strings.TrimSpace(os.Getenv("TAVILY_API_KEY")),
		SearchEndpoint:   getEnvOrDefault("SEARCH_ENDPOINT", "https://api.tavily.com/search"),
		SearchQuery:      getEnvOrDefault("SEARCH_QUERY", defaultSearchQuery),
		SearchDepth:      getEnvOrDefault("SEARCH_DEPTH", "advanced"),
		SearchMaxResults: maxResults,
		SearchTimeout:    searchTimeout,
		ModelProvider:    provider,
		ModelAPIKey:      strings.TrimSpace(firstEnv("MODEL_API_KEY", providerKeyEnv[provider])),
		ModelBaseURL:     getEnvOrDefault("MODEL_BASE_URL", ""),
		Models:           parseStringSlice(getEnvOrDefault("MODELS", defaultModels[provider])),
		ModelTimeout:     modelTimeout,
		PromptFile:       getEnvOrDefault("PROMPT_FILE", ""),
		NoUpdatesText:    getEnvOrDefault("NO_UPDATES_TEXT", defaultNoUpdates),
		OutputPath:       getEnvOrDefault("OUTPUT_PATH", "index.html"),
		OutputBucket:     getEnvOrDefault("OUTPUT_BUCKET", ""),
		OutputObject:     getEnvOrDefault("OUTPUT_OBJECT", "index.html"),
		ReportTitle:      getEnvOrDefault("REPORT_TITLE", "🚀 AIClaw 科技每日速报"),
		ReportLocale:     getEnvOrDefault("REPORT_LOCALE", "zh-CN"),
		ReportTimezone:   getEnvOrDefault("REPORT_TIMEZONE", "Asia/Shanghai"),
		SlackBotToken:    getEnvOrDefault("SLACK_BOT_TOKEN", ""),
		SlackChannel:     getEnvOrDefault("SLACK_CHANNEL", "#dev-null"),
		RunAuthToken:     getEnvOrDefault("RUN_AUTH_TOKEN", ""),
		LogLevel:         getEnvOrDefault("LOG_LEVEL", "info"),
	}

	return config, config.validate()
}

// validate checks if required configuration values are present
func (c *Config) validate() error {
	if c.SearchAPIKey == "" {
		return &ConfigError{Field: "TAVILY_API_KEY", Message: "search provider API key is required"}
	}
	if c.ModelAPIKey == "" {
		return &ConfigError{Field: "MODEL_API_KEY", Message: "model provider API key is required"}
	}
	if _, ok := defaultModels[c.ModelProvider]; !ok {
		return &ConfigError{Field: "MODEL_PROVIDER", Message: fmt.Sprintf("unknown provider %q", c.ModelProvider)}
	}
	if len(c.Models) == 0 {
		return &ConfigError{Field: "MODELS", Message: "at least one model is required"}
	}
	if strings.TrimSpace(c.SearchQuery) == "" {
		return &ConfigError{Field: "SEARCH_QUERY", Message: "must not be empty"}
	}
	if c.SearchDepth != "basic" && c.SearchDepth != "advanced" {
		return &ConfigError{Field: "SEARCH_DEPTH", Message: "must be basic or advanced"}
	}
	if c.SearchMaxResults < 1 || c.SearchMaxResults > 20 {
		return &ConfigError{Field: "SEARCH_MAX_RESULTS", Message: "must be between 1 and 20"}
	}
	if c.SearchTimeout < MinSearchTimeout || c.SearchTimeout > MaxSearchTimeout {
		return &ConfigError{Field: "SEARCH_TIMEOUT", Message: fmt.Sprintf("must be between %s and %s", MinSearchTimeout, MaxSearchTimeout)}
	}
	if c.ModelTimeout < MinModelTimeout || c.ModelTimeout > MaxModelTimeout {
		return &ConfigError{Field: "MODEL_TIMEOUT", Message: fmt.Sprintf("must be between %s and %s", MinModelTimeout, MaxModelTimeout)}
	}
	if c.SlackBotToken != "" && !strings.HasPrefix(c.SlackBotToken, "xoxb-") {
		return &ConfigError{Field: "SLACK_BOT_TOKEN", Message: "must start with xoxb-"}
	}
	return nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default if not set.
// A value that is set but not a number is a ConfigError.
func getEnvOrDefaultInt(key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, &ConfigError{Field: key, Message: fmt.Sprintf("%q is not an integer", value)}
	}
	return intValue, nil
}

// getEnvOrDefaultDuration accepts Go durations ("30s") or plain seconds ("30")
func getEnvOrDefaultDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d, nil
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return 0, &ConfigError{Field: key, Message: fmt.Sprintf("%q is not a duration", value)}
}

// firstEnv returns the first non-empty value among keys
func firstEnv(keys ...string) string {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return value
		}
	}
	return ""
}

// parseStringSlice parses comma-separated string into slice
func parseStringSlice(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
