package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var managedKeys = []string{
	"TAVILY_API_KEY", "MODEL_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY",
	"MODEL_PROVIDER", "MODELS", "SEARCH_DEPTH", "SEARCH_MAX_RESULTS", "SEARCH_TIMEOUT",
	"MODEL_TIMEOUT", "SEARCH_QUERY", "SLACK_BOT_TOKEN", "OUTPUT_PATH",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range managedKeys {
		t.Setenv(key, "")
	}
}

func TestLoadConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("TAVILY_API_KEY", "tvly-test")
	t.Setenv("MODEL_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "tvly-test", cfg.SearchAPIKey)
	assert.Equal(t, "sk-test", cfg.ModelAPIKey)
	assert.Equal(t, ProviderOpenAI, cfg.ModelProvider)
	assert.Equal(t, []string{"gpt-4o-mini", "gpt-4.1-mini"}, cfg.Models)
	assert.Equal(t, "advanced", cfg.SearchDepth)
	assert.Equal(t, 5, cfg.SearchMaxResults)
	assert.Equal(t, 30*time.Second, cfg.SearchTimeout)
	assert.Equal(t, 45*time.Second, cfg.ModelTimeout)
	assert.Equal(t, "index.html", cfg.OutputPath)
	assert.Equal(t, "8080", cfg.Port)
}

func TestLoadConfigProviderKeyFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("TAVILY_API_KEY", "tvly-test")
	t.Setenv("MODEL_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "  gemini-key  ")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gemini-key", cfg.ModelAPIKey)
	assert.Equal(t, []string{"gemini-2.0-flash", "gemini-1.5-flash-latest"}, cfg.Models)
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		field string
	}{
		{
			name:  "missing search key",
			env:   map[string]string{"MODEL_API_KEY": "sk-test"},
			field: "TAVILY_API_KEY",
		},
		{
			name:  "whitespace-only search key",
			env:   map[string]string{"TAVILY_API_KEY": "   ", "MODEL_API_KEY": "sk-test"},
			field: "TAVILY_API_KEY",
		},
		{
			name:  "missing model key",
			env:   map[string]string{"TAVILY_API_KEY": "tvly-test"},
			field: "MODEL_API_KEY",
		},
		{
			name:  "unknown provider",
			env:   map[string]string{"TAVILY_API_KEY": "t", "MODEL_API_KEY": "m", "MODEL_PROVIDER": "cohere", "MODELS": "x"},
			field: "MODEL_PROVIDER",
		},
		{
			name:  "max results out of range",
			env:   map[string]string{"TAVILY_API_KEY": "t", "MODEL_API_KEY": "m", "SEARCH_MAX_RESULTS": "21"},
			field: "SEARCH_MAX_RESULTS",
		},
		{
			name:  "bad depth",
			env:   map[string]string{"TAVILY_API_KEY": "t", "MODEL_API_KEY": "m", "SEARCH_DEPTH": "deep"},
			field: "SEARCH_DEPTH",
		},
		{
			name:  "search timeout too short",
			env:   map[string]string{"TAVILY_API_KEY": "t", "MODEL_API_KEY": "m", "SEARCH_TIMEOUT": "5s"},
			field: "SEARCH_TIMEOUT",
		},
		{
			name:  "model timeout too long",
			env:   map[string]string{"TAVILY_API_KEY": "t", "MODEL_API_KEY": "m", "MODEL_TIMEOUT": "120"},
			field: "MODEL_TIMEOUT",
		},
		{
			name:  "bad slack token",
			env:   map[string]string{"TAVILY_API_KEY": "t", "MODEL_API_KEY": "m", "SLACK_BOT_TOKEN": "xoxp-123"},
			field: "SLACK_BOT_TOKEN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestGetEnvOrDefaultDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "20s")
	d, err := getEnvOrDefaultDuration("TEST_DURATION", time.Second)
	require.NoError(t, err)
	assert.Equal(t, 20*time.Second, d)

	t.Setenv("TEST_DURATION", "40")
	d, err = getEnvOrDefaultDuration("TEST_DURATION", time.Second)
	require.NoError(t, err)
	assert.Equal(t, 40*time.Second, d)

	t.Setenv("TEST_DURATION", "")
	d, err = getEnvOrDefaultDuration("TEST_DURATION", time.Second)
	require.NoError(t, err)
	assert.Equal(t, time.Second, d)

	t.Setenv("TEST_DURATION", "soon")
	_, err = getEnvOrDefaultDuration("TEST_DURATION", time.Second)
	assert.Error(t, err)
}

func TestLoadConfigUnparsableValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"SEARCH_MAX_RESULTS", "abc"},
		{"SEARCH_TIMEOUT", "soon"},
		{"MODEL_TIMEOUT", "1 minute"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("TAVILY_API_KEY", "tvly-test")
			t.Setenv("MODEL_API_KEY", "sk-test")
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.key, cfgErr.Field)
		})
	}
}

func TestParseStringSlice(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"", []string{}},
		{"a", []string{"a"}},
		{"a,b,c", []string{"a", "b", "c"}},
		{"a, b , c ", []string{"a", "b", "c"}},
		{"a,,b", []string{"a", "b"}},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, parseStringSlice(test.input), "input %q", test.input)
	}
}
