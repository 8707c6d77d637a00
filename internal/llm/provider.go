package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Role of a chat message
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is one chat turn sent to a model
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is a single completion call against one model
type Request struct {
	Model    string
	Messages []Message
	APIKey   string
}

// Provider turns a request into raw model text. A blank string with a nil error
// means the model answered with nothing.
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
	Name() string
}

// NewProvider builds the provider for kind ("openai", "anthropic" or "gemini")
func NewProvider(kind, baseURL string, timeout time.Duration) (Provider, error) {
	httpClient := &http.Client{Timeout: timeout}

	switch kind {
	case "openai":
		return NewOpenAIProvider(baseURL, httpClient), nil
	case "anthropic":
		return NewAnthropicProvider(baseURL, httpClient), nil
	case "gemini":
		return NewGeminiProvider(baseURL, httpClient), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", kind)
	}
}

// splitMessages separates system instructions from conversation turns
func splitMessages(messages []Message) (system string, turns []Message) {
	for _, m := range messages {
		if m.Role == RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
			continue
		}
		turns = append(turns, m)
	}
	return system, turns
}
