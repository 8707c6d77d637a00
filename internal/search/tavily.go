package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTavilyEndpoint is the public Tavily search API
const DefaultTavilyEndpoint = "https://api.tavily.com/search"

// TavilyClient handles Tavily search operations
type TavilyClient struct {
	endpoint   string
	httpClient *http.Client
	userAgent  string
}

// NewTavilyClient creates a new Tavily client bounded by timeout
func NewTavilyClient(endpoint string, timeout time.Duration) *TavilyClient {
	if endpoint == "" {
		endpoint = DefaultTavilyEndpoint
	}
	return &TavilyClient{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: "news-briefing/1.0",
	}
}

type tavilyRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	SearchDepth Depth  `json:"search_depth"`
	MaxResults  int    `json:"max_results"`
}

type tavilyResponse struct {
	Results *[]map[string]json.RawMessage `json:"results"`
}

// Retrieve sends exactly one search request. Every failure is a *RetrievalError.
func (c *TavilyClient) Retrieve(ctx context.Context, query Query, apiKey string) (ResultSet, error) {
	if err := query.Validate(); err != nil {
		return nil, &RetrievalError{Cause: fmt.Errorf("invalid query: %w", err)}
	}

	items, err := c.search(ctx, query, apiKey)
	if err != nil {
		return nil, &RetrievalError{Cause: err}
	}
	return items, nil
}

func (c *TavilyClient) search(ctx context.Context, query Query, apiKey string) (ResultSet, error) {
	body, err := json.Marshal(tavilyRequest{
		APIKey:      apiKey,
		Query:       query.Text,
		SearchDepth: query.Depth,
		MaxResults:  query.MaxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("search API returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var decoded tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if decoded.Results == nil {
		return nil, errors.New("malformed response: missing results")
	}

	items := make(ResultSet, 0, len(*decoded.Results))
	for i, raw := range *decoded.Results {
		item, err := toItem(raw)
		if err != nil {
			return nil, fmt.Errorf("malformed result %d: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// toItem lifts title, url and content out of a raw result and keeps the rest
func toItem(raw map[string]json.RawMessage) (Item, error) {
	item := Item{RawFields: make(map[string]json.RawMessage, len(raw))}
	targets := map[string]*string{"title": &item.Title, "url": &item.URL, "content": &item.Content}

	for key, value := range raw {
		dst, known := targets[key]
		if !known {
			item.RawFields[key] = value
			continue
		}
		if string(value) == "null" {
			continue
		}
		if err := json.Unmarshal(value, dst); err != nil {
			return Item{}, fmt.Errorf("field %s: %w", key, err)
		}
	}
	return item, nil
}
