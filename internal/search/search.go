package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Depth selects how thoroughly the provider searches
type Depth string

const (
	DepthBasic    Depth = "basic"
	DepthAdvanced Depth = "advanced"
)

// MaxResultsLimit is the largest page size a query may request
const MaxResultsLimit = 20

// Query is a single search request, built once per run
type Query struct {
	Text       string
	MaxResults int
	Depth      Depth
}

// Validate checks query constraints before any request is sent
func (q Query) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return errors.New("query text is empty")
	}
	if q.MaxResults < 1 || q.MaxResults > MaxResultsLimit {
		return fmt.Errorf("max results %d out of range [1, %d]", q.MaxResults, MaxResultsLimit)
	}
	if q.Depth != DepthBasic && q.Depth != DepthAdvanced {
		return fmt.Errorf("unknown search depth %q", q.Depth)
	}
	return nil
}

// Item is one normalized search hit. RawFields keeps every other provider field untouched.
type Item struct {
	Title     string
	URL       string
	Content   string
	RawFields map[string]json.RawMessage
}

// MarshalJSON emits the provider fields merged with title, url and content
func (i Item) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(i.RawFields)+3)
	for k, v := range i.RawFields {
		out[k] = v
	}
	for k, v := range map[string]string{"title": i.Title, "url": i.URL, "content": i.Content} {
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		out[k] = encoded
	}
	return json.Marshal(out)
}

// ResultSet keeps items in provider order. It may be empty.
type ResultSet []Item

// Retriever executes one query against a search provider
type Retriever interface {
	Retrieve(ctx context.Context, query Query, apiKey string) (ResultSet, error)
}

// RetrievalError is returned for any failed or timed out search call
type RetrievalError struct {
	Cause error
}

func (e *RetrievalError) Error() string {
	return "retrieval failed: " + e.Cause.Error()
}

func (e *RetrievalError) Unwrap() error {
	return e.Cause
}
