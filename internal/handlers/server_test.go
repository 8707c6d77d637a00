package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pep299/news-briefing/internal/pipeline"
	"github.com/pep299/news-briefing/internal/search"
)

type fakeRunner struct {
	result  *pipeline.Result
	err     error
	calls   int
	started chan struct{}
	release chan struct{}
}

func (f *fakeRunner) Run(ctx context.Context) (*pipeline.Result, error) {
	f.calls++
	if f.started != nil {
		close(f.started)
		<-f.release
	}
	return f.result, f.err
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealthHandler(t *testing.T) {
	router := NewServer(&fakeRunner{}, "", "v1.2.3", zaptest.NewLogger(t)).SetupRoutes()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	resp := decode(t, w)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "v1.2.3", resp.Data.(map[string]interface{})["version"])
}

func TestRunHandlerSuccess(t *testing.T) {
	runner := &fakeRunner{result: &pipeline.Result{State: pipeline.StatePersisted, Location: "index.html", Items: 3}}
	router := NewServer(runner, "", "dev", zaptest.NewLogger(t)).SetupRoutes()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/api/v1/run", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, runner.calls)
	resp := decode(t, w)
	assert.Equal(t, "briefing published", resp.Message)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "persisted", data["state"])
	assert.Equal(t, "index.html", data["location"])
}

func TestRunHandlerFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"retrieval", &pipeline.StageError{Stage: pipeline.StateRetrieving, Err: &search.RetrievalError{Cause: errors.New("timeout")}}, http.StatusBadGateway},
		{"cancelled", context.Canceled, http.StatusServiceUnavailable},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{result: &pipeline.Result{State: pipeline.StateFailed}, err: tt.err}
			router := NewServer(runner, "", "dev", zaptest.NewLogger(t)).SetupRoutes()

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest("POST", "/api/v1/run", nil))

			assert.Equal(t, tt.want, w.Code)
			resp := decode(t, w)
			assert.Equal(t, "error", resp.Status)
			assert.Equal(t, tt.err.Error(), resp.Error)
		})
	}
}

func TestRunHandlerAuth(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   int
		calls  int
	}{
		{"missing", "", http.StatusUnauthorized, 0},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, 0},
		{"wrong token", "Bearer nope", http.StatusForbidden, 0},
		{"valid", "Bearer secret", http.StatusOK, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{result: &pipeline.Result{State: pipeline.StatePersisted}}
			router := NewServer(runner, "secret", "dev", zaptest.NewLogger(t)).SetupRoutes()

			req := httptest.NewRequest("POST", "/api/v1/run", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			assert.Equal(t, tt.calls, runner.calls)
		})
	}
}

func TestRunHandlerMethodNotAllowed(t *testing.T) {
	runner := &fakeRunner{}
	router := NewServer(runner, "", "dev", zaptest.NewLogger(t)).SetupRoutes()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/run", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Zero(t, runner.calls)
}

func TestRunHandlerConcurrentRun(t *testing.T) {
	runner := &fakeRunner{
		result:  &pipeline.Result{State: pipeline.StatePersisted},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	router := NewServer(runner, "", "dev", zaptest.NewLogger(t)).SetupRoutes()

	var wg sync.WaitGroup
	first := httptest.NewRecorder()
	wg.Add(1)
	go func() {
		defer wg.Done()
		router.ServeHTTP(first, httptest.NewRequest("POST", "/api/v1/run", nil))
	}()
	<-runner.started

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest("POST", "/api/v1/run", nil))
	assert.Equal(t, http.StatusConflict, second.Code)

	close(runner.release)
	wg.Wait()
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, 1, runner.calls)
}
