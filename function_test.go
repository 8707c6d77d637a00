package briefing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var outputPath string

func TestMain(m *testing.M) {
	// Search endpoint that never finds anything, so runs publish the notice without a model call
	search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[]}`))
	}))

	dir, err := os.MkdirTemp("", "briefing-function")
	if err != nil {
		panic(err)
	}
	outputPath = filepath.Join(dir, "index.html")

	os.Setenv("TAVILY_API_KEY", "tvly-test")
	os.Setenv("MODEL_API_KEY", "sk-test")
	os.Setenv("SEARCH_ENDPOINT", search.URL)
	os.Setenv("OUTPUT_PATH", outputPath)
	os.Setenv("NO_UPDATES_TEXT", "<p>quiet day</p>")
	os.Setenv("RUN_AUTH_TOKEN", "test-token")
	os.Setenv("LOG_LEVEL", "error")

	code := m.Run()

	search.Close()
	os.RemoveAll(dir)
	os.Exit(code)
}

func TestRunBriefingHealthCheck(t *testing.T) {
	w := httptest.NewRecorder()
	RunBriefing(w, httptest.NewRequest("GET", "/api/v1/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "success", response["status"])
}

func TestRunBriefingInvalidRoute(t *testing.T) {
	w := httptest.NewRecorder()
	RunBriefing(w, httptest.NewRequest("GET", "/invalid/route", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRunBriefingUnauthorized(t *testing.T) {
	w := httptest.NewRecorder()
	RunBriefing(w, httptest.NewRequest("POST", "/api/v1/run", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	_, err := os.Stat(outputPath)
	assert.True(t, os.IsNotExist(err))
}

func TestRunBriefingPublishesNotice(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/v1/run", nil)
	req.Header.Set("Authorization", "Bearer test-token")
	w := httptest.NewRecorder()
	RunBriefing(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response struct {
		Status string `json:"status"`
		Data   struct {
			State     string `json:"state"`
			NoUpdates bool   `json:"no_updates"`
			Location  string `json:"location"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "persisted", response.Data.State)
	assert.True(t, response.Data.NoUpdates)
	assert.Equal(t, outputPath, response.Data.Location)

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<p>quiet day</p>")
}
