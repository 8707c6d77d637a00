package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/pep299/news-briefing/internal/pipeline"
)

// healthHandler provides health check endpoint
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, "ok", map[string]interface{}{
		"timestamp": time.Now().Unix(),
		"version":   s.version,
	})
}

// runHandler executes one briefing and reports its result
func (s *Server) runHandler(w http.ResponseWriter, r *http.Request) {
	if !s.running.TryLock() {
		WriteError(w, http.StatusConflict, "a briefing run is already in progress")
		return
	}
	defer s.running.Unlock()

	result, err := s.runner.Run(r.Context())
	if err != nil {
		s.logger.Error("briefing run failed", zap.Error(err))
		WriteJSON(w, statusFor(err), Response{
			Status: "error",
			Error:  err.Error(),
			Data:   result,
		})
		return
	}

	WriteSuccess(w, "briefing published", result)
}

// statusFor maps a run error to an HTTP status
func statusFor(err error) int {
	switch pipeline.ExitCode(err) {
	case pipeline.ExitRetrieval, pipeline.ExitSummarization:
		return http.StatusBadGateway
	case pipeline.ExitCancelled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
