package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/user/inventory-service/internal/domain"
	"go.uber.org/zap"
)

const (
	msgNoEmbeddedData = "Could not locate embedded data on Dutchie page."
	msgNoProducts     = "No products found in embedded data."
	msgNoProductsHint = "Page structure may have changed."
	msgFetchFailed    = "Fetch failed"
)

type errorResponse struct {
	Error   string `json:"error"`
	Hint    string `json:"hint,omitempty"`
	Details string `json:"details,omitempty"`
}

func (s *Server) handleInventory(w http.ResponseWriter, r *http.Request) {
	result, err := s.inventory.Inventory(r.Context())
	switch {
	case err == nil:
		s.respondWithJSON(w, http.StatusOK, result)
	case errors.Is(err, domain.ErrUpstreamShape):
		s.respondWithError(w, http.StatusBadGateway, msgNoEmbeddedData)
	case errors.Is(err, domain.ErrNoProductsFound):
		s.respondWithJSON(w, http.StatusBadGateway, errorResponse{Error: msgNoProducts, Hint: msgNoProductsHint})
	default:
		s.respondWithJSON(w, http.StatusInternalServerError, errorResponse{Error: msgFetchFailed, Details: err.Error()})
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.runLog.Status(r.Context(), s.inventory.Source())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRunLogDisabled):
			s.respondWithError(w, http.StatusNotFound, "Run log is not configured")
		case errors.Is(err, domain.ErrRunNotFound):
			s.respondWithError(w, http.StatusNotFound, "No runs recorded yet")
		default:
			s.logger.Error("failed to get run status", zap.Error(err))
			s.respondWithError(w, http.StatusInternalServerError, "Could not retrieve status")
		}
		return
	}
	s.respondWithJSON(w, http.StatusOK, status)
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	healthStatus := s.runLog.Health(ctx)
	code := http.StatusOK
	healthStatus["status"] = "ok"
	for name, state := range healthStatus {
		if name != "status" && state != "healthy" {
			code = http.StatusServiceUnavailable
			healthStatus["status"] = "degraded"
		}
	}
	s.respondWithJSON(w, code, healthStatus)
}

// --- Helper Functions ---

func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, errorResponse{Error: message})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
		code = http.StatusInternalServerError
		response = []byte(`{"error":"internal error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
