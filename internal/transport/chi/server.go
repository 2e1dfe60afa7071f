// Package chi exposes the recommendation service over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/shopmate-ai/shopmate/internal/domain"
	healthuc "github.com/shopmate-ai/shopmate/internal/usecase/health"
	recommenduc "github.com/shopmate-ai/shopmate/internal/usecase/recommend"
)

// maxTopK caps the per-request result count.
const maxTopK = 50

// Server hosts the HTTP handlers for the recommendation API.
type Server struct {
	recommend *recommenduc.Service
	health    *healthuc.Service
	logger    *zap.Logger
}

// NewServer creates the HTTP API server.
func NewServer(recommend *recommenduc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	return &Server{recommend: recommend, health: health, logger: logger}
}

// Routes mounts the API on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/recommend", s.handleRecommend)
	r.Get("/history", s.handleHistory)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

// recommendRequest is the POST /recommend body.
type recommendRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

// recommendResponse echoes the query alongside the recommendation.
type recommendResponse struct {
	Query string `json:"query"`
	domain.Recommendation
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if req.TopK < 0 || req.TopK > maxTopK {
		writeError(w, http.StatusBadRequest, "validation_failed", "top_k must be between 0 and 50")
		return
	}

	rec, err := s.recommend.Recommend(r.Context(), req.Query, req.TopK)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recommendResponse{Query: req.Query, Recommendation: rec})
}

// historyResponse wraps the entry list, oldest first.
type historyResponse struct {
	Entries []domain.HistoryEntry `json:"entries"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.recommend.History(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Entries: entries})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())
	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// handleDomainError maps domain sentinels onto HTTP statuses.
func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyQuery):
		writeError(w, http.StatusBadRequest, "validation_failed", "No query provided")
	case errors.Is(err, domain.ErrHistoryUnavailable):
		writeError(w, http.StatusServiceUnavailable, "history_unavailable", "History store is unavailable")
	default:
		s.logger.Error("Unhandled error in HTTP handler", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

// errorResponse is the JSON error body.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
