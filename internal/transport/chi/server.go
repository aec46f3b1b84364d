// Package chi exposes the retrieval engine over a JSON HTTP API.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hsnnrn/hasandocai-sub002/internal/aggregate"
	"github.com/hsnnrn/hasandocai-sub002/internal/domain"
	"github.com/hsnnrn/hasandocai-sub002/internal/engine"
	healthuc "github.com/hsnnrn/hasandocai-sub002/internal/usecase/health"
	"github.com/hsnnrn/hasandocai-sub002/internal/usecase/retrieve"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server wires the engine and health service into HTTP handlers.
type Server struct {
	engine        *engine.Engine
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(eng *engine.Engine, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		engine: eng,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEmptyQuery, http.StatusBadRequest, codeEmptyQuery),
		sentinelHandler(domain.ErrNoDocuments, http.StatusConflict, codeNoDocuments),
		sentinelHandler(domain.ErrInvalidDocument, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeProviderError),
	}
	return s
}

// Register mounts all routes on the given router.
func (s *Server) Register(r chi.Router) {
	r.Put("/v1/documents", s.UpsertDocuments)
	r.Post("/v1/query", s.Query)
	r.Post("/v1/extract", s.Extract)
	r.Post("/v1/aggregate", s.Aggregate)
	r.Get("/healthz", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// UpsertDocuments handles PUT /v1/documents. The request replaces the whole
// document set; an unchanged set is a no-op that keeps the cache warm.
func (s *Server) UpsertDocuments(w http.ResponseWriter, r *http.Request) {
	var req upsertDocumentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	docs := documentsFromRequest(req)
	rebuilt, err := s.engine.SetDocuments(r.Context(), docs)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	sections := 0
	for _, d := range docs {
		sections += len(d.Sections)
	}
	writeJSON(w, http.StatusOK, upsertDocumentsResponse{
		Rebuilt:   rebuilt,
		Documents: len(docs),
		Sections:  sections,
	})
}

// Query handles POST /v1/query.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	results, err := s.engine.Query(r.Context(), req.Query, retrieve.Options{
		MaxRefs:  req.MaxRefs,
		MinScore: req.MinScore,
		Rerank:   req.Rerank,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, queryResponse{
		Intent:  string(s.engine.DetectIntent(req.Query)),
		Results: resultsToItems(results),
	})
}

// Extract handles POST /v1/extract: runs the extraction cascades over a raw
// text with no retrieval involved.
func (s *Server) Extract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Text is required")
		return
	}

	ex := s.engine.ExtractText(req.Text)
	writeJSON(w, http.StatusOK, extractionToResponse(ex))
}

// Aggregate handles POST /v1/aggregate: retrieval, extraction, and
// aggregation in one call. The response carries the full analysis payload.
func (s *Server) Aggregate(w http.ResponseWriter, r *http.Request) {
	var req aggregateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	analysis, err := s.engine.Analyze(r.Context(), req.Query,
		retrieve.Options{MaxRefs: req.MaxRefs},
		aggregate.Options{
			Dedup:          req.Dedup,
			CurrencyFilter: req.CurrencyFilter,
			IncludeStats:   req.IncludeStats,
		},
	)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, analysisToResponse(analysis, req.IncludeStats))
}

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrEmptyQuery,
		domain.ErrNoDocuments,
		domain.ErrInvalidDocument,
		domain.ErrRateLimited,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, safeDomainMessage(err))
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("Unhandled domain error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
}
