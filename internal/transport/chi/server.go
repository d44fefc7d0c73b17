package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docretriever/internal/domain"
	"github.com/kailas-cloud/docretriever/internal/domain/document"
	"github.com/kailas-cloud/docretriever/internal/domain/scope"
	logpkg "github.com/kailas-cloud/docretriever/internal/logger"
	healthuc "github.com/kailas-cloud/docretriever/internal/usecase/health"
	"github.com/kailas-cloud/docretriever/internal/usecase/retrieval"
)

const (
	maxQueries   = 100
	maxBodyBytes = 1 << 20
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest             = "bad_request"
	CodeUnauthorized           = "unauthorized"
	CodeValidationFailed       = "validation_failed"
	CodeInvalidScope           = "invalid_scope"
	CodeUnsupportedRetriever   = "unsupported_retriever"
	CodeEmbeddingProviderError = "embedding_provider_error"
	CodeEmbeddingQuotaExceeded = "embedding_quota_exceeded"
	CodeIndexUnavailable       = "index_unavailable"
	CodeRetrievalFailed        = "retrieval_failed"
	CodeInternalError          = "internal_error"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RetrieveRequest is the body of POST /v1/retrieve.
// Query is a shorthand for a single-element Queries and is retrieved first.
type RetrieveRequest struct {
	Query     string         `json:"query,omitempty"`
	Queries   []string       `json:"queries,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Retriever string         `json:"retriever,omitempty"`
	Routed    bool           `json:"routed,omitempty"`
}

// DocumentResponse is one retrieved document.
type DocumentResponse struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// RetrieveResponse is the body of a successful POST /v1/retrieve.
type RetrieveResponse struct {
	Documents []DocumentResponse `json:"documents"`
	Count     int                `json:"count"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the retrieval HTTP API.
type Server struct {
	retrieval     retrieval.Runner
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(runner retrieval.Runner, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		retrieval: runner,
		health:    health,
		logger:    logger,
	}
	// Order matters: a RetrievalError caused by the embedder matches both
	// ErrEmbeddingProviderError and ErrRetrieval.
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidScope, http.StatusBadRequest, CodeInvalidScope),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrUnsupportedRetriever, http.StatusBadRequest, CodeUnsupportedRetriever),
		sentinelHandler(domain.ErrEmbeddingQuotaExceeded,
			http.StatusPaymentRequired, CodeEmbeddingQuotaExceeded),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProviderError),
		sentinelHandler(domain.ErrIndexUnavailable, http.StatusServiceUnavailable, CodeIndexUnavailable),
		sentinelHandler(domain.ErrRetrieval, http.StatusBadGateway, CodeRetrievalFailed),
	}
	return s
}

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.Post("/v1/retrieve", s.Retrieve)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Retrieve handles POST /v1/retrieve.
func (s *Server) Retrieve(w http.ResponseWriter, r *http.Request) {
	var req RetrieveRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	queries := make([]string, 0, len(req.Queries)+1)
	if req.Query != "" {
		queries = append(queries, req.Query)
	}
	queries = append(queries, req.Queries...)
	if len(queries) == 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "query or queries is required")
		return
	}
	if len(queries) > maxQueries {
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			fmt.Sprintf("too many queries: %d (max %d)", len(queries), maxQueries))
		return
	}

	sc, err := scope.FromMap(req.Metadata)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	docs, err := s.retrieval.Retrieve(r.Context(), retrieval.Request{
		Queries:   queries,
		Scope:     sc,
		Retriever: req.Retriever,
		Routed:    req.Routed,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("X-Document-Count", strconv.Itoa(len(docs)))
	writeJSON(w, http.StatusOK, retrieveResponse(docs))
}

// HealthCheck handles GET /health.
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

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func retrieveResponse(docs []document.Document) RetrieveResponse {
	out := make([]DocumentResponse, len(docs))
	for i, d := range docs {
		md := d.Metadata()
		if md == nil {
			md = map[string]any{}
		}
		out[i] = DocumentResponse{Content: d.Content(), Metadata: md}
	}
	return RetrieveResponse{Documents: out, Count: len(out)}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-facing message without exposing internals.
// Caller mistakes are echoed in full; upstream failures collapse to their sentinel.
func safeDomainMessage(err error) string {
	for _, caller := range []error{
		domain.ErrInvalidScope,
		domain.ErrInvalidRequest,
		domain.ErrUnsupportedRetriever,
	} {
		if errors.Is(err, caller) {
			return err.Error()
		}
	}
	for _, s := range []error{
		domain.ErrEmbeddingQuotaExceeded,
		domain.ErrEmbeddingProviderError,
		domain.ErrIndexUnavailable,
		domain.ErrRetrieval,
	} {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
