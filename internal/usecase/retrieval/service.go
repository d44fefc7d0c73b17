package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docretriever/internal/domain"
	"github.com/kailas-cloud/docretriever/internal/domain/document"
	"github.com/kailas-cloud/docretriever/internal/domain/scope"
	logpkg "github.com/kailas-cloud/docretriever/internal/logger"
	"github.com/kailas-cloud/docretriever/internal/metrics"
)

// Retrieval modes, used as the "mode" metric label.
const (
	ModeStandard = "standard"
	ModeRouted   = "routed"
)

// Request is one caller-level retrieval.
type Request struct {
	// Queries are the query variants, retrieved in order.
	Queries []string
	// Scope narrows the index filter and drives routing. Never mutated.
	Scope scope.Scope
	// Retriever selects the variant; empty means the service default.
	Retriever string
	// Routed enables the two-partition fan-out.
	Routed bool
}

// Runner is the caller-facing retrieval entry point.
type Runner interface {
	Retrieve(ctx context.Context, req Request) ([]document.Document, error)
}

// Service binds a provider and an index into the retrieval entry point.
type Service struct {
	provider         *Provider
	index            VectorIndex
	partitions       Partitions
	defaultRetriever string
	logger           *zap.Logger
}

var _ Runner = (*Service)(nil)

// NewService creates a retrieval service.
func NewService(provider *Provider, index VectorIndex, logger *zap.Logger) *Service {
	return &Service{
		provider:         provider,
		index:            index,
		partitions:       DefaultPartitions(),
		defaultRetriever: SemanticName,
		logger:           logger,
	}
}

// WithDefaultRetriever sets the variant used when a request names none.
func (s *Service) WithDefaultRetriever(name string) *Service {
	if name != "" {
		s.defaultRetriever = name
	}
	return s
}

// WithPartitions overrides the routing layout.
func (s *Service) WithPartitions(p Partitions) *Service {
	s.partitions = p.withDefaults()
	return s
}

// Retrieve resolves the retriever, runs the batch (routed or not) and returns
// deduplicated documents in first-seen order.
func (s *Service) Retrieve(ctx context.Context, req Request) ([]document.Document, error) {
	start := time.Now()

	name := req.Retriever
	if name == "" {
		name = s.defaultRetriever
	}
	mode := ModeStandard
	if req.Routed {
		mode = ModeRouted
	}

	log := logpkg.FromContextOr(ctx, s.logger).With(
		zap.String("retrieval_id", uuid.NewString()),
		zap.String("retriever", name),
		zap.String("mode", mode),
	)
	ctx = logpkg.ContextWithLogger(ctx, log)

	docs, err := s.run(ctx, name, req)
	elapsed := time.Since(start)

	metrics.RetrievalDuration.WithLabelValues(name, mode).Observe(elapsed.Seconds())
	if err != nil {
		metrics.RetrievalRequestsTotal.WithLabelValues(name, mode, errorStatus(err)).Inc()
		log.Warn("retrieval failed",
			zap.Strings("queries", req.Queries),
			zap.Duration("latency", elapsed),
			zap.Error(err),
		)
		return nil, err
	}

	metrics.RetrievalRequestsTotal.WithLabelValues(name, mode, "ok").Inc()
	metrics.RetrievalDocuments.WithLabelValues(name, mode).Observe(float64(len(docs)))
	log.Info("retrieval",
		zap.Strings("queries", req.Queries),
		zap.Int("scope_keys", len(req.Scope)),
		zap.Int("documents", len(docs)),
		zap.Duration("latency", elapsed),
	)
	return docs, nil
}

func (s *Service) run(ctx context.Context, name string, req Request) ([]document.Document, error) {
	for i, q := range req.Queries {
		if strings.TrimSpace(q) == "" {
			return nil, fmt.Errorf("%w: query %d is blank", domain.ErrInvalidRequest, i)
		}
	}

	r, err := s.provider.Get(name)
	if err != nil {
		return nil, err
	}

	if req.Routed {
		return NewRouter(r, s.partitions).RetrieveManyRouted(ctx, s.index, req.Queries, req.Scope)
	}
	return r.RetrieveMany(ctx, s.index, req.Queries, req.Scope)
}

// errorStatus maps an error to a bounded metric label.
func errorStatus(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmbeddingQuotaExceeded):
		return "quota_exceeded"
	case errors.Is(err, domain.ErrRetrieval):
		return "retrieval_error"
	case errors.Is(err, domain.ErrUnsupportedRetriever):
		return "unsupported_retriever"
	case errors.Is(err, domain.ErrInvalidScope), errors.Is(err, domain.ErrInvalidRequest):
		return "invalid_request"
	default:
		return "error"
	}
}
