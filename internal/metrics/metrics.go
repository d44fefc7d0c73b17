package metrics

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "docretriever"

// Retrieval metrics.
var (
	RetrievalRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrieval_requests_total",
			Help:      "Total number of retrieval calls",
		},
		[]string{"retriever", "mode", "status"},
	)

	RetrievalDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_duration_seconds",
			Help:      "End-to-end retrieval duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"retriever", "mode"},
	)

	RetrievalDocuments = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_documents",
			Help:      "Documents returned per retrieval call after deduplication",
			Buckets:   []float64{0, 1, 5, 10, 21, 42, 84, 168},
		},
		[]string{"retriever", "mode"},
	)

	IndexCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_calls_total",
			Help:      "Total number of vector index calls",
		},
		[]string{"op", "status"},
	)

	IndexCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "index_call_duration_seconds",
			Help:      "Vector index call duration in seconds, embedding included",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"op"},
	)
)

// Embedding metrics.
var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"provider", "model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "model"},
	)

	EmbeddingTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_tokens_total",
			Help:      "Total embedding tokens consumed",
		},
		[]string{"provider", "model", "type"},
	)

	EmbeddingErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_errors_total",
			Help:      "Total embedding errors",
		},
		[]string{"provider", "model", "error_type"},
	)

	EmbeddingBudgetTokensRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "embedding_budget_tokens_remaining",
			Help:      "Tokens left in the embedding budget (-1 = unlimited)",
		},
		[]string{"provider", "period"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var (
	registerOnce sync.Once
	registerErr  error
)

// Register registers every collector with reg. Only the first call has an effect.
func Register(reg prometheus.Registerer) error {
	registerOnce.Do(func() {
		collectors := []prometheus.Collector{
			RetrievalRequestsTotal, RetrievalDuration, RetrievalDocuments,
			IndexCallsTotal, IndexCallDuration,
			EmbeddingRequestsTotal, EmbeddingRequestDuration, EmbeddingTokensTotal,
			EmbeddingErrorsTotal, EmbeddingBudgetTokensRemaining, EmbeddingCacheTotal,
			httpRequestDuration, httpRequestsTotal,
		}
		var errs []error
		for _, c := range collectors {
			if err := reg.Register(c); err != nil {
				errs = append(errs, err)
			}
		}
		registerErr = errors.Join(errs...)
	})
	return registerErr
}
