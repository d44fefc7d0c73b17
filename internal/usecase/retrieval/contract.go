package retrieval

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_index.go -package=mocks github.com/kailas-cloud/docretriever/internal/usecase/retrieval VectorIndex

import (
	"context"

	"github.com/kailas-cloud/docretriever/internal/domain/document"
	"github.com/kailas-cloud/docretriever/internal/domain/scope"
	"github.com/kailas-cloud/docretriever/internal/domain/search/filter"
	"github.com/kailas-cloud/docretriever/internal/domain/search/result"
)

// VectorIndex is the nearest-neighbour service retrieval runs against.
// An empty predicate means no filter. Implementations must be safe for concurrent use.
type VectorIndex interface {
	// SimilaritySearch returns up to k hits ordered by descending similarity.
	SimilaritySearch(ctx context.Context, query string, k int, f filter.Predicate) ([]result.Scored, error)

	// DiversitySearch returns up to k documents chosen by maximal marginal relevance.
	// lambda is in [0,1]: 1 ranks by relevance only, 0 by diversity only.
	DiversitySearch(ctx context.Context, query string, k int, lambda float64, f filter.Predicate) ([]document.Document, error)
}

// Retriever executes retrieval for one query or a batch of queries under one scope.
type Retriever interface {
	Retrieve(ctx context.Context, index VectorIndex, query string, s scope.Scope) ([]document.Document, error)
	RetrieveMany(ctx context.Context, index VectorIndex, queries []string, s scope.Scope) ([]document.Document, error)
}
