package retrieval

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docretriever/internal/domain"
	"github.com/kailas-cloud/docretriever/internal/domain/document"
	"github.com/kailas-cloud/docretriever/internal/domain/scope"
	"github.com/kailas-cloud/docretriever/internal/domain/search/filter"
	"github.com/kailas-cloud/docretriever/internal/domain/search/result"
	logpkg "github.com/kailas-cloud/docretriever/internal/logger"
)

// Semantic retrieval parameters. Changing them changes ranking for every caller.
const (
	similarityFetchK = 50
	similarityKeep   = 20
	diversityK       = 1
	diversityLambda  = 0.5
)

// Index operation names used in RetrievalError.
const (
	OpSimilaritySearch = "similarity_search"
	OpDiversitySearch  = "diversity_search"
)

// SemanticRetriever fuses the top similarity hits with one MMR-selected document.
type SemanticRetriever struct {
	policy      FilterPolicy
	memberIDKey string
}

var _ Retriever = (*SemanticRetriever)(nil)

// NewSemantic creates a semantic retriever.
func NewSemantic(opts Options) *SemanticRetriever {
	opts = opts.withDefaults()
	return &SemanticRetriever{policy: opts.FilterPolicy, memberIDKey: opts.MemberIDKey}
}

// Retrieve runs one similarity search (top 50, first 20 kept) and one diversity
// search (1 pick, lambda 0.5), concatenates them in that order and dedupes.
func (r *SemanticRetriever) Retrieve(
	ctx context.Context, index VectorIndex, query string, s scope.Scope,
) ([]document.Document, error) {
	start := time.Now()

	pred, err := PrepareFilter(s, r.memberIDKey)
	if err != nil {
		return nil, err
	}
	sent := pred
	if r.policy == FilterDrop {
		sent = filter.Predicate{}
	}

	hits, err := index.SimilaritySearch(ctx, query, similarityFetchK, sent)
	if err != nil {
		return nil, wrapIndexErr(OpSimilaritySearch, query, err)
	}
	if len(hits) > similarityKeep {
		hits = hits[:similarityKeep]
	}

	diverse, err := index.DiversitySearch(ctx, query, diversityK, diversityLambda, sent)
	if err != nil {
		return nil, wrapIndexErr(OpDiversitySearch, query, err)
	}

	docs := make([]document.Document, 0, len(hits)+len(diverse))
	docs = append(docs, result.Documents(hits)...)
	docs = append(docs, diverse...)
	docs = Dedupe(docs)

	logpkg.FromContext(ctx).Debug("semantic retrieval",
		zap.String("query", query),
		zap.Stringer("filter_form", sent.Form()),
		zap.Any("where", sent.Where()),
		zap.Int("similarity_hits", len(hits)),
		zap.Int("diversity_hits", len(diverse)),
		zap.Int("documents", len(docs)),
		zap.Duration("latency", time.Since(start)),
	)

	return docs, nil
}

// RetrieveMany runs Retrieve for each query in order and dedupes the union once.
func (r *SemanticRetriever) RetrieveMany(
	ctx context.Context, index VectorIndex, queries []string, s scope.Scope,
) ([]document.Document, error) {
	return aggregate(ctx, queries, func(ctx context.Context, q string) ([]document.Document, error) {
		return r.Retrieve(ctx, index, q, s)
	})
}

// wrapIndexErr marks an index failure as a retrieval error unless it already is one.
func wrapIndexErr(op, query string, err error) error {
	var re *domain.RetrievalError
	if errors.As(err, &re) {
		return err
	}
	return domain.NewRetrievalError(op, query, err)
}
