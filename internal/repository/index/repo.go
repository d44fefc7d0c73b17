package index

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/docretriever/internal/db"
	"github.com/kailas-cloud/docretriever/internal/domain"
	"github.com/kailas-cloud/docretriever/internal/domain/document"
	"github.com/kailas-cloud/docretriever/internal/domain/search/filter"
	"github.com/kailas-cloud/docretriever/internal/domain/search/result"
	"github.com/kailas-cloud/docretriever/internal/metrics"
	"github.com/kailas-cloud/docretriever/internal/usecase/retrieval"
)

// Compile-time check: Repo implements retrieval.VectorIndex.
var _ retrieval.VectorIndex = (*Repo)(nil)

const (
	defaultContentField = "content"
	defaultFetchK       = 20

	opSimilarity = "similarity"
	opDiversity  = "diversity"
)

// store is the consumer interface for index reads (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Config names the index and the stored fields the repository reads.
type Config struct {
	// Name is the FT index (Redis) or collection (Qdrant).
	Name string
	// ContentField holds the document text. Everything else becomes metadata.
	ContentField string
	// VectorField is the embedding field; empty uses the backend default.
	VectorField string
	// MetadataFields limits returned metadata. Empty returns every stored field.
	MetadataFields []string
	// FetchK is the MMR candidate pool size.
	FetchK int
}

// Repo adapts a KNN store and an embedder to retrieval.VectorIndex.
type Repo struct {
	store    store
	embedder domain.Embedder
	cfg      Config
}

// New creates an index repository.
func New(s store, e domain.Embedder, cfg Config) *Repo {
	if cfg.ContentField == "" {
		cfg.ContentField = defaultContentField
	}
	if cfg.FetchK <= 0 {
		cfg.FetchK = defaultFetchK
	}
	return &Repo{store: s, embedder: e, cfg: cfg}
}

// SimilaritySearch embeds query and returns up to k hits by descending similarity.
func (r *Repo) SimilaritySearch(
	ctx context.Context, query string, k int, f filter.Predicate,
) (hits []result.Scored, err error) {
	defer observe(opSimilarity, time.Now(), &err)

	vec, err := r.embed(ctx, query)
	if err != nil {
		return nil, err
	}

	entries, err := r.search(ctx, vec, k, f, false)
	if err != nil {
		return nil, err
	}

	hits = make([]result.Scored, 0, len(entries))
	for _, e := range entries {
		hits = append(hits, result.New(r.toDocument(e), e.Score, nil))
	}
	return hits, nil
}

// DiversitySearch embeds query, fetches max(k, FetchK) candidates with their
// vectors and picks k of them by maximal marginal relevance.
func (r *Repo) DiversitySearch(
	ctx context.Context, query string, k int, lambda float64, f filter.Predicate,
) (docs []document.Document, err error) {
	defer observe(opDiversity, time.Now(), &err)

	if k <= 0 {
		return []document.Document{}, nil
	}
	if lambda < 0 || lambda > 1 {
		return nil, fmt.Errorf("%w: lambda %v outside [0,1]", domain.ErrInvalidRequest, lambda)
	}

	vec, err := r.embed(ctx, query)
	if err != nil {
		return nil, err
	}

	entries, err := r.search(ctx, vec, max(k, r.cfg.FetchK), f, true)
	if err != nil {
		return nil, err
	}

	cands := make([]candidate, 0, len(entries))
	for _, e := range entries {
		cands = append(cands, candidate{vector: e.Vector, score: e.Score})
	}

	picks := selectMMR(vec, cands, k, lambda)
	docs = make([]document.Document, 0, len(picks))
	for _, i := range picks {
		docs = append(docs, r.toDocument(entries[i]))
	}
	return docs, nil
}

func (r *Repo) embed(ctx context.Context, query string) ([]float32, error) {
	res, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return res.Embedding, nil
}

func (r *Repo) search(
	ctx context.Context, vec []float32, k int, f filter.Predicate, withVectors bool,
) ([]db.SearchEntry, error) {
	var returnFields []string
	if len(r.cfg.MetadataFields) > 0 {
		returnFields = append([]string{r.cfg.ContentField}, r.cfg.MetadataFields...)
	}

	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:     r.cfg.Name,
		Filters:       f,
		Vector:        vec,
		K:             k,
		ReturnFields:  returnFields,
		VectorField:   r.cfg.VectorField,
		IncludeVector: withVectors,
	})
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, fmt.Errorf("search %s: %w: %w", r.cfg.Name, domain.ErrIndexUnavailable, err)
		}
		return nil, fmt.Errorf("search %s: %w", r.cfg.Name, err)
	}
	if sr == nil {
		return nil, nil
	}
	return sr.Entries, nil
}

func (r *Repo) toDocument(e db.SearchEntry) document.Document {
	meta := make(map[string]any, len(e.Fields))
	var content string
	for k, v := range e.Fields {
		if k == r.cfg.ContentField {
			if s, ok := v.(string); ok {
				content = s
			} else if v != nil {
				content = fmt.Sprint(v)
			}
			continue
		}
		meta[k] = v
	}
	return document.New(content, meta)
}

func observe(op string, start time.Time, err *error) {
	status := "ok"
	if *err != nil {
		status = "error"
	}
	metrics.IndexCallsTotal.WithLabelValues(op, status).Inc()
	metrics.IndexCallDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
