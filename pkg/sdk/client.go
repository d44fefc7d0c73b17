package docretriever

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docretriever/internal/db"
	dbQdrant "github.com/kailas-cloud/docretriever/internal/db/qdrant"
	dbRedis "github.com/kailas-cloud/docretriever/internal/db/redis"
	"github.com/kailas-cloud/docretriever/internal/domain"
	"github.com/kailas-cloud/docretriever/internal/domain/scope"
	indexrepo "github.com/kailas-cloud/docretriever/internal/repository/index"
	healthuc "github.com/kailas-cloud/docretriever/internal/usecase/health"
	"github.com/kailas-cloud/docretriever/internal/usecase/retrieval"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the docretriever SDK entry point.
type Client struct {
	index     db.Index
	runner    retrieval.Runner
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client and connects to the vector index.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.index == "" {
		return nil, errors.New("docretriever: index name required (use WithIndex)")
	}
	if cfg.embedder == nil {
		return nil, errors.New("docretriever: embedder required (use WithEmbedder)")
	}

	idx, err := createIndex(cfg)
	if err != nil {
		return nil, err
	}

	if err := idx.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		idx.Close()
		return nil, fmt.Errorf("docretriever: index not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		idx.Close()
		return nil, err
	}
	return wireClient(idx, cfg, obs), nil
}

func createIndex(cfg *clientConfig) (db.Index, error) {
	switch cfg.driver {
	case "redis":
		if len(cfg.addrs) == 0 || cfg.addrs[0] == "" {
			return nil, errors.New("docretriever: redis address required")
		}
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("docretriever: create redis store: %w", err)
		}
		return s, nil
	case "qdrant":
		s, err := dbQdrant.NewStore(dbQdrant.Config{URL: cfg.url, APIKey: cfg.password})
		if err != nil {
			return nil, fmt.Errorf("docretriever: create qdrant store: %w", err)
		}
		return s, nil
	case "":
		return nil, errors.New("docretriever: backend required (use WithRedis or WithQdrant)")
	default:
		return nil, fmt.Errorf("docretriever: unknown driver %q", cfg.driver)
	}
}

func wireClient(idx db.Index, cfg *clientConfig, obs *observer) *Client {
	emb := &embedderAdapter{inner: cfg.embedder}
	repo := indexrepo.New(idx, emb, indexrepo.Config{
		Name:           cfg.index,
		ContentField:   cfg.contentField,
		VectorField:    cfg.vectorField,
		MetadataFields: cfg.metadataFields,
		FetchK:         cfg.fetchK,
	})

	policy := retrieval.FilterForward
	if cfg.dropFilter {
		policy = retrieval.FilterDrop
	}
	provider := retrieval.NewProvider(retrieval.Options{FilterPolicy: policy})

	return &Client{
		index:     idx,
		runner:    retrieval.NewService(provider, repo, zap.NewNop()),
		healthSvc: healthuc.New(idx, emb),
		obs:       obs,
	}
}

// Close releases the index connection.
func (c *Client) Close() {
	if c.index != nil {
		c.index.Close()
	}
}

// Ping checks index connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.index.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Retrieve runs every query variant and returns the deduplicated documents
// in retrieval order.
func (c *Client) Retrieve(ctx context.Context, q Query) (_ []Document, err error) {
	start := time.Now()
	defer func() { c.obs.observe("retrieve", start, err) }()

	docs, err := c.runner.Retrieve(ctx, retrieval.Request{
		Queries:   q.Queries,
		Scope:     scope.Scope(q.Scope).Clone(),
		Retriever: q.Retriever,
		Routed:    q.Routed,
	})
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}

	out := make([]Document, len(docs))
	for i, d := range docs {
		out[i] = Document{Content: d.Content(), Metadata: d.Metadata()}
	}
	return out, nil
}

// embedderAdapter wraps the public Embedder to satisfy domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// HealthCheck delegates when the wrapped embedder exposes one.
func (a *embedderAdapter) HealthCheck(ctx context.Context) error {
	if hc, ok := a.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}
