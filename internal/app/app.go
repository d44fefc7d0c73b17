// Package app wires configuration into a ready-to-use retrieval stack.
// Both the API server and the CLI build on it.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docretriever/internal/config"
	"github.com/kailas-cloud/docretriever/internal/db"
	dbQdrant "github.com/kailas-cloud/docretriever/internal/db/qdrant"
	dbRedis "github.com/kailas-cloud/docretriever/internal/db/redis"
	"github.com/kailas-cloud/docretriever/internal/domain"
	"github.com/kailas-cloud/docretriever/internal/metrics"
	"github.com/kailas-cloud/docretriever/internal/repository/embcache"
	indexrepo "github.com/kailas-cloud/docretriever/internal/repository/index"
	openaiEmb "github.com/kailas-cloud/docretriever/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/docretriever/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/docretriever/internal/usecase/health"
	"github.com/kailas-cloud/docretriever/internal/usecase/retrieval"
)

// App holds the assembled retrieval stack and the connections it owns.
type App struct {
	Runner retrieval.Runner
	Health *healthuc.Service

	closers []func()
}

// Close releases every backend connection, last opened first.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// New connects to the configured backends and builds the retrieval runner.
// On error every connection opened so far is closed.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (_ *App, err error) {
	a := &App{}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	idx, kv, err := a.openStores(cfg)
	if err != nil {
		return nil, err
	}

	readiness := time.Duration(cfg.Index.ReadinessTimeout) * time.Second
	if err := idx.WaitForReady(ctx, readiness); err != nil {
		return nil, fmt.Errorf("index not ready: %w", err)
	}
	logger.Info("Connected to vector index",
		zap.String("backend", cfg.Index.Backend),
		zap.String("index", cfg.Index.Name),
	)

	embedder := buildEmbedder(cfg, kv, logger)

	repo := indexrepo.New(idx, embedder, indexrepo.Config{
		Name:           cfg.Index.Name,
		ContentField:   cfg.Index.ContentField,
		VectorField:    cfg.Index.VectorField,
		MetadataFields: cfg.Index.MetadataFields,
		FetchK:         cfg.Index.FetchK,
	})

	provider := retrieval.NewProvider(retrieval.Options{
		FilterPolicy: retrieval.FilterPolicy(cfg.Retrieval.FilterPolicy),
		MemberIDKey:  cfg.Retrieval.MemberIDKey,
	})
	p := cfg.Retrieval.Partitions
	svc := retrieval.NewService(provider, repo, logger).
		WithDefaultRetriever(cfg.Retrieval.DefaultRetriever).
		WithPartitions(retrieval.Partitions{
			PartitionKey: p.Key,
			ScopingKey:   p.ScopingKey,
			Scoped:       p.Scoped,
			Default:      p.Default,
		})

	a.Runner = retrieval.NewRetrying(svc,
		uint(max(cfg.Retrieval.Retry.Attempts, 1)), cfg.Retrieval.Retry.Delay(), logger)

	var embCheck healthuc.EmbeddingChecker
	if hc, ok := embedder.(domain.HealthChecker); ok {
		embCheck = hc
	}
	a.Health = healthuc.New(idx, embCheck)
	if kv != nil && cfg.Index.Backend != config.BackendRedis {
		a.Health.WithCache(kv)
	}

	return a, nil
}

// openStores opens the index backend and, when the cache is enabled, a Redis
// key-value store. The redis backend serves both roles over one client.
func (a *App) openStores(cfg config.Config) (db.Index, db.Store, error) {
	redisCfg := dbRedis.Config{
		Addrs:    cfg.Redis.Addrs,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	var (
		idx db.Index
		kv  db.Store
	)
	switch cfg.Index.Backend {
	case config.BackendRedis:
		s, err := dbRedis.NewStore(redisCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("create redis store: %w", err)
		}
		a.closers = append(a.closers, s.Close)
		idx, kv = s, s
	case config.BackendQdrant:
		s, err := dbQdrant.NewStore(dbQdrant.Config{URL: cfg.Qdrant.URL, APIKey: cfg.Qdrant.APIKey})
		if err != nil {
			return nil, nil, fmt.Errorf("create qdrant store: %w", err)
		}
		a.closers = append(a.closers, s.Close)
		idx = s
		if cfg.Cache.Enabled {
			c, err := dbRedis.NewStore(redisCfg)
			if err != nil {
				return nil, nil, fmt.Errorf("create cache store: %w", err)
			}
			a.closers = append(a.closers, c.Close)
			kv = c
		}
	default:
		return nil, nil, fmt.Errorf("unknown index backend %q", cfg.Index.Backend)
	}

	if !cfg.Cache.Enabled {
		kv = nil
	}
	return idx, kv, nil
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Budgeted -> Instruction.
func buildEmbedder(cfg config.Config, kv db.KVStore, logger *zap.Logger) domain.Embedder {
	e := cfg.Embedding
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     e.APIKey,
		BaseURL:    e.BaseURL,
		Model:      e.Model,
		Dimensions: e.Dimensions,
		Provider:   e.Provider,
		Timeout:    e.Timeout(),
		Logger:     logger,
	})

	var embedder domain.Embedder = base
	if kv != nil {
		embedder = embcache.New(base, kv, embcache.Options{
			KeyPrefix: cfg.Cache.KeyPrefix,
			TTL:       cfg.Cache.TTL(),
		}, metrics.EmbeddingCacheTotal, logger)
	}

	if b := e.Budget; b.Enabled() {
		action := embeddinguc.BudgetActionWarn
		if b.Action == "reject" {
			action = embeddinguc.BudgetActionReject
		}
		budget := embeddinguc.NewBudgetTracker(e.Provider, b.DailyTokenLimit, b.MonthlyTokenLimit, action, logger)
		embedder = embeddinguc.NewBudgetedEmbedder(embedder, e.Provider, budget, logger)
	}

	// Instruction prefix outermost: the cache key includes the instruction.
	if e.QueryInstruction != "" {
		return domain.NewInstructionEmbedder(embedder, e.QueryInstruction)
	}
	return embedder
}
