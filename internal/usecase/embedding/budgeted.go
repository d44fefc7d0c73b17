package embedding

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docretriever/internal/domain"
	logpkg "github.com/kailas-cloud/docretriever/internal/logger"
	"github.com/kailas-cloud/docretriever/internal/metrics"
)

// BudgetChecker is the local interface for budget enforcement.
type BudgetChecker interface {
	Check(ctx context.Context) error
	Record(tokens int64)
	RemainingDaily() int64
	RemainingMonthly() int64
}

// BudgetedEmbedder enforces a token budget around an embedder.
// Transport metrics (requests, duration, tokens) are recorded in transport/openai.
type BudgetedEmbedder struct {
	inner    domain.Embedder
	provider string
	budget   BudgetChecker
	logger   *zap.Logger
}

// NewBudgetedEmbedder wraps an embedder with budget enforcement.
func NewBudgetedEmbedder(
	inner domain.Embedder, provider string, budget BudgetChecker, logger *zap.Logger,
) *BudgetedEmbedder {
	return &BudgetedEmbedder{
		inner:    inner,
		provider: provider,
		budget:   budget,
		logger:   logger,
	}
}

// Embed checks the budget, delegates to the inner embedder, and records usage.
// Cache hits report zero tokens and consume nothing.
func (p *BudgetedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if err := p.budget.Check(ctx); err != nil {
		logpkg.FromContextOr(ctx, p.logger).Warn("Embedding budget exceeded",
			zap.String("provider", p.provider),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("budget check: %w", err)
	}

	result, err := p.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}

	if result.TotalTokens > 0 {
		p.budget.Record(int64(result.TotalTokens))
		remaining := metrics.EmbeddingBudgetTokensRemaining
		remaining.WithLabelValues(p.provider, "daily").Set(float64(p.budget.RemainingDaily()))
		remaining.WithLabelValues(p.provider, "monthly").Set(float64(p.budget.RemainingMonthly()))
	}

	return result, nil
}

// HealthCheck delegates to the inner embedder when it supports health checks.
func (p *BudgetedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := p.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}
