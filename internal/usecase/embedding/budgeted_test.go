package embedding

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docretriever/internal/domain"
)

type mockEmbedder struct {
	result    domain.EmbeddingResult
	err       error
	healthErr error
	calls     int
}

func (m *mockEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	m.calls++
	return m.result, m.err
}

func (m *mockEmbedder) HealthCheck(context.Context) error { return m.healthErr }

func TestBudgetedEmbedder_RecordsTokens(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}, TotalTokens: 40}}
	bt := NewBudgetTracker("test", 100, 0, BudgetActionReject, zap.NewNop())
	e := NewBudgetedEmbedder(inner, "test", bt, zap.NewNop())

	res, err := e.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embedding) != 1 {
		t.Errorf("expected embedding passed through, got %v", res.Embedding)
	}
	if bt.RemainingDaily() != 60 {
		t.Errorf("expected 60 remaining, got %d", bt.RemainingDaily())
	}
}

func TestBudgetedEmbedder_RejectsWithoutCallingInner(t *testing.T) {
	inner := &mockEmbedder{}
	bt := NewBudgetTracker("test", 10, 0, BudgetActionReject, zap.NewNop())
	bt.Record(10)

	_, err := NewBudgetedEmbedder(inner, "test", bt, zap.NewNop()).Embed(context.Background(), "q")
	if !errors.Is(err, domain.ErrEmbeddingQuotaExceeded) {
		t.Fatalf("expected ErrEmbeddingQuotaExceeded, got %v", err)
	}
	if inner.calls != 0 {
		t.Errorf("inner must not be called, got %d calls", inner.calls)
	}
}

func TestBudgetedEmbedder_CacheHitFree(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	bt := NewBudgetTracker("test", 10, 0, BudgetActionReject, zap.NewNop())
	e := NewBudgetedEmbedder(inner, "test", bt, zap.NewNop())

	for range 3 {
		if _, err := e.Embed(context.Background(), "q"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if bt.RemainingDaily() != 10 {
		t.Errorf("zero-token results must not consume budget, remaining %d", bt.RemainingDaily())
	}
}

func TestBudgetedEmbedder_InnerError(t *testing.T) {
	inner := &mockEmbedder{err: domain.ErrEmbeddingProviderError}
	bt := NewBudgetTracker("test", 0, 0, BudgetActionWarn, zap.NewNop())

	_, err := NewBudgetedEmbedder(inner, "test", bt, zap.NewNop()).Embed(context.Background(), "q")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestBudgetedEmbedder_HealthCheck(t *testing.T) {
	down := errors.New("down")
	inner := &mockEmbedder{healthErr: down}
	e := NewBudgetedEmbedder(inner, "test", NewBudgetTracker("test", 0, 0, BudgetActionWarn, zap.NewNop()), zap.NewNop())

	if err := e.HealthCheck(context.Background()); !errors.Is(err, down) {
		t.Fatalf("expected delegated health error, got %v", err)
	}
}
