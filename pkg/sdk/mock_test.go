package docretriever

import (
	"context"
	"time"

	"github.com/kailas-cloud/docretriever/internal/db"
	"github.com/kailas-cloud/docretriever/internal/domain/document"
	"github.com/kailas-cloud/docretriever/internal/usecase/retrieval"
)

// --- db.Index fake ---

type fakeIndex struct {
	entries []db.SearchEntry
	pingErr error
	queries []*db.KNNQuery
	closed  bool
}

func (f *fakeIndex) Ping(context.Context) error { return f.pingErr }

func (f *fakeIndex) SearchKNN(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	f.queries = append(f.queries, q)
	n := min(q.K, len(f.entries))
	return &db.SearchResult{Total: n, Entries: f.entries[:n]}, nil
}

func (f *fakeIndex) Close() { f.closed = true }

func (f *fakeIndex) WaitForReady(context.Context, time.Duration) error { return nil }

// --- retrieval.Runner mock ---

type mockRunner struct {
	fn func(ctx context.Context, req retrieval.Request) ([]document.Document, error)
}

func (m *mockRunner) Retrieve(ctx context.Context, req retrieval.Request) ([]document.Document, error) {
	return m.fn(ctx, req)
}

// --- Embedder mocks ---

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

type checkedEmbedder struct {
	mockEmbedder
	healthErr error
}

func (c *checkedEmbedder) HealthCheck(context.Context) error { return c.healthErr }

// --- helpers ---

func fixedEmbedder(vec []float32) *mockEmbedder {
	return &mockEmbedder{fn: func(context.Context, string) (EmbeddingResult, error) {
		return EmbeddingResult{Embedding: vec, PromptTokens: 1, TotalTokens: 1}, nil
	}}
}

func testClient(idx *fakeIndex, opts ...Option) *Client {
	cfg := &clientConfig{index: "docs", embedder: fixedEmbedder([]float32{1, 0})}
	for _, o := range opts {
		o.apply(cfg)
	}
	return wireClient(idx, cfg, nil)
}
