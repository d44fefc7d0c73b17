package index

import (
	"context"
	"testing"

	"github.com/kailas-cloud/docretriever/internal/db"
	"github.com/kailas-cloud/docretriever/internal/domain"
	"github.com/kailas-cloud/docretriever/internal/domain/search/filter"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchKNNFn func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	queries     []*db.KNNQuery
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	m.queries = append(m.queries, q)
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

type mockEmbedder struct {
	vec   []float32
	err   error
	texts []string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.texts = append(m.texts, text)
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec}, nil
}

func newTestRepo(t *testing.T, cfg Config) (*Repo, *mockStore, *mockEmbedder) {
	t.Helper()
	ms := &mockStore{}
	me := &mockEmbedder{vec: []float32{1, 0}}
	if cfg.Name == "" {
		cfg.Name = "docs"
	}
	return New(ms, me, cfg), ms, me
}

func entry(key, content string, score float64, vec []float32, meta map[string]any) db.SearchEntry {
	fields := map[string]any{"content": content}
	for k, v := range meta {
		fields[k] = v
	}
	return db.SearchEntry{Key: key, Score: score, Fields: fields, Vector: vec}
}

func mustMatch(t *testing.T, key, value string) filter.Condition {
	t.Helper()
	c, err := filter.NewMatch(key, value)
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	return c
}
