package retrieval

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kailas-cloud/docretriever/internal/domain/document"
	"github.com/kailas-cloud/docretriever/internal/domain/scope"
	"github.com/kailas-cloud/docretriever/internal/domain/search/filter"
	"github.com/kailas-cloud/docretriever/internal/domain/search/result"
)

// --- Helpers ---

func doc(content string, meta map[string]any) document.Document {
	return document.New(content, meta)
}

func hits(docs ...document.Document) []result.Scored {
	out := make([]result.Scored, 0, len(docs))
	for i, d := range docs {
		out = append(out, result.New(d, 1-float64(i)*0.01, nil))
	}
	return out
}

func numberedHits(n int) []result.Scored {
	docs := make([]document.Document, 0, n)
	for i := range n {
		docs = append(docs, doc(fmt.Sprintf("chunk-%02d", i), map[string]any{"i": i}))
	}
	return hits(docs...)
}

func contents(docs []document.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Content())
	}
	return out
}

// whereIs matches a predicate by its rendered where document.
type whereIs struct {
	want map[string]any
}

func (m whereIs) Matches(x any) bool {
	p, ok := x.(filter.Predicate)
	if !ok {
		return false
	}
	return cmp.Equal(m.want, p.Where())
}

func (m whereIs) String() string { return fmt.Sprintf("predicate where %v", m.want) }

func rawWhere(k, v string) whereIs {
	return whereIs{want: map[string]any{k: v}}
}

func andWhere(kv ...string) whereIs {
	clauses := make([]any, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		clauses = append(clauses, map[string]any{kv[i]: map[string]any{"$eq": kv[i+1]}})
	}
	return whereIs{want: map[string]any{"$and": clauses}}
}

func emptyWhere() whereIs { return whereIs{want: nil} }

// fakeIndex is a scripted VectorIndex that records every call.
type fakeIndex struct {
	similarity func(query string, f filter.Predicate) ([]result.Scored, error)
	diversity  func(query string, f filter.Predicate) ([]document.Document, error)

	simCalls []indexCall
	divCalls []indexCall
}

type indexCall struct {
	Query  string
	K      int
	Lambda float64
	Where  map[string]any
}

func (f *fakeIndex) SimilaritySearch(_ context.Context, q string, k int, p filter.Predicate) ([]result.Scored, error) {
	f.simCalls = append(f.simCalls, indexCall{Query: q, K: k, Where: p.Where()})
	if f.similarity == nil {
		return nil, nil
	}
	return f.similarity(q, p)
}

func (f *fakeIndex) DiversitySearch(
	_ context.Context, q string, k int, lambda float64, p filter.Predicate,
) ([]document.Document, error) {
	f.divCalls = append(f.divCalls, indexCall{Query: q, K: k, Lambda: lambda, Where: p.Where()})
	if f.diversity == nil {
		return nil, nil
	}
	return f.diversity(q, p)
}

// partitionedIndex answers with one document per partition value in the predicate.
func partitionedIndex() *fakeIndex {
	return &fakeIndex{
		similarity: func(q string, p filter.Predicate) ([]result.Scored, error) {
			part := predicateValue(p, scope.PartitionKey)
			return hits(doc(q+"@"+part, map[string]any{scope.PartitionKey: part})), nil
		},
	}
}

// predicateValue returns the value constrained for key, or "".
func predicateValue(p filter.Predicate, key string) string {
	for _, c := range p.Conditions() {
		if c.Key() == key {
			return c.Value()
		}
	}
	return ""
}

func mustPredicate(t *testing.T, s scope.Scope) filter.Predicate {
	t.Helper()
	p, err := PrepareFilter(s, scope.MemberIDKey)
	if err != nil {
		t.Fatalf("PrepareFilter: %v", err)
	}
	return p
}
