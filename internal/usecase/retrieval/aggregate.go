package retrieval

import (
	"context"

	"github.com/kailas-cloud/docretriever/internal/domain/document"
)

type retrieveFunc func(ctx context.Context, query string) ([]document.Document, error)

// aggregate runs fn for every query sequentially, accumulating results in
// first-seen order, and dedupes the whole batch once. The first error aborts.
func aggregate(ctx context.Context, queries []string, fn retrieveFunc) ([]document.Document, error) {
	if len(queries) == 0 {
		return []document.Document{}, nil
	}

	var all []document.Document
	for _, q := range queries {
		docs, err := fn(ctx, q)
		if err != nil {
			return nil, err
		}
		all = append(all, docs...)
	}
	return Dedupe(all), nil
}
