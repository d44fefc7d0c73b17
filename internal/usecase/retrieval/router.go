package retrieval

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docretriever/internal/domain/document"
	"github.com/kailas-cloud/docretriever/internal/domain/scope"
	logpkg "github.com/kailas-cloud/docretriever/internal/logger"
)

// Partitions names the keys and values used for multi-source routing.
type Partitions struct {
	// PartitionKey is the metadata key carrying the partition tag.
	PartitionKey string
	// ScopingKey makes a scope eligible for the two-partition fan-out.
	ScopingKey string
	// Scoped is queried first, with the scoping key kept.
	Scoped string
	// Default is the shared partition, queried without the scoping key.
	Default string
}

// DefaultPartitions returns the b360/kc layout keyed by set_number.
func DefaultPartitions() Partitions {
	return Partitions{
		PartitionKey: scope.PartitionKey,
		ScopingKey:   scope.ScopingKey,
		Scoped:       scope.PartitionScoped,
		Default:      scope.PartitionDefault,
	}
}

func (p Partitions) withDefaults() Partitions {
	d := DefaultPartitions()
	if p.PartitionKey == "" {
		p.PartitionKey = d.PartitionKey
	}
	if p.ScopingKey == "" {
		p.ScopingKey = d.ScopingKey
	}
	if p.Scoped == "" {
		p.Scoped = d.Scoped
	}
	if p.Default == "" {
		p.Default = d.Default
	}
	return p
}

// Router decides between one default-partition query and a two-partition fan-out.
type Router struct {
	retriever  Retriever
	partitions Partitions
}

// NewRouter creates a router on top of any retriever variant.
func NewRouter(r Retriever, p Partitions) *Router {
	return &Router{retriever: r, partitions: p.withDefaults()}
}

// Scopes returns the derived scopes in query order.
// Without the scoping key: only {PartitionKey: Default}; the caller's other keys
// are not carried over. With it: the caller's scope tagged Scoped, then the
// caller's scope tagged Default with the scoping key removed.
func (r *Router) Scopes(s scope.Scope) []scope.Scope {
	p := r.partitions
	if s.IsEmpty() || !s.Has(p.ScopingKey) {
		return []scope.Scope{{p.PartitionKey: p.Default}}
	}
	return []scope.Scope{
		s.With(p.PartitionKey, p.Scoped),
		s.With(p.PartitionKey, p.Default).Without(p.ScopingKey),
	}
}

// RetrieveRouted retrieves one query across the derived scopes, strictly in order,
// and dedupes the concatenation so earlier partitions win. Any failure aborts.
func (r *Router) RetrieveRouted(
	ctx context.Context, index VectorIndex, query string, s scope.Scope,
) ([]document.Document, error) {
	scopes := r.Scopes(s)

	var all []document.Document
	for _, sc := range scopes {
		docs, err := r.retriever.Retrieve(ctx, index, query, sc)
		if err != nil {
			return nil, err
		}
		all = append(all, docs...)
	}

	logpkg.FromContext(ctx).Debug("routed retrieval",
		zap.String("query", query),
		zap.Int("partitions", len(scopes)),
		zap.Int("documents", len(all)),
	)

	return Dedupe(all), nil
}

// RetrieveManyRouted applies RetrieveRouted to each query and dedupes the union once.
func (r *Router) RetrieveManyRouted(
	ctx context.Context, index VectorIndex, queries []string, s scope.Scope,
) ([]document.Document, error) {
	return aggregate(ctx, queries, func(ctx context.Context, q string) ([]document.Document, error) {
		return r.RetrieveRouted(ctx, index, q, s)
	})
}
