package db

import "github.com/kailas-cloud/docretriever/internal/domain/search/filter"

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	// IndexName is the FT index or collection name.
	IndexName string
	// Filters are exact-match pre-filters. Empty means the whole index.
	Filters filter.Predicate
	Vector  []float32
	K       int
	// ReturnFields limits the payload returned per hit. Empty means all.
	ReturnFields []string
	// VectorField is the stored embedding field; defaults to DefaultVectorField.
	VectorField   string
	IncludeVector bool
}

// DefaultVectorField is the embedding field name used when KNNQuery.VectorField is empty.
const DefaultVectorField = "vector"

// Field returns the vector field name to search against.
func (q *KNNQuery) Field() string {
	if q.VectorField == "" {
		return DefaultVectorField
	}
	return q.VectorField
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key string
	// Score is a similarity in [0,1], higher is closer.
	Score  float64
	Fields map[string]any
	// Vector is set only when the query asked for it.
	Vector []float32
}
