package retrieval

import "github.com/kailas-cloud/docretriever/internal/domain/document"

// Dedupe drops structural duplicates (same content and metadata), keeping the
// first occurrence of each document in input order.
func Dedupe(docs []document.Document) []document.Document {
	out := make([]document.Document, 0, len(docs))
	seen := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		k := d.Key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, d)
	}
	return out
}
