package result

import "github.com/kailas-cloud/docretriever/internal/domain/document"

// Scored is a single similarity hit: the document, its similarity to the query
// (higher is closer) and, when requested, its embedding.
type Scored struct {
	doc    document.Document
	score  float64
	vector []float32
}

// New creates a scored hit.
func New(doc document.Document, score float64, vector []float32) Scored {
	return Scored{doc: doc, score: score, vector: vector}
}

// Document returns the hit document.
func (s Scored) Document() document.Document { return s.doc }

// Score returns the similarity score.
func (s Scored) Score() float64 { return s.score }

// Vector returns the document embedding (nil unless requested).
func (s Scored) Vector() []float32 { return s.vector }

// Documents strips scores, keeping order.
func Documents(hits []Scored) []document.Document {
	docs := make([]document.Document, len(hits))
	for i := range hits {
		docs[i] = hits[i].doc
	}
	return docs
}
