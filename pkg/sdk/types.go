package docretriever

// Query is one retrieval call.
type Query struct {
	// Queries are the query variants, retrieved in order. At least one is required.
	Queries []string
	// Scope is the metadata filter. "set_number" also drives routing.
	Scope map[string]string
	// Retriever names the variant. Empty means "semantic".
	Retriever string
	// Routed queries the scoped partition before the default one.
	Routed bool
}

// Document is a retrieved passage.
type Document struct {
	Content  string
	Metadata map[string]any
}
