package docretriever

import "github.com/kailas-cloud/docretriever/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrRetrieval              = domain.ErrRetrieval
	ErrUnsupportedRetriever   = domain.ErrUnsupportedRetriever
	ErrInvalidScope           = domain.ErrInvalidScope
	ErrInvalidRequest         = domain.ErrInvalidRequest
	ErrIndexUnavailable       = domain.ErrIndexUnavailable
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
)
