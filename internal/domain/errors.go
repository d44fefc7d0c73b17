package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRetrieval signals a failed or malformed vector index call.
	ErrRetrieval = errors.New("retrieval failed")
	// ErrUnsupportedRetriever signals an unknown retriever name.
	ErrUnsupportedRetriever = errors.New("unsupported retriever")
	// ErrInvalidScope signals a malformed metadata scope.
	ErrInvalidScope = errors.New("invalid metadata scope")
	// ErrInvalidRequest signals a malformed retrieval request.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrIndexUnavailable signals that the vector index backend cannot serve queries.
	ErrIndexUnavailable = errors.New("index unavailable")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmbeddingQuotaExceeded signals an exhausted embedding token budget.
	ErrEmbeddingQuotaExceeded = errors.New("embedding quota exceeded")
)

// RetrievalError wraps ErrRetrieval with the failed index operation and its cause.
type RetrievalError struct {
	Op    string
	Query string
	Err   error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("%s: %s %q: %v", ErrRetrieval.Error(), e.Op, e.Query, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause to errors.Is/As.
func (e *RetrievalError) Unwrap() []error { return []error{ErrRetrieval, e.Err} }

// NewRetrievalError creates a retrieval error for the given index operation.
func NewRetrievalError(op, query string, err error) error {
	return &RetrievalError{Op: op, Query: query, Err: err}
}

// UnsupportedRetrieverError wraps ErrUnsupportedRetriever with the requested name
// and the names that are registered.
type UnsupportedRetrieverError struct {
	Name      string
	Available []string
}

func (e *UnsupportedRetrieverError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("%s: %q", ErrUnsupportedRetriever.Error(), e.Name)
	}
	return fmt.Sprintf("%s: %q (available: %s)",
		ErrUnsupportedRetriever.Error(), e.Name, strings.Join(e.Available, ", "))
}

func (e *UnsupportedRetrieverError) Unwrap() error { return ErrUnsupportedRetriever }

// InvalidScopeError wraps ErrInvalidScope with the offending key.
type InvalidScopeError struct {
	Key    string
	Reason string
}

func (e *InvalidScopeError) Error() string {
	return fmt.Sprintf("%s: key %q: %s", ErrInvalidScope.Error(), e.Key, e.Reason)
}

func (e *InvalidScopeError) Unwrap() error { return ErrInvalidScope }
