// Package scope models the metadata scope a retrieval runs under: key/value
// constraints that both narrow the vector index filter and drive partition routing.
package scope

import (
	"fmt"
	"maps"

	"github.com/kailas-cloud/docretriever/internal/domain"
)

// Reserved and routing keys.
const (
	// MemberIDKey identifies the requesting member. It must never reach the index filter.
	MemberIDKey = "member_id"
	// ScopingKey makes a scope eligible for multi-partition routing.
	ScopingKey = "set_number"
	// PartitionKey selects the logical partition inside the shared index.
	PartitionKey = "data_source"
	// PartitionScoped is the partition where ScopingKey is meaningful.
	PartitionScoped = "b360"
	// PartitionDefault is the shared catalog partition.
	PartitionDefault = "kc"
)

// Scope is a set of equality constraints. A nil Scope is the empty scope.
type Scope map[string]string

// Clone returns a deep copy (never nil).
func (s Scope) Clone() Scope {
	if s == nil {
		return Scope{}
	}
	return maps.Clone(s)
}

// With returns a copy with key set to value.
func (s Scope) With(key, value string) Scope {
	c := s.Clone()
	c[key] = value
	return c
}

// Without returns a copy with key removed.
func (s Scope) Without(key string) Scope {
	c := s.Clone()
	delete(c, key)
	return c
}

// Has reports whether key is present.
func (s Scope) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// IsEmpty reports whether the scope has no constraints.
func (s Scope) IsEmpty() bool { return len(s) == 0 }

// FromMap converts an untyped scope (decoded JSON, CLI flags) into a Scope.
// Non-string values are rejected, never coerced.
func FromMap(raw map[string]any) (Scope, error) {
	if len(raw) == 0 {
		return Scope{}, nil
	}
	s := make(Scope, len(raw))
	for k, v := range raw {
		if k == "" {
			return nil, &domain.InvalidScopeError{Key: k, Reason: "empty key"}
		}
		str, ok := v.(string)
		if !ok {
			return nil, &domain.InvalidScopeError{Key: k, Reason: fmt.Sprintf("expected string, got %T", v)}
		}
		s[k] = str
	}
	return s, nil
}
