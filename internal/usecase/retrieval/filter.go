package retrieval

import (
	"fmt"
	"maps"
	"slices"

	"github.com/kailas-cloud/docretriever/internal/domain"
	"github.com/kailas-cloud/docretriever/internal/domain/scope"
	"github.com/kailas-cloud/docretriever/internal/domain/search/filter"
)

// FilterPolicy controls whether the prepared predicate is sent with index calls.
type FilterPolicy string

const (
	// FilterForward sends the predicate on both the similarity and the diversity call.
	FilterForward FilterPolicy = "forward"
	// FilterDrop prepares the predicate but queries the whole index.
	FilterDrop FilterPolicy = "drop"
)

// IsValid checks if the policy is one of the supported values.
func (p FilterPolicy) IsValid() bool {
	return p == FilterForward || p == FilterDrop
}

// PrepareFilter turns a scope into an index predicate. The scope is never mutated.
// memberIDKey is stripped first. A single remaining key is passed through as a raw
// predicate; two or more become a conjunction ordered by key.
func PrepareFilter(s scope.Scope, memberIDKey string) (filter.Predicate, error) {
	scoped := s.Without(memberIDKey)

	keys := slices.Sorted(maps.Keys(scoped))
	if len(keys) > filter.MaxConditions {
		return filter.Predicate{}, &domain.InvalidScopeError{
			Key:    keys[filter.MaxConditions],
			Reason: fmt.Sprintf("too many keys (max %d)", filter.MaxConditions),
		}
	}

	conds := make([]filter.Condition, 0, len(keys))
	for _, k := range keys {
		c, err := filter.NewMatch(k, scoped[k])
		if err != nil {
			return filter.Predicate{}, &domain.InvalidScopeError{Key: k, Reason: err.Error()}
		}
		conds = append(conds, c)
	}

	switch len(conds) {
	case 0:
		return filter.Predicate{}, nil
	case 1:
		return filter.Raw(conds[0]), nil
	default:
		p, err := filter.And(conds...)
		if err != nil {
			return filter.Predicate{}, fmt.Errorf("build predicate: %w", err)
		}
		return p, nil
	}
}
