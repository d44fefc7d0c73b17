package scope

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/docretriever/internal/domain"
)

func TestClone_NilIsEmpty(t *testing.T) {
	var s Scope
	c := s.Clone()
	if c == nil {
		t.Fatal("Clone of nil scope must return a usable map")
	}
	c["k"] = "v"
	if s.Has("k") {
		t.Error("nil scope must stay empty")
	}
}

func TestWithWithout_DoNotMutate(t *testing.T) {
	orig := Scope{"set_number": "abc"}

	tagged := orig.With(PartitionKey, PartitionScoped)
	if orig.Has(PartitionKey) {
		t.Error("With must not mutate the receiver")
	}
	if tagged[PartitionKey] != PartitionScoped || tagged[ScopingKey] != "abc" {
		t.Errorf("With = %v", tagged)
	}

	stripped := orig.Without(ScopingKey)
	if !orig.Has(ScopingKey) {
		t.Error("Without must not mutate the receiver")
	}
	if !stripped.IsEmpty() {
		t.Errorf("Without = %v, want empty", stripped)
	}
}

func TestFromMap(t *testing.T) {
	s, err := FromMap(map[string]any{"set_number": "abc", "member_id": "m-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s["set_number"] != "abc" || s["member_id"] != "m-1" {
		t.Errorf("FromMap = %v", s)
	}

	empty, err := FromMap(nil)
	if err != nil || !empty.IsEmpty() {
		t.Errorf("FromMap(nil) = %v, %v", empty, err)
	}
}

func TestFromMap_RejectsNonString(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
	}{
		{"number", map[string]any{"set_number": 12.0}},
		{"bool", map[string]any{"active": true}},
		{"nested", map[string]any{"x": map[string]any{"y": "z"}}},
		{"null", map[string]any{"x": nil}},
		{"empty key", map[string]any{"": "v"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromMap(tt.raw)
			if !errors.Is(err, domain.ErrInvalidScope) {
				t.Fatalf("expected ErrInvalidScope, got %v", err)
			}
			var se *domain.InvalidScopeError
			if !errors.As(err, &se) {
				t.Fatal("expected *InvalidScopeError")
			}
		})
	}
}
