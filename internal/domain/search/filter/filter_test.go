package filter

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustMatch(t *testing.T, key, value string) Condition {
	t.Helper()
	c, err := NewMatch(key, value)
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	return c
}

func TestNewMatch_RequiresKey(t *testing.T) {
	if _, err := NewMatch("", "v"); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestZeroPredicate(t *testing.T) {
	var p Predicate
	if !p.IsEmpty() {
		t.Error("zero predicate must be empty")
	}
	if p.Form() != FormNone {
		t.Errorf("Form() = %v", p.Form())
	}
	if p.Where() != nil {
		t.Errorf("Where() = %v, want nil", p.Where())
	}
}

func TestRaw(t *testing.T) {
	p := Raw(mustMatch(t, "data_source", "kc"))

	if p.Form() != FormRaw {
		t.Errorf("Form() = %v", p.Form())
	}
	want := map[string]any{"data_source": "kc"}
	if diff := cmp.Diff(want, p.Where()); diff != "" {
		t.Errorf("Where() mismatch (-want +got):\n%s", diff)
	}
}

func TestAnd(t *testing.T) {
	p, err := And(mustMatch(t, "data_source", "b360"), mustMatch(t, "set_number", "abc"))
	if err != nil {
		t.Fatalf("And: %v", err)
	}

	if p.Form() != FormAnd {
		t.Errorf("Form() = %v", p.Form())
	}
	want := map[string]any{"$and": []any{
		map[string]any{"data_source": map[string]any{"$eq": "b360"}},
		map[string]any{"set_number": map[string]any{"$eq": "abc"}},
	}}
	if diff := cmp.Diff(want, p.Where()); diff != "" {
		t.Errorf("Where() mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(p.String(), "and") {
		t.Errorf("String() = %q", p.String())
	}
}

func TestAnd_Limits(t *testing.T) {
	if _, err := And(); err == nil {
		t.Error("expected error for empty conjunction")
	}

	many := make([]Condition, MaxConditions+1)
	for i := range many {
		many[i] = mustMatch(t, "k", "v")
	}
	if _, err := And(many...); err == nil {
		t.Error("expected error for too many conditions")
	}
}

func TestAnd_CopiesConditions(t *testing.T) {
	cs := []Condition{mustMatch(t, "a", "1"), mustMatch(t, "b", "2")}
	p, _ := And(cs...)
	cs[0] = mustMatch(t, "z", "9")
	if p.Conditions()[0].Key() != "a" {
		t.Error("predicate must not alias the caller's slice")
	}
}
