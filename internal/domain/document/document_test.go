package document

import "testing"

func TestNew_ClonesMetadata(t *testing.T) {
	meta := map[string]any{"source": "a.pdf"}
	doc := New("hello", meta)

	meta["source"] = "mutated"
	if doc.Source() != "a.pdf" {
		t.Errorf("Source() = %q, document must not share the caller's map", doc.Source())
	}

	got := doc.Metadata()
	got["source"] = "mutated again"
	if doc.Source() != "a.pdf" {
		t.Errorf("Metadata() must return a copy")
	}
}

func TestAccessors(t *testing.T) {
	doc := New("body", map[string]any{"source": "kb/1", "data_source": "kc", "page": int64(3)})

	if doc.Content() != "body" {
		t.Errorf("Content() = %q", doc.Content())
	}
	if doc.Partition() != "kc" {
		t.Errorf("Partition() = %q", doc.Partition())
	}
	if v, ok := doc.Get("page"); !ok || v != int64(3) {
		t.Errorf("Get(page) = %v, %v", v, ok)
	}
	if _, ok := doc.Get("missing"); ok {
		t.Error("Get(missing) should report absence")
	}
}

func TestSource_NonString(t *testing.T) {
	doc := New("body", map[string]any{"source": int64(42)})
	if doc.Source() != "42" {
		t.Errorf("Source() = %q, want 42", doc.Source())
	}
	if New("x", nil).Source() != "" {
		t.Error("Source() of document without metadata should be empty")
	}
}

func TestKey_StructuralEquality(t *testing.T) {
	a := New("text", map[string]any{"a": "1", "b": "2"})
	b := New("text", map[string]any{"b": "2", "a": "1"})
	if a.Key() != b.Key() {
		t.Error("documents with equal content and metadata must be equal regardless of map order")
	}
}

func TestKey_Distinguishes(t *testing.T) {
	base := New("text", map[string]any{"a": "1"})

	tests := []struct {
		name  string
		other Document
	}{
		{"different content", New("text2", map[string]any{"a": "1"})},
		{"different value", New("text", map[string]any{"a": "2"})},
		{"extra key", New("text", map[string]any{"a": "1", "b": "1"})},
		{"typed value", New("text", map[string]any{"a": int64(1)})},
		{"no metadata", New("text", nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if base.Key() == tt.other.Key() {
				t.Errorf("expected %q and %q to differ", base.Key(), tt.other.Key())
			}
		})
	}
}

func TestKey_NoConcatenationAmbiguity(t *testing.T) {
	a := New("ab", map[string]any{"c": "d"})
	b := New("a", map[string]any{"bc": "d"})
	if a.Key() == b.Key() {
		t.Error("length-prefixed fields must keep shifted boundaries distinct")
	}
}

func TestKey_NilAndEmptyMetadataEqual(t *testing.T) {
	if New("x", nil).Key() != New("x", map[string]any{}).Key() {
		t.Error("nil and empty metadata should be the same identity")
	}
}
