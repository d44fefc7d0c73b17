package index

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2}, []float32{1, 2}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"length mismatch", []float32{1}, []float32{1, 0}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"empty", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cosine(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("cosine() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestSelectMMR_FirstPickIsMostRelevant(t *testing.T) {
	q := []float32{1, 0}
	cands := []candidate{
		{vector: []float32{0.5, 0.5}},
		{vector: []float32{1, 0.1}},
		{vector: []float32{0, 1}},
	}
	got := selectMMR(q, cands, 1, 0.5)
	if diff := cmp.Diff([]int{1}, got); diff != "" {
		t.Errorf("picks mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectMMR_LambdaOneIsRelevanceOrder(t *testing.T) {
	q := []float32{1, 0}
	cands := []candidate{
		{vector: []float32{1, 0}},
		{vector: []float32{1, 0.01}},
		{vector: []float32{0.6, 0.8}},
	}
	got := selectMMR(q, cands, 3, 1)
	if diff := cmp.Diff([]int{0, 1, 2}, got); diff != "" {
		t.Errorf("picks mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectMMR_LambdaZeroPrefersDissimilar(t *testing.T) {
	q := []float32{1, 0}
	cands := []candidate{
		{vector: []float32{1, 0}},
		{vector: []float32{1, 0.01}},
		{vector: []float32{0, 1}},
	}
	got := selectMMR(q, cands, 2, 0)
	// with no relevance term the first pick is a tie broken by order
	if diff := cmp.Diff([]int{0, 2}, got); diff != "" {
		t.Errorf("picks mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectMMR_NegativeSimilarityRewardsOpposition(t *testing.T) {
	q := []float32{1, 0}
	cands := []candidate{
		{vector: []float32{0.8, 0.6}},    // relevance 0.8, picked first
		{vector: []float32{0.6, -0.8}},   // relevance 0.6, orthogonal to the first pick
		{vector: []float32{0.28, -0.96}}, // relevance 0.28, similarity -0.352 to the first pick
	}
	// 0.5*0.28 + 0.5*0.352 = 0.316 beats 0.5*0.6 - 0 = 0.3.
	got := selectMMR(q, cands, 2, 0.5)
	if diff := cmp.Diff([]int{0, 2}, got); diff != "" {
		t.Errorf("picks mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectMMR_MissingVectorsFallBackToScore(t *testing.T) {
	q := []float32{1, 0}
	cands := []candidate{
		{score: 0.3},
		{score: 0.8},
	}
	got := selectMMR(q, cands, 2, 0.5)
	if diff := cmp.Diff([]int{1, 0}, got); diff != "" {
		t.Errorf("picks mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectMMR_Bounds(t *testing.T) {
	q := []float32{1}
	if got := selectMMR(q, nil, 3, 0.5); got != nil {
		t.Errorf("expected nil for no candidates, got %v", got)
	}
	if got := selectMMR(q, []candidate{{score: 1}}, 0, 0.5); got != nil {
		t.Errorf("expected nil for k=0, got %v", got)
	}
	if got := selectMMR(q, []candidate{{score: 1}}, 5, 0.5); len(got) != 1 {
		t.Errorf("expected k capped at pool size, got %v", got)
	}
}
