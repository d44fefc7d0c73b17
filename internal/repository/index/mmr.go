package index

import "math"

type candidate struct {
	vector []float32
	score  float64
}

// selectMMR picks up to k candidate indices by maximal marginal relevance:
//
//	MMR(c) = lambda*sim(q, c) - (1-lambda)*max sim(c, s) over selected s
//
// Similarity is cosine. A candidate without a vector falls back to its index
// score for relevance and is treated as dissimilar to everything selected.
// Ties keep the earlier (closer) candidate.
func selectMMR(query []float32, cands []candidate, k int, lambda float64) []int {
	if k <= 0 || len(cands) == 0 {
		return nil
	}
	k = min(k, len(cands))

	relevance := make([]float64, len(cands))
	for i, c := range cands {
		if len(c.vector) == len(query) && len(query) > 0 {
			relevance[i] = cosine(query, c.vector)
		} else {
			relevance[i] = c.score
		}
	}

	selected := make([]int, 0, k)
	used := make([]bool, len(cands))
	// maxSim[i] is the highest similarity of candidate i to any selected candidate.
	// It may be negative; there is no penalty before the first pick.
	maxSim := make([]float64, len(cands))
	for i := range maxSim {
		maxSim[i] = math.Inf(-1)
	}

	for len(selected) < k {
		best := -1
		bestScore := math.Inf(-1)
		for i := range cands {
			if used[i] {
				continue
			}
			penalty := 0.0
			if len(selected) > 0 {
				penalty = maxSim[i]
			}
			score := lambda*relevance[i] - (1-lambda)*penalty
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		if best < 0 {
			break
		}

		used[best] = true
		selected = append(selected, best)

		for i, c := range cands {
			if used[i] {
				continue
			}
			if s := cosine(c.vector, cands[best].vector); s > maxSim[i] {
				maxSim[i] = s
			}
		}
	}

	return selected
}

// cosine returns the cosine similarity of a and b, or 0 when undefined.
func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
