package search

import (
	"math"
)

// Cosine calculates the cosine similarity between two sparse vectors.
// The dot product runs over the intersection of keys; each magnitude
// runs over all of its own vector's weights. Returns 0 when either
// magnitude is zero or the vectors share no keys. The result is
// clamped to [0, 1].
func Cosine(a, b Vector) float64 {
	// Iterate the smaller vector for the intersection.
	if len(b) < len(a) {
		a, b = b, a
	}

	var dot float64
	shared := false
	for tok, wa := range a {
		if wb, ok := b[tok]; ok {
			dot += wa * wb
			shared = true
		}
	}
	if !shared {
		return 0
	}

	var magA, magB float64
	for _, w := range a {
		magA += w * w
	}
	for _, w := range b {
		magB += w * w
	}
	if magA == 0 || magB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(magA) * math.Sqrt(magB))
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}

// BestMatch scores a query vector against every candidate and returns
// the index and score of the best one, or (-1, 0) when no candidate
// scores above zero. Exact ties keep the earliest candidate.
func BestMatch(query Vector, candidates []Vector) (int, float64) {
	bestIndex := -1
	bestScore := 0.0
	for i, cand := range candidates {
		if score := Cosine(query, cand); score > bestScore {
			bestScore = score
			bestIndex = i
		}
	}
	return bestIndex, bestScore
}
