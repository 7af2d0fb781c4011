package search

import (
	"math"
)

// Vector is a sparse TF-IDF weight vector, token to weight.
type Vector map[string]float64

// Vectorize computes sparse TF-IDF vectors for an ordered batch of
// documents, plus the IDF table built from that same batch.
//
// idf(t) = ln(N / (1 + df(t))), where df(t) counts documents containing
// t at least once; the +1 keeps the argument positive even for a term
// absent from every document. A document's weight for t is tf(t)*idf(t)
// with tf(t) = count(t) / totalTokens.
//
// Callers scoring a query against a corpus must append the query as the
// last document of the batch so query and candidates share one IDF
// snapshot.
func Vectorize(docs []string) ([]Vector, map[string]float64) {
	docTokens := make([][]string, len(docs))
	df := make(map[string]int)
	for i, doc := range docs {
		tokens := Tokenize(doc)
		docTokens[i] = tokens
		seen := make(map[string]bool, len(tokens))
		for _, tok := range tokens {
			if !seen[tok] {
				seen[tok] = true
				df[tok]++
			}
		}
	}

	n := float64(len(docs))
	idf := make(map[string]float64, len(df))
	for tok, count := range df {
		idf[tok] = math.Log(n / (1 + float64(count)))
	}

	vectors := make([]Vector, len(docs))
	for i, tokens := range docTokens {
		counts := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			counts[tok]++
		}
		vec := make(Vector, len(counts))
		total := float64(len(tokens))
		for tok, count := range counts {
			if total > 0 {
				vec[tok] = float64(count) / total * idf[tok]
			}
		}
		vectors[i] = vec
	}

	return vectors, idf
}
