package brain

import (
	"context"

	"github.com/chat-brain/backend/internal/knowledge"
	"github.com/chat-brain/backend/internal/search"
)

// FindBestMatch scores query against every corpus question with
// TF-IDF cosine similarity and returns the best result. The query is
// vectorized as the last element of the same batch as the corpus, so
// both sides share one IDF snapshot. Exact score ties keep the
// earliest corpus entry. When no candidate clears the threshold the
// result carries the best score seen but no answer.
func FindBestMatch(query string, corpus []knowledge.TrainingPair, threshold float64) knowledge.MatchResult {
	if len(corpus) == 0 {
		return knowledge.MatchResult{}
	}

	docs := make([]string, 0, len(corpus)+1)
	for _, pair := range corpus {
		docs = append(docs, pair.Question)
	}
	docs = append(docs, query)

	vectors, _ := search.Vectorize(docs)
	queryVec := vectors[len(vectors)-1]
	candidates := vectors[:len(vectors)-1]

	bestIndex, bestScore := search.BestMatch(queryVec, candidates)
	if bestIndex < 0 || bestScore < threshold {
		return knowledge.MatchResult{Score: bestScore}
	}
	return knowledge.MatchResult{
		Answer:          corpus[bestIndex].Answer,
		Score:           bestScore,
		MatchedQuestion: corpus[bestIndex].Question,
	}
}

// Respond answers a message for a scope using the configured query
// threshold. A store failure degrades to a no-match result so the
// chat path stays available.
func (e *Engine) Respond(ctx context.Context, scope, message string) knowledge.MatchResult {
	corpus, err := e.store.ListPairs(ctx, scope)
	if err != nil {
		e.logger.WithError(err).WithField("scope", scope).Warn("Corpus unavailable, returning no match")
		return knowledge.MatchResult{}
	}
	return FindBestMatch(message, corpus, e.cfg.QueryThreshold)
}
