package brain

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/chat-brain/backend/internal/knowledge"
)

// ErrEmptyInput is returned when a teach request carries a blank
// question or answer.
var ErrEmptyInput = errors.New("question and answer must be non-empty")

// ErrBatchTooLarge is returned when a bulk update exceeds the
// configured cap. Nothing from the batch is inserted.
var ErrBatchTooLarge = errors.New("too many entries in one update")

// Teach appends one explicitly taught pair to the corpus. No
// similarity bar and no dedup check: an explicit user action always
// lands.
func (e *Engine) Teach(ctx context.Context, scope, question, answer string) error {
	if strings.TrimSpace(question) == "" || strings.TrimSpace(answer) == "" {
		return ErrEmptyInput
	}

	pair := knowledge.TrainingPair{
		Scope:    scope,
		Question: question,
		Answer:   answer,
		Category: knowledge.CategoryManual,
	}
	if err := e.store.InsertPair(ctx, pair); err != nil {
		return fmt.Errorf("storing taught pair: %w", err)
	}
	e.logger.WithField("scope", scope).Info("Learned taught pair")
	return nil
}

// BulkUpdate inserts a batch of entries for a scope. Batches over the
// cap are rejected whole; individual entries at or under the minimum
// length are skipped. Returns the number of entries added.
func (e *Engine) BulkUpdate(ctx context.Context, scope string, entries []knowledge.Entry) (int, error) {
	if len(entries) > e.cfg.MaxBulkEntries {
		return 0, fmt.Errorf("%w: %d entries, cap is %d", ErrBatchTooLarge, len(entries), e.cfg.MaxBulkEntries)
	}

	added := 0
	for _, entry := range entries {
		if !knowledge.ValidEntry(entry.Question, entry.Answer) {
			continue
		}
		category := entry.Category
		if category == "" {
			category = knowledge.CategoryManual
		}
		pair := knowledge.TrainingPair{
			Scope:    scope,
			Question: entry.Question,
			Answer:   entry.Answer,
			Category: category,
		}
		if err := e.store.InsertPair(ctx, pair); err != nil {
			e.logger.WithError(err).WithField("scope", scope).Error("Failed to insert bulk entry")
			continue
		}
		added++
	}

	if err := e.store.RecordUpdate(ctx, scope, "bulk_update", "api", added); err != nil {
		e.logger.WithError(err).Warn("Failed to record knowledge update")
	}

	e.logger.WithField("scope", scope).WithField("added", added).Info("Applied bulk knowledge update")
	return added, nil
}

// candidate is a recurring exchange considered for promotion.
type candidate struct {
	question  string
	answer    string
	frequency int
}

// AutoLearn mines the recent conversation log of a scope for exchanges
// that recur at least MinRepeat times and promotes the most frequent
// ones to training pairs, deduplicated by exact question. Learning is
// best effort: any collaborator failure degrades to zero learned.
func (e *Engine) AutoLearn(ctx context.Context, scope string) int {
	since := time.Now().Add(-e.cfg.LearnWindow)
	exchanges, err := e.convo.RecentExchanges(ctx, scope, since)
	if err != nil {
		e.logger.WithError(err).WithField("scope", scope).Warn("Conversation log unavailable, skipping auto-learn")
		return 0
	}

	// Group by exact (question, answer), preserving first-seen order
	// so equal frequencies rank deterministically.
	counts := make(map[[2]string]int, len(exchanges))
	var order []candidate
	for _, ex := range exchanges {
		key := [2]string{ex.Question, ex.Answer}
		if counts[key] == 0 {
			order = append(order, candidate{question: ex.Question, answer: ex.Answer})
		}
		counts[key]++
	}

	var candidates []candidate
	for _, c := range order {
		c.frequency = counts[[2]string{c.question, c.answer}]
		if c.frequency < e.cfg.MinRepeat {
			continue
		}
		if !knowledge.ValidEntry(c.question, c.answer) {
			continue
		}
		candidates = append(candidates, c)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].frequency > candidates[j].frequency
	})
	if len(candidates) > e.cfg.MaxLearnBatch {
		candidates = candidates[:e.cfg.MaxLearnBatch]
	}

	learned := 0
	for _, c := range candidates {
		exists, err := e.store.PairExists(ctx, scope, c.question)
		if err != nil {
			e.logger.WithError(err).WithField("scope", scope).Warn("Existence check failed, skipping candidate")
			continue
		}
		if exists {
			continue
		}

		pair := knowledge.TrainingPair{
			Scope:    scope,
			Question: c.question,
			Answer:   c.answer,
			Category: knowledge.CategoryAutoLearned,
		}
		if err := e.store.InsertPair(ctx, pair); err != nil {
			e.logger.WithError(err).WithField("scope", scope).Error("Failed to insert auto-learned pair")
			continue
		}
		learned++
	}

	if learned > 0 {
		e.logger.WithField("scope", scope).WithField("learned", learned).Info("Auto-learning pass complete")
	}
	return learned
}
