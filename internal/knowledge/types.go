// Package knowledge holds the core entities of the QA engine:
// training pairs, conversation exchanges and match results.
package knowledge

import (
	"time"
	"unicode/utf8"
)

// MinEntryLen is the minimum rune length for a question or answer.
// Shorter strings carry no retrievable signal and are rejected.
const MinEntryLen = 3

// Provenance categories for training pairs.
const (
	CategoryManual      = "manual"
	CategoryAutoLearned = "auto_learned"
)

// TrainingPair is one question/answer example in the corpus.
// Scope is the owning bot identifier; an empty scope means the pair
// is shared and visible to every bot.
type TrainingPair struct {
	ID        string    `json:"id"`
	Scope     string    `json:"bot_id,omitempty"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Category  string    `json:"category,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Exchange is a single recorded question/response turn from a
// conversation log. Read-only raw material for auto-learning.
type Exchange struct {
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Entry is one item of a bulk knowledge update.
type Entry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category,omitempty"`
}

// MatchResult is the outcome of one retrieval pass. Answer is empty
// when nothing cleared the threshold; Score is still the best score
// seen so callers can decide on a fallback.
type MatchResult struct {
	Answer          string  `json:"answer,omitempty"`
	Score           float64 `json:"score"`
	MatchedQuestion string  `json:"matched_question,omitempty"`
}

// Matched reports whether the result carries an answer.
func (r MatchResult) Matched() bool {
	return r.Answer != ""
}

// ValidEntry reports whether a question/answer pair is substantial
// enough to store. Both sides must exceed MinEntryLen runes.
func ValidEntry(question, answer string) bool {
	return utf8.RuneCountInString(question) > MinEntryLen &&
		utf8.RuneCountInString(answer) > MinEntryLen
}
