package storage

import (
	"context"
	"time"

	"github.com/chat-brain/backend/internal/knowledge"
)

// TrainingStore defines the interface for persisting training pairs.
//
// ListPairs must return the union of scope-specific and shared
// (unscoped) pairs in a stable order: owner pairs first, then shared,
// each in insertion order. The order participates in tie-breaking
// during matching, so implementations must preserve it.
type TrainingStore interface {
	ListPairs(ctx context.Context, scope string) ([]knowledge.TrainingPair, error)
	InsertPair(ctx context.Context, pair knowledge.TrainingPair) error
	PairExists(ctx context.Context, scope, question string) (bool, error)
	CountPairs(ctx context.Context) (int, error)
	RecordUpdate(ctx context.Context, scope, updateType, source string, added int) error
	Close() error
}

// ConversationLog provides access to recorded conversation exchanges,
// the raw material auto-learning mines for recurring patterns.
type ConversationLog interface {
	RecentExchanges(ctx context.Context, scope string, since time.Time) ([]knowledge.Exchange, error)
	AppendExchange(ctx context.Context, scope string, ex knowledge.Exchange) error
}
