package storage

import (
	"context"
	"sync"
	"time"

	"github.com/chat-brain/backend/internal/knowledge"
	"github.com/google/uuid"
)

// MemoryStore is an in-memory TrainingStore and ConversationLog for
// tests and single-process development runs.
type MemoryStore struct {
	mu        sync.RWMutex
	pairs     []knowledge.TrainingPair
	exchanges []scopedExchange
	updates   []UpdateRecord
}

type scopedExchange struct {
	scope string
	ex    knowledge.Exchange
}

// UpdateRecord is one entry of the in-memory audit trail.
type UpdateRecord struct {
	Scope      string
	UpdateType string
	Source     string
	Added      int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// ListPairs returns owner pairs followed by shared pairs, each in
// insertion order.
func (m *MemoryStore) ListPairs(ctx context.Context, scope string) ([]knowledge.TrainingPair, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var owned, shared []knowledge.TrainingPair
	for _, p := range m.pairs {
		switch p.Scope {
		case "":
			shared = append(shared, p)
		case scope:
			if scope != "" {
				owned = append(owned, p)
			}
		}
	}
	return append(owned, shared...), nil
}

// InsertPair appends a pair, assigning an ID and timestamp when missing.
func (m *MemoryStore) InsertPair(ctx context.Context, pair knowledge.TrainingPair) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if pair.ID == "" {
		pair.ID = uuid.NewString()
	}
	if pair.Category == "" {
		pair.Category = knowledge.CategoryManual
	}
	if pair.CreatedAt.IsZero() {
		pair.CreatedAt = time.Now().UTC()
	}
	m.pairs = append(m.pairs, pair)
	return nil
}

// PairExists reports whether the exact question is already stored in
// the given scope.
func (m *MemoryStore) PairExists(ctx context.Context, scope, question string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.pairs {
		if p.Scope == scope && p.Question == question {
			return true, nil
		}
	}
	return false, nil
}

// CountPairs returns the total number of stored pairs.
func (m *MemoryStore) CountPairs(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.pairs), nil
}

// RecordUpdate appends to the in-memory audit trail.
func (m *MemoryStore) RecordUpdate(ctx context.Context, scope, updateType, source string, added int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, UpdateRecord{Scope: scope, UpdateType: updateType, Source: source, Added: added})
	return nil
}

// Updates returns a copy of the recorded audit trail.
func (m *MemoryStore) Updates() []UpdateRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]UpdateRecord, len(m.updates))
	copy(out, m.updates)
	return out
}

// RecentExchanges returns exchanges for a scope occurring at or after
// since, in insertion order.
func (m *MemoryStore) RecentExchanges(ctx context.Context, scope string, since time.Time) ([]knowledge.Exchange, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []knowledge.Exchange
	for _, se := range m.exchanges {
		if se.scope == scope && !se.ex.OccurredAt.Before(since) {
			out = append(out, se.ex)
		}
	}
	return out, nil
}

// AppendExchange records one conversation turn.
func (m *MemoryStore) AppendExchange(ctx context.Context, scope string, ex knowledge.Exchange) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ex.OccurredAt.IsZero() {
		ex.OccurredAt = time.Now().UTC()
	}
	m.exchanges = append(m.exchanges, scopedExchange{scope: scope, ex: ex})
	return nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}
