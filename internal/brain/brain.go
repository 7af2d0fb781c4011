// Package brain implements the self-learning QA retrieval engine:
// TF-IDF matching against a corpus of training pairs and the curation
// paths that grow the corpus.
package brain

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/chat-brain/backend/internal/storage"
)

// Default operating points. The query threshold favors recall;
// auto-learning uses repetition counting instead of a similarity bar.
const (
	DefaultQueryThreshold = 0.2
	DefaultLearnWindow    = 7 * 24 * time.Hour
	DefaultMinRepeat      = 2
	DefaultMaxLearnBatch  = 20
	DefaultMaxBulkEntries = 100
)

// Config tunes the engine.
type Config struct {
	// QueryThreshold is the minimum cosine similarity for a live query
	// to return an answer.
	QueryThreshold float64
	// LearnWindow bounds how far back auto-learning mines exchanges.
	LearnWindow time.Duration
	// MinRepeat is how often an exact (question, answer) pair must
	// recur in the window before auto-learning trusts it.
	MinRepeat int
	// MaxLearnBatch caps candidates promoted per auto-learn run.
	MaxLearnBatch int
	// MaxBulkEntries caps one bulk knowledge update.
	MaxBulkEntries int
}

// Engine answers queries from the corpus and curates its growth.
// It holds no state between calls beyond the injected collaborators;
// every invocation works on a fresh corpus snapshot.
type Engine struct {
	store  storage.TrainingStore
	convo  storage.ConversationLog
	logger *logrus.Entry
	cfg    Config
}

// New creates an engine. Zero config fields fall back to defaults.
func New(cfg Config, store storage.TrainingStore, convo storage.ConversationLog, logger *logrus.Entry) *Engine {
	if cfg.QueryThreshold <= 0 {
		cfg.QueryThreshold = DefaultQueryThreshold
	}
	if cfg.LearnWindow <= 0 {
		cfg.LearnWindow = DefaultLearnWindow
	}
	if cfg.MinRepeat <= 0 {
		cfg.MinRepeat = DefaultMinRepeat
	}
	if cfg.MaxLearnBatch <= 0 {
		cfg.MaxLearnBatch = DefaultMaxLearnBatch
	}
	if cfg.MaxBulkEntries <= 0 {
		cfg.MaxBulkEntries = DefaultMaxBulkEntries
	}
	return &Engine{
		store:  store,
		convo:  convo,
		logger: logger,
		cfg:    cfg,
	}
}

// CorpusSize returns the total number of stored training pairs.
func (e *Engine) CorpusSize(ctx context.Context) (int, error) {
	return e.store.CountPairs(ctx)
}
