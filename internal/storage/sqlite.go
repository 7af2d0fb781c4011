package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chat-brain/backend/internal/knowledge"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements TrainingStore and ConversationLog on a local
// SQLite database. A single file holds the corpus, the conversation
// log and the knowledge-update audit trail.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and applies
// the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS training_pairs (
		id TEXT PRIMARY KEY,
		scope TEXT NOT NULL DEFAULT '',
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT 'manual',
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_pairs_scope_question ON training_pairs(scope, question);

	CREATE TABLE IF NOT EXISTS exchanges (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scope TEXT NOT NULL DEFAULT '',
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		occurred_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_exchanges_scope_time ON exchanges(scope, occurred_at);

	CREATE TABLE IF NOT EXISTS knowledge_updates (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scope TEXT NOT NULL DEFAULT '',
		update_type TEXT NOT NULL,
		source TEXT NOT NULL,
		entries_added INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ListPairs returns the pairs visible to a scope: the scope's own
// pairs first, then shared (unscoped) pairs, each in insertion order.
func (s *SQLiteStore) ListPairs(ctx context.Context, scope string) ([]knowledge.TrainingPair, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, scope, question, answer, category, created_at
		FROM training_pairs
		WHERE scope = ? OR scope = ''
		ORDER BY CASE WHEN scope = '' THEN 1 ELSE 0 END, rowid`,
		scope)
	if err != nil {
		return nil, fmt.Errorf("listing pairs: %w", err)
	}
	defer rows.Close()

	var pairs []knowledge.TrainingPair
	for rows.Next() {
		var p knowledge.TrainingPair
		if err := rows.Scan(&p.ID, &p.Scope, &p.Question, &p.Answer, &p.Category, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning pair: %w", err)
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}

// InsertPair appends a pair to the corpus, assigning an ID and
// timestamp when missing.
func (s *SQLiteStore) InsertPair(ctx context.Context, pair knowledge.TrainingPair) error {
	if pair.ID == "" {
		pair.ID = uuid.NewString()
	}
	if pair.Category == "" {
		pair.Category = knowledge.CategoryManual
	}
	if pair.CreatedAt.IsZero() {
		pair.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO training_pairs (id, scope, question, answer, category, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		pair.ID, pair.Scope, pair.Question, pair.Answer, pair.Category, pair.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting pair: %w", err)
	}
	return nil
}

// PairExists reports whether a pair with the exact question already
// exists in the given scope.
func (s *SQLiteStore) PairExists(ctx context.Context, scope, question string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
		SELECT 1 FROM training_pairs WHERE scope = ? AND question = ? LIMIT 1`,
		scope, question).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking pair existence: %w", err)
	}
	return true, nil
}

// CountPairs returns the total number of stored pairs across scopes.
func (s *SQLiteStore) CountPairs(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM training_pairs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting pairs: %w", err)
	}
	return count, nil
}

// RecordUpdate appends one row to the knowledge-update audit trail.
func (s *SQLiteStore) RecordUpdate(ctx context.Context, scope, updateType, source string, added int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO knowledge_updates (scope, update_type, source, entries_added, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		scope, updateType, source, added, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("recording update: %w", err)
	}
	return nil
}

// RecentExchanges returns the exchanges for a scope that occurred at
// or after since, oldest first.
func (s *SQLiteStore) RecentExchanges(ctx context.Context, scope string, since time.Time) ([]knowledge.Exchange, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT question, answer, occurred_at
		FROM exchanges
		WHERE scope = ? AND occurred_at >= ?
		ORDER BY rowid`,
		scope, since)
	if err != nil {
		return nil, fmt.Errorf("listing exchanges: %w", err)
	}
	defer rows.Close()

	var exchanges []knowledge.Exchange
	for rows.Next() {
		var ex knowledge.Exchange
		if err := rows.Scan(&ex.Question, &ex.Answer, &ex.OccurredAt); err != nil {
			return nil, fmt.Errorf("scanning exchange: %w", err)
		}
		exchanges = append(exchanges, ex)
	}
	return exchanges, rows.Err()
}

// AppendExchange records one conversation turn.
func (s *SQLiteStore) AppendExchange(ctx context.Context, scope string, ex knowledge.Exchange) error {
	if ex.OccurredAt.IsZero() {
		ex.OccurredAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO exchanges (scope, question, answer, occurred_at)
		VALUES (?, ?, ?, ?)`,
		scope, ex.Question, ex.Answer, ex.OccurredAt)
	if err != nil {
		return fmt.Errorf("appending exchange: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
