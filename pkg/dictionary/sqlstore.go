// pkg/dictionary/sqlstore.go
package dictionary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
)

// SQLStore keeps each top-level document key as one row of an opaque
// key/value table, so unknown keys written by other versions round-trip
// untouched. Works against postgres and sqlite.
type SQLStore struct {
	db      *sqlx.DB
	timeout time.Duration
}

const learningTable = `
	CREATE TABLE IF NOT EXISTS learning_state (
		doc_key TEXT PRIMARY KEY,
		doc_value TEXT NOT NULL
	)
`

// NewSQLStore wraps an open connection and ensures the backing table
// exists.
func NewSQLStore(db *sqlx.DB) (*SQLStore, error) {
	if db == nil {
		return nil, errors.New("database connection cannot be nil")
	}
	s := &SQLStore{db: db, timeout: 10 * time.Second}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if _, err := db.ExecContext(ctx, learningTable); err != nil {
		return nil, fmt.Errorf("failed to create learning_state table: %w", err)
	}
	return s, nil
}

func (s *SQLStore) Load() (*Document, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	rows := []struct {
		Key   string `db:"doc_key"`
		Value string `db:"doc_value"`
	}{}
	if err := s.db.SelectContext(ctx, &rows, "SELECT doc_key, doc_value FROM learning_state"); err != nil {
		return nil, fmt.Errorf("failed to load learning dictionary: %w", err)
	}

	raw := make(map[string]json.RawMessage, len(rows))
	for _, r := range rows {
		raw[r.Key] = json.RawMessage(r.Value)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble learning dictionary: %w", err)
	}
	doc := NewDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *SQLStore) Save(doc *Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode learning dictionary: %w", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to split learning dictionary: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM learning_state"); err != nil {
		return fmt.Errorf("failed to clear learning_state: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx,
		tx.Rebind("INSERT INTO learning_state (doc_key, doc_value) VALUES (?, ?)"))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err = stmt.ExecContext(ctx, k, string(raw[k])); err != nil {
			return fmt.Errorf("failed to write key %s: %w", k, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit learning dictionary: %w", err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
