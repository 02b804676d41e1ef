// pkg/audit/audit.go
package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/AbinashParida-NITW/schema-mapper/pkg/model"
)

// Recorder persists change-log entries to a tracking table so cleaning
// activity survives the session. Works against postgres and sqlite; the
// table is created on first use.
type Recorder struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewRecorder creates a Recorder and ensures the tracking table exists.
func NewRecorder(db *sqlx.DB, logger *zap.Logger) (*Recorder, error) {
	if db == nil {
		return nil, errors.New("database connection cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	r := &Recorder{db: db, logger: logger}
	if err := r.setupTable(); err != nil {
		return nil, fmt.Errorf("failed to setup audit table: %w", err)
	}
	return r, nil
}

func (r *Recorder) setupTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	createTableSQL := `
		CREATE TABLE IF NOT EXISTS cleaning_changes (
			session_id TEXT NOT NULL,
			row_index INTEGER NOT NULL,
			column_name TEXT NOT NULL,
			old_value TEXT,
			new_value TEXT NOT NULL,
			stage TEXT NOT NULL,
			reason TEXT NOT NULL,
			recorded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	_, err := r.db.ExecContext(ctx, createTableSQL)
	if err != nil {
		return fmt.Errorf("failed to create tracking table: %w", err)
	}

	r.logger.Info("Ensured cleaning_changes table exists")
	return nil
}

// Record batch inserts change entries for a session inside one transaction.
func (r *Recorder) Record(ctx context.Context, sessionID string, entries []model.ChangeEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.logger.Error("Failed to rollback transaction",
					zap.Error(rbErr),
					zap.Error(err))
			}
		}
	}()

	stmt, err := tx.PreparexContext(ctx, r.db.Rebind(`
		INSERT INTO cleaning_changes
		(session_id, row_index, column_name, old_value, new_value, stage, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		_, err = stmt.ExecContext(ctx,
			sessionID,
			e.RowIndex,
			e.Column,
			e.OldValue,
			e.NewValue,
			string(e.Stage),
			e.Reason,
		)
		if err != nil {
			return fmt.Errorf("failed to insert change entry: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Info("Recorded cleaning changes",
		zap.String("session", sessionID),
		zap.Int("count", len(entries)))
	return nil
}

// Close releases the underlying connection.
func (r *Recorder) Close() error {
	return r.db.Close()
}
