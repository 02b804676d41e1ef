// pkg/audit/audit_test.go
package audit

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/AbinashParida-NITW/schema-mapper/pkg/model"
)

func newSQLiteRecorder(t *testing.T) (*Recorder, *sqlx.DB) {
	t.Helper()
	db, err := sqlx.Connect("sqlite", filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	r, err := NewRecorder(db, zap.NewNop())
	require.NoError(t, err)
	return r, db
}

func TestRecordAndQueryBack(t *testing.T) {
	r, db := newSQLiteRecorder(t)
	defer r.Close()

	entries := []model.ChangeEntry{
		{RowIndex: 0, Column: "Phone", OldValue: "98765 43210", NewValue: "9876543210",
			Stage: model.StageTransform, Reason: "phone_strip_separators"},
		{RowIndex: 2, Column: "Price", OldValue: "₹1,200.50", NewValue: "1200.50",
			Stage: model.StageTransform, Reason: "currency_normalize"},
	}
	require.NoError(t, r.Record(context.Background(), "sess-1", entries))

	var got []model.ChangeEntry
	err := db.Select(&got, `
		SELECT row_index, column_name, old_value, new_value, stage, reason
		FROM cleaning_changes WHERE session_id = ? ORDER BY row_index
	`, "sess-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Phone", got[0].Column)
	assert.Equal(t, "1200.50", got[1].NewValue)
}

func TestRecordEmptyIsNoOp(t *testing.T) {
	r, _ := newSQLiteRecorder(t)
	defer r.Close()
	require.NoError(t, r.Record(context.Background(), "sess-1", nil))
}

func TestNewRecorderNilGuards(t *testing.T) {
	_, err := NewRecorder(nil, zap.NewNop())
	require.Error(t, err)
}
