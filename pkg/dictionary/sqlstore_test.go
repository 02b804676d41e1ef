// pkg/dictionary/sqlstore_test.go
package dictionary

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AbinashParida-NITW/schema-mapper/pkg/model"
)

func newSQLiteStore(t *testing.T) *SQLStore {
	t.Helper()
	db, err := sqlx.Connect("sqlite", filepath.Join(t.TempDir(), "rules.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store, err := NewSQLStore(db)
	require.NoError(t, err)
	return store
}

func TestSQLStoreRoundTrip(t *testing.T) {
	store := newSQLiteStore(t)

	dict, err := New(store, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, dict.LearnMapping(model.MappingRule{
		SourceColumn: "Qty", TargetColumn: "quantity", Confidence: 0.95,
	}))
	require.NoError(t, dict.PromoteColumn("Loyalty Tier", ""))

	// Reload through a second dictionary over the same database
	dict2, err := New(store, zap.NewNop())
	require.NoError(t, err)

	got, ok := dict2.LookupMapping("qty")
	require.True(t, ok)
	assert.Equal(t, "quantity", got.TargetColumn)

	keepAs, ok := dict2.Promotion("loyalty tier")
	require.True(t, ok)
	assert.Equal(t, "Loyalty Tier", keepAs)
}

func TestSQLStoreEmptyDatabase(t *testing.T) {
	store := newSQLiteStore(t)

	doc, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, CurrentVersion, doc.Version)
	assert.Empty(t, doc.Mappings)
}

func TestOpenStoreBackends(t *testing.T) {
	dir := t.TempDir()

	fileStore, err := OpenStore(BackendFile, filepath.Join(dir, "rules.json"))
	require.NoError(t, err)
	_, isFile := fileStore.(*FileStore)
	assert.True(t, isFile)

	sqliteStore, err := OpenStore(BackendSQLite, filepath.Join(dir, "rules.db"))
	require.NoError(t, err)
	defer sqliteStore.Close()
	_, isSQL := sqliteStore.(*SQLStore)
	assert.True(t, isSQL)

	_, err = OpenStore("bogus", "dsn")
	require.Error(t, err)
}
