// Package sqlitedbtest opens throwaway SQLite databases for tests.
package sqlitedbtest

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/rise-and-shine/tabletop/repogen"
	"github.com/rise-and-shine/tabletop/sqlitedb"
)

// New opens a fresh database file in a temporary directory, creates a table
// for every model in the "main" schema and closes the database when the test ends.
func New(t testing.TB, models ...any) *bun.DB {
	t.Helper()

	db, err := sqlitedb.Open(t.Context(), sqlitedb.Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		BusyTimeout: time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	for _, model := range models {
		require.NoError(t, repogen.CreateTable(t.Context(), db, sqlitedb.Schema, model))
	}

	return db
}
