package sqlitedb_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/tabletop/sqlitedb"
)

func TestOpen(t *testing.T) {
	ctx := t.Context()

	db, err := sqlitedb.Open(ctx, sqlitedb.Config{
		Path:        filepath.Join(t.TempDir(), "nested", "test.db"),
		BusyTimeout: time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var n int
	err = db.NewSelect().ColumnExpr("1 + 1").Scan(ctx, &n)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "sqlite", db.Dialect().Name().String())
}
