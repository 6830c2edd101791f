package filestore_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/code19m/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/tabletop/filestore"
)

func TestDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "spells.csv"), []byte("name\nfireball\n"), 0o600))
	ctx := t.Context()

	d := filestore.NewDir(root)

	ok, err := d.Exists(ctx, "spells.csv")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = d.Exists(ctx, "spells.json")
	require.NoError(t, err)
	assert.False(t, ok)

	f, err := d.Get(ctx, "spells.csv")
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Content.Close() })

	body, err := io.ReadAll(f.Content)
	require.NoError(t, err)
	assert.Equal(t, "name\nfireball\n", string(body))
	assert.Equal(t, filestore.ContentTypeCSV, f.Info.ContentType)
	assert.EqualValues(t, len(body), f.Info.Size)

	_, err = d.Get(ctx, "missing.json")
	require.Error(t, err)
	assert.Equal(t, filestore.CodeFileNotFound, errx.AsErrorX(err).Code())
}
