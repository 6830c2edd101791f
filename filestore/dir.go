package filestore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/code19m/errx"
)

var _ FileStore = (*Dir)(nil)

// Dir is a FileStore over a local directory.
type Dir struct {
	root string
}

// NewDir creates a Dir rooted at root.
func NewDir(root string) *Dir {
	return &Dir{root: root}
}

func (d *Dir) Get(_ context.Context, path string) (*File, error) {
	full := filepath.Join(d.root, filepath.FromSlash(path))

	f, err := os.Open(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errx.New("file not found", errx.WithCode(CodeFileNotFound), errx.WithType(errx.T_NotFound),
			errx.WithDetails(errx.D{"path": full}))
	}
	if err != nil {
		return nil, errx.Wrap(err)
	}

	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, errx.Wrap(err)
	}

	return &File{
		Content: f,
		Info: FileInfo{
			Path:         path,
			Size:         stat.Size(),
			ContentType:  ContentTypeOf(path),
			LastModified: stat.ModTime(),
		},
	}, nil
}

func (d *Dir) Exists(_ context.Context, path string) (bool, error) {
	_, err := os.Stat(filepath.Join(d.root, filepath.FromSlash(path)))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, errx.Wrap(err)
	}
	return true, nil
}
