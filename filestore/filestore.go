// Package filestore abstracts where seed files are read from. The CLI reads
// them from a local directory or from an object storage bucket.
package filestore

import (
	"context"
	"io"
	"time"
)

// CodeFileNotFound is returned by Get when nothing is stored at the path.
const CodeFileNotFound = "FILE_NOT_FOUND"

// FileStore is a read-only view of stored files.
// Implementations must be safe for concurrent use.
type FileStore interface {
	// Get retrieves a file and its metadata from the specified path.
	// The caller is responsible for closing File.Content.
	Get(ctx context.Context, path string) (*File, error)

	// Exists checks if a file exists at the specified path.
	Exists(ctx context.Context, path string) (bool, error)
}

// File represents a stored file with its content and metadata.
type File struct {
	Content io.ReadCloser
	Info    FileInfo
}

// FileInfo contains metadata about a stored file.
type FileInfo struct {
	Path         string
	Size         int64
	ContentType  string
	LastModified time.Time
}
