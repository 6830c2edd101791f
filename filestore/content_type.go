package filestore

import (
	"mime"
	"path/filepath"
	"strings"
)

// Content types of seed and upload files.
const (
	ContentTypeCSV         = "text/csv"
	ContentTypeJSON        = "application/json"
	ContentTypeOctetStream = "application/octet-stream"
)

// ContentTypeOf guesses a file's content type from its extension.
func ContentTypeOf(path string) string {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return ContentTypeCSV
	case ".json":
		return ContentTypeJSON
	default:
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
		return ContentTypeOctetStream
	}
}
