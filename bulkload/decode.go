package bulkload

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/code19m/errx"
)

const (
	CodeUnsupportedFormat = "BULK_UNSUPPORTED_FORMAT"
	CodeMalformedFile     = "BULK_MALFORMED_FILE"

	ContentTypeCSV  = "text/csv"
	ContentTypeJSON = "application/json"
)

// Row is one record of an upload, keyed by column name. Index is zero based.
type Row struct {
	Index  int
	Values map[string]any
}

// Decode parses an upload as CSV or JSON depending on contentType. When the
// content type is missing or generic, the filename extension decides.
func Decode(r io.Reader, contentType, filename string) ([]Row, error) {
	switch formatOf(contentType, filename) {
	case ContentTypeCSV:
		return DecodeCSV(r)
	case ContentTypeJSON:
		return DecodeJSON(r)
	default:
		return nil, errx.New(
			fmt.Sprintf("invalid document type %q, expected one of: %s, %s", contentType, ContentTypeCSV, ContentTypeJSON),
			errx.WithCode(CodeUnsupportedFormat),
			errx.WithType(errx.T_Validation),
		)
	}
}

func formatOf(contentType, filename string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err == nil && (mediaType == ContentTypeCSV || mediaType == ContentTypeJSON) {
		return mediaType
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return ContentTypeCSV
	case ".json":
		return ContentTypeJSON
	}
	return ""
}

// DecodeCSV reads a header row followed by records. Every value is a string.
func DecodeCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []Row{}, nil
	}
	if err != nil {
		return nil, malformed(err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	rows := make([]Row, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, malformed(err)
		}

		values := make(map[string]any, len(header))
		for i, col := range header {
			values[col] = record[i]
		}
		rows = append(rows, Row{Index: len(rows), Values: values})
	}

	return rows, nil
}

// DecodeJSON reads an array of objects. Numbers are decoded as float64.
func DecodeJSON(r io.Reader) ([]Row, error) {
	var records []map[string]any
	err := json.NewDecoder(r).Decode(&records)
	if err != nil {
		return nil, malformed(err)
	}

	rows := make([]Row, len(records))
	for i, rec := range records {
		if rec == nil {
			rec = map[string]any{}
		}
		rows[i] = Row{Index: i, Values: rec}
	}
	return rows, nil
}

func malformed(err error) error {
	return errx.Wrap(err, errx.WithCode(CodeMalformedFile), errx.WithType(errx.T_Validation))
}
