package sheet

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Format is a supported spreadsheet encoding.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ErrUnsupportedFormat is returned for files that are neither an Office
// Open XML workbook nor delimited text.
var ErrUnsupportedFormat = errors.New("unsupported file format")

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeZip  = "application/zip"
	mimeCSV  = "text/csv"
	mimeText = "text/plain"
)

// Detect sniffs the content of a file and falls back to its extension when
// the content alone is ambiguous (a workbook is a zip archive, a CSV is text).
func Detect(data []byte, fileName string) (Format, error) {
	m := mimetype.Detect(data)
	ext := strings.ToLower(filepath.Ext(fileName))

	switch {
	case descends(m, mimeXLSX):
		return FormatXLSX, nil
	case descends(m, mimeZip) && (ext == ".xlsx" || ext == ".xlsm"):
		return FormatXLSX, nil
	case descends(m, mimeCSV):
		return FormatCSV, nil
	case descends(m, mimeText) && (ext == ".csv" || ext == ".txt"):
		return FormatCSV, nil
	}
	return "", ErrUnsupportedFormat
}

// descends reports whether m or any of its parents is the given type.
func descends(m *mimetype.MIME, mime string) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is(mime) {
			return true
		}
	}
	return false
}
