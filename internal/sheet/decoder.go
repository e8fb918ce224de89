// Package sheet decodes uploaded spreadsheets into raw header/value rows.
//
// The first sheet of a workbook (or the whole CSV) is read; its first
// non-blank row is the header. Blank data rows are skipped and missing
// cells become the explicit empty marker, so every row carries every header.
package sheet

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/JonMunkholm/bookimport/internal/catalog"
)

// DefaultMaxBytes caps an upload at 10 MB.
const DefaultMaxBytes int64 = 10 << 20

var (
	ErrTooLarge = errors.New("file exceeds maximum size")
	ErrNoSheet  = errors.New("workbook has no sheets")
)

// Decoder reads XLSX and CSV uploads.
type Decoder struct {
	maxBytes int64
}

// NewDecoder returns a decoder that rejects files larger than maxBytes.
// A non-positive value selects DefaultMaxBytes.
func NewDecoder(maxBytes int64) *Decoder {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Decoder{maxBytes: maxBytes}
}

// Decode reads the whole file, detects its format and returns the data rows
// of its first sheet. A sheet with a header but no data yields no rows and
// no error; the caller decides whether that is a failure.
func (d *Decoder) Decode(ctx context.Context, fileName string, r io.Reader) ([]catalog.RawRow, error) {
	data, err := io.ReadAll(io.LimitReader(r, d.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > d.maxBytes {
		return nil, ErrTooLarge
	}

	format, err := Detect(data, fileName)
	if err != nil {
		return nil, err
	}

	var grid [][]catalog.Cell
	switch format {
	case FormatXLSX:
		grid, err = readWorkbook(ctx, data)
	case FormatCSV:
		grid, err = readCSV(ctx, data)
	}
	if err != nil {
		return nil, err
	}
	return toRawRows(grid), nil
}

// readWorkbook returns the typed cells of the first sheet, row by row.
func readWorkbook(ctx context.Context, data []byte) ([][]catalog.Cell, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheet
	}
	name := sheets[0]

	rows, err := f.Rows(name)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}
	defer rows.Close()

	var grid [][]catalog.Cell
	for rowNum := 1; rows.Next(); rowNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cols, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", rowNum, err)
		}
		cells := make([]catalog.Cell, len(cols))
		for i, raw := range cols {
			cells[i], err = workbookCell(f, name, i+1, rowNum, raw)
			if err != nil {
				return nil, err
			}
		}
		grid = append(grid, cells)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}
	return grid, nil
}

// workbookCell types one raw cell value.
func workbookCell(f *excelize.File, sheet string, col, row int, raw string) (catalog.Cell, error) {
	if raw == "" {
		return catalog.Empty(), nil
	}
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return catalog.Cell{}, err
	}
	typ, err := f.GetCellType(sheet, axis)
	if err != nil {
		return catalog.Cell{}, fmt.Errorf("cell %s: %w", axis, err)
	}
	return typedCell(typ, raw), nil
}

// typedCell converts raw by its workbook cell type. Date-formatted numbers
// keep their serial; ISO 8601 date cells (t="d") become dates.
func typedCell(typ excelize.CellType, raw string) catalog.Cell {
	switch typ {
	case excelize.CellTypeBool:
		return catalog.Bool(raw == "1" || strings.EqualFold(raw, "true"))
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return catalog.Number(n)
		}
	case excelize.CellTypeDate:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return catalog.Number(n)
		}
		if t, ok := parseISODate(raw); ok {
			return catalog.Date(t)
		}
	}
	return catalog.Text(raw)
}

func parseISODate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", catalog.DateLayout} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// readCSV parses delimited text. A UTF-8 BOM is dropped and invalid byte
// sequences are replaced.
func readCSV(ctx context.Context, data []byte) ([][]catalog.Cell, error) {
	decoded := transform.NewReader(bytes.NewReader(data), xunicode.BOMOverride(xunicode.UTF8.NewDecoder()))

	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var grid [][]catalog.Cell
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		cells := make([]catalog.Cell, len(record))
		for i, v := range record {
			cells[i] = textCell(CleanCell(v))
		}
		grid = append(grid, cells)
	}
	return grid, nil
}

// toRawRows pairs every data row with the header row. Columns without a
// header are dropped.
func toRawRows(grid [][]catalog.Cell) []catalog.RawRow {
	start := -1
	for i, cells := range grid {
		if !blankRow(cells) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}

	header := make([]string, len(grid[start]))
	for i, c := range grid[start] {
		header[i] = strings.TrimSpace(c.String())
	}

	var out []catalog.RawRow
	for _, cells := range grid[start+1:] {
		if blankRow(cells) {
			continue
		}
		row := make(catalog.RawRow, 0, len(header))
		for i, h := range header {
			if h == "" {
				continue
			}
			value := catalog.Empty()
			if i < len(cells) {
				value = cells[i]
			}
			row = append(row, catalog.RawCell{Header: h, Value: value})
		}
		out = append(out, row)
	}
	return out
}

func blankRow(cells []catalog.Cell) bool {
	for _, c := range cells {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}
