// Package source provides tabular data source adapters. Each adapter
// decodes one kind of input (csv, xlsx, Google Sheets, SQLite staging)
// into loosely-typed raw rows; normalization happens downstream in the
// core.
package source

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"compras/internal/core"
)

// RowReader is the port every tabular data source implements.
type RowReader interface {
	// ReadRows decodes the source into raw rows. Decode failures are
	// returned to the caller; the analytics session is never handed
	// malformed input.
	ReadRows(ctx context.Context) ([]core.RawRow, error)
}

// Format identifies a file decoder.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatForPath guesses the decoder from a file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("no decoder for file %q", path)
	}
}

// OpenFile returns a RowReader for a local spreadsheet file, picking
// the decoder by extension.
func OpenFile(path string) (RowReader, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatCSV:
		return NewCSVFile(path), nil
	case FormatXLSX:
		return NewXLSXFile(path), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// HeaderRows zips a header row with data rows into RawRows. Cells past
// the header width are dropped; missing trailing cells are omitted so
// the normalizer sees them as absent rather than empty.
func HeaderRows(header []string, data [][]string) []core.RawRow {
	out := make([]core.RawRow, 0, len(data))
	for _, cells := range data {
		row := make(core.RawRow, len(header))
		for i, key := range header {
			key = strings.TrimSpace(key)
			if key == "" || i >= len(cells) {
				continue
			}
			if cell := strings.TrimSpace(cells[i]); cell != "" {
				row[key] = cell
			}
		}
		if len(row) > 0 {
			out = append(out, row)
		}
	}
	return out
}
