package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"compras/internal/core"
)

// CSVFile reads a comma-separated ledger whose first row is the header.
type CSVFile struct {
	path string
}

func NewCSVFile(path string) *CSVFile {
	return &CSVFile{path: path}
}

// ReadRows implements RowReader.
func (f *CSVFile) ReadRows(ctx context.Context) ([]core.RawRow, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("open csv %s: %w", f.path, err)
	}
	defer file.Close()
	return DecodeCSV(ctx, file)
}

// DecodeCSV reads header-keyed raw rows from any reader. Ragged rows
// are tolerated; the normalizer treats short rows as missing fields.
func DecodeCSV(ctx context.Context, r io.Reader) ([]core.RawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	var data [][]string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cells, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		data = append(data, cells)
	}
	return HeaderRows(header, data), nil
}
