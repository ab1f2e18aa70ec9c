package source

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"compras/internal/core"
)

// XLSXFile reads the first sheet of an Excel workbook; the first row is
// the header. Date cells arrive as formatted strings and are re-parsed
// by the normalizer, matching how spreadsheet exports round-trip dates.
type XLSXFile struct {
	path string
}

func NewXLSXFile(path string) *XLSXFile {
	return &XLSXFile{path: path}
}

// ReadRows implements RowReader.
func (f *XLSXFile) ReadRows(ctx context.Context) ([]core.RawRow, error) {
	wb, err := excelize.OpenFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx %s: %w", f.path, err)
	}
	defer wb.Close()
	return decodeWorkbook(ctx, wb)
}

// DecodeXLSX reads header-keyed raw rows from an xlsx stream.
func DecodeXLSX(ctx context.Context, r io.Reader) ([]core.RawRow, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx stream: %w", err)
	}
	defer wb.Close()
	return decodeWorkbook(ctx, wb)
}

func decodeWorkbook(ctx context.Context, wb *excelize.File) ([]core.RawRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return HeaderRows(rows[0], rows[1:]), nil
}
