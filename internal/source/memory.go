package source

import (
	"context"

	"compras/internal/core"
)

// Memory serves a fixed slice of rows. Used by tests and by handlers
// that accept an inline payload instead of a file path.
type Memory struct {
	rows []core.RawRow
}

func NewMemory(rows []core.RawRow) *Memory {
	return &Memory{rows: rows}
}

// ReadRows implements RowReader.
func (m *Memory) ReadRows(ctx context.Context) ([]core.RawRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]core.RawRow, len(m.rows))
	copy(out, m.rows)
	return out, nil
}
