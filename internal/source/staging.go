package source

import (
	"context"

	"compras/internal/core"
	"compras/internal/storage"
)

// Staging reads rows previously staged in SQLite by the import
// pipeline. An empty source name means "whatever was imported last".
type Staging struct {
	repo   *storage.SQLiteRepository
	source string
}

func NewStaging(repo *storage.SQLiteRepository, source string) *Staging {
	return &Staging{repo: repo, source: source}
}

// ReadRows implements RowReader.
func (s *Staging) ReadRows(ctx context.Context) ([]core.RawRow, error) {
	return s.repo.ReadRows(ctx, s.source)
}
