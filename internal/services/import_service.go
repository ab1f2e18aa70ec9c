// Package services orchestrates the import pipeline: decoding
// spreadsheet files, staging rows in SQLite, and notifying listeners.
package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"compras/internal/core"
	"compras/internal/log"
	"compras/internal/source"
	"compras/internal/storage"
)

// Notifier announces a staged dataset to interested consumers. The
// AMQP client satisfies it; a nil notifier disables notifications.
type Notifier interface {
	PublishDatasetStaged(ctx context.Context, source string, rows int64) error
}

// ImportResult summarizes a completed import.
type ImportResult struct {
	Source string
	Rows   int64
}

// ImportService decodes spreadsheet files and stages their rows.
type ImportService struct {
	repo     *storage.SQLiteRepository
	notifier Notifier
	logger   *log.Logger
}

func NewImportService(repo *storage.SQLiteRepository, notifier Notifier, logger *log.Logger) *ImportService {
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentImport)
	}
	return &ImportService{repo: repo, notifier: notifier, logger: logger}
}

// ImportFile decodes the file at path and stages its rows under the
// given source name. An empty source defaults to the file's base name
// without extension.
func (s *ImportService) ImportFile(ctx context.Context, path, sourceName string) (*ImportResult, error) {
	if sourceName == "" {
		sourceName = sourceNameForPath(path)
	}

	reader, err := source.OpenFile(path)
	if err != nil {
		return nil, err
	}
	rows, err := reader.ReadRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return s.ImportRows(ctx, sourceName, rows)
}

// ImportRows stages already-decoded rows under the given source name.
func (s *ImportService) ImportRows(ctx context.Context, sourceName string, rows []core.RawRow) (*ImportResult, error) {
	if sourceName == "" {
		return nil, fmt.Errorf("source name is required")
	}
	count, err := s.repo.StageRows(ctx, sourceName, rows)
	if err != nil {
		return nil, fmt.Errorf("stage rows: %w", err)
	}

	s.logger.InfoContext(ctx, "dataset staged",
		log.FieldSource, sourceName,
		log.FieldRows, count)

	if s.notifier != nil {
		if err := s.notifier.PublishDatasetStaged(ctx, sourceName, count); err != nil {
			// Staging succeeded; a lost notification only delays refresh.
			s.logger.WarnContext(ctx, "staged notification failed",
				log.FieldSource, sourceName,
				log.FieldError, err)
		}
	}
	return &ImportResult{Source: sourceName, Rows: count}, nil
}

func sourceNameForPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
