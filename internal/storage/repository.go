package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"compras/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository stages raw input rows between the import pipeline
// and the analytics server. Each staged row is one JSON-encoded RawRow;
// the normalizer downstream deals with whatever keys the source used.
type SQLiteRepository struct {
	db *sql.DB
}

// ImportRecord describes one completed import.
type ImportRecord struct {
	ID         int64
	Source     string
	RowCount   int64
	ImportedAt time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// StageRows replaces the staged rows for a source and records the
// import. Staging is per-source replacement, mirroring a full dataset
// reload downstream.
func (r *SQLiteRepository) StageRows(ctx context.Context, source string, rows []core.RawRow) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin staging transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM staged_rows WHERE source = ?`, source); err != nil {
		return 0, fmt.Errorf("clear staged rows: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO staged_rows (source, row_json) VALUES (?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare staging insert: %w", err)
	}
	defer stmt.Close()

	var staged int64
	for _, row := range rows {
		body, err := json.Marshal(row)
		if err != nil {
			return 0, fmt.Errorf("marshal raw row: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, source, string(body)); err != nil {
			return 0, fmt.Errorf("insert staged row: %w", err)
		}
		staged++
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO imports (source, row_count) VALUES (?, ?)`, source, staged); err != nil {
		return 0, fmt.Errorf("record import: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit staging transaction: %w", err)
	}

	slog.InfoContext(ctx, "Rows staged", "source", source, "rows", staged)
	return staged, nil
}

// ReadRows returns the staged raw rows for a source in insertion order.
// An empty source reads the most recently imported one.
func (r *SQLiteRepository) ReadRows(ctx context.Context, source string) ([]core.RawRow, error) {
	if source == "" {
		latest, err := r.LatestImport(ctx)
		if err != nil {
			return nil, err
		}
		if latest == nil {
			return nil, nil
		}
		source = latest.Source
	}

	rows, err := r.db.QueryContext(ctx, `SELECT row_json FROM staged_rows WHERE source = ? ORDER BY id`, source)
	if err != nil {
		return nil, fmt.Errorf("query staged rows: %w", err)
	}
	defer rows.Close()

	var out []core.RawRow
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan staged row: %w", err)
		}
		var raw core.RawRow
		if err := json.Unmarshal([]byte(body), &raw); err != nil {
			return nil, fmt.Errorf("unmarshal staged row: %w", err)
		}
		out = append(out, raw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate staged rows: %w", err)
	}
	return out, nil
}

// LatestImport returns the most recent import record, or nil when
// nothing has been staged yet.
func (r *SQLiteRepository) LatestImport(ctx context.Context) (*ImportRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, source, row_count, imported_at FROM imports ORDER BY id DESC LIMIT 1`)

	var rec ImportRecord
	if err := row.Scan(&rec.ID, &rec.Source, &rec.RowCount, &rec.ImportedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan latest import: %w", err)
	}
	return &rec, nil
}

// StagedCount returns the total number of staged rows across sources.
func (r *SQLiteRepository) StagedCount(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM staged_rows`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count staged rows: %w", err)
	}
	return count, nil
}
