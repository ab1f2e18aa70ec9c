package storage

import (
	"context"
	"path/filepath"
	"testing"

	"compras/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "compras.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepository_StageAndReadRows(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rows := []core.RawRow{
		{"fecha": "2024-01-05", "descripcion": "Steel Rod", "cantidad": 2.0, "precio": 10.0},
		{"fecha": "2024-02-03", "descripcion": "Copper Wire", "cantidad": 1.0, "precio": 8.0},
	}

	staged, err := repo.StageRows(ctx, "ledger.xlsx", rows)
	if err != nil {
		t.Fatalf("StageRows() error: %v", err)
	}
	if staged != 2 {
		t.Errorf("StageRows() = %d, want 2", staged)
	}

	got, err := repo.ReadRows(ctx, "ledger.xlsx")
	if err != nil {
		t.Fatalf("ReadRows() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ReadRows() returned %d rows, want 2", len(got))
	}
	if got[0]["descripcion"] != "Steel Rod" {
		t.Errorf("first row descripcion = %v, want Steel Rod", got[0]["descripcion"])
	}
}

func TestSQLiteRepository_StageReplacesSource(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.StageRows(ctx, "ledger.xlsx", []core.RawRow{{"fecha": "2024-01-01"}}); err != nil {
		t.Fatalf("StageRows() error: %v", err)
	}
	if _, err := repo.StageRows(ctx, "ledger.xlsx", []core.RawRow{{"fecha": "2024-02-01"}, {"fecha": "2024-03-01"}}); err != nil {
		t.Fatalf("StageRows() error: %v", err)
	}

	got, err := repo.ReadRows(ctx, "ledger.xlsx")
	if err != nil {
		t.Fatalf("ReadRows() error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("ReadRows() after restage = %d rows, want 2", len(got))
	}
}

func TestSQLiteRepository_LatestImport(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	latest, err := repo.LatestImport(ctx)
	if err != nil {
		t.Fatalf("LatestImport() error: %v", err)
	}
	if latest != nil {
		t.Errorf("LatestImport() on empty db = %+v, want nil", latest)
	}

	if _, err := repo.StageRows(ctx, "first.csv", []core.RawRow{{"fecha": "2024-01-01"}}); err != nil {
		t.Fatalf("StageRows() error: %v", err)
	}
	if _, err := repo.StageRows(ctx, "second.csv", []core.RawRow{{"fecha": "2024-02-01"}}); err != nil {
		t.Fatalf("StageRows() error: %v", err)
	}

	latest, err = repo.LatestImport(ctx)
	if err != nil {
		t.Fatalf("LatestImport() error: %v", err)
	}
	if latest == nil || latest.Source != "second.csv" {
		t.Errorf("LatestImport() = %+v, want source second.csv", latest)
	}

	// Empty source reads the latest import's rows.
	got, err := repo.ReadRows(ctx, "")
	if err != nil {
		t.Fatalf("ReadRows(\"\") error: %v", err)
	}
	if len(got) != 1 || got[0]["fecha"] != "2024-02-01" {
		t.Errorf("ReadRows(\"\") = %v, want the second.csv row", got)
	}
}
