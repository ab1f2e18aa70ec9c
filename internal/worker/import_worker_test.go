package worker

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"compras/internal/amqp"
	"compras/internal/services"
	"compras/internal/storage"
)

func newTestWorker(t *testing.T) (*ImportWorker, *storage.SQLiteRepository) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "compras.db")
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteRepository returned error: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return NewImportWorker(services.NewImportService(repo, nil, nil)), repo
}

func TestHandleImportRequest(t *testing.T) {
	w, repo := newTestWorker(t)

	path := filepath.Join(t.TempDir(), "marzo.csv")
	data := "Fecha,Proveedor,Precio\n2024-03-10,Acme,10\n2024-03-11,Beta,20\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	msg := amqp.NewImportRequestMessage(path, "")
	if err := w.HandleImportRequest(context.Background(), msg); err != nil {
		t.Fatalf("HandleImportRequest returned error: %v", err)
	}

	rows, err := repo.ReadRows(context.Background(), "marzo")
	if err != nil {
		t.Fatalf("ReadRows returned error: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("expected 2 staged rows, got %d", len(rows))
	}
}

func TestHandleImportRequestMissingFile(t *testing.T) {
	w, _ := newTestWorker(t)

	msg := amqp.NewImportRequestMessage("/does/not/exist.csv", "ghost")
	if err := w.HandleImportRequest(context.Background(), msg); err == nil {
		t.Fatal("expected error for missing file")
	}
}
