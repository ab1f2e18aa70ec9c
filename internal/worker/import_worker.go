// Package worker runs the background side of the import pipeline,
// turning queued import requests into staged datasets.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"compras/internal/amqp"
	"compras/internal/services"
)

// ImportWorker handles import requests delivered over AMQP.
type ImportWorker struct {
	importer *services.ImportService
}

func NewImportWorker(importer *services.ImportService) *ImportWorker {
	return &ImportWorker{importer: importer}
}

// HandleImportRequest processes a single import request message.
func (w *ImportWorker) HandleImportRequest(ctx context.Context, msg *amqp.ImportRequestMessage) error {
	slog.InfoContext(ctx, "Processing import request",
		"path", msg.Path,
		"source", msg.Source)

	result, err := w.importer.ImportFile(ctx, msg.Path, msg.Source)
	if err != nil {
		return fmt.Errorf("import %s: %w", msg.Path, err)
	}

	slog.InfoContext(ctx, "Import request completed",
		"source", result.Source,
		"rows", result.Rows)
	return nil
}
