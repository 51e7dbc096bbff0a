// Package service orchestrates the QR record lifecycle over the store,
// the raster renderer and the batch importer/exporter.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/prochap/qrgen/internal/content"
	"github.com/prochap/qrgen/internal/export"
	"github.com/prochap/qrgen/internal/importer"
	"github.com/prochap/qrgen/internal/models"
	"github.com/prochap/qrgen/internal/observability"
	"github.com/prochap/qrgen/internal/qr"
	"github.com/prochap/qrgen/internal/storage"
)

// ErrMissingFields is returned by Create when code or description is
// empty after trimming. Validation happens before any side effect.
var ErrMissingFields = errors.New("code and description are required")

// Records owns the record lifecycle: manual creation, listing,
// on-demand rendering, clearing, bulk import and PDF export.
type Records struct {
	store    storage.Store
	renderer *qr.Renderer
	exporter *export.Exporter
	importer *importer.Importer
}

// NewRecords wires a Records service over the given store and renderer.
func NewRecords(store storage.Store, renderer *qr.Renderer) *Records {
	return &Records{
		store:    store,
		renderer: renderer,
		exporter: export.NewExporter(renderer),
		importer: importer.New(store, renderer),
	}
}

// Create validates the input, builds the canonical content and inserts
// a record. The returned record has its ID and CreatedAt populated.
func (s *Records) Create(ctx context.Context, code, description, personalization string) (*models.Record, error) {
	code = strings.TrimSpace(code)
	description = strings.TrimSpace(description)
	personalization = strings.TrimSpace(personalization)

	if code == "" || description == "" {
		return nil, ErrMissingFields
	}

	record := &models.Record{
		Content:         content.Build(code, description, personalization),
		Description:     description,
		Personalization: personalization,
	}
	if err := s.store.CreateRecord(ctx, record); err != nil {
		slog.Error("Failed to create record", "error", err)
		return nil, fmt.Errorf("failed to create record: %w", err)
	}

	observability.RecordCreated()
	slog.Info("Record created", "id", record.ID, "code", code)
	return record, nil
}

// List returns all records in insertion order.
func (s *Records) List(ctx context.Context) ([]models.Record, error) {
	return s.store.ListRecords(ctx)
}

// Count returns the number of stored records.
func (s *Records) Count(ctx context.Context) (int, error) {
	return s.store.CountRecords(ctx)
}

// Render produces a fresh raster for the record with the given ID at
// size pixels (the configured display size when size <= 0). The raster
// is returned to the caller and never kept.
func (s *Records) Render(ctx context.Context, id int64, size int) ([]byte, error) {
	record, err := s.store.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = s.renderer.DisplaySize()
	}
	return s.renderer.Render(record.Content, size)
}

// ClearAll irreversibly removes every record.
func (s *Records) ClearAll(ctx context.Context) error {
	if err := s.store.DeleteAllRecords(ctx); err != nil {
		slog.Error("Failed to delete records", "error", err)
		return fmt.Errorf("failed to delete records: %w", err)
	}
	observability.RecordsCleared()
	slog.Info("All records deleted")
	return nil
}

// Import runs the batch importer over table with the given column
// mapping, reporting progress after every row.
func (s *Records) Import(ctx context.Context, table *importer.Table, mapping importer.Mapping, report func(current, total int)) (importer.Result, error) {
	observability.BatchStarted("import")

	result, err := s.importer.Run(ctx, table, mapping, report)
	if err != nil {
		return result, err
	}

	observability.ImportRows(result.Success, result.Skipped, result.Errors)
	slog.Info("Import finished",
		"success", result.Success,
		"skipped", result.Skipped,
		"errors", result.Errors,
	)
	return result, nil
}

// ExportPDF fetches the full record set once and streams the paginated
// document to w, reporting progress after every record. Returns
// export.ErrNoRecords when nothing is stored; no document is written.
func (s *Records) ExportPDF(ctx context.Context, w io.Writer, report func(current, total int)) error {
	records, err := s.store.ListRecords(ctx)
	if err != nil {
		slog.Error("Failed to load records for export", "error", err)
		return fmt.Errorf("failed to load records for export: %w", err)
	}

	observability.BatchStarted("export")
	if err := s.exporter.WritePDF(w, records, report); err != nil {
		return err
	}

	observability.ExportPages(export.PageCount(len(records)))
	slog.Info("Export finished", "records", len(records), "pages", export.PageCount(len(records)))
	return nil
}
