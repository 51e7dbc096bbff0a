package service

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prochap/qrgen/internal/export"
	"github.com/prochap/qrgen/internal/importer"
	"github.com/prochap/qrgen/internal/qr"
	"github.com/prochap/qrgen/internal/storage"
	"github.com/prochap/qrgen/internal/storage/sqlite"
)

func newTestService(t *testing.T) *Records {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "qrgen-service-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return NewRecords(store, qr.NewRenderer(150, 100))
}

func TestCreate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	t.Run("valid input", func(t *testing.T) {
		record, err := svc.Create(ctx, "A1", "Box", "")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if record.ID == 0 {
			t.Error("expected record ID to be assigned")
		}

		wantPrefix := "PROCHAP\nCódigo: A1\nDescripción: Box\nPersonalización: \n"
		if !strings.HasPrefix(record.Content, wantPrefix) {
			t.Errorf("Content = %q, want prefix %q", record.Content, wantPrefix)
		}
	})

	t.Run("inputs are trimmed", func(t *testing.T) {
		record, err := svc.Create(ctx, "  B2  ", " Bolsa ", "  regalo ")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if record.Description != "Bolsa" || record.Personalization != "regalo" {
			t.Errorf("fields not trimmed: %+v", record)
		}
	})

	t.Run("missing fields rejected before any side effect", func(t *testing.T) {
		before, err := svc.List(ctx)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}

		for _, in := range [][3]string{
			{"", "Box", ""},
			{"A1", "", ""},
			{"   ", "Box", ""},
			{"A1", "   ", ""},
		} {
			if _, err := svc.Create(ctx, in[0], in[1], in[2]); !errors.Is(err, ErrMissingFields) {
				t.Errorf("Create(%q, %q) = %v, want ErrMissingFields", in[0], in[1], err)
			}
		}

		after, err := svc.List(ctx)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(after) != len(before) {
			t.Errorf("rejected inputs changed the store: %d -> %d records", len(before), len(after))
		}
	})
}

func TestRender(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	record, err := svc.Create(ctx, "A1", "Box", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	data, err := svc.Render(ctx, record.ID, 0)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Render did not produce a PNG: %v", err)
	}
	if img.Bounds().Dx() != 150 {
		t.Errorf("default size = %d, want configured display size 150", img.Bounds().Dx())
	}

	if _, err := svc.Render(ctx, 999999, 0); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Render for missing ID = %v, want ErrNotFound", err)
	}
}

func TestClearAll(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, code := range []string{"A1", "A2", "A3"} {
		if _, err := svc.Create(ctx, code, "Box", ""); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	if err := svc.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll failed: %v", err)
	}

	records, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected empty store after ClearAll, got %d records", len(records))
	}
}

func TestImportThroughService(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	table := &importer.Table{
		Columns: []string{"Codigo", "Descripcion"},
		Rows: []map[string]string{
			{"Codigo": "A1", "Descripcion": "Caja"},
			{"Codigo": "", "Descripcion": "sin código"},
			{"Codigo": "A3", "Descripcion": "Bolsa"},
		},
	}

	result, err := svc.Import(ctx, table, importer.Mapping{Code: "Codigo", Description: "Descripcion"}, nil)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if result.Success != 2 || result.Skipped != 1 || result.Errors != 0 {
		t.Errorf("result = %+v, want Success=2 Skipped=1 Errors=0", result)
	}

	records, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("stored %d records, want 2", len(records))
	}
}

func TestExportPDF(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	t.Run("empty store aborts without output", func(t *testing.T) {
		var out bytes.Buffer
		if err := svc.ExportPDF(ctx, &out, nil); !errors.Is(err, export.ErrNoRecords) {
			t.Fatalf("ExportPDF = %v, want ErrNoRecords", err)
		}
		if out.Len() != 0 {
			t.Error("no bytes should be written for an empty store")
		}
	})

	t.Run("document produced with per-record progress", func(t *testing.T) {
		for _, code := range []string{"A1", "A2", "A3", "A4"} {
			if _, err := svc.Create(ctx, code, "Box", ""); err != nil {
				t.Fatalf("Create failed: %v", err)
			}
		}

		var reports int
		var out bytes.Buffer
		if err := svc.ExportPDF(ctx, &out, func(current, total int) { reports++ }); err != nil {
			t.Fatalf("ExportPDF failed: %v", err)
		}
		if !bytes.HasPrefix(out.Bytes(), []byte("%PDF")) {
			t.Error("output does not look like a PDF document")
		}
		if reports != 4 {
			t.Errorf("progress reported %d times, want 4", reports)
		}
	})
}
