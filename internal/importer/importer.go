// Package importer reads tabular sources and bulk-creates QR records,
// tracking success, skip and error counts per row.
package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/prochap/qrgen/internal/content"
	"github.com/prochap/qrgen/internal/models"
	"github.com/prochap/qrgen/internal/storage"
)

// Table is a tabular source: a header row plus data rows addressed by
// column name. Fully blank rows are dropped at read time.
type Table struct {
	Columns []string
	Rows    []map[string]string
}

// Mapping names the source columns holding the two required logical
// fields. The personalization column is auto-detected, not mapped.
type Mapping struct {
	Code        string
	Description string
}

// Result aggregates the per-row outcomes of an import run.
type Result struct {
	Success int `json:"exitosos"`
	Skipped int `json:"saltados"`
	Errors  int `json:"errores"`
}

// Renderer produces the display raster generated for each imported row.
type Renderer interface {
	Display(content string) ([]byte, error)
}

// ReadXLSX loads the first sheet of an Excel workbook into a Table.
// The first row is the header; rows with no non-empty cell are dropped.
func ReadXLSX(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses an Excel workbook from r. See ReadXLSX.
func Read(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q has no header row", sheets[0])
	}

	table := &Table{Columns: rows[0]}
	for _, raw := range rows[1:] {
		row := make(map[string]string, len(table.Columns))
		blank := true
		for i, col := range table.Columns {
			var cell string
			if i < len(raw) {
				cell = raw[i]
			}
			if strings.TrimSpace(cell) != "" {
				blank = false
			}
			row[col] = cell
		}
		if blank {
			continue
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// DetectPersonalization returns the first column whose name, lowercased
// and with spaces removed, contains "personalizacion". Empty string when
// no column matches; imported rows then get an empty personalization.
func DetectPersonalization(columns []string) string {
	for _, col := range columns {
		norm := strings.ReplaceAll(strings.ToLower(col), " ", "")
		if strings.Contains(norm, "personalizacion") {
			return col
		}
	}
	return ""
}

// Importer drives the store and renderer for each row of a Table.
type Importer struct {
	store    storage.Store
	renderer Renderer
}

// New returns an Importer writing to store and rendering with renderer.
func New(store storage.Store, renderer Renderer) *Importer {
	return &Importer{store: store, renderer: renderer}
}

// ValidateMapping checks that both required columns exist in the table
// before any row is processed.
func ValidateMapping(table *Table, mapping Mapping) error {
	if mapping.Code == "" || mapping.Description == "" {
		return fmt.Errorf("code and description columns must be selected")
	}
	for _, want := range []string{mapping.Code, mapping.Description} {
		found := false
		for _, col := range table.Columns {
			if col == want {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("column %q not present in source", want)
		}
	}
	return nil
}

// Run walks the table rows in order. Rows missing code or description
// after trimming are skipped; store or render failures count as errors
// but do not stop the run. report, if non-nil, is called after every
// row with (processed, total). An invalid mapping aborts before any row
// is touched.
func (imp *Importer) Run(ctx context.Context, table *Table, mapping Mapping, report func(current, total int)) (Result, error) {
	var result Result

	if err := ValidateMapping(table, mapping); err != nil {
		return result, err
	}

	personalizationCol := DetectPersonalization(table.Columns)
	total := len(table.Rows)

	for i, row := range table.Rows {
		code := strings.TrimSpace(row[mapping.Code])
		description := strings.TrimSpace(row[mapping.Description])
		personalization := ""
		if personalizationCol != "" {
			personalization = strings.TrimSpace(row[personalizationCol])
		}

		if code == "" || description == "" {
			slog.Warn("Skipping row without code or description", "row", i+2)
			result.Skipped++
			if report != nil {
				report(i+1, total)
			}
			continue
		}

		record := &models.Record{
			Content:         content.Build(code, description, personalization),
			Description:     description,
			Personalization: personalization,
		}
		if err := imp.store.CreateRecord(ctx, record); err != nil {
			slog.Error("Failed to store imported row", "row", i+2, "error", err)
			result.Errors++
			if report != nil {
				report(i+1, total)
			}
			continue
		}

		// Render once to surface unrenderable content; the raster is
		// discarded immediately, cards re-render on demand.
		if _, err := imp.renderer.Display(record.Content); err != nil {
			slog.Error("Failed to render imported row", "row", i+2, "error", err)
			result.Errors++
		} else {
			result.Success++
		}

		if report != nil {
			report(i+1, total)
		}
	}

	return result, nil
}
