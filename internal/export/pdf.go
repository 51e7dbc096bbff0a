// Package export paginates stored records into a PDF document,
// three records per page, each with a freshly rendered QR raster and
// a caption block.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/go-pdf/fpdf"

	"github.com/prochap/qrgen/internal/models"
)

// ErrNoRecords is returned when an export is requested with nothing
// stored; no document is produced.
var ErrNoRecords = errors.New("no records to export")

// Layout constants, in document units (mm).
const (
	recordsPerPage = 3
	imageX         = 10
	imageSize      = 40
	captionX       = 60
	captionLine    = 10
)

// pageOf returns the zero-based page index for record i.
func pageOf(i int) int {
	return i / recordsPerPage
}

// offsetY returns the vertical position of record i on its page.
func offsetY(i int) float64 {
	return 10 + float64(i%recordsPerPage)*90
}

// PageCount returns the number of PDF pages produced for n records.
func PageCount(n int) int {
	return (n + recordsPerPage - 1) / recordsPerPage
}

// Renderer produces the print-sized raster embedded for each record.
type Renderer interface {
	Print(content string) ([]byte, error)
}

// Exporter writes PDF documents from record sets.
type Exporter struct {
	renderer Renderer
}

// NewExporter returns an Exporter using the given raster renderer.
func NewExporter(renderer Renderer) *Exporter {
	return &Exporter{renderer: renderer}
}

// caption returns the text block shown beside record i's raster.
func caption(r *models.Record) string {
	return fmt.Sprintf("Descripción: %s\nFecha: %s\nPersonalización: %s",
		r.Description, r.CreatedAt, r.Personalization)
}

// WritePDF renders every record into a paginated document on w.
// Records that fail to rasterize are logged and skipped; the rest of
// the document is still produced. report, if non-nil, is called after
// each record with (processed, total).
func (e *Exporter) WritePDF(w io.Writer, records []models.Record, report func(current, total int)) error {
	if len(records) == 0 {
		return ErrNoRecords
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	pdf.SetFont("Arial", "", 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	total := len(records)
	for i := range records {
		record := &records[i]
		if i > 0 && i%recordsPerPage == 0 {
			pdf.AddPage()
		}

		png, err := e.renderer.Print(record.Content)
		if err != nil {
			slog.Error("Failed to render QR for export", "record_id", record.ID, "error", err)
			if report != nil {
				report(i+1, total)
			}
			continue
		}

		y := offsetY(i)
		name := fmt.Sprintf("qr-%d", record.ID)
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
		pdf.ImageOptions(name, imageX, y, imageSize, imageSize, false, opts, 0, "")

		pdf.SetXY(captionX, y)
		pdf.MultiCell(0, captionLine, tr(caption(record)), "", "L", false)

		if report != nil {
			report(i+1, total)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}
