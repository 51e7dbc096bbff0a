package qr

import (
	"bytes"
	"image/png"
	"testing"
)

func TestRender(t *testing.T) {
	r := NewRenderer(0, 0)

	data, err := r.Render("PROCHAP\nCódigo: A1\nDescripción: Box\nPersonalización: ", 150)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Render did not produce a decodable PNG: %v", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != 150 || bounds.Dy() != 150 {
		t.Errorf("raster size = %dx%d, want 150x150", bounds.Dx(), bounds.Dy())
	}
}

func TestRenderEmptyContent(t *testing.T) {
	r := NewRenderer(150, 100)
	if _, err := r.Render("", 150); err == nil {
		t.Error("expected error for empty content")
	}
}

func TestRendererDefaults(t *testing.T) {
	r := NewRenderer(0, -5)
	if r.displaySize != DefaultDisplaySize {
		t.Errorf("displaySize = %d, want %d", r.displaySize, DefaultDisplaySize)
	}
	if r.printSize != DefaultPrintSize {
		t.Errorf("printSize = %d, want %d", r.printSize, DefaultPrintSize)
	}
}
