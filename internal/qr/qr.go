// Package qr rasterizes text payloads into QR code PNG images.
//
// Rasters are transient: each one is generated for a single display,
// save or embed action and never persisted.
package qr

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// Default pixel sizes for on-screen cards and print embedding.
const (
	DefaultDisplaySize = 150
	DefaultPrintSize   = 100
)

// Renderer produces PNG rasters at configured sizes.
type Renderer struct {
	displaySize int
	printSize   int
}

// NewRenderer returns a Renderer with the given pixel sizes. Zero or
// negative sizes fall back to the defaults.
func NewRenderer(displaySize, printSize int) *Renderer {
	if displaySize <= 0 {
		displaySize = DefaultDisplaySize
	}
	if printSize <= 0 {
		printSize = DefaultPrintSize
	}
	return &Renderer{displaySize: displaySize, printSize: printSize}
}

// Render encodes content into a square PNG of size pixels, using low
// error correction like the rest of the system expects.
func (r *Renderer) Render(content string, size int) ([]byte, error) {
	if content == "" {
		return nil, fmt.Errorf("cannot render empty content")
	}
	png, err := qrcode.Encode(content, qrcode.Low, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR: %w", err)
	}
	return png, nil
}

// Display renders content at the configured on-screen size.
func (r *Renderer) Display(content string) ([]byte, error) {
	return r.Render(content, r.displaySize)
}

// Print renders content at the configured print size.
func (r *Renderer) Print(content string) ([]byte, error) {
	return r.Render(content, r.printSize)
}

// DisplaySize reports the configured on-screen raster size in pixels.
func (r *Renderer) DisplaySize() int { return r.displaySize }
