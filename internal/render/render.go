// Package render converts claim attachments (PDFs and bitmap images) into a
// single canonical grayscale raster of the first page.
//
// Backends are tried in priority order and the first one that produces an
// image wins. Backend failures are logged and swallowed: the pipeline's
// contract is "raster or no raster", never an error.
package render

import (
	"context"
	"image"
	"image/draw"
	"log"
	"path/filepath"
	"strings"
	"time"
)

// Method names reported for the backend that produced the raster.
const (
	MethodPrimary    = "primary-renderer"
	MethodFallback   = "fallback-renderer"
	MethodRasterOnly = "raster-only"
)

// DefaultTimeout bounds the total rendering budget per document, so a
// pathological multi-thousand-page input cannot stall a caller indefinitely.
const DefaultTimeout = 30 * time.Second

// Backend renders the first page of a document into an image.
type Backend interface {
	// Name identifies the backend in findings and logs.
	Name() string
	// Supports reports whether the backend should be attempted for the
	// given lowercase file extension (including the dot).
	Supports(ext string) bool
	// Render produces the first-page image, or an error describing why it
	// could not. Errors never escape the pipeline.
	Render(ctx context.Context, path string) (image.Image, error)
}

// Pipeline is an ordered list of rendering backends.
type Pipeline struct {
	backends []Backend
	timeout  time.Duration
}

// NewPipeline builds a pipeline from an explicit backend order.
func NewPipeline(backends ...Backend) *Pipeline {
	return &Pipeline{backends: backends, timeout: DefaultTimeout}
}

// Default returns the production pipeline: MuPDF first, then poppler's
// pdftoppm, then generic bitmap decoding as the last resort.
func Default() *Pipeline {
	return NewPipeline(NewFitz(), NewPoppler(), NewBitmap())
}

// Render tries each backend in order and returns the first grayscale raster
// produced, together with the name of the backend that produced it. ok is
// false when no backend could render the document.
func (p *Pipeline) Render(ctx context.Context, path string) (raster *image.Gray, method string, ok bool) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	ext := strings.ToLower(filepath.Ext(path))
	for _, b := range p.backends {
		if !b.Supports(ext) {
			continue
		}
		img, err := b.Render(ctx, path)
		if err != nil {
			log.Printf("[RENDER] %s backend failed for %s: %v", b.Name(), filepath.Base(path), err)
			continue
		}
		if img == nil {
			continue
		}
		return toGray(img), b.Name(), true
	}
	return nil, "", false
}

// toGray converts any decoded image into the canonical grayscale colorspace.
func toGray(src image.Image) *image.Gray {
	if g, already := src.(*image.Gray); already {
		return g
	}
	bounds := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Src)
	return dst
}
