package render

import (
	"context"
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// renderDPI is 2x the 72 DPI PDF user space, for hash fidelity.
const renderDPI = 144

// FitzBackend renders PDF first pages through MuPDF. This is the primary,
// high-fidelity backend. MuPDF honors the page's declared /Rotate entry when
// rendering; content-based deskewing of arbitrarily rotated scans is a known
// limitation and is not attempted.
type FitzBackend struct {
	dpi float64
}

// NewFitz returns the MuPDF backend at the default render resolution.
func NewFitz() *FitzBackend {
	return &FitzBackend{dpi: renderDPI}
}

// Name implements Backend.
func (b *FitzBackend) Name() string { return MethodPrimary }

// Supports implements Backend. MuPDF handles paginated/vector formats.
func (b *FitzBackend) Supports(ext string) bool {
	switch ext {
	case ".pdf", ".xps", ".epub":
		return true
	}
	return false
}

// Render rasterizes the first page.
func (b *FitzBackend) Render(ctx context.Context, path string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, fmt.Errorf("document has no pages")
	}

	img, err := doc.ImageDPI(0, b.dpi)
	if err != nil {
		return nil, fmt.Errorf("rasterize first page: %w", err)
	}
	return img, nil
}
