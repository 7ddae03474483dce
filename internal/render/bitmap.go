package render

import (
	"context"
	"fmt"
	"image"
	"os"

	// Register decoders alongside the stdlib PNG one. Unknown extensions get
	// a best-effort sniff through the same registry.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// BitmapBackend decodes native bitmap formats directly. It is also the last
// resort for unrecognized extensions: image.Decode sniffs the registered
// magic numbers regardless of the filename.
type BitmapBackend struct{}

// NewBitmap returns the generic bitmap decoder backend.
func NewBitmap() *BitmapBackend { return &BitmapBackend{} }

// Name implements Backend.
func (b *BitmapBackend) Name() string { return MethodRasterOnly }

// Supports implements Backend. Always true: best effort on anything the
// earlier backends declined or failed.
func (b *BitmapBackend) Supports(string) bool { return true }

// Render decodes the file through the image registry.
func (b *BitmapBackend) Render(ctx context.Context, path string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}
