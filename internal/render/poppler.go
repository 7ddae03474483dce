package render

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
)

// PopplerBackend shells out to poppler's pdftoppm as the fallback rasterizer.
// It requires the poppler-utils system package; absence is reported as an
// ordinary render failure so the pipeline can move on.
type PopplerBackend struct {
	binary string
	dpi    int
}

// NewPoppler returns the pdftoppm backend at the default render resolution.
func NewPoppler() *PopplerBackend {
	return &PopplerBackend{binary: "pdftoppm", dpi: renderDPI}
}

// Name implements Backend.
func (b *PopplerBackend) Name() string { return MethodFallback }

// Supports implements Backend.
func (b *PopplerBackend) Supports(ext string) bool { return ext == ".pdf" }

// Render converts the first page to a grayscale PNG in a temp directory and
// decodes it.
func (b *PopplerBackend) Render(ctx context.Context, path string) (image.Image, error) {
	if _, err := exec.LookPath(b.binary); err != nil {
		return nil, fmt.Errorf("%s not available: %w", b.binary, err)
	}

	dir, err := os.MkdirTemp("", "claimlens-render-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	outPrefix := filepath.Join(dir, "page")
	cmd := exec.CommandContext(ctx, b.binary,
		"-png", "-gray",
		"-r", fmt.Sprintf("%d", b.dpi),
		"-f", "1", "-l", "1",
		"-singlefile",
		path, outPrefix,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w: %s", err, out)
	}

	f, err := os.Open(outPrefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("open rendered page: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode rendered page: %w", err)
	}
	return img, nil
}
