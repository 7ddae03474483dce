package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubBackend is a scriptable backend for pipeline ordering tests.
type stubBackend struct {
	name     string
	supports bool
	img      image.Image
	err      error
	calls    int
}

func (s *stubBackend) Name() string             { return s.name }
func (s *stubBackend) Supports(ext string) bool { return s.supports }
func (s *stubBackend) Render(_ context.Context, _ string) (image.Image, error) {
	s.calls++
	return s.img, s.err
}

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 128, A: 255})
		}
	}
	return img
}

func writeTestPNG(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, testImage()))
	return path
}

func TestPipeline_FirstSuccessWins(t *testing.T) {
	first := &stubBackend{name: "first", supports: true, img: testImage()}
	second := &stubBackend{name: "second", supports: true, img: testImage()}
	p := NewPipeline(first, second)

	raster, method, ok := p.Render(context.Background(), "doc.pdf")

	require.True(t, ok)
	assert.NotNil(t, raster)
	assert.Equal(t, "first", method)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls, "pipeline must stop at the first success")
}

func TestPipeline_FallsBackOnError(t *testing.T) {
	broken := &stubBackend{name: "broken", supports: true, err: fmt.Errorf("backend crashed")}
	working := &stubBackend{name: "working", supports: true, img: testImage()}
	p := NewPipeline(broken, working)

	raster, method, ok := p.Render(context.Background(), "doc.pdf")

	require.True(t, ok)
	assert.NotNil(t, raster)
	assert.Equal(t, "working", method)
	assert.Equal(t, 1, broken.calls)
}

func TestPipeline_SkipsUnsupportedExtensions(t *testing.T) {
	pdfOnly := &stubBackend{name: "pdf-only", supports: false, img: testImage()}
	generic := &stubBackend{name: "generic", supports: true, img: testImage()}
	p := NewPipeline(pdfOnly, generic)

	_, method, ok := p.Render(context.Background(), "scan.png")

	require.True(t, ok)
	assert.Equal(t, "generic", method)
	assert.Equal(t, 0, pdfOnly.calls)
}

func TestPipeline_AllBackendsFail(t *testing.T) {
	a := &stubBackend{name: "a", supports: true, err: fmt.Errorf("nope")}
	b := &stubBackend{name: "b", supports: true, err: fmt.Errorf("also nope")}
	p := NewPipeline(a, b)

	raster, method, ok := p.Render(context.Background(), "doc.pdf")

	assert.False(t, ok)
	assert.Nil(t, raster)
	assert.Empty(t, method)
}

func TestPipeline_OutputIsGrayscale(t *testing.T) {
	p := NewPipeline(&stubBackend{name: "stub", supports: true, img: testImage()})

	raster, _, ok := p.Render(context.Background(), "doc.pdf")

	require.True(t, ok)
	assert.IsType(t, &image.Gray{}, raster)
	assert.Equal(t, 8, raster.Bounds().Dx())
	assert.Equal(t, 8, raster.Bounds().Dy())
}

func TestBitmapBackend_DecodesPNG(t *testing.T) {
	path := writeTestPNG(t, "scan.png")
	b := NewBitmap()

	img, err := b.Render(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
}

func TestBitmapBackend_UnknownExtensionSniffsContent(t *testing.T) {
	// A PNG payload behind a bogus extension still decodes: the registry
	// sniffs magic numbers, not filenames.
	path := writeTestPNG(t, "claim.dat")
	p := NewPipeline(NewBitmap())

	raster, method, ok := p.Render(context.Background(), path)

	require.True(t, ok)
	assert.NotNil(t, raster)
	assert.Equal(t, MethodRasterOnly, method)
}

func TestBitmapBackend_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image at all"), 0o644))

	_, err := NewBitmap().Render(context.Background(), path)

	assert.Error(t, err)
}

func TestDefault_BackendOrder(t *testing.T) {
	p := Default()

	require.Len(t, p.backends, 3)
	assert.Equal(t, MethodPrimary, p.backends[0].Name())
	assert.Equal(t, MethodFallback, p.backends[1].Name())
	assert.Equal(t, MethodRasterOnly, p.backends[2].Name())
}
