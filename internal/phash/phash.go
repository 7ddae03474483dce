// Package phash derives fixed 64-bit perceptual fingerprints from document
// rasters and compares them by Hamming distance.
package phash

import (
	"fmt"
	"image"
	"math/bits"

	"github.com/corona10/goimagehash"
	xdraw "golang.org/x/image/draw"
)

// Bits is the fingerprint width. Hamming distances range from 0 to Bits.
const Bits = 64

// normalizedSize is the square edge every raster is resized to before
// hashing, so resolution and aspect ratio do not bias the fingerprint.
const normalizedSize = 256

// Fingerprint is a 64-bit DCT perceptual hash. Visually similar rasters
// produce fingerprints with a low Hamming distance.
type Fingerprint uint64

// FromImage computes the fingerprint of a canonical raster.
func FromImage(img image.Image) (Fingerprint, error) {
	if img == nil {
		return 0, fmt.Errorf("nil image")
	}
	hash, err := goimagehash.PerceptionHash(normalize(img))
	if err != nil {
		return 0, fmt.Errorf("perceptual hash failed: %w", err)
	}
	return Fingerprint(hash.GetHash()), nil
}

// Distance returns the number of differing bit positions between two
// fingerprints. It is symmetric and zero for identical fingerprints.
func (f Fingerprint) Distance(other Fingerprint) int {
	return bits.OnesCount64(uint64(f ^ other))
}

// String renders the fingerprint as 16 hex digits.
func (f Fingerprint) String() string {
	return fmt.Sprintf("%016x", uint64(f))
}

// normalize resizes the raster to a fixed grayscale square.
func normalize(src image.Image) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, normalizedSize, normalizedSize))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}
