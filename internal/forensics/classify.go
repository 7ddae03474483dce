package forensics

import (
	"math"

	"github.com/pawan/claimlens/internal/phash"
)

// ExactDuplicateRisk is the fixed risk score for an exact byte duplicate.
// It is assigned independently of the fingerprint layer's verdict.
const ExactDuplicateRisk = 95

// ExactDuplicateLabel is the classification for a digest-archive hit.
const ExactDuplicateLabel = "Critical — Exact Byte Duplicate"

// FirstUploadLabel is the classification when the fingerprint archive was
// empty before this submission.
const FirstUploadLabel = "First Upload — No Reference"

// ClassifyDistance maps a Hamming distance to a risk score and label.
// Bands are closed and non-overlapping; the first match wins.
func ClassifyDistance(distance int) (riskScore int, classification string) {
	switch {
	case distance <= 3:
		return 95, "Critical Similarity — Likely Duplicate"
	case distance <= 8:
		return 75, "High Similarity — Possible Edited Reuse"
	case distance <= 15:
		return 40, "Moderate Similarity — Inconclusive"
	default:
		return 5, "Unique Document"
	}
}

// Similarity converts a Hamming distance into a percentage, rounded to two
// decimal places. distance 0 is 100%, distance 64 is 0%.
func Similarity(distance int) float64 {
	pct := (float64(phash.Bits-distance) / float64(phash.Bits)) * 100
	return math.Round(pct*100) / 100
}
