package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pawan/claimlens/internal/forensics"
)

func TestPrintFinding(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	matched := "original.png"
	distance := 4
	p.PrintFinding(forensics.FindingReport{
		UploadedFile:      "copy.png",
		MatchedFile:       &matched,
		HammingDistance:   &distance,
		SimilarityPercent: 93.75,
		FraudRiskScore:    75,
		Classification:    "High Risk",
		FraudDetected:     true,
		ArchiveSize:       12,
		Method:            forensics.MethodRasterOnly,
	})

	out := buf.String()
	assert.Contains(t, out, "ANALYSIS RESULT")
	assert.Contains(t, out, "copy.png")
	assert.Contains(t, out, "original.png")
	assert.Contains(t, out, "4 bits")
	assert.Contains(t, out, "93.75%")
	assert.Contains(t, out, "12 entries")
}

func TestPrintFindingWithoutMatch(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintFinding(forensics.FindingReport{
		UploadedFile:   "first.png",
		FraudRiskScore: 5,
		Classification: "First Upload — No Reference",
		ArchiveSize:    1,
		Method:         forensics.MethodRasterOnly,
	})

	out := buf.String()
	assert.Contains(t, out, "first.png")
	assert.NotContains(t, out, "Matched:")
	assert.NotContains(t, out, "Distance:")
}

func TestPrintComparison(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintComparison(forensics.ComparisonReport{
		Hash1:             "a1b2c3d4e5f60718",
		Hash2:             "a1b2c3d4e5f60700",
		HammingDistance:   2,
		SimilarityPercent: 96.88,
		FraudRiskScore:    95,
		Classification:    "Critical",
		FraudDetected:     true,
	})

	out := buf.String()
	assert.Contains(t, out, "COMPARISON RESULT")
	assert.Contains(t, out, "a1b2c3d4e5f60718")
	assert.Contains(t, out, "2 bits")
}

func TestBoxTruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	matched := strings.Repeat("x", 120)
	p.PrintFinding(forensics.FindingReport{
		UploadedFile: "f.png",
		MatchedFile:  &matched,
	})

	for _, line := range strings.Split(buf.String(), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), boxWidth)
	}
}
