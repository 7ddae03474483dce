// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/pawan/claimlens/internal/forensics"
)

// boxWidth is the default width for formatted output boxes
const boxWidth = 60

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintFinding outputs a human-readable summary of one archive analysis.
func (p *Printer) PrintFinding(finding forensics.FindingReport) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("File:       %s\n", finding.UploadedFile))
	sb.WriteString(fmt.Sprintf("Method:     %s\n", finding.Method))
	if finding.MatchedFile != nil {
		sb.WriteString(fmt.Sprintf("Matched:    %s\n", *finding.MatchedFile))
	}
	if finding.HammingDistance != nil {
		sb.WriteString(fmt.Sprintf("Distance:   %d bits\n", *finding.HammingDistance))
		sb.WriteString(fmt.Sprintf("Similarity: %.2f%%\n", finding.SimilarityPercent))
	}
	sb.WriteString(fmt.Sprintf("Risk:       %d/100\n", finding.FraudRiskScore))
	sb.WriteString(fmt.Sprintf("Verdict:    %s\n", finding.Classification))
	sb.WriteString(fmt.Sprintf("Fraud:      %v\n", finding.FraudDetected))
	sb.WriteString(fmt.Sprintf("Archive:    %d entries", finding.ArchiveSize))

	p.printBox("ANALYSIS RESULT", sb.String())
}

// PrintComparison outputs a human-readable summary of a pairwise comparison.
func (p *Printer) PrintComparison(cmp forensics.ComparisonReport) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Hash 1:     %s\n", cmp.Hash1))
	sb.WriteString(fmt.Sprintf("Hash 2:     %s\n", cmp.Hash2))
	sb.WriteString(fmt.Sprintf("Distance:   %d bits\n", cmp.HammingDistance))
	sb.WriteString(fmt.Sprintf("Similarity: %.2f%%\n", cmp.SimilarityPercent))
	sb.WriteString(fmt.Sprintf("Risk:       %d/100\n", cmp.FraudRiskScore))
	sb.WriteString(fmt.Sprintf("Verdict:    %s\n", cmp.Classification))
	sb.WriteString(fmt.Sprintf("Fraud:      %v", cmp.FraudDetected))

	p.printBox("COMPARISON RESULT", sb.String())
}
