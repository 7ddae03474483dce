package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pawan/claimlens/internal/forensics"
	"github.com/pawan/claimlens/internal/observability"
)

var (
	analyzeThreshold int
	analyzeVerbose   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file> [file...]",
	Short: "Analyze documents against a fresh archive",
	Long: `Run the dual-layer analysis over the given files in order, feeding
each result into the archive, and print one finding per file as JSON. Useful
for batch-checking a directory of claim documents offline.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().IntVar(&analyzeThreshold, "threshold", 0, "Hamming-distance fraud cutoff (bits)")
	analyzeCmd.Flags().BoolVarP(&analyzeVerbose, "verbose", "v", false, "Print formatted summaries instead of JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(_ *cobra.Command, args []string) error {
	engine := forensics.New(forensics.Config{Threshold: analyzeThreshold})
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	printer := observability.NewPrinter(os.Stdout)

	ctx := context.Background()
	for _, path := range args {
		finding := engine.AnalyzeAgainstArchive(ctx, path)
		if analyzeVerbose {
			printer.PrintFinding(finding)
			continue
		}
		if err := enc.Encode(finding); err != nil {
			return fmt.Errorf("failed to encode finding: %w", err)
		}
	}
	return nil
}
