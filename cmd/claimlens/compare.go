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
	compareThreshold int
	compareVerbose   bool
)

var compareCmd = &cobra.Command{
	Use:   "compare <file1> <file2>",
	Short: "Compare two documents directly",
	Long:  `Fingerprint both documents and print their Hamming distance, similarity and risk classification as JSON. The archive is not consulted.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runCompare,
}

func init() {
	compareCmd.Flags().IntVar(&compareThreshold, "threshold", 0, "Hamming-distance fraud cutoff (bits)")
	compareCmd.Flags().BoolVarP(&compareVerbose, "verbose", "v", false, "Print a formatted summary instead of JSON")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(_ *cobra.Command, args []string) error {
	engine := forensics.New(forensics.Config{Threshold: compareThreshold})

	comparison, err := engine.AnalyzeFilePair(context.Background(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("comparison failed: %w", err)
	}

	if compareVerbose {
		observability.NewPrinter(os.Stdout).PrintComparison(comparison)
		return nil
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(comparison)
}
