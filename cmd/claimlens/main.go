// Package main provides the entry point for the ClaimLens document-forensics service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "claimlens",
	Short: "PM-JAY claims document forensics",
	Long:  "ClaimLens detects resubmitted and visually recycled claim documents with a dual-layer SHA-256 + perceptual-hash engine, and serves fraud analytics over a synthetic PM-JAY claims dataset.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
