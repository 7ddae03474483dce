package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/pawan/claimlens/internal/claims"
	"github.com/pawan/claimlens/internal/config"
)

var (
	seedConfigPath string
	seedCount      int
	seedValue      int64
	seedBaselines  string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate and load the synthetic claims dataset",
	Long: `Synthesize a deterministic PM-JAY claims dataset and bulk-load it into
PostgreSQL, replacing any previous dataset. The same seed always produces the
same records.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedConfigPath, "config", "", "Path to config.json file")
	seedCmd.Flags().IntVar(&seedCount, "count", 0, "Number of claims to generate")
	seedCmd.Flags().Int64Var(&seedValue, "seed", 0, "Random seed for the generator")
	seedCmd.Flags().StringVar(&seedBaselines, "baselines", "", "Path to procedure baseline overrides JSON")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig(seedConfigPath)
	if err != nil {
		return err
	}
	if seedCount != 0 {
		cfg.DatasetSize = seedCount
	}
	if seedValue != 0 {
		cfg.Seed = seedValue
	}
	if seedBaselines != "" {
		cfg.BaselinesPath = seedBaselines
	}
	cfg = cfg.MergeWithDefaults(config.Defaults())
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	baselines := claims.DefaultBaselines()
	if cfg.BaselinesPath != "" {
		if baselines, err = claims.LoadBaselineOverrides(cfg.BaselinesPath); err != nil {
			return err
		}
	}

	ctx := context.Background()
	store, err := claims.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	log.Printf("[SEED] Generating %d claims with seed %d", cfg.DatasetSize, cfg.Seed)
	records := claims.Generate(claims.GenerateConfig{
		Count:     cfg.DatasetSize,
		Seed:      cfg.Seed,
		Baselines: baselines,
	})

	copied, err := store.ReplaceAll(ctx, records)
	if err != nil {
		return err
	}
	log.Printf("[SEED] Loaded %d claims", copied)
	return nil
}
