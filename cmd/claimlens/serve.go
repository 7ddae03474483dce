package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/pawan/claimlens/internal/audit"
	"github.com/pawan/claimlens/internal/claims"
	"github.com/pawan/claimlens/internal/config"
	"github.com/pawan/claimlens/internal/forensics"
	"github.com/pawan/claimlens/internal/server"
)

var (
	serveConfigPath string
	servePort       int
	serveUploadDir  string
	serveThreshold  int
	serveBaselines  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server exposing the forensics endpoints and, when a
database is configured, the claims analytics endpoints. Without DATABASE_URL
the server runs in forensics-only mode and the analytics routes return 503.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on")
	serveCmd.Flags().StringVar(&serveUploadDir, "upload-dir", "", "Directory for stored uploads")
	serveCmd.Flags().IntVar(&serveThreshold, "threshold", 0, "Hamming-distance fraud cutoff (bits)")
	serveCmd.Flags().StringVar(&serveBaselines, "baselines", "", "Path to procedure baseline overrides JSON")
	rootCmd.AddCommand(serveCmd)
}

func loadConfig(path string) (config.Config, error) {
	cfg := config.Config{}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = *loaded
	}
	cfg.FromEnv()
	return cfg, nil
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig(serveConfigPath)
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	if serveUploadDir != "" {
		cfg.UploadDir = serveUploadDir
	}
	if serveThreshold != 0 {
		cfg.FraudThreshold = serveThreshold
	}
	if serveBaselines != "" {
		cfg.BaselinesPath = serveBaselines
	}
	cfg = cfg.MergeWithDefaults(config.Defaults())
	if err := cfg.Validate(); err != nil {
		return err
	}

	baselines := claims.DefaultBaselines()
	if cfg.BaselinesPath != "" {
		if baselines, err = claims.LoadBaselineOverrides(cfg.BaselinesPath); err != nil {
			return err
		}
	}

	engine := forensics.New(forensics.Config{Threshold: cfg.FraudThreshold})

	ctx := context.Background()

	var store server.ClaimStore
	if cfg.DatabaseURL != "" {
		claimStore, err := claims.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer claimStore.Close()
		if err := claimStore.EnsureSchema(ctx); err != nil {
			return err
		}
		store = claimStore
	} else {
		log.Println("[SERVE] DATABASE_URL not set, running in forensics-only mode")
	}

	var primary audit.Summarizer
	if cfg.GeminiAPIKey != "" {
		if primary, err = audit.NewGeminiSummarizer(ctx, cfg.GeminiAPIKey, cfg.GeminiModel); err != nil {
			return err
		}
	} else {
		log.Println("[SERVE] GEMINI_API_KEY not set, audit narratives use the template")
	}
	generator := audit.NewGenerator(primary)
	defer generator.Close()

	srv, err := server.New(server.Config{
		Port:       cfg.Port,
		UploadDir:  cfg.UploadDir,
		Analyzer:   engine,
		Store:      store,
		Summarizer: generator,
		Baselines:  baselines,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
