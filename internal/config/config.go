// Package config provides configuration loading and validation for the CLI
// and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Config is the runtime configuration. All fields are optional; missing
// values use defaults or must be provided via CLI flags.
type Config struct {
	// Server
	Port      int    `json:"port,omitempty" validate:"omitempty,gte=1,lte=65535"`
	UploadDir string `json:"upload_dir,omitempty"`

	// Forensics
	FraudThreshold int `json:"fraud_threshold,omitempty" validate:"gte=0,lte=64"` // Hamming bits

	// Dataset
	DatabaseURL   string `json:"database_url,omitempty"`
	DatasetSize   int    `json:"dataset_size,omitempty" validate:"gte=0"`
	Seed          int64  `json:"seed,omitempty"`
	BaselinesPath string `json:"baselines_path,omitempty"`

	// Integrations
	GeminiAPIKey string `json:"gemini_api_key,omitempty"`
	GeminiModel  string `json:"gemini_model,omitempty"`

	Verbose bool `json:"verbose,omitempty"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Port:           8000,
		UploadDir:      "uploads",
		FraudThreshold: 10,
		DatasetSize:    10000,
		Seed:           42,
	}
}

var validate = validator.New()

// Load reads configuration from a JSON file.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return &cfg, nil
}

// Validate checks field ranges and referenced paths.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			e := errs[0]
			return fmt.Errorf("config error: field %s failed %s validation", e.Field(), e.Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}
	if c.BaselinesPath != "" {
		if _, err := os.Stat(c.BaselinesPath); os.IsNotExist(err) {
			return fmt.Errorf("config error: baselines file not found: %s", c.BaselinesPath)
		}
	}
	return nil
}

// FromEnv overlays environment variables onto the config. Environment wins
// over file values; call after Load and before Validate.
func (c *Config) FromEnv() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.GeminiAPIKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		c.GeminiModel = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		c.UploadDir = v
	}
	if v := os.Getenv("FRAUD_THRESHOLD"); v != "" {
		if bits, err := strconv.Atoi(v); err == nil {
			c.FraudThreshold = bits
		}
	}
}

// MergeWithDefaults fills zero-valued fields from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.UploadDir == "" {
		result.UploadDir = defaults.UploadDir
	}
	if result.FraudThreshold == 0 {
		result.FraudThreshold = defaults.FraudThreshold
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.DatasetSize == 0 {
		result.DatasetSize = defaults.DatasetSize
	}
	if result.Seed == 0 {
		result.Seed = defaults.Seed
	}
	if result.BaselinesPath == "" {
		result.BaselinesPath = defaults.BaselinesPath
	}
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.GeminiModel == "" {
		result.GeminiModel = defaults.GeminiModel
	}
	// Bool fields: cannot distinguish unset from false, so we don't merge.

	return result
}
