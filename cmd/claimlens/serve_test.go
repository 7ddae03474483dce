package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawan/claimlens/internal/config"
)

func TestLoadConfigFileWithEnvOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"port": 9000, "fraud_threshold": 8}`), 0o644))
	t.Setenv("FRAUD_THRESHOLD", "12")

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port, "file value survives when env is silent")
	assert.Equal(t, 12, cfg.FraudThreshold, "env wins over file")
}

func TestLoadConfigWithoutFile(t *testing.T) {
	t.Setenv("PORT", "9100")

	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Port)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestMergedDefaultsValidate(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	cfg = cfg.MergeWithDefaults(config.Defaults())
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 10, cfg.FraudThreshold)
}
