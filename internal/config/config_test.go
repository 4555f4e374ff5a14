package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 240, cfg.Discovery.SearchTimeoutSecs)
	assert.Equal(t, 60, cfg.Discovery.KnowledgeTimeoutSecs)
	assert.Equal(t, "sonar-pro", cfg.Perplexity.Model)
	assert.Equal(t, "claude-sonnet-4-5-20250929", cfg.Anthropic.Model)
	assert.Equal(t, "https://api.company-information.service.gov.uk", cfg.CompaniesHouse.BaseURL)
	assert.Equal(t, 5, cfg.Campaign.WorkerConcurrency)
	assert.Equal(t, 3, cfg.Campaign.PersistRetries)
	assert.Equal(t, 20, cfg.Campaign.DefaultRadiusMiles)
	assert.Equal(t, 100, cfg.Campaign.DefaultMaxResults)
	assert.InDelta(t, 0, cfg.Validate.ScoreMin, 0.001)
	assert.InDelta(t, 100, cfg.Validate.ScoreMax, 0.001)
	assert.Equal(t, 3, cfg.Dedup.InwardCodeLen)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: sqlite
log:
  level: debug
  format: console
discovery:
  search_timeout_secs: 120
campaign:
  worker_concurrency: 2
validate:
  score_max: 99
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 120, cfg.Discovery.SearchTimeoutSecs)
	assert.Equal(t, 2, cfg.Campaign.WorkerConcurrency)
	assert.InDelta(t, 99, cfg.Validate.ScoreMax, 0.001)
}

func TestInitLoggerBadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "verbose", Format: "json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}
