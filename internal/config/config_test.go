package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://api.tavily.com", cfg.Tavily.BaseURL)
	assert.Equal(t, "advanced", cfg.Tavily.Depth)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
	assert.Equal(t, 1024, cfg.Anthropic.MaxTokens)
	assert.True(t, cfg.Fetch.Enabled)
	assert.Equal(t, 20, cfg.Fetch.TimeoutSecs)
	assert.Equal(t, 3, cfg.Fetch.MaxAttempts)
	assert.InDelta(t, 1.0, cfg.Fetch.PerHostRPS, 0.001)
	assert.Equal(t, 12, cfg.Pipeline.MaxResults)
	assert.Equal(t, 5, cfg.Pipeline.TopN)
	assert.Equal(t, 4, cfg.Pipeline.MaxConcurrent)
	assert.Equal(t, "EGP", cfg.Pipeline.Currency)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
tavily:
  key: tvly-test
pipeline:
  max_results: 6
  top_n: 3
fetch:
  enabled: false
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "tvly-test", cfg.Tavily.Key)
	assert.Equal(t, 6, cfg.Pipeline.MaxResults)
	assert.Equal(t, 3, cfg.Pipeline.TopN)
	assert.False(t, cfg.Fetch.Enabled)
	assert.Equal(t, "debug", cfg.Log.Level)

	// Defaults still apply for keys the file omits.
	assert.Equal(t, 20, cfg.Fetch.TimeoutSecs)
	assert.Equal(t, "EGP", cfg.Pipeline.Currency)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())

	assert.Error(t, InitLogger(LogConfig{Level: "not-a-level", Format: "json"}))
}
