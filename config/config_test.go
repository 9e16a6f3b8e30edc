package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/delaneyj/fiberparty/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fiberparty.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, 16*time.Millisecond, cfg.FrameBudget)
	assert.Equal(t, time.Millisecond, cfg.YieldThreshold)
	assert.False(t, cfg.HookCheck)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "todos.db", cfg.DBPath)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
frame_budget: 8ms
hook_check: true
log_level: debug
db_path: /tmp/x.db
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8*time.Millisecond, cfg.FrameBudget)
	assert.Equal(t, time.Millisecond, cfg.YieldThreshold)
	assert.True(t, cfg.HookCheck)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, 1000, cfg.MaxFlush)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := config.Load(writeConfig(t, "frame_budgt: 8ms\n"))
	assert.ErrorContains(t, err, "failed to parse YAML")
}

func TestLoadValidates(t *testing.T) {
	_, err := config.Load(writeConfig(t, "frame_budget: 1ms\nyield_threshold: 2ms\nlog_level: loud\n"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "yield_threshold must be below frame_budget")
	assert.ErrorContains(t, err, "loud")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLogger(t *testing.T) {
	cfg := config.Default()
	cfg.LogFile = filepath.Join(t.TempDir(), "log.json")
	logger, err := cfg.Logger()
	require.NoError(t, err)
	logger.Info("hello")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(cfg.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)

	cfg.LogLevel = "nope"
	_, err = cfg.Logger()
	assert.Error(t, err)
	assert.Len(t, config.Default().RootOptions(logger), 4)
}
