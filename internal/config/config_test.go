package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Validation.StrictMode)
	assert.Equal(t, 10*time.Minute, cfg.Validation.MaxFutureDrift())
	assert.True(t, cfg.Validation.LogFilteredEvents)
	assert.Equal(t, 10, cfg.Output.MaxTerminalEvents)
	assert.Equal(t, 7, cfg.Output.DefaultRangeDays)
	assert.True(t, cfg.Collectors.FileMetadata)
	assert.False(t, cfg.Collectors.Clipboard)
	assert.NoError(t, cfg.Validate())
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, "config.toml", `
[validation]
strict_mode = true
max_future_drift_minutes = 30

[output]
max_terminal_events = 25

[collectors]
browser = false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Validation.StrictMode)
	assert.Equal(t, 30, cfg.Validation.MaxFutureDriftMinutes)
	assert.Equal(t, 25, cfg.Output.MaxTerminalEvents)
	assert.False(t, cfg.Collectors.Browser)
	// Unset sections keep defaults.
	assert.Equal(t, 7, cfg.Output.DefaultRangeDays)
	assert.True(t, cfg.Collectors.Prefetch)
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
validation:
  strict_mode: true
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Validation.StrictMode)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{"output": {"default_range_days": 14, "max_terminal_events": 10}}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 14, cfg.Output.DefaultRangeDays)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Output, cfg.Output)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RETRACE_LOG_LEVEL", "debug")
	t.Setenv("RETRACE_RULES_PATH", "/etc/retrace/rules.json")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/etc/retrace/rules.json", cfg.Rules.Path)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Validation.MaxFutureDriftMinutes = -1
	cfg.Logging.Level = "loud"
	cfg.Logging.Output = "file"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_future_drift_minutes")
	assert.Contains(t, err.Error(), "unknown level")
	assert.Contains(t, err.Error(), "file_path required")
}
