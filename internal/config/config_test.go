package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"safety-analytics-go/internal/types"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"PORT", "ENVIRONMENT", "LOG_LEVEL", "BASELINE_HOURS", "PREFS_DB_PATH", "MAX_UPLOAD_MB", "FETCH_TIMEOUT_SEC", "DATA_DIR"} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultBaselineHours, cfg.BaselineHours)
	assert.Equal(t, DefaultPrefsDBPath, cfg.PrefsDBPath)
	assert.Equal(t, int64(32<<20), cfg.MaxUploadBytes())
	assert.Equal(t, DefaultFetchTimeoutSec, cfg.FetchTimeoutSec)
}

func TestYAMLAndEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
port: "9090"
baseline_hours: 480000
log_level: debug
feeds:
  - name: dfw7-injuries
    kind: injuries
    url: https://exports.example.com/dfw7/injuries.csv
    schedule: "0 */6 * * *"
`)
	t.Setenv("PORT", "7070")
	t.Setenv("MAX_UPLOAD_MB", "8")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, 480000.0, cfg.BaselineHours)
	assert.Equal(t, 8, cfg.MaxUploadMB)
	assert.Equal(t, "debug", cfg.LogLevel)
	require.Len(t, cfg.Feeds, 1)
	assert.Equal(t, types.KindInjury, cfg.Feeds[0].Kind)
}

func TestLoadUsesConfigPath(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_PATH", writeConfig(t, "port: \"8181\"\n"))
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8181", cfg.Port)
}

func TestInvalid(t *testing.T) {
	cases := map[string]string{
		"bad yaml":       "port: [",
		"bad port":       "port: http",
		"negative hours": "baseline_hours: -5",
		"huge upload":    "max_upload_mb: 5000",
		"bad level":      "log_level: loud",
		"feed kind":      "feeds:\n  - {name: a, kind: audits, url: 'http://x', schedule: '@daily'}",
		"feed schedule":  "feeds:\n  - {name: a, kind: injuries, url: 'http://x', schedule: 'often'}",
		"feed url":       "feeds:\n  - {name: a, kind: injuries, url: 'ftp://x', schedule: '@daily'}",
		"feed dup":       "feeds:\n  - {name: a, kind: injuries, url: 'http://x', schedule: '@daily'}\n  - {name: a, kind: injuries, url: 'http://y', schedule: '@daily'}",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			_, err := LoadFile(writeConfig(t, body))
			assert.Error(t, err)
		})
	}

	t.Run("bad env number", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("BASELINE_HOURS", "lots")
		_, err := LoadFile(writeConfig(t, ""))
		assert.ErrorContains(t, err, "BASELINE_HOURS")
	})
}
