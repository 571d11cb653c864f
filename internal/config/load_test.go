package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, ""))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "danki.db", cfg.Database.URL)
	assert.False(t, cfg.Database.Migrate)
}

func TestLoadFromFile(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, `
server:
  port: 9000
  log_level: debug
database:
  driver: postgres
  url: postgres://localhost:5432/danki
  migrate: true
scheduler:
  hard_interval_policy: fixed
  leech_threshold: 5
session:
  disable_jitter: true
`))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.True(t, cfg.Database.Migrate)
	assert.Equal(t, "fixed", cfg.Scheduler.HardIntervalPolicy)
	assert.Equal(t, 5, cfg.Scheduler.LeechThreshold)
	assert.True(t, cfg.Session.DisableJitter)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("DANKI_SERVER_PORT", "7000")
	t.Setenv("DANKI_DATABASE_URL", ":memory:")

	cfg, err := Load(writeConfigFile(t, `
server:
  port: 9000
`))
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, ":memory:", cfg.Database.URL)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad log level", "server:\n  log_level: loud\n"},
		{"bad driver", "database:\n  driver: oracle\n"},
		{"bad port", "server:\n  port: 99999\n"},
		{"bad policy", "scheduler:\n  hard_interval_policy: sometimes\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfigFile(t, tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
