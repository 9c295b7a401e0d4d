package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tjwilli6/Fitness/config"
	"github.com/tjwilli6/Fitness/fitness"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "fitlog.yaml"))
	require.NoError(t, err)

	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, config.BackendFile, cfg.Backend)
	assert.Equal(t, fitness.DefaultLogNames(), cfg.LogNames())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	// GIVEN: A file that sets a few fields
	path := writeFile(t, "fitlog.yaml", `
data_dir: /var/lib/fitlog
backend: sqlite
height_inches: 70
bootstrap_start: "2023-01-01"
logs:
  weight: scale
server:
  sync_interval: 30m
`)

	// WHEN
	cfg, err := config.Load(path)
	require.NoError(t, err)

	// THEN: Set fields win, the rest keep their defaults
	assert.Equal(t, config.BackendSQLite, cfg.Backend)
	assert.Equal(t, 70.0, cfg.HeightInches)
	assert.Equal(t, filepath.Join("/var/lib/fitlog", "fitness.db"), cfg.SQLiteFile())
	assert.Equal(t, "scale", cfg.LogNames().Weight)
	assert.Equal(t, fitness.DefaultLogNames().Calories, cfg.LogNames().Calories)
	assert.Equal(t, ":8080", cfg.Server.Addr)

	start, err := cfg.BootstrapDate()
	require.NoError(t, err)
	assert.Equal(t, "2023-01-01", start.String())

	interval, err := cfg.SyncInterval()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, interval)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown backend", func(c *config.Config) { c.Backend = "postgres" }},
		{"negative height", func(c *config.Config) { c.HeightInches = -1 }},
		{"bad bootstrap date", func(c *config.Config) { c.BootstrapStart = "01/01/2023" }},
		{"bad timeout", func(c *config.Config) { c.Providers.Timeout = "soon" }},
		{"bad interval", func(c *config.Config) { c.Server.SyncInterval = "hourly" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, config.Default().Validate())
}

func TestSyncInterval_ZeroDisables(t *testing.T) {
	cfg := config.Default()
	cfg.Server.SyncInterval = "0"

	d, err := cfg.SyncInterval()
	require.NoError(t, err)
	assert.Zero(t, d)
}

// =============================================================================
// CREDENTIALS
// =============================================================================

func TestFileCredentials_ReadsDotenv(t *testing.T) {
	path := writeFile(t, "credentials.txt", "MFP_USER=tj\nMFP_TOKEN=abc123\nSTRAVA_TOKEN=xyz\n")

	creds, err := config.FileCredentials{Path: path}.Load()
	require.NoError(t, err)
	assert.Equal(t, fitness.Credentials{CalorieUser: "tj", CalorieToken: "abc123", ActivityToken: "xyz"}, creds)
}

func TestFileCredentials_EnvironmentWins(t *testing.T) {
	path := writeFile(t, "credentials.txt", "MFP_USER=tj\nMFP_TOKEN=abc123\n")
	t.Setenv(config.KeyCalorieToken, "from-env")

	creds, err := config.FileCredentials{Path: path}.Load()
	require.NoError(t, err)
	assert.Equal(t, "tj", creds.CalorieUser)
	assert.Equal(t, "from-env", creds.CalorieToken)
}

func TestFileCredentials_MissingFileIsEmpty(t *testing.T) {
	creds, err := config.FileCredentials{Path: filepath.Join(t.TempDir(), "none.txt")}.Load()
	require.NoError(t, err)
	assert.Empty(t, creds.CalorieUser)
}
