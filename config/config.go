// Package config loads the tracker configuration and credentials.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/tjwilli6/Fitness/fitness"
	"github.com/tjwilli6/Fitness/generic"
	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config is the YAML configuration file.
type Config struct {
	// DataDir holds the flat-file logs (and the SQLite file by default).
	DataDir string `yaml:"data_dir"`

	// Backend is "file" (default), "sqlite" or "memory".
	Backend string `yaml:"backend"`

	// SQLitePath defaults to <data_dir>/fitness.db. With the file backend it
	// is only used for the sync audit trail, and only if set.
	SQLitePath string `yaml:"sqlite_path,omitempty"`

	Logs LogsConfig `yaml:"logs"`

	// HeightInches feeds BMI.
	HeightInches float64 `yaml:"height_inches"`

	// BootstrapStart (YYYY-MM-DD) is the first date fetched into empty logs.
	BootstrapStart string `yaml:"bootstrap_start,omitempty"`

	// CredentialsFile is a dotenv-style file with MFP_USER, MFP_TOKEN, STRAVA_TOKEN.
	CredentialsFile string `yaml:"credentials_file"`

	Providers ProvidersConfig `yaml:"providers"`
	Server    ServerConfig    `yaml:"server"`
}

// LogsConfig overrides log names.
type LogsConfig struct {
	Calories string `yaml:"calories"`
	Weight   string `yaml:"weight"`
	Runs     string `yaml:"runs"`
}

// ProvidersConfig selects where data is fetched from. A fixture file wins
// over the URLs.
type ProvidersConfig struct {
	Fixture     string `yaml:"fixture,omitempty"`
	DiaryURL    string `yaml:"diary_url,omitempty"`
	ScaleURL    string `yaml:"scale_url,omitempty"`
	ActivityURL string `yaml:"activity_url,omitempty"`
	Timeout     string `yaml:"timeout,omitempty"` // e.g. "30s"
}

// ServerConfig configures `serve`.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	SyncInterval   string   `yaml:"sync_interval"` // e.g. "1h"; "0" disables
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	names := fitness.DefaultLogNames()
	return Config{
		DataDir:         "db",
		Backend:         BackendFile,
		Logs:            LogsConfig{Calories: names.Calories, Weight: names.Weight, Runs: names.Runs},
		CredentialsFile: "credentials.txt",
		Providers:       ProvidersConfig{Timeout: "30s"},
		Server: ServerConfig{
			Addr:           ":8080",
			SyncInterval:   "1h",
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing YAML: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendFile, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.HeightInches < 0 {
		return fmt.Errorf("height_inches must not be negative")
	}
	if _, err := c.BootstrapDate(); err != nil {
		return err
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	if _, err := c.SyncInterval(); err != nil {
		return err
	}
	return nil
}

// BootstrapDate parses BootstrapStart; zero when unset.
func (c Config) BootstrapDate() (generic.TimePoint, error) {
	if c.BootstrapStart == "" {
		return generic.TimePoint{}, nil
	}
	d, err := generic.ParseDate(c.BootstrapStart)
	if err != nil {
		return generic.TimePoint{}, fmt.Errorf("bootstrap_start: %w", err)
	}
	return d, nil
}

// Timeout is the provider HTTP timeout.
func (c Config) Timeout() (time.Duration, error) {
	return parseDuration("providers.timeout", c.Providers.Timeout)
}

// SyncInterval is how often `serve` syncs; 0 disables the scheduler.
func (c Config) SyncInterval() (time.Duration, error) {
	return parseDuration("server.sync_interval", c.Server.SyncInterval)
}

// SQLiteFile resolves the database path for the sqlite backend.
func (c Config) SQLiteFile() string {
	if c.SQLitePath != "" {
		return c.SQLitePath
	}
	return filepath.Join(c.DataDir, "fitness.db")
}

// LogNames converts to the fitness package's names, filling blanks.
func (c Config) LogNames() fitness.LogNames {
	names := fitness.DefaultLogNames()
	if c.Logs.Calories != "" {
		names.Calories = c.Logs.Calories
	}
	if c.Logs.Weight != "" {
		names.Weight = c.Logs.Weight
	}
	if c.Logs.Runs != "" {
		names.Runs = c.Logs.Runs
	}
	return names
}

func parseDuration(field, s string) (time.Duration, error) {
	if s == "" || s == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return d, nil
}

// =============================================================================
// CREDENTIALS
// =============================================================================

// Credential keys, in the file or the environment.
const (
	KeyCalorieUser   = "MFP_USER"
	KeyCalorieToken  = "MFP_TOKEN"
	KeyActivityToken = "STRAVA_TOKEN"
)

// FileCredentials reads a dotenv file; environment variables override it.
// Both KEY=value and KEY: value lines are accepted.
type FileCredentials struct {
	Path string
}

// Load implements fitness.CredentialStore. A missing file is not an error.
func (f FileCredentials) Load() (fitness.Credentials, error) {
	values := map[string]string{}
	if f.Path != "" {
		m, err := godotenv.Read(f.Path)
		switch {
		case err == nil:
			values = m
		case errors.Is(err, os.ErrNotExist):
		default:
			return fitness.Credentials{}, fmt.Errorf("reading credentials: %w", err)
		}
	}
	get := func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return values[key]
	}
	return fitness.Credentials{
		CalorieUser:   get(KeyCalorieUser),
		CalorieToken:  get(KeyCalorieToken),
		ActivityToken: get(KeyActivityToken),
	}, nil
}
