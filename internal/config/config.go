// Package config loads runtime settings from YAML, the environment, and .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverMemory     = "memory"
	DriverSQLite     = "sqlite"
	DriverPostgres   = "postgres"
	DriverClickhouse = "clickhouse"
)

// Config holds every runtime setting. Command-line flags override it.
type Config struct {
	Season        string `yaml:"season"`
	RemainingHome int    `yaml:"remaining_home"`
	RemainingAway int    `yaml:"remaining_away"`
	Seed          uint64 `yaml:"seed"`
	Fallback      string `yaml:"fallback"`

	Storage StorageConfig `yaml:"storage"`
	Scraper ScraperConfig `yaml:"scraper"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
}

// StorageConfig selects the match store.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"` // file path for sqlite
}

// ScraperConfig configures fbref scraping. Empty fields use the scraper defaults.
type ScraperConfig struct {
	BaseURL string            `yaml:"base_url"`
	League  string            `yaml:"league"`
	Delay   time.Duration     `yaml:"delay"`
	Teams   map[string]string `yaml:"teams"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig configures logrus output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		RemainingHome: 18,
		RemainingAway: 19,
		Fallback:      "uniform",
		Storage: StorageConfig{
			Driver: DriverSQLite,
			DSN:    "league.db",
		},
		Scraper: ScraperConfig{
			Delay: 5 * time.Second,
		},
		Server: ServerConfig{Addr: ":8080"},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when path
// is empty), and environment overrides, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides fields from LEAGUE_* variables and the store DSN variables.
func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) error {
		v := os.Getenv(key)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}

	setString("LEAGUE_SEASON", &c.Season)
	setString("LEAGUE_FALLBACK", &c.Fallback)
	setString("LEAGUE_STORAGE_DRIVER", &c.Storage.Driver)
	setString("LEAGUE_SCRAPER_BASE_URL", &c.Scraper.BaseURL)
	setString("LEAGUE_SCRAPER_LEAGUE", &c.Scraper.League)
	setString("LEAGUE_SERVER_ADDR", &c.Server.Addr)
	setString("LEAGUE_LOG_LEVEL", &c.Log.Level)
	setString("LEAGUE_LOG_FORMAT", &c.Log.Format)

	if err := setInt("LEAGUE_REMAINING_HOME", &c.RemainingHome); err != nil {
		return err
	}
	if err := setInt("LEAGUE_REMAINING_AWAY", &c.RemainingAway); err != nil {
		return err
	}
	if v := os.Getenv("LEAGUE_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("LEAGUE_SEED: %w", err)
		}
		c.Seed = seed
	}
	if v := os.Getenv("LEAGUE_SCRAPER_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("LEAGUE_SCRAPER_DELAY: %w", err)
		}
		c.Scraper.Delay = d
	}

	// Driver-specific DSN variables only apply to their own driver.
	switch c.Storage.Driver {
	case DriverPostgres:
		setString("POSTGRES_DSN", &c.Storage.DSN)
	case DriverClickhouse:
		setString("CLICKHOUSE_DSN", &c.Storage.DSN)
	case DriverSQLite:
		setString("SQLITE_PATH", &c.Storage.DSN)
	}
	return nil
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	var errs []error
	if c.RemainingHome < 0 || c.RemainingAway < 0 {
		errs = append(errs, fmt.Errorf("remaining matches must be non-negative (home=%d, away=%d)", c.RemainingHome, c.RemainingAway))
	}
	switch strings.ToLower(c.Fallback) {
	case "", "uniform", "strict":
	default:
		errs = append(errs, fmt.Errorf("fallback must be uniform or strict, got %q", c.Fallback))
	}
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres, DriverClickhouse:
		if c.Storage.DSN == "" {
			errs = append(errs, fmt.Errorf("storage.dsn is required for driver %s", c.Storage.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}
	if c.Scraper.Delay < 0 {
		errs = append(errs, fmt.Errorf("scraper.delay must be non-negative, got %s", c.Scraper.Delay))
	}
	for team, code := range c.Scraper.Teams {
		if strings.TrimSpace(team) == "" || strings.TrimSpace(code) == "" {
			errs = append(errs, fmt.Errorf("scraper.teams entries need a name and a code"))
			break
		}
	}
	return errors.Join(errs...)
}

// LoadEnvFile loads KEY=VALUE lines from path into the environment.
// Missing files are ignored and existing variables are never overridden.
func LoadEnvFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
