package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultEnv       = "development"
	defaultLogLevel  = "info"
	defaultLogFormat = "json"

	feedDateLayout = "20060102"
)

// Config keeps the runtime configuration for the reconciler.
type Config struct {
	Env      string         `yaml:"env"`
	Log      LogConfig      `yaml:"log"`
	Postgres PostgresConfig `yaml:"postgres"`
	Feed     FeedConfig     `yaml:"feed"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or text
}

// PostgresConfig stores database connection parameters.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// FeedConfig locates the daily trade-confirm file. Path overrides the
// conventional drop-directory lookup; Date defaults to today.
type FeedConfig struct {
	Dir     string `yaml:"dir"`
	Account string `yaml:"account"`
	Date    string `yaml:"date"`
	Path    string `yaml:"path"`
}

// Date returns the run date in YYYYMMDD form, defaulting to today.
func (f FeedConfig) DateOrToday() string {
	if f.Date != "" {
		return f.Date
	}
	return time.Now().Format(feedDateLayout)
}

// Load builds Config from an optional YAML file with environment-variable
// overrides on top.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Env: defaultEnv,
		Log: LogConfig{Level: defaultLogLevel, Format: defaultLogFormat},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Env = getString("RTMS_ENV", cfg.Env)
	cfg.Log.Level = getString("RTMS_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getString("RTMS_LOG_FORMAT", cfg.Log.Format)
	cfg.Postgres.DSN = getString("RTMS_POSTGRES_DSN", cfg.Postgres.DSN)
	cfg.Feed.Dir = getString("RTMS_FEED_DIR", cfg.Feed.Dir)
	cfg.Feed.Account = getString("RTMS_FEED_ACCOUNT", cfg.Feed.Account)
	cfg.Feed.Date = getString("RTMS_FEED_DATE", cfg.Feed.Date)
	cfg.Feed.Path = getString("RTMS_FEED_PATH", cfg.Feed.Path)
}

func getString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	if c.Postgres.DSN == "" {
		return errors.New("postgres dsn is required")
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("log format must be json or text, got %q", c.Log.Format)
	}
	if c.Feed.Date != "" {
		if _, err := time.Parse(feedDateLayout, c.Feed.Date); err != nil {
			return fmt.Errorf("feed date must be YYYYMMDD, got %q", c.Feed.Date)
		}
	}
	return nil
}

// ValidateFeed checks the settings the reconcile command needs on top of
// Validate.
func (c *Config) ValidateFeed() error {
	if c.Feed.Path != "" {
		return nil
	}
	if c.Feed.Dir == "" || c.Feed.Account == "" {
		return errors.New("feed dir and account are required when no explicit feed path is set")
	}
	return nil
}
