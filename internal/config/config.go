// Package config provides configuration loading and validation for the CLI.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
)

// Default values applied by MergeWithDefaults.
const (
	DefaultBaseURL        = "http://codingavenue.com/clock"
	DefaultTimeoutSeconds = 30
	DefaultLogLevel       = "info"
)

// Config represents the CLI configuration. Values come from a JSON file, then
// the environment, then command-line flags.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Time clock
	BaseURL            string `json:"base_url,omitempty" env:"TIMECLOCK_BASE_URL, overwrite" validate:"omitempty,url"`
	TimeoutSeconds     int    `json:"timeout_seconds,omitempty" env:"TIMECLOCK_TIMEOUT_SECONDS, overwrite" validate:"min=0"`
	UserAgent          string `json:"user_agent,omitempty" env:"TIMECLOCK_USER_AGENT, overwrite"`
	InsecureSkipVerify bool   `json:"insecure_skip_verify,omitempty" env:"TIMECLOCK_INSECURE_SKIP_VERIFY, overwrite"`

	// Account
	Email    string `json:"email,omitempty" env:"TIMECLOCK_EMAIL, overwrite"`
	Password string `json:"password,omitempty" env:"TIMECLOCK_PASSWORD, overwrite"`

	// Storage
	DatabaseURL string `json:"database_url,omitempty" env:"DATABASE_URL, overwrite"` // PostgreSQL connection URL

	// Logging
	LogLevel  string `json:"log_level,omitempty" env:"TIMECLOCK_LOG_LEVEL, overwrite" validate:"omitempty,oneof=trace debug info warn warning error"`
	LogPretty bool   `json:"log_pretty,omitempty" env:"TIMECLOCK_LOG_PRETTY, overwrite"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		TimeoutSeconds: DefaultTimeoutSeconds,
		LogLevel:       DefaultLogLevel,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv overrides fields with any matching environment variables.
func (c *Config) ApplyEnv(ctx context.Context) error {
	return c.applyEnv(ctx, envconfig.OsLookuper())
}

func (c *Config) applyEnv(ctx context.Context, lookuper envconfig.Lookuper) error {
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   c,
		Lookuper: lookuper,
	}); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}
	return nil
}

// Load builds the effective configuration: defaults, then the JSON file at
// path (skipped when path is empty), then the environment.
func Load(ctx context.Context, path string) (*Config, error) {
	return load(ctx, path, envconfig.OsLookuper())
}

func load(ctx context.Context, path string, lookuper envconfig.Lookuper) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		fileCfg, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}

	if err := cfg.applyEnv(ctx, lookuper); err != nil {
		return nil, err
	}

	merged := cfg.MergeWithDefaults(Defaults())
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.BaseURL == "" {
		result.BaseURL = defaults.BaseURL
	}
	if result.UserAgent == "" {
		result.UserAgent = defaults.UserAgent
	}
	if result.Email == "" {
		result.Email = defaults.Email
	}
	if result.Password == "" {
		result.Password = defaults.Password
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}

	// Int fields: use default if zero
	if result.TimeoutSeconds == 0 {
		result.TimeoutSeconds = defaults.TimeoutSeconds
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
