// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TREELITE_"

// Config is the root configuration structure.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Format  FormatConfig  `yaml:"format"`
	Metrics MetricsConfig `yaml:"metrics"`
	Verify  VerifyConfig  `yaml:"verify"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// FormatConfig configures value formatting.
type FormatConfig struct {
	Output string `yaml:"output"` // formatter name: "array", "json", "yaml", "table"
	Width  int    `yaml:"width"`  // wrap width of the array formatter
	Name   string `yaml:"name"`   // array variable name
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"` // Print the exposition after verify
}

// VerifyConfig configures the ownership verification run.
type VerifyConfig struct {
	Iterations int `yaml:"iterations"` // lifecycle cycles per variant
	Workers    int `yaml:"workers"`    // concurrent goroutines per variant
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(&cfg)

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv creates configuration entirely from environment variables.
//
// Environment variables:
//
//	TREELITE_LOG_LEVEL         - Log level: debug, info, warn, error (default: info)
//	TREELITE_LOG_FORMAT        - Log format: json or console (default: console)
//	TREELITE_FORMAT_OUTPUT     - Formatter name (default: array)
//	TREELITE_FORMAT_WIDTH      - Wrap width of the array formatter (default: 80)
//	TREELITE_FORMAT_NAME       - Array variable name (default: values)
//	TREELITE_METRICS_ENABLED   - Print metrics after verify (default: false)
//	TREELITE_VERIFY_ITERATIONS - Lifecycle cycles per variant (default: 100)
//	TREELITE_VERIFY_WORKERS    - Concurrent goroutines per variant (default: 4)
func LoadFromEnv() (*Config, error) {
	var cfg Config

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadWithFallback loads from file when it exists, otherwise from environment variables.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return LoadFromEnv()
}

// HasEnvConfig returns true if any TREELITE_* environment variable is set.
func HasEnvConfig() bool {
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, EnvPrefix) {
			return true
		}
	}
	return false
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	setDefaults(&cfg)
	return &cfg
}

// applyEnvOverrides applies TREELITE_* environment variables to the config.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	// Logging configuration
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	// Format configuration
	if v := os.Getenv(EnvPrefix + "FORMAT_OUTPUT"); v != "" {
		cfg.Format.Output = v
	}
	if v := os.Getenv(EnvPrefix + "FORMAT_WIDTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Format.Width = n
		}
	}
	if v := os.Getenv(EnvPrefix + "FORMAT_NAME"); v != "" {
		cfg.Format.Name = v
	}

	// Metrics configuration
	if v := os.Getenv(EnvPrefix + "METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}

	// Verify configuration
	if v := os.Getenv(EnvPrefix + "VERIFY_ITERATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Verify.Iterations = n
		}
	}
	if v := os.Getenv(EnvPrefix + "VERIFY_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Verify.Workers = n
		}
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func setDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}

	if cfg.Format.Output == "" {
		cfg.Format.Output = "array"
	}
	if cfg.Format.Width == 0 {
		cfg.Format.Width = 80
	}
	if cfg.Format.Name == "" {
		cfg.Format.Name = "values"
	}

	if cfg.Verify.Iterations == 0 {
		cfg.Verify.Iterations = 100
	}
	if cfg.Verify.Workers == 0 {
		cfg.Verify.Workers = 4
	}
}

func validate(cfg *Config) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error, got %q", cfg.Logging.Level)
	}

	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", cfg.Logging.Format)
	}

	if cfg.Format.Width < 0 {
		return fmt.Errorf("format.width must not be negative, got %d", cfg.Format.Width)
	}

	if cfg.Verify.Iterations < 0 {
		return fmt.Errorf("verify.iterations must not be negative, got %d", cfg.Verify.Iterations)
	}
	if cfg.Verify.Workers < 0 {
		return fmt.Errorf("verify.workers must not be negative, got %d", cfg.Verify.Workers)
	}

	return nil
}
