package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/maintwise/maintwise/internal/analytics"
	"github.com/maintwise/maintwise/internal/cache"
	"github.com/maintwise/maintwise/internal/gateway"
	"github.com/maintwise/maintwise/internal/monitoring"
)

// Config is the application configuration.
type Config struct {
	LogLevel    string `yaml:"log_level"`
	LogEncoding string `yaml:"log_encoding"`

	Gateway   gateway.Config    `yaml:"gateway"`
	Cache     cache.Config      `yaml:"cache"`
	Metrics   monitoring.Config `yaml:"metrics"`
	Analytics analytics.Config  `yaml:"analytics"`
}

// Default returns the reference configuration.
func Default() *Config {
	return &Config{
		LogLevel:    "info",
		LogEncoding: "json",
		Gateway: gateway.Config{
			DSN: "maintwise.db",
		},
		Analytics: analytics.DefaultConfig(),
	}
}

// Load reads a YAML config file over the defaults and validates the
// result. An empty path returns the validated defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if v := os.Getenv("MAINTWISE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	switch c.LogEncoding {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log_encoding %q", c.LogEncoding)
	}
	if err := c.Analytics.Validate(); err != nil {
		return fmt.Errorf("analytics config: %w", err)
	}
	return nil
}
