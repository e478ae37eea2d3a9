// Package config provides configuration management for the MetaStore CLI.
package config

import (
	"fmt"
	"time"

	"github.com/leapstack-labs/metastore/internal/lint"
	"github.com/leapstack-labs/metastore/internal/store"
)

// Default configuration values.
const (
	DefaultPort              = 8765
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultShutdownTimeout   = 5 * time.Second
	DefaultStorePath         = ".metastore/metastore.db"
	DefaultOutput            = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultSessionSecret     = "metastore-dev-secret-change-in-production" //nolint:gosec
)

// LintConfig is an alias for the lint rule configuration.
// This allows CLI code to use config.LintConfig without importing internal/lint.
type LintConfig = lint.Config

// ServerConfig holds configuration for the UI server.
type ServerConfig struct {
	Port              int           `koanf:"port"`
	Dev               bool          `koanf:"dev"`
	Watch             bool          `koanf:"watch"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
	SessionSecret     string        `koanf:"session_secret"`
}

// StoreConfig selects where models are kept.
type StoreConfig struct {
	Driver      string `koanf:"driver"`
	Path        string `koanf:"path"`
	SeedFile    string `koanf:"seed_file"`
	SeedSamples bool   `koanf:"seed_samples"`
}

// Config holds all CLI configuration options.
type Config struct {
	Server       ServerConfig `koanf:"server"`
	Store        StoreConfig  `koanf:"store"`
	Lint         LintConfig   `koanf:"lint"`
	Verbose      bool         `koanf:"verbose"`
	OutputFormat string       `koanf:"output"`

	// File is the config file that was loaded, if any.
	File string `koanf:"-"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              DefaultPort,
			Watch:             true,
			ReadHeaderTimeout: DefaultReadHeaderTimeout,
			ShutdownTimeout:   DefaultShutdownTimeout,
			SessionSecret:     DefaultSessionSecret,
		},
		Store: StoreConfig{
			Driver:      store.DriverMemory,
			Path:        DefaultStorePath,
			SeedSamples: true,
		},
		OutputFormat: DefaultOutput,
	}
}

// StoreOptions converts the store section for store.Open.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Driver:      c.Store.Driver,
		Path:        c.Store.Path,
		SeedFile:    c.Store.SeedFile,
		SeedSamples: c.Store.SeedSamples,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case store.DriverMemory:
	case store.DriverSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the %s driver", store.DriverSQLite)
		}
	default:
		return fmt.Errorf("unknown store driver %q (want %s or %s)", c.Store.Driver, store.DriverMemory, store.DriverSQLite)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.SessionSecret == "" {
		return fmt.Errorf("server.session_secret is required")
	}

	switch c.OutputFormat {
	case "", "auto", "text", "markdown", "json":
	default:
		return fmt.Errorf("unknown output format %q", c.OutputFormat)
	}

	return c.Lint.Validate()
}

// Linter returns the lint analyzer configured by the lint section.
func (c *Config) Linter() (*lint.Analyzer, error) {
	return lint.NewAnalyzerFromConfig(c.Lint)
}
