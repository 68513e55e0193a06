// Package config loads genseries settings from defaults, a genseries.yaml
// file, GENSERIES_ environment variables and command-line flags.
package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/leapstack-labs/genseries/pkg/adapter"
	"github.com/leapstack-labs/genseries/pkg/core"
)

// Target describes the database a series is generated in.
type Target struct {
	Type     string `koanf:"type"` // duckdb, postgres
	Database string `koanf:"database"`

	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`

	Schema string `koanf:"schema"`

	// Driver-specific options: DuckDB settings and extensions, Postgres
	// connection parameters.
	Options map[string]string `koanf:"options"`
}

// AdapterConfig converts the target into the adapter registry's input.
// Database doubles as the DuckDB file path.
func (t *Target) AdapterConfig() core.AdapterConfig {
	return core.AdapterConfig{
		Type:     t.Type,
		Path:     t.Database,
		Host:     t.Host,
		Port:     t.Port,
		Database: t.Database,
		Username: t.User,
		Password: t.Password,
		Schema:   t.Schema,
		Options:  t.Options,
	}
}

// Validate checks the target against the registered adapters.
func (t *Target) Validate() error {
	if t.Type == "" {
		return fmt.Errorf("target type is required")
	}
	if !adapter.IsRegistered(strings.ToLower(t.Type)) {
		return &adapter.UnknownAdapterError{
			Type:      t.Type,
			Available: adapter.ListAdapters(),
		}
	}
	return nil
}

// Config holds every setting the CLI reads.
type Config struct {
	Target   *Target `koanf:"target"`
	LogLevel string  `koanf:"log_level"`
	Output   string  `koanf:"output"`

	// File is the configuration file that was read, if any.
	File string `koanf:"-"`
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if c.Target == nil {
		return fmt.Errorf("target is required")
	}
	if err := c.Target.Validate(); err != nil {
		return fmt.Errorf("invalid target configuration: %w", err)
	}
	if !slices.Contains(OutputFormats, c.Output) {
		return fmt.Errorf("unknown output format %q (expected one of %s)", c.Output, strings.Join(OutputFormats, ", "))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a log_level value onto a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}
