// Package config loads fluxkeys settings from the environment.
package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

// Config holds process-wide defaults. Command-line flags override them.
type Config struct {
	// Format is the default output format, text or json.
	Format string `env:"FLUXKEYS_FORMAT" envDefault:"text"`

	// LogLevel is the minimum level written to stderr.
	LogLevel slog.Level `env:"FLUXKEYS_LOG_LEVEL" envDefault:"warn"`

	// Journal is the default journal database for test and trace.
	Journal string `env:"FLUXKEYS_JOURNAL"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field values env tags cannot express.
func (c Config) Validate() error {
	switch c.Format {
	case "text", "json":
		return nil
	}
	return fmt.Errorf("FLUXKEYS_FORMAT: unsupported format %q (want text or json)", c.Format)
}
