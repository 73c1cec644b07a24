// Package config defines service configuration and its defaults.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Store selects the attendee store backend: memory or sqlite.
	Store string `koanf:"store"`

	// DBPath is the SQLite file used when Store is sqlite.
	DBPath string `koanf:"db_path"`

	// QueueSize bounds the asynchronous check-in queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of check-in workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the remembered check-in IDs.
	DedupeSize int `koanf:"dedupe_size"`

	// GenAIAPIKey enables AI reflections when set.
	GenAIAPIKey string `koanf:"genai_api_key"`

	// GenAIModel names the Gemini model.
	GenAIModel string `koanf:"genai_model"`

	ReflectionTimeoutMS int `koanf:"reflection_timeout_ms"`
	MetricsIntervalMS   int `koanf:"metrics_interval_ms"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		Store:               StoreMemory,
		DBPath:              "triagem.db",
		QueueSize:           1024,
		WorkerCount:         2,
		DedupeSize:          10_000,
		GenAIModel:          "gemini-2.5-flash",
		ReflectionTimeoutMS: 15_000,
		MetricsIntervalMS:   5_000,
	}
}

// ReflectionTimeout returns the reflection deadline.
func (c *Config) ReflectionTimeout() time.Duration {
	return time.Duration(c.ReflectionTimeoutMS) * time.Millisecond
}

// MetricsInterval returns the system metrics refresh period.
func (c *Config) MetricsInterval() time.Duration {
	return time.Duration(c.MetricsIntervalMS) * time.Millisecond
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.Store {
	case StoreMemory:
	case StoreSQLite:
		if strings.TrimSpace(c.DBPath) == "" {
			return fmt.Errorf("%w: db_path is required for the sqlite store", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store %q", ErrInvalidConfig, c.Store)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	}
	if c.ReflectionTimeoutMS < 1 || c.MetricsIntervalMS < 1 {
		return fmt.Errorf("%w: timeouts and intervals must be positive", ErrInvalidConfig)
	}
	return nil
}
