// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New builds a Config holding the defaults; Load layers file and env on top.
// - Validate reports problems wrapped with ErrInvalidConfig.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Store drivers.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Lookup modes.
const (
	LookupScan    = "scan"
	LookupIndexed = "indexed"
)

// Duplicate-name policies.
const (
	DuplicateLast  = "last"
	DuplicateFirst = "first"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreDriver selects the document store: memory or sqlite.
	StoreDriver string `koanf:"store_driver"`

	// SQLitePath is the database file used by the sqlite driver.
	SQLitePath string `koanf:"sqlite_path"`

	// SeedFile is an optional YAML fixture loaded into the store at start.
	SeedFile string `koanf:"seed_file"`

	// LookupMode selects scan (case-insensitive in memory) or indexed (store equality query).
	LookupMode string `koanf:"lookup_mode"`

	// DuplicatePolicy decides which record wins when names collide: last or first.
	DuplicatePolicy string `koanf:"duplicate_policy"`

	// ContextLifespan is the lifespan given to newly established contexts.
	ContextLifespan int `koanf:"context_lifespan"`

	// FanoutLimit bounds concurrent participant lookups within one turn.
	FanoutLimit int `koanf:"fanout_limit"`

	// ReplaySize bounds the redelivery cache keyed by response id. 0 disables it.
	ReplaySize int `koanf:"replay_size"`

	// WebhookRPS and WebhookBurst configure the webhook rate limiter. RPS <= 0 disables it.
	WebhookRPS   float64 `koanf:"webhook_rps"`
	WebhookBurst int     `koanf:"webhook_burst"`

	// WebhookSecret, when set, must match the X-Webhook-Secret request header.
	WebhookSecret string `koanf:"webhook_secret"`

	// Timezone is the IANA zone used for "today" in age and tense computations.
	Timezone string `koanf:"timezone"`

	// Metrics configures the Prometheus series exposed on /healthz.
	MetricsEnabled         bool              `koanf:"metrics_enabled"`
	MetricsNamespace       string            `koanf:"metrics_namespace"`
	MetricsSubsystem       string            `koanf:"metrics_subsystem"`
	MetricsRefreshInterval time.Duration     `koanf:"metrics_refresh_interval"`
	MetricsLabels          map[string]string `koanf:"metrics_labels"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":9080",
		StoreDriver:     StoreMemory,
		SQLitePath:      "fulfillment.db",
		LookupMode:      LookupScan,
		DuplicatePolicy: DuplicateLast,
		ContextLifespan: 5,
		FanoutLimit:     runtime.NumCPU() * 2,
		ReplaySize:      10_000,
		WebhookRPS:      50,
		WebhookBurst:    100,
		Timezone:        "UTC",

		MetricsEnabled:         true,
		MetricsNamespace:       "fulfillment",
		MetricsSubsystem:       "webhook",
		MetricsRefreshInterval: 10 * time.Second,
	}
}

// Location returns the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", ErrInvalidConfig, c.Timezone, err)
	}
	return loc, nil
}

// Validate checks enumerations and bounds.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.StoreDriver {
	case StoreMemory:
	case StoreSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("%w: sqlite_path must not be empty for the sqlite driver", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store_driver %q", ErrInvalidConfig, c.StoreDriver)
	}
	if c.LookupMode != LookupScan && c.LookupMode != LookupIndexed {
		return fmt.Errorf("%w: unknown lookup_mode %q", ErrInvalidConfig, c.LookupMode)
	}
	if c.DuplicatePolicy != DuplicateLast && c.DuplicatePolicy != DuplicateFirst {
		return fmt.Errorf("%w: unknown duplicate_policy %q", ErrInvalidConfig, c.DuplicatePolicy)
	}
	if c.ContextLifespan < 1 {
		return fmt.Errorf("%w: context_lifespan must be positive", ErrInvalidConfig)
	}
	if c.ReplaySize < 0 {
		return fmt.Errorf("%w: replay_size must not be negative", ErrInvalidConfig)
	}
	if c.MetricsRefreshInterval <= 0 {
		return fmt.Errorf("%w: metrics_refresh_interval must be positive", ErrInvalidConfig)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}
