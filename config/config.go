// Package config loads the ingestion engine's process-wide tunables.
// Adapted from the teacher's LoadConfig JSON-file loader
// (os.Stat-then-os.ReadFile-then-json.Unmarshal), replacing the trading
// bot's business fields with ingestion-specific ones.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// BackoffConfig tunes the session reconnect backoff curve (spec.md §4.6,
// the base=125ms/cap=60s doubling curve).
type BackoffConfig struct {
	BaseMillis int `json:"base_millis"`
	CapSeconds int `json:"cap_seconds"`
}

// Base returns the backoff base duration, defaulting to 125ms when unset.
func (b BackoffConfig) Base() time.Duration {
	if b.BaseMillis <= 0 {
		return 125 * time.Millisecond
	}
	return time.Duration(b.BaseMillis) * time.Millisecond
}

// Cap returns the backoff ceiling, defaulting to 60s when unset.
func (b BackoffConfig) Cap() time.Duration {
	if b.CapSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(b.CapSeconds) * time.Second
}

// Config is the engine's process-wide configuration.
type Config struct {
	// EventBufferSize bounds each session's outbound channel capacity.
	// Events are dropped (oldest first) past capacity; every drop is
	// logged at warn and counted via metrics.EventsDroppedTotal.
	EventBufferSize int `json:"event_buffer_size"`

	// Backoff tunes the reconnect curve shared by every session.
	Backoff BackoffConfig `json:"backoff"`

	// HTTPTimeoutSeconds bounds every adapter's REST client (book
	// snapshot fetches, ticker precision, KuCoin bootstrap token).
	HTTPTimeoutSeconds int `json:"http_timeout_seconds"`

	// EnabledExchanges restricts which adapters a demo/consumer wires
	// up; empty means "all known exchanges".
	EnabledExchanges []string `json:"enabled_exchanges"`

	// LogLevel is one of "debug", "info", "warn", "error" (default: info).
	LogLevel string `json:"log_level"`
}

// EventBufferSizeOrDefault returns the configured buffer size, or 256 if unset.
func (c Config) EventBufferSizeOrDefault() int {
	if c.EventBufferSize <= 0 {
		return 256
	}
	return c.EventBufferSize
}

// HTTPTimeout returns the configured REST timeout, or 10s if unset.
func (c Config) HTTPTimeout() time.Duration {
	if c.HTTPTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// Load reads filename and parses it as JSON. A missing file is not an
// error: it returns zero-value defaults, matching the teacher's
// "file absent => default config" fallback.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return &Config{}, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}
	return &cfg, nil
}
