// Package config defines process configuration and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load(ctx) layers defaults, an optional YAML file, and env vars.
// - External errors are wrapped via this package's sentinels.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address for serve mode, e.g. ":9080".
	Addr string `koanf:"addr"`

	// LagThresholdSeconds is the exclusive ingestion-lag bound.
	LagThresholdSeconds float64 `koanf:"lag_threshold_seconds"`

	// OutOfOrderToleranceSeconds is the allowed valid-time regression.
	OutOfOrderToleranceSeconds float64 `koanf:"out_of_order_tolerance_seconds"`

	// MaxSkewSeconds bounds live-ingestion timestamps against the current
	// clock. Zero disables the guard so historical timelines load cleanly.
	MaxSkewSeconds float64 `koanf:"max_skew_seconds"`

	// Workers sets the fan-out for per-point classification and for batch
	// file processing.
	Workers int `koanf:"workers"`

	// DatabaseURL enables the PostgreSQL timeline store when set.
	DatabaseURL string `koanf:"database_url"`

	// NATSURL is the publisher endpoint.
	NATSURL string `koanf:"nats_url"`

	// PublishEnabled forwards classified timelines to NATS when true.
	PublishEnabled bool `koanf:"publish_enabled"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:                   "info",
		Addr:                       ":9080",
		LagThresholdSeconds:        60,
		OutOfOrderToleranceSeconds: 0,
		MaxSkewSeconds:             0,
		Workers:                    4,
		NATSURL:                    "nats://localhost:4222",
		PublishEnabled:             false,
	}
}
