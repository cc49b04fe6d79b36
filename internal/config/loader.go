package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if TRITIME_CONFIG is set
//  3. env (prefix TRITIME_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("TRITIME_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: TRITIME_ADDR, TRITIME_LAG_THRESHOLD_SECONDS, ...
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("TRITIME_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "tritime_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.LagThresholdSeconds <= 0 {
		return fmt.Errorf("%w: lag_threshold_seconds must be positive", ErrInvalidConfig)
	}
	if c.OutOfOrderToleranceSeconds < 0 {
		return fmt.Errorf("%w: out_of_order_tolerance_seconds must not be negative", ErrInvalidConfig)
	}
	if c.MaxSkewSeconds < 0 {
		return fmt.Errorf("%w: max_skew_seconds must not be negative", ErrInvalidConfig)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	}
	return nil
}
