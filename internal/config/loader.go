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
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if MATCHD_CONFIG is set
//  3. env (prefix MATCHD_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("MATCHD_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: MATCHD_ADDR, MATCHD_QUEUE_SIZE, ...
	// Flat keys keep underscores so they match the koanf tags; a double
	// underscore descends into nested sections, e.g.
	// MATCHD_WEIGHTS__PROXIMITY -> weights.proximity.
	envProvider := env.Provider("MATCHD_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "matchd_")
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if err := cfg.Weights.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if cfg.MinTaskScore < 0 || cfg.MinTaskScore > 1 {
		return fmt.Errorf("%w: min_task_score must be in [0,1]", ErrInvalidConfig)
	}
	if cfg.MinUserScore < 0 || cfg.MinUserScore > 1 {
		return fmt.Errorf("%w: min_user_score must be in [0,1]", ErrInvalidConfig)
	}
	if cfg.TaskLimit <= 0 || cfg.UserLimit <= 0 {
		return fmt.Errorf("%w: result limits must be positive", ErrInvalidConfig)
	}
	if cfg.RecommendationTTL <= 0 {
		return fmt.Errorf("%w: recommendation_ttl must be positive", ErrInvalidConfig)
	}
	if cfg.AlertRadiusKm <= 0 {
		return fmt.Errorf("%w: alert_radius_km must be positive", ErrInvalidConfig)
	}
	return nil
}
