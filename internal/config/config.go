// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Layer YAML file and environment on top through Load.
// - External errors must be wrapped via this package's error kinds.
package config

import (
	"runtime"
	"time"

	"github.com/entraide/matchd/internal/domain/ranking"
	"github.com/entraide/matchd/internal/domain/recommend"
	"github.com/entraide/matchd/internal/domain/scoring"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory refresh job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of refresh workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the alert content-key cache.
	DedupeSize int `koanf:"dedupe_size"`

	// Weights are the per-factor compatibility weights.
	Weights scoring.Weights `koanf:"weights"`

	// MinTaskScore and MinUserScore are the compatibility floors for
	// the task feed and the helper feed.
	MinTaskScore float64 `koanf:"min_task_score"`
	MinUserScore float64 `koanf:"min_user_score"`

	// TaskLimit and UserLimit cap the two feeds.
	TaskLimit int `koanf:"task_limit"`
	UserLimit int `koanf:"user_limit"`

	// RecommendationTTL is how long recommendations stay actionable.
	RecommendationTTL time.Duration `koanf:"recommendation_ttl"`

	// AlertRadiusKm is the proximity alert cut-off.
	AlertRadiusKm float64 `koanf:"alert_radius_km"`

	// TaxonomyPath optionally points at a YAML file of extra skill
	// clusters merged into the built-in table.
	TaxonomyPath string `koanf:"taxonomy_path"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		QueueSize:         1024,
		WorkerCount:       runtime.NumCPU(),
		DedupeSize:        10_000,
		Weights:           scoring.DefaultWeights(),
		MinTaskScore:      ranking.DefaultMinTaskScore,
		MinUserScore:      ranking.DefaultMinUserScore,
		TaskLimit:         ranking.DefaultTaskLimit,
		UserLimit:         ranking.DefaultUserLimit,
		RecommendationTTL: recommend.DefaultTTL,
		AlertRadiusKm:     recommend.DefaultAlertRadiusKm,
	}
}
