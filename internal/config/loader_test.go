package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/entraide/matchd/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	"MATCHD_CONFIG",
	"MATCHD_ADDR",
	"MATCHD_LOG_LEVEL",
	"MATCHD_QUEUE_SIZE",
	"MATCHD_WORKER_COUNT",
	"MATCHD_DEDUPE_SIZE",
	"MATCHD_MIN_TASK_SCORE",
	"MATCHD_MIN_USER_SCORE",
	"MATCHD_TASK_LIMIT",
	"MATCHD_USER_LIMIT",
	"MATCHD_RECOMMENDATION_TTL",
	"MATCHD_ALERT_RADIUS_KM",
	"MATCHD_WEIGHTS__PROXIMITY",
}

func clearConfigEnvVars() {
	for _, v := range configEnvVars {
		_ = os.Unsetenv(v)
	}
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "matchd.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.TaskLimit, convey.ShouldEqual, 20)
				convey.So(cfg.RecommendationTTL, convey.ShouldEqual, 24*time.Hour)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("MATCHD_ADDR", ":8080")
			_ = os.Setenv("MATCHD_QUEUE_SIZE", "64")
			_ = os.Setenv("MATCHD_MIN_TASK_SCORE", "0.5")
			_ = os.Setenv("MATCHD_ALERT_RADIUS_KM", "10")
			_ = os.Setenv("MATCHD_WEIGHTS__PROXIMITY", "0.4")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.MinTaskScore, convey.ShouldEqual, 0.5)
				convey.So(cfg.AlertRadiusKm, convey.ShouldEqual, 10.0)
				convey.So(cfg.Weights.Proximity, convey.ShouldEqual, 0.4)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			path := writeTempConfig(t, `
addr: ":9090"
worker_count: 4
recommendation_ttl: 12h
weights:
  proximity: 0.30
  skill_match: 0.30
`)
			_ = os.Setenv("MATCHD_CONFIG", path)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from the YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
				convey.So(cfg.RecommendationTTL, convey.ShouldEqual, 12*time.Hour)
				convey.So(cfg.Weights.Proximity, convey.ShouldEqual, 0.30)
				convey.So(cfg.Weights.SkillMatch, convey.ShouldEqual, 0.30)
				// Untouched weights keep their defaults.
				convey.So(cfg.Weights.Budget, convey.ShouldEqual, 0.10)
			})
		})

		convey.Convey("When env vars and a file both set a key", func() {
			path := writeTempConfig(t, `addr: ":9090"`)
			_ = os.Setenv("MATCHD_CONFIG", path)
			_ = os.Setenv("MATCHD_ADDR", ":7070")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then the env var should win", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
			})
		})

		convey.Convey("When the file sets invalid values", func() {
			path := writeTempConfig(t, `alert_radius_km: -1`)
			_ = os.Setenv("MATCHD_CONFIG", path)
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then loading should fail validation", func() {
				convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
			})
		})

		convey.Convey("When the config file path does not exist", func() {
			_ = os.Setenv("MATCHD_CONFIG", "/nonexistent/matchd.yaml")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then loading should fail", func() {
				convey.So(err, convey.ShouldWrap, config.ErrLoadConfig)
			})
		})
	})
}
