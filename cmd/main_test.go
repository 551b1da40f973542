package main

import (
	"context"
	"os"
	"testing"

	app "github.com/entraide/matchd/internal/app"
	"github.com/entraide/matchd/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestMainWiring(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("MATCHD_ADDR", ":8080")
			_ = os.Setenv("MATCHD_QUEUE_SIZE", "64")
			_ = os.Setenv("MATCHD_WORKER_COUNT", "4")
			defer func() {
				_ = os.Unsetenv("MATCHD_ADDR")
				_ = os.Unsetenv("MATCHD_QUEUE_SIZE")
				_ = os.Unsetenv("MATCHD_WORKER_COUNT")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When testing service creation", func() {
			convey.Convey("Then service should be creatable with default options", func() {
				svc := app.New()
				convey.So(svc, convey.ShouldNotBeNil)
			})

			convey.Convey("And service should be creatable with custom options", func() {
				svc := app.New(
					app.WithWorkerCount(8),
					app.WithQueueSize(256),
					app.WithDedupeSize(1000),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})
	})
}
