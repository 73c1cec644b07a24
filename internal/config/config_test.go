package config_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/triagem/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.Store, convey.ShouldEqual, config.StoreMemory)
			convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, 2)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.GenAIModel, convey.ShouldEqual, "gemini-2.5-flash")
			convey.So(cfg.ReflectionTimeout(), convey.ShouldEqual, 15*time.Second)
			convey.So(cfg.MetricsInterval(), convey.ShouldEqual, 5*time.Second)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given invalid configurations", t, func() {
		cases := map[string]func(*config.Config){
			"empty addr":        func(c *config.Config) { c.Addr = " " },
			"unknown store":     func(c *config.Config) { c.Store = "postgres" },
			"sqlite without db": func(c *config.Config) { c.Store = config.StoreSQLite; c.DBPath = "" },
			"xml logs":          func(c *config.Config) { c.LogFormat = "xml" },
			"zero queue":        func(c *config.Config) { c.QueueSize = 0 },
			"zero timeout":      func(c *config.Config) { c.ReflectionTimeoutMS = 0 },
		}
		for name, mutate := range cases {
			convey.Convey("When the config has "+name, func() {
				cfg := config.New(context.Background())
				mutate(cfg)

				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}
