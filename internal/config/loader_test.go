package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/triagem/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	"TRIAGEM_CONFIG", "TRIAGEM_ADDR", "TRIAGEM_STORE", "TRIAGEM_DB_PATH",
	"TRIAGEM_QUEUE_SIZE", "TRIAGEM_WORKER_COUNT", "TRIAGEM_GENAI_API_KEY", "TRIAGEM_LOG_FORMAT",
}

func clearConfigEnvVars() {
	for _, k := range configEnvVars {
		_ = os.Unsetenv(k)
	}
}

func writeConfigFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "triagem.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		convey.Reset(clearConfigEnvVars)

		convey.Convey("When loading with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then the defaults are returned", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New(ctx))
			})
		})

		convey.Convey("When environment variables are set", func() {
			_ = os.Setenv("TRIAGEM_ADDR", ":8080")
			_ = os.Setenv("TRIAGEM_QUEUE_SIZE", "64")
			_ = os.Setenv("TRIAGEM_GENAI_API_KEY", "secret")
			cfg, err := config.Load(ctx)

			convey.Convey("Then they override the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.GenAIAPIKey, convey.ShouldEqual, "secret")
			})
		})

		convey.Convey("When a YAML file and env are both given", func() {
			path := writeConfigFile(t, `
addr: ":9090"
store: sqlite
db_path: /var/lib/triagem/event.db
worker_count: 4
log_format: json
`)
			_ = os.Setenv("TRIAGEM_CONFIG", path)
			_ = os.Setenv("TRIAGEM_WORKER_COUNT", "8")
			cfg, err := config.Load(ctx)

			convey.Convey("Then env wins over the file and the file over defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.Store, convey.ShouldEqual, config.StoreSQLite)
				convey.So(cfg.DBPath, convey.ShouldEqual, "/var/lib/triagem/event.db")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 8)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 10_000)
			})
		})

		convey.Convey("When the YAML file is invalid", func() {
			_ = os.Setenv("TRIAGEM_CONFIG", writeConfigFile(t, `invalid: yaml: content: [`))
			cfg, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When the YAML file does not exist", func() {
			_ = os.Setenv("TRIAGEM_CONFIG", "/non/existent/file.yaml")
			cfg, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When the store is unknown", func() {
			_ = os.Setenv("TRIAGEM_STORE", "postgres")
			cfg, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(cfg, convey.ShouldBeNil)
		})
	})
}
