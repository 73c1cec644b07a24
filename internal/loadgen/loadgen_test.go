package loadgen_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/triagem/internal/adapters/http/api"
	service "github.com/okian/triagem/internal/app"
	"github.com/okian/triagem/internal/domain/model"
	"github.com/okian/triagem/internal/domain/taxonomy"
	"github.com/okian/triagem/internal/loadgen"
	"github.com/okian/triagem/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func testConfig(t *testing.T, baseURL string) loadgen.Config {
	cfg := loadgen.DefaultConfig()
	cfg.BaseURL = baseURL
	cfg.NumCheckins = 200
	cfg.Workers = 8
	cfg.Timeout = 2 * time.Second
	cfg.UnknownShare = 0.2
	cfg.SettleTimeout = 5 * time.Second
	cfg.PollInterval = 10 * time.Millisecond
	cfg.OutputFile = filepath.Join(t.TempDir(), "out", "checkins.json")
	return cfg
}

func newServer() (*httptest.Server, *service.Service) {
	svc := service.New()
	So(svc.Start(context.Background()), ShouldBeNil)
	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(context.Background(), mux)
	return httptest.NewServer(mux), svc
}

func TestGenerator(t *testing.T) {
	Convey("Given two generators with the same seed", t, func() {
		cfg := loadgen.DefaultConfig()
		cfg.Seed = 42
		a, err := loadgen.NewGenerator(cfg).Generate(context.Background(), 100)
		So(err, ShouldBeNil)
		b, err := loadgen.NewGenerator(cfg).Generate(context.Background(), 100)
		So(err, ShouldBeNil)

		Convey("Then they produce the same registrations", func() {
			So(a, ShouldResemble, b)
		})

		Convey("Then every registration is valid and carries a unique id", func() {
			ids := make(map[string]struct{}, len(a))
			for _, r := range a {
				So(r.Validate(), ShouldBeNil)
				ids[r.ID] = struct{}{}
			}
			So(ids, ShouldHaveLength, len(a))
		})
	})

	Convey("Given only organists", t, func() {
		cfg := loadgen.DefaultConfig()
		cfg.OrganistShare = 1
		g := loadgen.NewGenerator(cfg)

		for i := 0; i < 20; i++ {
			r := g.Next()
			So(r.Role, ShouldEqual, model.RoleOrganist)
			So(r.Instrument, ShouldEqual, model.OrganInstrument)
		}
	})

	Convey("Given only unknown instruments and one city", t, func() {
		cfg := loadgen.DefaultConfig()
		cfg.OrganistShare = 0
		cfg.UnknownShare = 1
		cfg.Cities = 1
		regs, err := loadgen.NewGenerator(cfg).Generate(context.Background(), 50)
		So(err, ShouldBeNil)

		sum, err := loadgen.Expected(regs)
		So(err, ShouldBeNil)
		So(sum.Uncategorized, ShouldEqual, 50)
		So(sum.Cities, ShouldEqual, 1)
		for _, f := range taxonomy.Families() {
			So(sum.Families[f], ShouldEqual, 0)
		}
	})

	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := loadgen.NewGenerator(loadgen.DefaultConfig()).Generate(ctx, 10)
		So(errors.Is(err, context.Canceled), ShouldBeTrue)
	})
}

func TestVerify(t *testing.T) {
	Convey("Given a generated set and its expected summary", t, func() {
		regs, err := loadgen.NewGenerator(loadgen.DefaultConfig()).Generate(context.Background(), 60)
		So(err, ShouldBeNil)
		want, err := loadgen.Expected(regs)
		So(err, ShouldBeNil)

		Convey("Then the summary verifies against itself", func() {
			So(loadgen.Verify(want, want, true), ShouldBeNil)
		})

		Convey("Then a missing attendee is reported", func() {
			got, err := loadgen.Expected(regs[1:])
			So(err, ShouldBeNil)
			err = loadgen.Verify(got, want, true)
			So(errors.Is(err, loadgen.ErrMismatch), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "total: got 59, want 60")
		})

		Convey("Then the delta over an earlier summary matches the later registrations", func() {
			before, err := loadgen.Expected(regs[:20])
			So(err, ShouldBeNil)
			later, err := loadgen.Expected(regs[20:])
			So(err, ShouldBeNil)
			So(loadgen.Verify(loadgen.Delta(before, want), later, false), ShouldBeNil)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running triagem server", t, func() {
		srv, svc := newServer()
		defer svc.Stop()
		defer srv.Close()
		cfg := testConfig(t, srv.URL)

		Convey("When a load run completes", func() {
			stats, err := loadgen.Run(context.Background(), cfg)

			Convey("Then every check-in is accepted and the summary verifies", func() {
				So(err, ShouldBeNil)
				So(stats.Verified, ShouldBeTrue)
				So(stats.Accepted, ShouldEqual, cfg.NumCheckins)
				So(stats.Failed, ShouldEqual, 0)

				sum, err := svc.Summary(context.Background())
				So(err, ShouldBeNil)
				So(sum.Total, ShouldEqual, cfg.NumCheckins)
			})

			Convey("Then the generated set is saved", func() {
				data, err := os.ReadFile(cfg.OutputFile)
				So(err, ShouldBeNil)
				var regs []model.Registration
				So(json.Unmarshal(data, &regs), ShouldBeNil)
				So(regs, ShouldHaveLength, cfg.NumCheckins)
			})
		})

		Convey("When the same seed is replayed without a reset", func() {
			_, err := loadgen.Run(context.Background(), cfg)
			So(err, ShouldBeNil)

			cfg.Reset = false
			stats, err := loadgen.Run(context.Background(), cfg)

			Convey("Then every check-in is a duplicate and nothing changes", func() {
				So(err, ShouldBeNil)
				So(stats.Duplicate, ShouldEqual, cfg.NumCheckins)
				So(stats.Accepted, ShouldEqual, 0)
				So(stats.Verified, ShouldBeTrue)
			})
		})
	})

	Convey("Given no server", t, func() {
		cfg := testConfig(t, "http://127.0.0.1:1")
		cfg.Timeout = 200 * time.Millisecond
		_, err := loadgen.Run(context.Background(), cfg)
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "health check")
	})
}
