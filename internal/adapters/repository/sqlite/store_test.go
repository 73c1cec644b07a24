package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/triagem/internal/adapters/repository"
	"github.com/okian/triagem/internal/adapters/repository/sqlite"
	"github.com/okian/triagem/internal/adapters/repository/storetest"
	"github.com/okian/triagem/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func openTemp(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "triagem.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	return s
}

func TestSQLiteStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) repository.Store {
		return openTemp(t)
	})
}

func TestSQLiteStoreReopen(t *testing.T) {
	ctx := context.Background()

	Convey("Given a database file with data", t, func() {
		path := filepath.Join(t.TempDir(), "event.db")
		s, err := sqlite.Open(ctx, path)
		So(err, ShouldBeNil)
		a := model.Attendee{
			ID:         "0b7e6f3e-2f55-4b57-9d3c-2f0a4f1c9a10",
			Role:       model.RoleOrganist,
			Ministry:   model.MinistryInstructor,
			Instrument: model.OrganInstrument,
			Level:      model.LevelMusician,
			City:       "São Pedro",
			Timestamp:  time.Date(2026, 10, 19, 19, 30, 0, 123_000_000, time.UTC),
		}
		So(s.Add(ctx, a), ShouldBeNil)
		So(s.Close(), ShouldBeNil)

		Convey("When it is opened again", func() {
			s, err = sqlite.Open(ctx, path)
			So(err, ShouldBeNil)
			defer s.Close()

			Convey("Then migrations are not reapplied and data survives", func() {
				list, err := s.List(ctx)
				So(err, ShouldBeNil)
				So(list, ShouldResemble, []model.Attendee{a})
			})
		})
	})

	Convey("Given an empty path", t, func() {
		_, err := sqlite.Open(ctx, "  ")
		So(err, ShouldNotBeNil)
	})
}
