// Package storetest holds the behaviour every repository.Store must share.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/triagem/internal/adapters/repository"
	"github.com/okian/triagem/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var base = time.Date(2026, 10, 19, 19, 0, 0, 0, time.UTC)

func attendee(id string, minute int) model.Attendee {
	return model.Attendee{
		ID:         id,
		Role:       model.RoleMusician,
		Ministry:   model.MinistryNone,
		Instrument: "Violino",
		Level:      model.LevelMusician,
		City:       "Limeira",
		Timestamp:  base.Add(time.Duration(minute) * time.Minute),
	}
}

// Run exercises a store created by open. Each Convey leaf gets a fresh store.
func Run(t *testing.T, open func(t *testing.T) repository.Store) {
	ctx := context.Background()

	Convey("Given an empty store", t, func() {
		s := open(t)
		Reset(func() { _ = s.Close() })

		Convey("Then it lists nothing and has no metadata", func() {
			list, err := s.List(ctx)
			So(err, ShouldBeNil)
			So(list, ShouldBeEmpty)
			So(s.Count(ctx), ShouldEqual, 0)

			_, err = s.Metadata(ctx)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("When attendees are added", func() {
			So(s.Add(ctx, attendee("b", 1)), ShouldBeNil)
			So(s.Add(ctx, attendee("c", 2)), ShouldBeNil)
			So(s.Add(ctx, attendee("a", 1)), ShouldBeNil)

			Convey("Then they are listed most recent first, ties by id", func() {
				list, err := s.List(ctx)
				So(err, ShouldBeNil)
				ids := []string{}
				for _, a := range list {
					ids = append(ids, a.ID)
				}
				So(ids, ShouldResemble, []string{"c", "a", "b"})
				So(list[0], ShouldResemble, attendee("c", 2))
				So(s.Count(ctx), ShouldEqual, 3)
			})

			Convey("Then a repeated id is rejected", func() {
				err := s.Add(ctx, attendee("a", 5))
				So(errors.Is(err, repository.ErrDuplicate), ShouldBeTrue)
				So(s.Count(ctx), ShouldEqual, 3)
			})

			Convey("Then the listed slice is a snapshot", func() {
				list, _ := s.List(ctx)
				list[0].City = "mutated"
				again, _ := s.List(ctx)
				So(again[0].City, ShouldEqual, "Limeira")
			})

			Convey("Then one can be deleted", func() {
				So(s.Delete(ctx, "c"), ShouldBeNil)
				So(s.Count(ctx), ShouldEqual, 2)
				So(errors.Is(s.Delete(ctx, "c"), repository.ErrNotFound), ShouldBeTrue)
			})

			Convey("Then all can be cleared", func() {
				n, err := s.Clear(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 3)
				So(s.Count(ctx), ShouldEqual, 0)
			})
		})

		Convey("When many writers add at once", func() {
			const writers, perWriter = 8, 50
			var (
				wg     sync.WaitGroup
				mu     sync.Mutex
				failed []error
			)
			for w := 0; w < writers; w++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := 0; i < perWriter; i++ {
						if err := s.Add(ctx, attendee(fmt.Sprintf("w%d-%03d", w, i), i)); err != nil {
							mu.Lock()
							failed = append(failed, err)
							mu.Unlock()
						}
					}
				}()
			}
			wg.Wait()

			Convey("Then every attendee is stored", func() {
				So(failed, ShouldBeEmpty)
				So(s.Count(ctx), ShouldEqual, writers*perWriter)
			})
		})

		Convey("When metadata is saved twice", func() {
			m := model.EventMetadata{
				Venue:          "Piracicaba - Centro",
				EventDate:      "segunda-feira, 19 de outubro de 2026 às 19:00",
				HymnsRehearsed: "267, 194",
				UpdatedAt:      base,
			}
			So(s.SaveMetadata(ctx, m), ShouldBeNil)
			m.PresidingElder = "Ir. João"
			So(s.SaveMetadata(ctx, m), ShouldBeNil)

			Convey("Then the latest record is returned", func() {
				got, err := s.Metadata(ctx)
				So(err, ShouldBeNil)
				So(got, ShouldResemble, m)
			})

			Convey("Then it can be cleared", func() {
				So(s.ClearMetadata(ctx), ShouldBeNil)
				_, err := s.Metadata(ctx)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}
