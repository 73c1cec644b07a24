package aggregate_test

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/okian/triagem/internal/domain/aggregate"
	"github.com/okian/triagem/internal/domain/model"
	"github.com/okian/triagem/internal/domain/taxonomy"
	. "github.com/smartystreets/goconvey/convey"
)

var cities = []string{"Piracicaba", "Limeira", "Americana", "piracicaba", "Rio Claro"}

// randomSnapshot builds a deterministic snapshot mixing known and unknown instruments.
func randomSnapshot(rng *rand.Rand, n int) aggregate.Snapshot {
	instruments := append(taxonomy.Instruments(), "Kazoo", model.UnspecifiedInstrument)
	base := time.Date(2026, 10, 19, 19, 0, 0, 0, time.UTC)
	s := make(aggregate.Snapshot, n)
	for i := range s {
		a := model.Attendee{
			ID:        fmt.Sprintf("a-%d", i),
			City:      cities[rng.Intn(len(cities))],
			Ministry:  model.Ministries[rng.Intn(len(model.Ministries))],
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}
		if rng.Intn(4) == 0 {
			a.Role = model.RoleOrganist
			a.Instrument = model.OrganInstrument
			a.Level = model.LevelMusician
		} else {
			a.Role = model.RoleMusician
			a.Instrument = instruments[rng.Intn(len(instruments))]
			a.Level = model.Levels[rng.Intn(len(model.Levels))]
		}
		s[i] = a
	}
	return s
}

func attendee(role model.Role, instrument, city string) model.Attendee {
	return model.Attendee{
		ID:         city + instrument,
		Role:       role,
		Ministry:   model.MinistryNone,
		Instrument: instrument,
		Level:      model.LevelMusician,
		City:       city,
	}
}

func TestCountingProperties(t *testing.T) {
	Convey("Given seeded random snapshots", t, func() {
		rng := rand.New(rand.NewSource(42))

		for round := 0; round < 25; round++ {
			s := randomSnapshot(rng, rng.Intn(60))

			familySum := 0
			for _, f := range taxonomy.Families() {
				byInstrument := 0
				for _, name := range f.Instruments() {
					byInstrument += aggregate.CountByInstrument(s, name)
				}
				So(aggregate.CountByFamily(s, f), ShouldEqual, byInstrument)
				familySum += aggregate.CountByFamily(s, f)
			}

			So(familySum, ShouldBeLessThanOrEqualTo, len(s))
			So(familySum+aggregate.Uncategorized(s), ShouldEqual, len(s))
			So(aggregate.CountByRole(s, model.RoleMusician)+aggregate.CountByRole(s, model.RoleOrganist), ShouldEqual, len(s))
			So(aggregate.Cities(s), ShouldHaveLength, aggregate.UniqueCityCount(s))

			if len(s) > 0 {
				dup := s[0]
				dup.ID = "dup"
				grown := append(append(aggregate.Snapshot{}, s...), dup)
				So(aggregate.UniqueCityCount(grown), ShouldEqual, aggregate.UniqueCityCount(s))
			}
		}
	})
}

func TestSummarizeAgrees(t *testing.T) {
	Convey("Given a random snapshot", t, func() {
		rng := rand.New(rand.NewSource(7))
		s := randomSnapshot(rng, 200)
		sum := aggregate.Summarize(s)

		Convey("Then the one-pass summary matches the individual counters", func() {
			So(sum.Total, ShouldEqual, len(s))
			So(sum.Musicians, ShouldEqual, aggregate.CountByRole(s, model.RoleMusician))
			So(sum.Organists, ShouldEqual, aggregate.CountByRole(s, model.RoleOrganist))
			So(sum.Cities, ShouldEqual, aggregate.UniqueCityCount(s))
			So(sum.Servants, ShouldEqual, aggregate.TotalMinistryServants(s))
			So(sum.Uncategorized, ShouldEqual, aggregate.Uncategorized(s))
			for _, f := range taxonomy.Families() {
				So(sum.Families[f], ShouldEqual, aggregate.CountByFamily(s, f))
			}
			for _, m := range model.Ministries {
				So(sum.Ministries[m], ShouldEqual, aggregate.CountByMinistry(s, m))
			}
			for _, l := range model.Levels {
				So(sum.Levels[l], ShouldEqual, aggregate.CountByLevel(s, l))
			}
		})
	})
}

func TestScenarios(t *testing.T) {
	Convey("Given an attendee with an unknown instrument", t, func() {
		s := aggregate.Snapshot{attendee(model.RoleMusician, "Kazoo", "Limeira")}

		Convey("Then it counts for its role but for no family", func() {
			for _, f := range taxonomy.Families() {
				So(aggregate.CountByFamily(s, f), ShouldEqual, 0)
			}
			So(aggregate.CountByRole(s, model.RoleMusician), ShouldEqual, 1)
			So(aggregate.Uncategorized(s), ShouldEqual, 1)
		})
	})

	Convey("Given cities differing only by case", t, func() {
		s := aggregate.Snapshot{
			attendee(model.RoleMusician, "Tuba", "Piracicaba"),
			attendee(model.RoleMusician, "Tuba", "piracicaba"),
			attendee(model.RoleOrganist, model.OrganInstrument, "Piracicaba"),
		}

		Convey("Then they are counted as distinct", func() {
			So(aggregate.UniqueCityCount(s), ShouldEqual, 2)
		})
	})

	Convey("Given an empty snapshot", t, func() {
		var s aggregate.Snapshot

		Convey("Then every count is zero", func() {
			So(aggregate.UniqueCityCount(s), ShouldEqual, 0)
			So(aggregate.TotalMinistryServants(s), ShouldEqual, 0)
			So(aggregate.CountByFamily(s, taxonomy.Brass), ShouldEqual, 0)
			So(aggregate.Summarize(s).Families[taxonomy.Other], ShouldEqual, 0)
		})
	})

	Convey("Given ministry servants and supervisors", t, func() {
		elder := attendee(model.RoleMusician, "Tuba", "A")
		elder.Ministry = model.MinistryElder
		both := attendee(model.RoleMusician, "Trompete", "B")
		both.Ministry = model.MinistryYouthCooperator
		both.Level = model.LevelRegionalSupervisor
		local := attendee(model.RoleMusician, "Viola", "C")
		local.Level = model.LevelLocalSupervisor
		organist := attendee(model.RoleOrganist, model.OrganInstrument, "D")
		organist.Ministry = model.MinistryOrganist
		instructor := attendee(model.RoleOrganist, model.OrganInstrument, "E")
		instructor.Ministry = model.MinistryInstructor
		s := aggregate.Snapshot{elder, both, local, organist, instructor}

		Convey("Then overlapping attendees are counted twice", func() {
			// elder 1 + cooperator 1 + instructor 1, regional 1 + local 1
			So(aggregate.TotalMinistryServants(s), ShouldEqual, 5)
		})

		Convey("Then the snapshot is left untouched", func() {
			before := append(aggregate.Snapshot{}, s...)
			_ = aggregate.Summarize(s)
			_ = aggregate.TotalMinistryServants(s)
			So(s, ShouldResemble, before)
		})
	})
}

func TestCities(t *testing.T) {
	Convey("Given attendees from repeated and case-variant cities", t, func() {
		s := aggregate.Snapshot{
			{ID: "1", City: "Piracicaba"},
			{ID: "2", City: "Limeira"},
			{ID: "3", City: "Piracicaba"},
			{ID: "4", City: "piracicaba"},
		}

		Convey("Then each distinct value is listed once in order", func() {
			So(aggregate.Cities(s), ShouldResemble, []string{"Limeira", "Piracicaba", "piracicaba"})
		})
	})

	Convey("Given an empty snapshot", t, func() {
		So(aggregate.Cities(nil), ShouldBeEmpty)
	})
}
