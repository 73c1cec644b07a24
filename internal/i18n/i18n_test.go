package i18n_test

import (
	"testing"
	"time"

	"github.com/okian/triagem/internal/domain/model"
	"github.com/okian/triagem/internal/domain/taxonomy"
	"github.com/okian/triagem/internal/i18n"
	. "github.com/smartystreets/goconvey/convey"
)

func hasLabel(key string) {
	So(i18n.Label(key), ShouldNotEqual, key)
}

func TestLabels(t *testing.T) {
	Convey("Given the pt-BR catalog", t, func() {
		Convey("Then every enumeration value has a label", func() {
			for _, r := range model.Roles {
				hasLabel("role." + string(r))
			}
			for _, m := range model.Ministries {
				hasLabel("ministry." + string(m))
			}
			for _, l := range model.Levels {
				hasLabel("level." + string(l))
			}
			for _, f := range taxonomy.Families() {
				hasLabel("family." + string(f))
				hasLabel("family." + string(f) + ".short")
			}
		})

		Convey("Then labels resolve through the message printer", func() {
			So(i18n.RoleLabel(model.RoleOrganist), ShouldEqual, "Organista (Irmã)")
			So(i18n.MinistryLabel(model.MinistryMinisterialCooperator), ShouldEqual, "Coop. do Ofício Ministerial")
			So(i18n.LevelLabel(model.LevelLocalSupervisor), ShouldEqual, "Encarregado Local")
			So(i18n.FamilyShortLabel(taxonomy.Other), ShouldEqual, "Out.")
		})

		Convey("Then unknown keys fall back to the key", func() {
			So(i18n.Label("missing.key"), ShouldEqual, "missing.key")
		})
	})
}

func TestDates(t *testing.T) {
	Convey("Given a Monday evening", t, func() {
		at := time.Date(2026, 10, 19, 19, 5, 0, 0, time.UTC)

		Convey("Then the long date is written in Portuguese", func() {
			So(i18n.LongDate(at), ShouldEqual, "segunda-feira, 19 de outubro de 2026 às 19:05")
		})

		Convey("Then the short date uses dashes", func() {
			So(i18n.ShortDate(at), ShouldEqual, "19-10-2026")
		})
	})
}
