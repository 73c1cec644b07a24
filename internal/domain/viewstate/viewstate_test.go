package viewstate_test

import (
	"errors"
	"net/url"
	"testing"

	"github.com/okian/triagem/internal/domain/model"
	"github.com/okian/triagem/internal/domain/viewstate"
	. "github.com/smartystreets/goconvey/convey"
)

func mustTransition(s viewstate.State, e viewstate.Event) viewstate.State {
	next, err := viewstate.Transition(s, e)
	So(err, ShouldBeNil)
	return next
}

func TestTransition(t *testing.T) {
	Convey("Given the landing screen", t, func() {
		s := viewstate.Initial()

		Convey("When an organist is selected", func() {
			s = mustTransition(s, viewstate.SelectRole(model.RoleOrganist))

			Convey("Then the form is preset for the organ", func() {
				So(s.View, ShouldEqual, viewstate.Form)
				So(s.Form.Instrument, ShouldEqual, model.OrganInstrument)
				So(s.Form.Ministry, ShouldEqual, model.MinistryNone)
				So(s.Form.Level, ShouldEqual, model.LevelMusician)
			})

			Convey("And the form is submitted", func() {
				filled := s.Form
				filled.City = "Limeira"
				filled.Ministry = model.MinistryExaminer
				s = mustTransition(s, viewstate.SubmitForm(filled))

				Convey("Then the form resets and a one-shot notice shows", func() {
					So(s.View, ShouldEqual, viewstate.Form)
					So(s.Notice, ShouldEqual, viewstate.Registered)
					So(s.Form, ShouldResemble, viewstate.DefaultForm(model.RoleOrganist))

					s = mustTransition(s, viewstate.Back())
					So(s.Notice, ShouldEqual, viewstate.NoNotice)
					So(s.View, ShouldEqual, viewstate.Landing)
				})
			})
		})

		Convey("When an unknown role is selected", func() {
			next, err := viewstate.Transition(s, viewstate.SelectRole("drummer"))
			So(errors.Is(err, model.ErrInvalidRole), ShouldBeTrue)
			So(next, ShouldResemble, s)
		})

		Convey("When the report is opened directly", func() {
			next, err := viewstate.Transition(s, viewstate.OpenReport())

			Convey("Then the transition is rejected", func() {
				So(errors.Is(err, viewstate.ErrInvalidTransition), ShouldBeTrue)
				So(next, ShouldResemble, s)
			})
		})

		Convey("When navigating dashboard and print", func() {
			s = mustTransition(s, viewstate.OpenDashboard())
			So(s.View, ShouldEqual, viewstate.Dashboard)
			s = mustTransition(s, viewstate.OpenReport())
			So(s.View, ShouldEqual, viewstate.Print)
			s = mustTransition(s, viewstate.Back())
			So(s.View, ShouldEqual, viewstate.Dashboard)
			s = mustTransition(s, viewstate.CloseEvent())
			So(s, ShouldResemble, viewstate.Initial())
		})
	})

	Convey("Given any screen", t, func() {
		for _, v := range []viewstate.View{viewstate.Landing, viewstate.Form, viewstate.Dashboard, viewstate.Print} {
			next, err := viewstate.Transition(viewstate.State{View: v, Role: model.RoleMusician}, viewstate.Home())
			So(err, ShouldBeNil)
			So(next, ShouldResemble, viewstate.Initial())
		}
	})

	Convey("Given the form screen", t, func() {
		s := mustTransition(viewstate.Initial(), viewstate.SelectRole(model.RoleMusician))

		Convey("Closing the event is rejected", func() {
			_, err := viewstate.Transition(s, viewstate.CloseEvent())
			So(errors.Is(err, viewstate.ErrInvalidTransition), ShouldBeTrue)
		})
	})
}

func TestQuery(t *testing.T) {
	Convey("Given a form in progress", t, func() {
		s := mustTransition(viewstate.Initial(), viewstate.SelectRole(model.RoleMusician))
		s.Form.Instrument = "Corne inglês"
		s.Form.City = "São Pedro"
		s.Form.Level = model.LevelInstructor
		s.Form.Ministry = model.MinistryDeacon

		Convey("Then it survives the query round trip", func() {
			q, err := url.ParseQuery(s.Query().Encode())
			So(err, ShouldBeNil)
			So(viewstate.FromQuery(q), ShouldResemble, s)
		})
	})

	Convey("Given the print screen", t, func() {
		s := viewstate.State{View: viewstate.Print}
		So(viewstate.FromQuery(s.Query()), ShouldResemble, s)
	})

	Convey("Given garbage parameters", t, func() {
		So(viewstate.FromQuery(url.Values{"view": {"nowhere"}}), ShouldResemble, viewstate.Initial())
		So(viewstate.FromQuery(url.Values{"view": {"form"}}), ShouldResemble, viewstate.Initial())
	})

	Convey("Given a ministry the role cannot hold", t, func() {
		q := url.Values{"view": {"form"}, "role": {"organist"}, "ministry": {"elder"}}
		s := viewstate.FromQuery(q)
		So(s.Form.Ministry, ShouldEqual, model.MinistryNone)
		So(s.Form.Instrument, ShouldEqual, model.OrganInstrument)
	})

	Convey("Given event kinds from a form post", t, func() {
		k, err := viewstate.ParseKind("open_report")
		So(err, ShouldBeNil)
		So(k, ShouldEqual, viewstate.KindOpenReport)

		_, err = viewstate.ParseKind("fly")
		So(err, ShouldNotBeNil)
	})
}
