// Package viewstate models kiosk navigation as an immutable state value and a
// pure transition function.
package viewstate

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/okian/triagem/internal/domain/model"
)

// ErrInvalidTransition is returned when an event does not apply to the current view.
var ErrInvalidTransition = errors.New("invalid view transition")

// View is one of the four kiosk screens.
type View string

const (
	Landing   View = "landing"
	Form      View = "form"
	Dashboard View = "dashboard"
	Print     View = "print"
)

// Valid reports whether v is a known screen.
func (v View) Valid() bool {
	switch v {
	case Landing, Form, Dashboard, Print:
		return true
	}
	return false
}

// Notice is a one-shot message shown on the next render only.
type Notice string

const (
	NoNotice   Notice = ""
	Registered Notice = "registered"
)

// State is the complete navigation state.
type State struct {
	View   View
	Role   model.Role
	Form   model.Registration
	Notice Notice
}

// Initial returns the landing state.
func Initial() State {
	return State{View: Landing}
}

// EventKind names a user action.
type EventKind string

const (
	KindSelectRole    EventKind = "select_role"
	KindSubmitForm    EventKind = "submit_form"
	KindOpenDashboard EventKind = "open_dashboard"
	KindOpenReport    EventKind = "open_report"
	KindBack          EventKind = "back"
	KindHome          EventKind = "home"
	KindCloseEvent    EventKind = "close_event"
)

// Event is a user action with its payload.
type Event struct {
	Kind EventKind
	Role model.Role
	Form model.Registration
}

// SelectRole picks the attendee role on the landing screen.
func SelectRole(r model.Role) Event { return Event{Kind: KindSelectRole, Role: r} }

// SubmitForm records a completed registration form.
func SubmitForm(f model.Registration) Event { return Event{Kind: KindSubmitForm, Form: f} }

func OpenDashboard() Event { return Event{Kind: KindOpenDashboard} }

func OpenReport() Event { return Event{Kind: KindOpenReport} }

func Back() Event { return Event{Kind: KindBack} }

func Home() Event { return Event{Kind: KindHome} }

func CloseEvent() Event { return Event{Kind: KindCloseEvent} }

// ParseKind parses an event kind as posted by the kiosk forms.
func ParseKind(s string) (EventKind, error) {
	k := EventKind(s)
	switch k {
	case KindSelectRole, KindSubmitForm, KindOpenDashboard, KindOpenReport, KindBack, KindHome, KindCloseEvent:
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown event %q", ErrInvalidTransition, s)
}

// DefaultForm returns a blank registration form for role.
func DefaultForm(role model.Role) model.Registration {
	f := model.Registration{
		Role:     role,
		Ministry: model.MinistryNone,
		Level:    model.LevelMusician,
	}
	if role == model.RoleOrganist {
		f.Instrument = model.OrganInstrument
	}
	return f
}

// Transition applies e to s. On error the unchanged state is returned.
func Transition(s State, e Event) (State, error) {
	next := s
	next.Notice = NoNotice

	switch {
	case e.Kind == KindHome:
		return Initial(), nil

	case e.Kind == KindSelectRole && s.View == Landing:
		if !e.Role.Valid() {
			return s, fmt.Errorf("%w: %q", model.ErrInvalidRole, e.Role)
		}
		next.View = Form
		next.Role = e.Role
		next.Form = DefaultForm(e.Role)

	case e.Kind == KindSubmitForm && s.View == Form:
		next.Form = DefaultForm(s.Role)
		next.Notice = Registered

	case e.Kind == KindOpenDashboard && s.View == Landing:
		next.View = Dashboard

	case e.Kind == KindOpenReport && s.View == Dashboard:
		next.View = Print

	case e.Kind == KindBack && (s.View == Form || s.View == Dashboard):
		return Initial(), nil

	case e.Kind == KindBack && s.View == Print:
		next.View = Dashboard

	case e.Kind == KindCloseEvent && s.View == Dashboard:
		return Initial(), nil

	default:
		return s, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, e.Kind, s.View)
	}
	return next, nil
}

// Query encodes s as URL query parameters.
func (s State) Query() url.Values {
	q := url.Values{}
	q.Set("view", string(s.View))
	if s.Role != "" {
		q.Set("role", string(s.Role))
	}
	if s.View == Form {
		q.Set("ministry", string(s.Form.Ministry))
		q.Set("level", string(s.Form.Level))
		if s.Form.Instrument != "" {
			q.Set("instrument", s.Form.Instrument)
		}
		if s.Form.City != "" {
			q.Set("city", s.Form.City)
		}
	}
	if s.Notice != NoNotice {
		q.Set("notice", string(s.Notice))
	}
	return q
}

// FromQuery decodes a state written by Query. Unknown or inconsistent values
// fall back to the landing state.
func FromQuery(q url.Values) State {
	v := View(q.Get("view"))
	if !v.Valid() {
		return Initial()
	}
	s := State{View: v, Notice: Notice(q.Get("notice"))}
	if s.Notice != Registered {
		s.Notice = NoNotice
	}
	if r := model.Role(q.Get("role")); r.Valid() {
		s.Role = r
	}
	if v != Form {
		return s
	}
	if s.Role == "" {
		return Initial()
	}
	s.Form = DefaultForm(s.Role)
	if m, err := model.ParseMinistry(q.Get("ministry")); err == nil && m.AllowedFor(s.Role) {
		s.Form.Ministry = m
	}
	if s.Role == model.RoleMusician {
		if l, err := model.ParseLevel(q.Get("level")); err == nil {
			s.Form.Level = l
		}
		s.Form.Instrument = q.Get("instrument")
	}
	s.Form.City = q.Get("city")
	return s
}

// URL returns the path of the kiosk page rendering s.
func (s State) URL(path string) string {
	return path + "?" + s.Query().Encode()
}
