// Package site serves the kiosk pages. Navigation is carried in the URL query
// and advanced by posting events to /ui.
package site

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/triagem/internal/domain/aggregate"
	"github.com/okian/triagem/internal/domain/model"
	"github.com/okian/triagem/internal/domain/report"
	"github.com/okian/triagem/internal/domain/taxonomy"
	"github.com/okian/triagem/internal/domain/viewstate"
	"github.com/okian/triagem/internal/i18n"
	"github.com/okian/triagem/pkg/logger"
)

// Kiosk-only actions. They run a side effect and keep the current view.
const (
	actionSaveEvent  = "save_event"
	actionReflection = "reflection"
)

// Dependencies are the service operations the kiosk drives.
type Dependencies interface {
	Register(ctx context.Context, r model.Registration) (model.Attendee, error)
	Snapshot(ctx context.Context) (aggregate.Snapshot, error)
	Summary(ctx context.Context) (aggregate.Summary, error)
	Metadata(ctx context.Context) model.EventMetadata
	UpdateMetadata(ctx context.Context, m model.EventMetadata) (model.EventMetadata, error)
	Report(ctx context.Context) (report.Layout, error)
	ReportFileName(ctx context.Context) string
	Reflection(ctx context.Context) (string, error)
	LastReflection() string
	CloseEvent(ctx context.Context) (model.EventMetadata, error)
}

// Register attaches the kiosk routes to mux.
func Register(_ context.Context, mux *http.ServeMux, deps Dependencies) {
	if mux == nil {
		panic("mux is nil")
	}
	h := NewHandler(deps)
	mux.HandleFunc("GET /{$}", h.HandleRoot)
	mux.HandleFunc("POST /ui", h.HandleEvent)
}

// Handler renders kiosk pages.
type Handler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewHandler creates a kiosk handler.
func NewHandler(deps Dependencies) *Handler {
	return &Handler{deps: deps, logger: logger.Get().Named("site")}
}

type option struct {
	Value    string
	Label    string
	Selected bool
}

type page struct {
	State       viewstate.State
	Action      string
	Title       string
	Error       string
	Notice      string
	Ministries  []option
	Levels      []option
	Instruments []string
	Cities      []string
	Summary     aggregate.Summary
	Meta        model.EventMetadata
	Reflection  string
	Report      report.Layout
}

// HandleRoot handles GET / and renders the state decoded from the query.
func (h *Handler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, viewstate.FromQuery(r.URL.Query()), http.StatusOK, "")
}

// HandleEvent handles POST /ui. It applies one event to the state in the
// query, runs the matching side effect and redirects to the next state.
func (h *Handler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state := viewstate.FromQuery(r.URL.Query())
	if err := r.ParseForm(); err != nil {
		h.render(w, r, state, http.StatusBadRequest, err.Error())
		return
	}
	name := r.PostForm.Get("event")

	if state.View == viewstate.Dashboard && r.PostForm.Has("venue") {
		if _, err := h.deps.UpdateMetadata(ctx, metadataFromForm(r)); err != nil {
			h.fail(w, r, state, err)
			return
		}
	}
	switch name {
	case actionSaveEvent:
		http.Redirect(w, r, state.URL("/"), http.StatusSeeOther)
		return
	case actionReflection:
		if _, err := h.deps.Reflection(ctx); err != nil {
			h.fail(w, r, state, err)
			return
		}
		http.Redirect(w, r, state.URL("/"), http.StatusSeeOther)
		return
	}

	kind, err := viewstate.ParseKind(name)
	if err != nil {
		h.render(w, r, state, http.StatusBadRequest, err.Error())
		return
	}
	ev := viewstate.Event{Kind: kind}
	switch kind {
	case viewstate.KindSelectRole:
		ev.Role = model.Role(r.PostForm.Get("role"))
	case viewstate.KindSubmitForm:
		ev.Form = registrationFromForm(r, state.Role)
	}

	next, err := viewstate.Transition(state, ev)
	if err != nil {
		h.render(w, r, state, http.StatusBadRequest, err.Error())
		return
	}

	switch kind {
	case viewstate.KindSubmitForm:
		if _, err := h.deps.Register(ctx, ev.Form); err != nil {
			state.Form = ev.Form
			h.fail(w, r, state, err)
			return
		}
	case viewstate.KindCloseEvent:
		if _, err := h.deps.CloseEvent(ctx); err != nil {
			h.fail(w, r, state, err)
			return
		}
	}
	http.Redirect(w, r, next.URL("/"), http.StatusSeeOther)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, state viewstate.State, err error) {
	h.logger.Warn(r.Context(), "kiosk action failed", logger.Error(err))
	status := http.StatusInternalServerError
	if isInputError(err) {
		status = http.StatusBadRequest
	}
	h.render(w, r, state, status, err.Error())
}

func isInputError(err error) bool {
	for _, target := range []error{
		model.ErrInvalidRole, model.ErrInvalidMinistry, model.ErrInvalidLevel,
		model.ErrMissingCity, model.ErrInvalidID,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, state viewstate.State, status int, errMsg string) {
	ctx := r.Context()
	p := page{
		State:  state,
		Action: state.URL("/ui"),
		Title:  i18n.Label("ui.title"),
		Error:  errMsg,
		Meta:   h.deps.Metadata(ctx),
	}
	if state.Notice == viewstate.Registered {
		p.Notice = i18n.Label("ui.registered")
	}

	var err error
	switch state.View {
	case viewstate.Form:
		p.Ministries = ministryOptions(state.Role, state.Form.Ministry)
		p.Levels = levelOptions(state.Form.Level)
		p.Instruments = taxonomy.Instruments()
		var snap aggregate.Snapshot
		snap, err = h.deps.Snapshot(ctx)
		p.Cities = aggregate.Cities(snap)
	case viewstate.Landing, viewstate.Dashboard:
		p.Summary, err = h.deps.Summary(ctx)
		p.Reflection = h.deps.LastReflection()
	case viewstate.Print:
		p.Report, err = h.deps.Report(ctx)
		p.Title = h.deps.ReportFileName(ctx)
	}
	if err != nil {
		h.logger.Error(ctx, "kiosk page data failed", logger.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, "layout.html", p); err != nil {
		h.logger.Error(ctx, "kiosk render failed", logger.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func registrationFromForm(r *http.Request, role model.Role) model.Registration {
	reg := model.Registration{
		Role:       role,
		Ministry:   model.Ministry(r.PostForm.Get("ministry")),
		Instrument: r.PostForm.Get("instrument"),
		Level:      model.Level(r.PostForm.Get("level")),
		City:       r.PostForm.Get("city"),
	}
	if reg.Ministry == "" {
		reg.Ministry = model.MinistryNone
	}
	return reg
}

func metadataFromForm(r *http.Request) model.EventMetadata {
	return model.EventMetadata{
		Venue:            r.PostForm.Get("venue"),
		PresidingElder:   r.PostForm.Get("presiding_elder"),
		RegionalOfficers: r.PostForm.Get("regional_officers"),
		ScriptureReading: r.PostForm.Get("scripture_reading"),
		HymnsRehearsed:   strings.TrimSpace(r.PostForm.Get("hymns_rehearsed")),
	}
}

func ministryOptions(role model.Role, selected model.Ministry) []option {
	ms := model.MinistriesFor(role)
	out := make([]option, 0, len(ms))
	for _, m := range ms {
		out = append(out, option{Value: string(m), Label: i18n.MinistryLabel(m), Selected: m == selected})
	}
	return out
}

func levelOptions(selected model.Level) []option {
	out := make([]option, 0, len(model.Levels))
	for _, l := range model.Levels {
		out = append(out, option{Value: string(l), Label: i18n.LevelLabel(l), Selected: l == selected})
	}
	return out
}
