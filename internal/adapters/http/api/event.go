package api

import (
	"context"
	"net/http"

	"github.com/okian/triagem/internal/domain/model"
)

// EventDependencies defines the interface for event metadata operations.
type EventDependencies interface {
	Metadata(ctx context.Context) model.EventMetadata
	UpdateMetadata(ctx context.Context, m model.EventMetadata) (model.EventMetadata, error)
	CloseEvent(ctx context.Context) (model.EventMetadata, error)
}

// EventHandler handles the event header and its lifecycle.
type EventHandler struct {
	deps EventDependencies
}

// NewEventHandler creates a new event handler.
func NewEventHandler(deps EventDependencies) *EventHandler {
	return &EventHandler{deps: deps}
}

// HandleGet handles GET /event requests.
func (h *EventHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Metadata(r.Context()))
}

// HandleUpdate handles PUT /event requests.
func (h *EventHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_event"
	var req model.EventMetadata
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	m, err := h.deps.UpdateMetadata(r.Context(), req)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// HandleClose handles POST /event/close requests.
func (h *EventHandler) HandleClose(w http.ResponseWriter, r *http.Request) {
	m, err := h.deps.CloseEvent(r.Context())
	if err != nil {
		writeError(w, Wrap("api.close_event", err))
		return
	}
	writeJSON(w, http.StatusOK, m)
}
