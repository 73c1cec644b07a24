package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/triagem/internal/domain/aggregate"
	"github.com/okian/triagem/internal/domain/model"
)

// CheckinDependencies defines the interface for check-in processing.
type CheckinDependencies interface {
	SeenAndRecord(ctx context.Context, id string) bool
	Unrecord(ctx context.Context, id string)
	NewAttendee(r model.Registration) (model.Attendee, error)
	Enqueue(ctx context.Context, a model.Attendee) bool
	Snapshot(ctx context.Context) (aggregate.Snapshot, error)
	Delete(ctx context.Context, id string) error
}

// AttendeesHandler handles attendee requests.
type AttendeesHandler struct {
	deps CheckinDependencies
}

// NewAttendeesHandler creates a new attendees handler.
func NewAttendeesHandler(deps CheckinDependencies) *AttendeesHandler {
	return &AttendeesHandler{deps: deps}
}

type ackResponse struct {
	Status    string `json:"status"`
	ID        string `json:"id"`
	Duplicate bool   `json:"duplicate"`
}

// HandleList handles GET /attendees requests.
func (h *AttendeesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	snap, err := h.deps.Snapshot(r.Context())
	if err != nil {
		writeError(w, Wrap("api.list_attendees", err))
		return
	}
	if snap == nil {
		snap = aggregate.Snapshot{}
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleCheckin handles POST /attendees requests. Check-ins are persisted
// asynchronously; a client-supplied id makes retries idempotent.
func (h *AttendeesHandler) HandleCheckin(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_attendee"
	var req model.Registration
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	a, err := h.deps.NewAttendee(req)
	if err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), a.ID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", ID: a.ID, Duplicate: true})
		return
	}
	if ok := h.deps.Enqueue(r.Context(), a); !ok {
		h.deps.Unrecord(r.Context(), a.ID)
		writeError(w, NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", ID: a.ID})
}

// HandleDelete handles DELETE /attendees/{id} requests.
func (h *AttendeesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_attendee"
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		writeError(w, NewKind(op, ErrBadRequest))
		return
	}
	if err := h.deps.Delete(r.Context(), id); err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
