package api

import (
	"errors"
	"net/http"

	service "github.com/okian/triagem/internal/app"
	repository "github.com/okian/triagem/internal/adapters/repository"
	"github.com/okian/triagem/internal/domain/model"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrBackpressure = errors.New("backpressure")
)

// Error tags a failure with the operation that produced it and its kind.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// WrapKind wraps err as a failure of kind in op.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// NewKind returns a failure of kind in op with no further cause.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// Wrap tags err with op, keeping its own kind.
func Wrap(op string, err error) error {
	return &Error{Op: op, Kind: err}
}

// classify maps an error to its HTTP status and stable error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, model.ErrInvalidRole),
		errors.Is(err, model.ErrInvalidMinistry),
		errors.Is(err, model.ErrInvalidLevel),
		errors.Is(err, model.ErrMissingCity),
		errors.Is(err, model.ErrInvalidID):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, repository.ErrDuplicate):
		return http.StatusConflict, "duplicate"
	case errors.Is(err, service.ErrNoAttendees):
		return http.StatusConflict, "no_attendees"
	case errors.Is(err, service.ErrNotStarted), errors.Is(err, repository.ErrClosed), errors.Is(err, service.ErrCheckinsPending):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
