// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Instrument sentinels recorded when the form does not offer a choice.
const (
	// OrganInstrument is stored for every organist.
	OrganInstrument = "Órgão"
	// UnspecifiedInstrument is stored for musicians who skip the instrument field.
	UnspecifiedInstrument = "Não informado"
)

// Sentinel kinds for registration validation.
var (
	ErrInvalidRole     = errors.New("invalid role")
	ErrInvalidMinistry = errors.New("invalid ministry")
	ErrInvalidLevel    = errors.New("invalid level")
	ErrMissingCity     = errors.New("missing city")
	ErrInvalidID       = errors.New("invalid attendee id")
)

// Attendee is one person's check-in record. Records are immutable once created.
type Attendee struct {
	ID         string    `json:"id"`
	Role       Role      `json:"role"`
	Ministry   Ministry  `json:"ministry"`
	Instrument string    `json:"instrument"`
	Level      Level     `json:"level"`
	City       string    `json:"city"`
	Timestamp  time.Time `json:"timestamp"`
}

// Registration is the check-in input accepted from the kiosk or the API.
type Registration struct {
	ID         string   `json:"id,omitempty"` // optional client id for idempotent retries
	Role       Role     `json:"role"`
	Ministry   Ministry `json:"ministry"`
	Instrument string   `json:"instrument"`
	Level      Level    `json:"level"`
	City       string   `json:"city"`
}

// Normalize applies the form defaults: organists always play the organ at the
// plain musician level, musicians without an instrument are marked unspecified.
func (r Registration) Normalize() Registration {
	r.ID = strings.TrimSpace(r.ID)
	r.City = strings.TrimSpace(r.City)
	r.Instrument = strings.TrimSpace(r.Instrument)
	if r.Ministry == "" {
		r.Ministry = MinistryNone
	}
	switch r.Role {
	case RoleOrganist:
		r.Instrument = OrganInstrument
		r.Level = LevelMusician
	case RoleMusician:
		if r.Instrument == "" {
			r.Instrument = UnspecifiedInstrument
		}
		if r.Level == "" {
			r.Level = LevelMusician
		}
	}
	return r
}

// Validate checks a normalized registration.
func (r Registration) Validate() error {
	if !r.Role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, r.Role)
	}
	if !r.Ministry.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMinistry, r.Ministry)
	}
	if !r.Ministry.AllowedFor(r.Role) {
		return fmt.Errorf("%w: %q is not offered to %s", ErrInvalidMinistry, r.Ministry, r.Role)
	}
	if !r.Level.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidLevel, r.Level)
	}
	if r.City == "" {
		return ErrMissingCity
	}
	if r.ID != "" {
		if _, err := uuid.Parse(r.ID); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidID, err)
		}
	}
	return nil
}

// NewAttendee normalizes and validates r and stamps it into an Attendee.
// A fresh uuid is assigned when the registration carries none.
func NewAttendee(r Registration, now time.Time) (Attendee, error) {
	r = r.Normalize()
	if err := r.Validate(); err != nil {
		return Attendee{}, err
	}
	id := r.ID
	if id == "" {
		id = uuid.NewString()
	}
	return Attendee{
		ID:         id,
		Role:       r.Role,
		Ministry:   r.Ministry,
		Instrument: r.Instrument,
		Level:      r.Level,
		City:       r.City,
		Timestamp:  now,
	}, nil
}
