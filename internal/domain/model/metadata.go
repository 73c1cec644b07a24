package model

import "time"

// EventMetadata is the single live header record of the rehearsal.
type EventMetadata struct {
	Venue            string    `json:"venue"`
	EventDate        string    `json:"event_date"` // pre-formatted display string
	PresidingElder   string    `json:"presiding_elder"`
	RegionalOfficers string    `json:"regional_officers"`
	ScriptureReading string    `json:"scripture_reading"`
	HymnsRehearsed   string    `json:"hymns_rehearsed"` // comma-delimited
	UpdatedAt        time.Time `json:"updated_at"`
}

// DefaultMetadata returns an empty header whose date is already stamped.
func DefaultMetadata(eventDate string, now time.Time) EventMetadata {
	return EventMetadata{EventDate: eventDate, UpdatedAt: now}
}

// IsBlank reports whether none of the organizer-edited fields were filled in.
func (m EventMetadata) IsBlank() bool {
	return m.Venue == "" &&
		m.PresidingElder == "" &&
		m.RegionalOfficers == "" &&
		m.ScriptureReading == "" &&
		m.HymnsRehearsed == ""
}
