// Package loadgen drives a running triagem server with random check-ins and
// verifies that the dashboard counts match what was submitted.
package loadgen

import (
	"time"

	"github.com/okian/triagem/internal/domain/model"
)

// Config holds configuration for a load run.
type Config struct {
	BaseURL       string        // Base URL of the service
	NumCheckins   int           // Number of registrations to generate
	Workers       int           // Number of concurrent submitters
	Timeout       time.Duration // HTTP request timeout
	Seed          int64         // RNG seed; equal seeds generate equal sets
	UnknownShare  float64       // Share of musicians playing an instrument outside the taxonomy
	OrganistShare float64       // Share of organists
	Cities        int           // Number of distinct cities to draw from
	Reset         bool          // Close the current event before submitting
	SettleTimeout time.Duration // How long to wait for the summary to catch up
	PollInterval  time.Duration // Interval between summary polls
	OutputFile    string        // Output file for the generated set
	LogFile       string        // Log file for run output
	Verbose       bool          // Enable verbose logging
}

// DefaultConfig returns the flag defaults of the load tool.
func DefaultConfig() Config {
	return Config{
		BaseURL:       "http://localhost:9080",
		NumCheckins:   1000,
		Workers:       8,
		Timeout:       10 * time.Second,
		Seed:          1,
		UnknownShare:  0.05,
		OrganistShare: 0.15,
		Cities:        8,
		Reset:         true,
		SettleTimeout: 30 * time.Second,
		PollInterval:  250 * time.Millisecond,
	}
}

// AckResponse is the body returned by POST /attendees.
type AckResponse struct {
	Status    string `json:"status"`
	ID        string `json:"id"`
	Duplicate bool   `json:"duplicate"`
}

// Stats holds run statistics.
type Stats struct {
	Generated  int
	Submitted  int
	Accepted   int
	Duplicate  int
	Rejected   int // 429 backpressure
	Failed     int
	Verified   bool
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	Registered []model.Registration // accepted registrations, in no particular order
}
