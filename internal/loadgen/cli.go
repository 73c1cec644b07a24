package loadgen

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/triagem/pkg/logger"
)

const logFilePermission = 0600

// SetupLogging sends logger output to both stdout and logFile. An empty
// logFile gets a timestamped name. The returned func closes the file.
func SetupLogging(logFile, format string) (func() error, error) {
	if logFile == "" {
		logFile = "checkin_load_" + time.Now().Format("20060102_150405") + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	if err := logger.InitWithOptions(
		logger.WithFormat(format),
		logger.WithWriter(io.MultiWriter(os.Stdout, file)),
	); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return file.Close, nil
}

// ShowHelp prints usage information for the load tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Triagem Check-in Load Tool
==========================

Submits random check-ins to a running triagem server and verifies the
dashboard summary against the generated set.

Usage:
  go run ./cmd/checkin-load [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -n int
        Number of check-ins to generate (default 1000)
  -workers int
        Number of concurrent submitters (default 8)
  -seed int
        RNG seed (default 1)
  -unknown float
        Share of musicians with an instrument outside the taxonomy (default 0.05)
  -organists float
        Share of organists (default 0.15)
  -cities int
        Number of distinct cities (default 8)
  -reset
        Close the current event before submitting (default true)
  -timeout duration
        HTTP request timeout (default 10s)
  -settle duration
        Time allowed for the summary to catch up (default 30s)
  -output string
        Output file for the generated set (default: checkins_TIMESTAMP.json)
  -log string
        Log file for run output (default: checkin_load_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  go run ./cmd/checkin-load -n 5000 -workers 32
  go run ./cmd/checkin-load -reset=false -seed 42 -url http://kiosk.local:9080
`)
}
