package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/triagem/internal/loadgen"
	"github.com/okian/triagem/pkg/logger"
)

const defaultRunTimeout = 10 * time.Minute

func main() {
	os.Exit(run())
}

func run() int {
	def := loadgen.DefaultConfig()
	var (
		baseURL       = flag.String("url", def.BaseURL, "Base URL of the service")
		numCheckins   = flag.Int("n", def.NumCheckins, "Number of check-ins to generate")
		workers       = flag.Int("workers", def.Workers, "Number of concurrent submitters")
		seed          = flag.Int64("seed", def.Seed, "RNG seed")
		unknownShare  = flag.Float64("unknown", def.UnknownShare, "Share of musicians with an instrument outside the taxonomy")
		organistShare = flag.Float64("organists", def.OrganistShare, "Share of organists")
		cities        = flag.Int("cities", def.Cities, "Number of distinct cities")
		reset         = flag.Bool("reset", def.Reset, "Close the current event before submitting")
		timeout       = flag.Duration("timeout", def.Timeout, "HTTP request timeout")
		settle        = flag.Duration("settle", def.SettleTimeout, "Time allowed for the summary to catch up")
		outputFile    = flag.String("output", "", "Output file for the generated set (default: checkins_TIMESTAMP.json)")
		logFile       = flag.String("log", "", "Log file for run output (default: checkin_load_TIMESTAMP.log)")
		logFormat     = flag.String("log-format", "text", "Log format: text or json")
		verbose       = flag.Bool("verbose", false, "Enable verbose logging")
		help          = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		loadgen.ShowHelp()
		return 0
	}

	closeLog, err := loadgen.SetupLogging(*logFile, *logFormat)
	if err != nil {
		_, _ = os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return 1
	}
	defer func() { _ = closeLog() }()
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	cfg := def
	cfg.BaseURL = *baseURL
	cfg.NumCheckins = *numCheckins
	cfg.Workers = *workers
	cfg.Seed = *seed
	cfg.UnknownShare = *unknownShare
	cfg.OrganistShare = *organistShare
	cfg.Cities = *cities
	cfg.Reset = *reset
	cfg.Timeout = *timeout
	cfg.SettleTimeout = *settle
	cfg.OutputFile = *outputFile
	cfg.LogFile = *logFile
	cfg.Verbose = *verbose

	if _, err := loadgen.Run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "load run failed", logger.Error(err))
		return 1
	}
	return 0
}
