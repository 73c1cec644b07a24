package loadgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/triagem/internal/domain/aggregate"
	"github.com/okian/triagem/internal/domain/model"
	"github.com/okian/triagem/pkg/logger"
)

const (
	directoryPermission = 0750
	progressEvery       = 500
	percentage          = 100
)

// ErrNotSettled is returned when the server summary does not reach the
// expected total within the settle timeout.
var ErrNotSettled = errors.New("summary did not settle")

// Run executes a complete load run: health check, optional reset, generate,
// submit, wait for the summary to settle, verify and save.
func Run(ctx context.Context, cfg Config) (*Stats, error) {
	log := logger.Get().Named("loadgen")
	stats := &Stats{StartTime: time.Now()}

	log.Info(ctx, "starting check-in load run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("checkins", cfg.NumCheckins),
		logger.Int("workers", cfg.Workers),
		logger.Int64("seed", cfg.Seed),
		logger.Bool("reset", cfg.Reset),
		logger.Duration("timeout", cfg.Timeout))

	client := NewClient(cfg.BaseURL, cfg.Timeout)

	// Step 1: Check service health
	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}
	log.Info(ctx, "service is healthy")

	// Step 2: Start from an empty event when asked to
	if cfg.Reset {
		if err := client.CloseEvent(ctx); err != nil {
			return stats, fmt.Errorf("event reset failed: %w", err)
		}
		log.Info(ctx, "closed the current event")
	}
	baseline, err := client.Summary(ctx)
	if err != nil {
		return stats, fmt.Errorf("baseline summary failed: %w", err)
	}

	// Step 3: Generate registrations
	regs, err := NewGenerator(cfg).Generate(ctx, cfg.NumCheckins)
	if err != nil {
		return stats, fmt.Errorf("generation failed: %w", err)
	}
	stats.Generated = len(regs)

	// Step 4: Submit concurrently
	if err := submit(ctx, cfg, client, regs, stats); err != nil {
		return stats, fmt.Errorf("submission failed: %w", err)
	}

	// Step 5: Wait for the async writers to drain
	want := baseline.Total + stats.Accepted
	got, err := waitForTotal(ctx, cfg, client, want)
	if err != nil {
		return stats, err
	}

	// Step 6: Verify counts
	expected, err := Expected(stats.Registered)
	if err != nil {
		return stats, fmt.Errorf("expected summary: %w", err)
	}
	if cfg.Reset {
		err = Verify(got, expected, true)
	} else {
		err = Verify(Delta(baseline, got), expected, false)
	}
	if err != nil {
		return stats, err
	}
	stats.Verified = true
	log.Info(ctx, "summary verified", logger.Int("total", got.Total))

	// Step 7: Save the generated set
	if err := saveRegistrations(ctx, cfg.OutputFile, regs); err != nil {
		log.Warn(ctx, "failed to save registrations to file", logger.Error(err))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)
	return stats, nil
}

func submit(ctx context.Context, cfg Config, client *Client, regs []model.Registration, stats *Stats) error {
	log := logger.Get().Named("loadgen")
	log.Info(ctx, "submitting check-ins", logger.Int("count", len(regs)), logger.Int("workers", cfg.Workers))

	var (
		submitted, accepted, duplicate, rejected, failed atomic.Int64
		mu                                               sync.Mutex
		registered                                       = make([]model.Registration, 0, len(regs))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))

	for _, r := range regs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			outcome, err := client.Checkin(gctx, r)
			n := submitted.Add(1)
			switch outcome {
			case OutcomeAccepted:
				accepted.Add(1)
				mu.Lock()
				registered = append(registered, r)
				mu.Unlock()
			case OutcomeDuplicate:
				duplicate.Add(1)
			case OutcomeRejected:
				rejected.Add(1)
			case OutcomeFailed:
				failed.Add(1)
				if cfg.Verbose {
					log.Warn(gctx, "check-in failed", logger.String("id", r.ID), logger.Error(err))
				}
			}
			if n%progressEvery == 0 {
				log.Info(gctx, "progress",
					logger.Int64("submitted", n),
					logger.Int64("accepted", accepted.Load()),
					logger.Int64("rejected", rejected.Load()),
					logger.Int64("failed", failed.Load()))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	stats.Submitted = int(submitted.Load())
	stats.Accepted = int(accepted.Load())
	stats.Duplicate = int(duplicate.Load())
	stats.Rejected = int(rejected.Load())
	stats.Failed = int(failed.Load())
	stats.Registered = registered

	log.Info(ctx, "submission completed",
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed))
	return nil
}

// waitForTotal polls the summary until its total reaches want.
func waitForTotal(ctx context.Context, cfg Config, client *Client, want int) (aggregate.Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.SettleTimeout)
	defer cancel()

	interval := cfg.PollInterval
	if interval <= 0 {
		interval = DefaultConfig().PollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last aggregate.Summary
	for {
		sum, err := client.Summary(ctx)
		if err == nil {
			last = sum
			if sum.Total >= want {
				return sum, nil
			}
		}
		select {
		case <-ctx.Done():
			return last, fmt.Errorf("%w: total %d, want %d", ErrNotSettled, last.Total, want)
		case <-ticker.C:
		}
	}
}

// saveRegistrations writes the generated set as a JSON array.
func saveRegistrations(ctx context.Context, filename string, regs []model.Registration) error {
	if len(regs) == 0 {
		return errors.New("no registrations to save")
	}
	if filename == "" {
		filename = "checkins_" + time.Now().Format("20060102_150405") + ".json"
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close file", logger.Error(err))
		}
	}()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(regs); err != nil {
		return fmt.Errorf("failed to write registrations: %w", err)
	}
	logger.Get().Info(ctx, "registrations saved to file", logger.String("filename", filename))
	return nil
}

func displayFinalStats(ctx context.Context, stats *Stats) {
	var acceptRate, perSecond float64
	if stats.Submitted > 0 {
		acceptRate = float64(stats.Accepted) / float64(stats.Submitted) * percentage
	}
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed),
		logger.Bool("verified", stats.Verified),
		logger.Duration("duration", stats.Duration),
		logger.Float64("acceptRate", acceptRate),
		logger.Float64("checkinsPerSecond", perSecond))
}
