// Package service provides the check-in service behind the HTTP API and the
// kiosk pages.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	eventqueue "github.com/okian/triagem/internal/adapters/mq/queue"
	workerpool "github.com/okian/triagem/internal/adapters/mq/worker"
	"github.com/okian/triagem/internal/adapters/reflection"
	repository "github.com/okian/triagem/internal/adapters/repository"
	"github.com/okian/triagem/internal/domain/aggregate"
	"github.com/okian/triagem/internal/domain/dedupe"
	"github.com/okian/triagem/internal/domain/model"
	"github.com/okian/triagem/internal/domain/report"
	"github.com/okian/triagem/internal/i18n"
	"github.com/okian/triagem/pkg/logger"
	"github.com/okian/triagem/pkg/metrics"
)

var (
	// ErrNotStarted is returned by operations called before Start.
	ErrNotStarted = errors.New("service not started")
	// ErrNoAttendees is returned by Reflection while nobody is checked in.
	ErrNoAttendees = errors.New("no attendees checked in")
	// ErrCheckinsPending is returned by CloseEvent when queued check-ins do
	// not settle within the drain timeout.
	ErrCheckinsPending = errors.New("queued check-ins still pending")
)

const closeDrainTimeout = 10 * time.Second

// Backup is the downloadable copy of the live event.
type Backup struct {
	Metadata   model.EventMetadata `json:"metadata"`
	Attendees  []model.Attendee    `json:"attendees"`
	ExportedAt time.Time           `json:"exported_at"`
}

// Service runs the check-in pipeline of a single live event.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     repository.Store
	deduper   dedupe.Deduper
	queue     *eventqueue.InMemoryQueue
	pool      *workerpool.Pool
	reflector reflection.Generator

	// Configuration
	workerCount       int
	queueSize         int
	dedupeSize        int
	reflectionTimeout time.Duration
	metricsInterval   time.Duration
	now               func() time.Time

	// closeMu holds off new enqueues while CloseEvent drains; inflight counts
	// check-ins enqueued but not yet persisted or failed.
	closeMu  sync.RWMutex
	inflight atomic.Int64

	// Event state, guarded by metaMu
	metaMu         sync.RWMutex
	meta           model.EventMetadata
	lastReflection string

	started bool
	cancel  context.CancelFunc
	group   *errgroup.Group

	logger logger.Logger
}

// New constructs a Service. Nothing runs until Start.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:       2,
		queueSize:         1024,
		dedupeSize:        10_000,
		reflectionTimeout: 15 * time.Second,
		metricsInterval:   5 * time.Second,
		reflector:         reflection.Static{},
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the pipeline, primes the dedupe cache with stored IDs and
// loads the saved event metadata.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.logger.Info(ctx, "starting check-in service...")

	if s.store == nil {
		s.store = repository.NewMemoryStore(repository.WithClock(s.now))
		s.logger.Info(ctx, "using memory store")
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	existing, err := s.store.List(ctx)
	if err != nil {
		return fmt.Errorf("load attendees: %w", err)
	}
	for _, a := range existing {
		s.deduper.SeenAndRecord(ctx, a.ID)
	}

	meta, err := s.store.Metadata(ctx)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		meta = s.defaultMetadata()
	case err != nil:
		return fmt.Errorf("load event metadata: %w", err)
	}
	s.metaMu.Lock()
	s.meta = meta
	s.metaMu.Unlock()

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.inflight.Store(0)
	s.pool = workerpool.NewPool(s.workerCount, s.queue, settling{Store: s.store, inflight: &s.inflight},
		workerpool.WithFailureHandler(s.onPersistFailure),
	)
	s.pool.Start(runCtx)

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		s.collectSystemMetrics(gctx)
		return nil
	})
	s.group = g

	metrics.UpdateAttendeesTotal(len(existing))
	s.started = true
	s.logger.Info(ctx, "check-in service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("attendees", len(existing)),
	)
	return nil
}

// Stop drains the workers and closes the queue and the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping check-in service...")

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Error(ctx, "worker pool shutdown failed", logger.Error(err))
	}
	s.cancel()
	_ = s.group.Wait()

	if err := s.store.Close(); err != nil {
		s.logger.Error(ctx, "store close failed", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "check-in service stopped")
}

func (s *Service) defaultMetadata() model.EventMetadata {
	now := s.now()
	return model.DefaultMetadata(i18n.LongDate(now), now)
}

// components returns the running pipeline or ErrNotStarted.
func (s *Service) components() (repository.Store, dedupe.Deduper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrNotStarted
	}
	return s.store, s.deduper, nil
}

func (s *Service) onPersistFailure(ctx context.Context, c eventqueue.Checkin, err error) { //nolint:gocritic // hugeParam: matches worker.FailureHandler
	if errors.Is(err, repository.ErrDuplicate) {
		metrics.RecordCheckinDuplicate()
		return
	}
	// Runs on worker goroutines, possibly while Stop holds mu.
	s.deduper.Unrecord(ctx, c.ID)
	metrics.RecordCheckinFailed("persist")
}

// NewAttendee validates r and stamps it with the service clock.
func (s *Service) NewAttendee(r model.Registration) (model.Attendee, error) {
	return model.NewAttendee(r, s.now())
}

// Register checks an attendee in synchronously.
func (s *Service) Register(ctx context.Context, r model.Registration) (model.Attendee, error) {
	store, d, err := s.components()
	if err != nil {
		return model.Attendee{}, err
	}
	a, err := s.NewAttendee(r)
	if err != nil {
		metrics.RecordCheckinFailed("invalid")
		return model.Attendee{}, err
	}
	if d.SeenAndRecord(ctx, a.ID) {
		metrics.RecordCheckinDuplicate()
		return model.Attendee{}, fmt.Errorf("register %s: %w", a.ID, repository.ErrDuplicate)
	}
	if err := store.Add(ctx, a); err != nil {
		if !errors.Is(err, repository.ErrDuplicate) {
			d.Unrecord(ctx, a.ID)
		}
		metrics.RecordCheckinFailed("persist")
		return model.Attendee{}, fmt.Errorf("register %s: %w", a.ID, err)
	}
	metrics.RecordCheckinRegistered()
	s.logger.Debug(ctx, "attendee registered",
		logger.String("attendee_id", a.ID),
		logger.String("role", string(a.Role)),
		logger.String("instrument", a.Instrument),
	)
	return a, nil
}

// SeenAndRecord atomically checks whether a check-in ID was seen and records it if not.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	_, d, err := s.components()
	if err != nil {
		return false
	}
	seen := d.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordCheckinDuplicate()
	}
	return seen
}

// Unrecord forgets a check-in ID so the client can retry it.
func (s *Service) Unrecord(ctx context.Context, id string) {
	if _, d, err := s.components(); err == nil {
		d.Unrecord(ctx, id)
	}
}

// Enqueue submits an attendee for asynchronous persistence. It returns false
// when the queue is full or closed.
func (s *Service) Enqueue(ctx context.Context, a model.Attendee) bool { //nolint:gocritic // hugeParam: passed by value for channel semantics
	s.mu.RLock()
	q := s.queue
	started := s.started
	s.mu.RUnlock()
	if !started {
		return false
	}

	s.closeMu.RLock()
	defer s.closeMu.RUnlock()
	s.inflight.Add(1)
	ok := q.Enqueue(ctx, a)
	if !ok {
		s.inflight.Add(-1)
		s.logger.Warn(ctx, "check-in queue rejected attendee",
			logger.String("attendee_id", a.ID),
			logger.Int("queueLength", q.Len(ctx)),
		)
	}
	return ok
}

// Snapshot returns the attendees, most recent first.
func (s *Service) Snapshot(ctx context.Context) (aggregate.Snapshot, error) {
	store, _, err := s.components()
	if err != nil {
		return nil, err
	}
	list, err := store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	return aggregate.Snapshot(list), nil
}

// Delete removes one attendee.
func (s *Service) Delete(ctx context.Context, id string) error {
	store, d, err := s.components()
	if err != nil {
		return err
	}
	if err := store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	d.Unrecord(ctx, id)
	metrics.UpdateAttendeesTotal(store.Count(ctx))
	s.logger.Info(ctx, "attendee deleted", logger.String("attendee_id", id))
	return nil
}

// Metadata returns the live event metadata.
func (s *Service) Metadata(_ context.Context) model.EventMetadata {
	s.metaMu.RLock()
	defer s.metaMu.RUnlock()
	return s.meta
}

// UpdateMetadata replaces the organizer-edited header fields. An empty event
// date keeps the current one. Blank metadata is not persisted.
func (s *Service) UpdateMetadata(ctx context.Context, m model.EventMetadata) (model.EventMetadata, error) {
	store, _, err := s.components()
	if err != nil {
		return model.EventMetadata{}, err
	}
	m.Venue = strings.TrimSpace(m.Venue)
	m.EventDate = strings.TrimSpace(m.EventDate)
	m.PresidingElder = strings.TrimSpace(m.PresidingElder)
	m.RegionalOfficers = strings.TrimSpace(m.RegionalOfficers)
	m.ScriptureReading = strings.TrimSpace(m.ScriptureReading)
	m.HymnsRehearsed = strings.TrimSpace(m.HymnsRehearsed)
	m.UpdatedAt = s.now()

	s.metaMu.Lock()
	defer s.metaMu.Unlock()
	if m.EventDate == "" {
		m.EventDate = s.meta.EventDate
	}
	if m.IsBlank() {
		err = store.ClearMetadata(ctx)
	} else {
		err = store.SaveMetadata(ctx, m)
	}
	if err != nil {
		return model.EventMetadata{}, fmt.Errorf("save event metadata: %w", err)
	}
	s.meta = m
	return m, nil
}

// Summary returns the dashboard counts.
func (s *Service) Summary(ctx context.Context) (aggregate.Summary, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return aggregate.Summary{}, err
	}
	sum := aggregate.Summarize(snap)
	metrics.UpdateAttendeesTotal(sum.Total)
	return sum, nil
}

// Report builds the printable report layout.
func (s *Service) Report(ctx context.Context) (report.Layout, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return report.Layout{}, err
	}
	start := time.Now()
	l := report.Build(snap, s.Metadata(ctx))
	metrics.RecordReportBuilt(float64(time.Since(start).Microseconds()) / 1000)
	return l, nil
}

// ReportFileName names the printed report after the venue and today's date.
func (s *Service) ReportFileName(ctx context.Context) string {
	return report.FileName(s.Metadata(ctx), s.now())
}

// Reflection asks the generator for an encouragement message. Generator
// failures are logged and answered with the fallback text.
func (s *Service) Reflection(ctx context.Context) (string, error) {
	sum, err := s.Summary(ctx)
	if err != nil {
		return "", err
	}
	if sum.Total == 0 {
		return "", ErrNoAttendees
	}

	rctx, cancel := context.WithTimeout(ctx, s.reflectionTimeout)
	defer cancel()

	start := time.Now()
	msg, err := s.reflector.Generate(rctx, reflection.Counts{
		Musicians: sum.Musicians,
		Organists: sum.Organists,
	})
	metrics.RecordReflection(float64(time.Since(start).Milliseconds()), err != nil)
	if err != nil {
		s.logger.Warn(ctx, "reflection fell back", logger.Error(err))
	}

	s.metaMu.Lock()
	s.lastReflection = msg
	s.metaMu.Unlock()
	return msg, nil
}

// LastReflection returns the most recent reflection of the live event.
func (s *Service) LastReflection() string {
	s.metaMu.RLock()
	defer s.metaMu.RUnlock()
	return s.lastReflection
}

// Export returns a backup of the live event.
func (s *Service) Export(ctx context.Context) (Backup, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return Backup{}, err
	}
	return Backup{
		Metadata:   s.Metadata(ctx),
		Attendees:  snap,
		ExportedAt: s.now(),
	}, nil
}

// CloseEvent removes every attendee and the metadata and starts a fresh event.
// Check-ins already queued are persisted first so they are cleared with the
// event they belong to; new check-ins wait until the close completes.
func (s *Service) CloseEvent(ctx context.Context) (model.EventMetadata, error) {
	store, d, err := s.components()
	if err != nil {
		return model.EventMetadata{}, err
	}

	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	if err := s.awaitQueued(ctx); err != nil {
		return model.EventMetadata{}, err
	}

	s.metaMu.Lock()
	defer s.metaMu.Unlock()

	removed, err := store.Clear(ctx)
	if err != nil {
		return model.EventMetadata{}, fmt.Errorf("clear attendees: %w", err)
	}
	if err := store.ClearMetadata(ctx); err != nil {
		return model.EventMetadata{}, fmt.Errorf("clear event metadata: %w", err)
	}
	d.Reset(ctx)

	s.meta = s.defaultMetadata()
	s.lastReflection = ""
	metrics.UpdateAttendeesTotal(0)
	s.logger.Info(ctx, "event closed", logger.Int("removed", removed))
	return s.meta, nil
}

// awaitQueued waits until every enqueued check-in has settled.
func (s *Service) awaitQueued(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, closeDrainTimeout)
	defer cancel()

	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	for {
		n := s.inflight.Load()
		if n <= 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %d check-ins: %w", ErrCheckinsPending, n, ctx.Err())
		case <-ticker.C:
		}
	}
}

// settling is the worker pool's persister. It marks each queued check-in as
// settled once its write returns, whatever the outcome.
type settling struct {
	repository.Store
	inflight *atomic.Int64
}

func (p settling) Add(ctx context.Context, a model.Attendee) error { //nolint:gocritic // hugeParam: matches worker.Persister
	defer p.inflight.Add(-1)
	return p.Store.Add(ctx, a)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}
	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
		stats["attendees"] = s.store.Count(ctx)
		stats["processed"] = s.pool.Processed()
		stats["dedupeEntries"] = s.deduper.Size()
	}
	return stats
}

func (s *Service) collectSystemMetrics(ctx context.Context) {
	ticker := time.NewTicker(s.metricsInterval)
	defer ticker.Stop()

	var mem runtime.MemStats
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runtime.ReadMemStats(&mem)
			metrics.UpdateSystemMemoryUsage(mem.Alloc)
			metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
			metrics.UpdateAttendeesTotal(s.store.Count(ctx))
		}
	}
}
