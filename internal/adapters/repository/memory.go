package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/triagem/internal/domain/model"
	"github.com/okian/triagem/pkg/metrics"
)

const memoryBackend = "memory"

// MemoryStore keeps everything in process memory.
type MemoryStore struct {
	mu        sync.RWMutex
	attendees []model.Attendee
	index     map[string]int
	meta      *model.EventMetadata
	closed    bool
	now       func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		index: make(map[string]int),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func observe(op string, start time.Time) {
	metrics.RecordStoreLatency(memoryBackend, op, float64(time.Since(start).Microseconds())/1000)
}

// Add inserts an attendee.
func (s *MemoryStore) Add(ctx context.Context, a model.Attendee) error {
	defer observe("add", time.Now())
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if _, ok := s.index[a.ID]; ok {
		return ErrDuplicate
	}
	s.index[a.ID] = len(s.attendees)
	s.attendees = append(s.attendees, a)
	return nil
}

// List returns a copy of the attendees, most recent first.
func (s *MemoryStore) List(ctx context.Context) ([]model.Attendee, error) {
	defer observe("list", time.Now())
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]model.Attendee, len(s.attendees))
	copy(out, s.attendees)
	s.mu.RUnlock()

	SortRecentFirst(out)
	return out, nil
}

// Delete removes one attendee.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	defer observe("delete", time.Now())
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return ErrNotFound
	}
	last := len(s.attendees) - 1
	if i != last {
		s.attendees[i] = s.attendees[last]
		s.index[s.attendees[i].ID] = i
	}
	s.attendees = s.attendees[:last]
	delete(s.index, id)
	return nil
}

// Clear removes every attendee.
func (s *MemoryStore) Clear(ctx context.Context) (int, error) {
	defer observe("clear", time.Now())
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.attendees)
	s.attendees = nil
	s.index = make(map[string]int)
	return n, nil
}

// Count returns the number of attendees.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.attendees)
}

// Metadata returns the saved metadata.
func (s *MemoryStore) Metadata(ctx context.Context) (model.EventMetadata, error) {
	if err := ctx.Err(); err != nil {
		return model.EventMetadata{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.meta == nil {
		return model.EventMetadata{}, ErrNotFound
	}
	return *s.meta, nil
}

// SaveMetadata replaces the saved metadata.
func (s *MemoryStore) SaveMetadata(ctx context.Context, m model.EventMetadata) error {
	defer observe("save_metadata", time.Now())
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = s.now()
	}
	s.meta = &m
	return nil
}

// ClearMetadata forgets the saved metadata.
func (s *MemoryStore) ClearMetadata(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meta = nil
	return nil
}

// Close marks the store closed; later writes fail with ErrClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

var _ Store = (*MemoryStore)(nil)
