// Package sqlite provides a SQLite-backed attendee store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/okian/triagem/internal/adapters/repository"
	"github.com/okian/triagem/internal/adapters/repository/sqlite/migrations"
	"github.com/okian/triagem/internal/domain/model"
	"github.com/okian/triagem/pkg/metrics"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const backend = "sqlite"

// dsnPragmas uses the modernc.org/sqlite _pragma syntax; the applied
// pragmas run on every new connection.
const dsnPragmas = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

// Store persists attendees and event metadata in SQLite.
type Store struct {
	db *sql.DB
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

func observe(op string, start time.Time) {
	metrics.RecordStoreLatency(backend, op, float64(time.Since(start).Microseconds())/1000)
}

// Open opens the database at path and applies the embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	db, err := sql.Open("sqlite", filepath.Clean(path)+dsnPragmas)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// SQLite allows one writer; a single connection serializes the worker pool
	// and kiosk writes instead of failing them with SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Add inserts one attendee.
func (s *Store) Add(ctx context.Context, a model.Attendee) error {
	defer observe("add", time.Now())
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attendees (id, role, ministry, instrument, level, city, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID,
		string(a.Role),
		string(a.Ministry),
		a.Instrument,
		string(a.Level),
		a.City,
		toMillis(a.Timestamp),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert attendee: %w", err)
	}
	return nil
}

// List returns every attendee, most recent first.
func (s *Store) List(ctx context.Context) ([]model.Attendee, error) {
	defer observe("list", time.Now())
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, role, ministry, instrument, level, city, created_at
		   FROM attendees
		  ORDER BY created_at DESC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	defer rows.Close()

	out := []model.Attendee{}
	for rows.Next() {
		var (
			a                     model.Attendee
			role, ministry, level string
			createdAt             int64
		)
		if err := rows.Scan(&a.ID, &role, &ministry, &a.Instrument, &level, &a.City, &createdAt); err != nil {
			return nil, fmt.Errorf("scan attendee: %w", err)
		}
		a.Role = model.Role(role)
		a.Ministry = model.Ministry(ministry)
		a.Level = model.Level(level)
		a.Timestamp = fromMillis(createdAt)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendees: %w", err)
	}
	return out, nil
}

// Delete removes one attendee.
func (s *Store) Delete(ctx context.Context, id string) error {
	defer observe("delete", time.Now())
	res, err := s.db.ExecContext(ctx, `DELETE FROM attendees WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete attendee: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete attendee: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Clear removes every attendee.
func (s *Store) Clear(ctx context.Context) (int, error) {
	defer observe("clear", time.Now())
	res, err := s.db.ExecContext(ctx, `DELETE FROM attendees`)
	if err != nil {
		return 0, fmt.Errorf("clear attendees: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear attendees: %w", err)
	}
	return int(n), nil
}

// Count returns the number of attendees, or 0 when the query fails.
func (s *Store) Count(ctx context.Context) int {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendees`).Scan(&n); err != nil {
		return 0
	}
	return n
}

// Metadata returns the saved event metadata.
func (s *Store) Metadata(ctx context.Context) (model.EventMetadata, error) {
	var (
		m         model.EventMetadata
		updatedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT venue, event_date, presiding_elder, regional_officers,
		        scripture_reading, hymns_rehearsed, updated_at
		   FROM event_metadata
		  WHERE id = 1`,
	).Scan(&m.Venue, &m.EventDate, &m.PresidingElder, &m.RegionalOfficers,
		&m.ScriptureReading, &m.HymnsRehearsed, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.EventMetadata{}, repository.ErrNotFound
	}
	if err != nil {
		return model.EventMetadata{}, fmt.Errorf("get event metadata: %w", err)
	}
	m.UpdatedAt = fromMillis(updatedAt)
	return m, nil
}

// SaveMetadata upserts the single metadata row.
func (s *Store) SaveMetadata(ctx context.Context, m model.EventMetadata) error {
	defer observe("save_metadata", time.Now())
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO event_metadata (id, venue, event_date, presiding_elder, regional_officers,
		                             scripture_reading, hymns_rehearsed, updated_at)
		 VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   venue = excluded.venue,
		   event_date = excluded.event_date,
		   presiding_elder = excluded.presiding_elder,
		   regional_officers = excluded.regional_officers,
		   scripture_reading = excluded.scripture_reading,
		   hymns_rehearsed = excluded.hymns_rehearsed,
		   updated_at = excluded.updated_at`,
		m.Venue, m.EventDate, m.PresidingElder, m.RegionalOfficers,
		m.ScriptureReading, m.HymnsRehearsed, toMillis(m.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("save event metadata: %w", err)
	}
	return nil
}

// ClearMetadata deletes the metadata row.
func (s *Store) ClearMetadata(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM event_metadata`); err != nil {
		return fmt.Errorf("clear event metadata: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

var _ repository.Store = (*Store)(nil)
