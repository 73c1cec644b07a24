// Package repository defines the attendee store interface and its in-memory
// implementation.
package repository

import (
	"context"
	"sort"

	"github.com/okian/triagem/internal/domain/model"
)

// Store persists the attendees and the metadata of the single live event.
type Store interface {
	// Add inserts an attendee. Returns ErrDuplicate if the ID exists.
	Add(ctx context.Context, a model.Attendee) error

	// List returns a fresh snapshot, most recent first.
	List(ctx context.Context) ([]model.Attendee, error)

	// Delete removes one attendee. Returns ErrNotFound if the ID is unknown.
	Delete(ctx context.Context, id string) error

	// Clear removes every attendee and returns how many were removed.
	Clear(ctx context.Context) (int, error)

	Count(ctx context.Context) int

	// Metadata returns the saved event metadata, or ErrNotFound.
	Metadata(ctx context.Context) (model.EventMetadata, error)
	SaveMetadata(ctx context.Context, m model.EventMetadata) error
	ClearMetadata(ctx context.Context) error

	Close() error
}

// SortRecentFirst orders attendees by timestamp descending, ties by ID.
func SortRecentFirst(list []model.Attendee) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].Timestamp.Equal(list[j].Timestamp) {
			return list[i].Timestamp.After(list[j].Timestamp)
		}
		return list[i].ID < list[j].ID
	})
}
