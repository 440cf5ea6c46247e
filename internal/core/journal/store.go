package journal

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no journal entries match.
var ErrNotFound = errors.New("journal entry not found")

// Store defines persistence operations for decision journal entries.
type Store interface {
	// Record appends a journal entry, pruning oldest entries past the
	// configured maximum.
	Record(ctx context.Context, e Entry) error
	// List returns entries, newest first. A limit of 0 returns all.
	List(ctx context.Context, limit int) ([]Entry, error)
	// ListForum returns entries for one forum, newest first.
	ListForum(ctx context.Context, forumID string, limit int) ([]Entry, error)
	// Clear removes all entries.
	Clear(ctx context.Context) error
}
