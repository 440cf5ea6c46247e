package forum

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for forum persistence.
var (
	ErrNotFound  = errors.New("forum not found")
	ErrDuplicate = errors.New("forum already exists")
	ErrEnded     = errors.New("forum has ended")
	// ErrCorrupt marks persisted state that cannot be rehydrated into a
	// session. Fatal for that forum only; callers must start a new one.
	ErrCorrupt = errors.New("unrecoverable forum state")
)

// Summary is a stored condensation of a forum's discussion up to a point.
type Summary struct {
	ForumID        string    `json:"forum_id"`
	Text           string    `json:"text"`
	MessageCountAt int       `json:"message_count_at"`
	CreatedAt      time.Time `json:"created_at"`
}

// SearchResult pairs a forum with its relevance score for a query.
type SearchResult struct {
	Forum   Forum
	Score   float64
	Matches []string
}

// Store defines persistence operations for forums, their message logs,
// membership, and summaries.
type Store interface {
	// CreateForum persists a new forum. Returns ErrDuplicate on ID collision.
	CreateForum(ctx context.Context, f Forum) error
	// GetForum returns a forum by ID. Returns ErrNotFound if absent.
	GetForum(ctx context.Context, id string) (Forum, error)
	// ListForums returns all forums, most recently active first.
	ListForums(ctx context.Context) ([]Forum, error)
	// SaveForum updates a forum's mutable fields (state, topic, counters).
	SaveForum(ctx context.Context, f Forum) error
	// DeleteForum removes a forum and its messages, events, and summaries.
	DeleteForum(ctx context.Context, id string) error

	// AppendMessage durably records a message, assigning the next sequence
	// number and advancing the forum's message count and activity time.
	AppendMessage(ctx context.Context, m Message) (Message, error)
	// ListMessages returns messages in append order. A limit > 0 returns
	// only the most recent limit messages, still in append order.
	ListMessages(ctx context.Context, forumID string, limit int) ([]Message, error)
	// MessagesSince returns messages with sequence greater than the cursor.
	MessagesSince(ctx context.Context, forumID string, seq int64) ([]Message, error)

	// SaveParticipant upserts a membership record and records a join event.
	SaveParticipant(ctx context.Context, p Participant) error
	// RemoveParticipant records a leave event and drops the membership row.
	RemoveParticipant(ctx context.Context, forumID, participantID string) error
	// Participants returns current members in join order.
	Participants(ctx context.Context, forumID string) ([]Participant, error)
	// Events returns membership events in record order.
	Events(ctx context.Context, forumID string) ([]Event, error)

	// SaveSummary stores a summary snapshot.
	SaveSummary(ctx context.Context, s Summary) error
	// Summaries returns summaries for a forum, newest first.
	Summaries(ctx context.Context, forumID string) ([]Summary, error)

	// Search returns forums ranked by keyword relevance.
	Search(ctx context.Context, query string) ([]SearchResult, error)
}
