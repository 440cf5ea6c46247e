package forum

import "time"

// Participant is the persisted membership record for a forum. Traits and
// Expertise snapshot the persona at join time so transcripts stay
// interpretable after a persona definition changes or disappears.
type Participant struct {
	ForumID     string             `json:"forum_id"`
	ID          string             `json:"id"`
	DisplayName string             `json:"display_name"`
	Kind        Kind               `json:"kind"`
	Traits      map[string]float64 `json:"traits,omitempty"`
	Expertise   []string           `json:"expertise,omitempty"`
	JoinedAt    time.Time          `json:"joined_at"`
}

// EventKind is the type of a participant membership event.
type EventKind string

const (
	EventJoin  EventKind = "join"
	EventLeave EventKind = "leave"
)

// Event records a participant joining or leaving a forum.
type Event struct {
	ForumID       string    `json:"forum_id"`
	ParticipantID string    `json:"participant_id"`
	Kind          EventKind `json:"kind"`
	CreatedAt     time.Time `json:"created_at"`
}
