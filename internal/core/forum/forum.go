// Package forum defines the conversation domain types and interfaces.
package forum

import "time"

// Mode controls the conversational dynamics of a forum.
type Mode string

const (
	ModeConsensus   Mode = "consensus"
	ModeDebate      Mode = "debate"
	ModeExploration Mode = "exploration"
)

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeConsensus, ModeDebate, ModeExploration:
		return Mode(s), true
	}
	return "", false
}

// State represents the lifecycle state of a forum.
type State string

const (
	StateCreated       State = "created"
	StateActive        State = "active"
	StateAwaitingHuman State = "awaiting_human"
	StateEnded         State = "ended"
)

// Forum represents a single ongoing discussion between a human and a set of
// persona agents.
type Forum struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Mode         Mode              `json:"mode"`
	State        State             `json:"state"`
	Topic        string            `json:"topic"`
	TurnCount    int               `json:"turn_count"`
	TurnCeiling  int               `json:"turn_ceiling"`
	MessageCount int               `json:"message_count"`
	Tags         []string          `json:"tags,omitempty"`
	Settings     map[string]string `json:"settings,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	LastActivity time.Time         `json:"last_activity"`
}

// Open reports whether the forum still accepts messages.
func (f *Forum) Open() bool {
	return f.State != StateEnded
}

// MarkEnded transitions the forum to the ended state.
func (f *Forum) MarkEnded(now time.Time) {
	f.State = StateEnded
	f.LastActivity = now
}

// Touch records activity on the forum.
func (f *Forum) Touch(now time.Time) {
	f.LastActivity = now
}
