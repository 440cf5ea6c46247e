// Package journal defines the coordinator decision journal: one entry per
// decision cycle, recording what the engine saw and why it chose the
// outcome it did.
package journal

import "time"

// Outcome is the terminal result of a decision cycle.
type Outcome string

const (
	OutcomeSpeak         Outcome = "speak"
	OutcomeAwaitingHuman Outcome = "awaiting_human"
	OutcomeTerminated    Outcome = "terminated"
)

// Entry records a single coordinator decision.
type Entry struct {
	ID        string             `json:"id"`
	ForumID   string             `json:"forum_id"`
	Cycle     int                `json:"cycle"`
	Outcome   Outcome            `json:"outcome"`
	SpeakerID string             `json:"speaker_id,omitempty"`
	Reason    string             `json:"reason,omitempty"`
	Mention   string             `json:"mention,omitempty"`
	Scores    map[string]float64 `json:"scores,omitempty"`
	Relaxed   bool               `json:"relaxed,omitempty"`
	Seed      uint64             `json:"seed,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

// Terminated reports whether the cycle ended the forum.
func (e *Entry) Terminated() bool {
	return e.Outcome == OutcomeTerminated
}
