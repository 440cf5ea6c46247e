package persona

import (
	"time"

	"github.com/hay-kot/symposium/internal/core/forum"
)

// Memory is a participant's private view of a conversation: which messages
// it has observed, how it relates to the other participants, and how much it
// cares about each topic. Owned exclusively by its participant; no
// participant reads another's memory.
type Memory struct {
	OwnerID       string             `json:"owner_id"`
	Seen          []string           `json:"seen"`
	Relationships map[string]float64 `json:"relationships"`
	TopicInterest map[string]float64 `json:"topic_interest"`
	LastActive    time.Time          `json:"last_active"`

	seenIDs map[string]struct{}
}

// NewMemory builds a fresh memory for a profile. Topic interest starts at
// 0.8 for each expertise area so personas lean into their own subjects.
func NewMemory(p Profile) *Memory {
	interests := make(map[string]float64, len(p.Expertise))
	for _, area := range p.Expertise {
		interests[area] = 0.8
	}
	return &Memory{
		OwnerID:       p.ID,
		Relationships: make(map[string]float64),
		TopicInterest: interests,
		seenIDs:       make(map[string]struct{}),
	}
}

// Observe folds unseen messages into memory and advances LastActive.
// Seen grows monotonically; senders met for the first time start at a
// neutral 0.5 relationship.
func (m *Memory) Observe(msgs []forum.Message, now time.Time) {
	if m.seenIDs == nil {
		m.seenIDs = make(map[string]struct{}, len(m.Seen))
		for _, id := range m.Seen {
			m.seenIDs[id] = struct{}{}
		}
	}
	for _, msg := range msgs {
		if _, ok := m.seenIDs[msg.ID]; ok {
			continue
		}
		m.seenIDs[msg.ID] = struct{}{}
		m.Seen = append(m.Seen, msg.ID)

		if msg.SenderID != m.OwnerID {
			if _, ok := m.Relationships[msg.SenderID]; !ok {
				m.Relationships[msg.SenderID] = 0.5
			}
		}
	}
	m.LastActive = now
}

// Interest returns the interest score for a topic, defaulting to 0.5.
func (m *Memory) Interest(topic string) float64 {
	v, ok := m.TopicInterest[topic]
	if !ok {
		return 0.5
	}
	return v
}
