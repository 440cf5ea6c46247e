package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hay-kot/symposium/internal/core/forum"
	"github.com/hay-kot/symposium/internal/core/persona"
)

// HumanSenderID is the sender id recorded on human-authored messages.
const HumanSenderID = "human"

// Participant is the capability a persona agent exposes to the engine:
// identity, private memory, and content production. Implementations must
// treat the snapshot passed to Produce as read only.
type Participant interface {
	Profile() persona.Profile
	Memory() *persona.Memory
	Produce(ctx context.Context, snap Snapshot) (forum.Message, error)
}

// Snapshot is an immutable view of a session handed to scorers and
// producers. The message slice is a copy; mutating it affects nothing.
type Snapshot struct {
	ForumID   string
	Mode      forum.Mode
	Topic     string
	TurnCount int
	Messages  []forum.Message
}

// Latest returns the most recent message, if any.
func (s Snapshot) Latest() (forum.Message, bool) {
	if len(s.Messages) == 0 {
		return forum.Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// Session is the mutable aggregate for one conversation: the message log,
// turn bookkeeping, the participant registry with each participant's
// private memory, and the activation cache. A session is single writer: the
// coordinator mutates it only inside a cycle, and every public method takes
// the session lock. Distinct sessions share nothing.
type Session struct {
	mu sync.Mutex

	meta     forum.Forum
	log      []forum.Message
	registry map[string]Participant
	order    []string
	cache    map[string]float64

	awaitingHuman bool
	lastSpeaker   string
	nextSeq       int64
}

// NewSession builds a session in the created state. The forum metadata
// provides id, mode, turn ceiling, and initial topic; participants are the
// persona agents eligible to speak, in registration order.
func NewSession(meta forum.Forum, participants []Participant) (*Session, error) {
	if meta.ID == "" {
		return nil, fmt.Errorf("session requires a forum id")
	}

	s := &Session{
		meta:     meta,
		registry: make(map[string]Participant, len(participants)),
		cache:    make(map[string]float64, len(participants)),
		nextSeq:  1,
	}
	if s.meta.State == "" {
		s.meta.State = forum.StateCreated
	}
	if s.meta.Topic == "" {
		s.meta.Topic = InitialTopic
	}

	for _, p := range participants {
		id := p.Profile().ID
		if id == "" {
			return nil, fmt.Errorf("participant with empty id")
		}
		if _, ok := s.registry[id]; ok {
			return nil, fmt.Errorf("duplicate participant %q", id)
		}
		s.registry[id] = p
		s.order = append(s.order, id)
	}
	return s, nil
}

// Seed appends the optional opening human message without consuming a turn,
// and computes the session topic from it. Only valid before any cycle runs.
func (s *Session) Seed(content string) (forum.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.meta.State != forum.StateCreated || len(s.log) > 0 {
		return forum.Message{}, fmt.Errorf("seed message only allowed on a fresh session")
	}

	msg := forum.NewMessage(s.meta.ID, HumanSenderID, forum.KindHuman, content)
	s.appendLocked(msg)
	s.meta.Topic = ExtractTopic(content)
	return s.log[len(s.log)-1], nil
}

// Rehydrate restores the message log from persisted history. Messages must
// belong to this forum and carry strictly increasing sequence numbers;
// anything else is unrecoverable state.
func (s *Session) Rehydrate(msgs []forum.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.log) > 0 {
		return fmt.Errorf("rehydrate on a non-empty session")
	}

	var prev int64
	for _, m := range msgs {
		if m.ForumID != s.meta.ID {
			return fmt.Errorf("%w: message %s belongs to forum %s", forum.ErrCorrupt, m.ID, m.ForumID)
		}
		if m.Sequence <= prev {
			return fmt.Errorf("%w: message order broken at sequence %d", forum.ErrCorrupt, m.Sequence)
		}
		prev = m.Sequence
	}

	s.log = append(s.log, msgs...)
	s.nextSeq = prev + 1
	if n := len(s.log); n > 0 {
		s.lastSpeaker = s.log[n-1].SenderID
		s.awaitingHuman = s.log[n-1].Kind != forum.KindHuman
	}
	return nil
}

// SubmitHuman appends a human message, consumes a turn, and re-enters the
// active state. Returns forum.ErrEnded once the session has terminated.
func (s *Session) SubmitHuman(content string) (forum.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.meta.State == forum.StateEnded {
		return forum.Message{}, forum.ErrEnded
	}

	msg := forum.NewMessage(s.meta.ID, HumanSenderID, forum.KindHuman, content)
	s.appendLocked(msg)
	s.meta.TurnCount++
	s.meta.Topic = ExtractTopic(content)
	s.awaitingHuman = false
	s.meta.State = forum.StateActive
	return s.log[len(s.log)-1], nil
}

// Snapshot returns an immutable copy of the conversation for scoring and
// production.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	msgs := make([]forum.Message, len(s.log))
	copy(msgs, s.log)
	return Snapshot{
		ForumID:   s.meta.ID,
		Mode:      s.meta.Mode,
		Topic:     s.meta.Topic,
		TurnCount: s.meta.TurnCount,
		Messages:  msgs,
	}
}

// Forum returns the forum metadata with the session's current state, topic,
// and counters folded in.
func (s *Session) Forum() forum.Forum {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta := s.meta
	meta.MessageCount = len(s.log)
	return meta
}

// State returns the session lifecycle state.
func (s *Session) State() forum.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta.State
}

// Messages returns a copy of the full log.
func (s *Session) Messages() []forum.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]forum.Message, len(s.log))
	copy(out, s.log)
	return out
}

// MessagesSince returns messages with a sequence after the cursor.
func (s *Session) MessagesSince(seq int64) []forum.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []forum.Message
	for _, m := range s.log {
		if m.Sequence > seq {
			out = append(out, m)
		}
	}
	return out
}

// Participants returns the registered persona agents in registration order.
func (s *Session) Participants() []Participant {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Participant, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.registry[id])
	}
	return out
}

// Activations returns a copy of the per-participant activation cache from
// the most recent cycle in which each participant was evaluated.
func (s *Session) Activations() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]float64, len(s.cache))
	for id, v := range s.cache {
		out[id] = v
	}
	return out
}

// appendLocked assigns the next sequence number and appends. The log is
// append only; entries are never reordered or dropped.
func (s *Session) appendLocked(msg forum.Message) {
	msg.Sequence = s.nextSeq
	s.nextSeq++
	s.log = append(s.log, msg)
	s.lastSpeaker = msg.SenderID
	s.meta.Touch(time.Now())
}

// lastSpeakersLocked returns the authors of the most recent n messages.
func (s *Session) lastSpeakersLocked(n int) []string {
	start := len(s.log) - n
	if start < 0 {
		start = 0
	}
	out := make([]string, 0, n)
	for _, m := range s.log[start:] {
		out = append(out, m.SenderID)
	}
	return out
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
