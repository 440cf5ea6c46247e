package forum

import (
	"time"

	"github.com/google/uuid"
)

// Kind classifies the author of a message.
type Kind string

const (
	KindHuman  Kind = "human"
	KindAgent  Kind = "agent"
	KindOracle Kind = "oracle"
	KindSystem Kind = "system"
)

// Message is a single immutable entry in a forum's log. Messages are append
// only; Sequence is the store-assigned append order and is the source of
// truth for conversation ordering.
type Message struct {
	ID        string            `json:"id"`
	ForumID   string            `json:"forum_id"`
	SenderID  string            `json:"sender_id"`
	Kind      Kind              `json:"kind"`
	Content   string            `json:"content"`
	Thinking  string            `json:"thinking,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Sequence  int64             `json:"sequence"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewMessage builds an unsequenced message ready for append.
func NewMessage(forumID, senderID string, kind Kind, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		ForumID:   forumID,
		SenderID:  senderID,
		Kind:      kind,
		Content:   content,
		CreatedAt: time.Now(),
	}
}
