package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hay-kot/symposium/internal/core/forum"
)

// Row types mirror the domain structs with JSON-encoded columns for the
// slice and map fields. Conversions that hit undecodable JSON wrap
// forum.ErrCorrupt so callers can tell bad data from a bad query.

type forumRow struct {
	ID           string `gorm:"primaryKey;size:64"`
	Name         string `gorm:"size:200;not null"`
	Description  string `gorm:"type:text"`
	Mode         string `gorm:"size:20;not null"`
	State        string `gorm:"size:20;not null;index"`
	Topic        string `gorm:"size:200"`
	TurnCount    int    `gorm:"default:0"`
	TurnCeiling  int    `gorm:"default:0"`
	MessageCount int    `gorm:"default:0"`
	Tags         string `gorm:"type:text"`
	Settings     string `gorm:"type:text"`
	CreatedAt    time.Time
	LastActivity time.Time `gorm:"index"`
}

func (forumRow) TableName() string { return "forums" }

type messageRow struct {
	ID        string `gorm:"primaryKey;size:64"`
	ForumID   string `gorm:"size:64;not null;uniqueIndex:idx_forum_sequence"`
	SenderID  string `gorm:"size:64;not null"`
	Kind      string `gorm:"size:20;not null"`
	Content   string `gorm:"type:text;not null"`
	Thinking  string `gorm:"type:text"`
	Metadata  string `gorm:"type:text"`
	Sequence  int64  `gorm:"not null;uniqueIndex:idx_forum_sequence"`
	CreatedAt time.Time
}

func (messageRow) TableName() string { return "messages" }

type participantRow struct {
	ForumID       string `gorm:"primaryKey;size:64"`
	ParticipantID string `gorm:"primaryKey;size:64"`
	DisplayName   string `gorm:"size:200"`
	Kind          string `gorm:"size:20"`
	Traits        string `gorm:"type:text"`
	Expertise     string `gorm:"type:text"`
	JoinedAt      time.Time
}

func (participantRow) TableName() string { return "participants" }

type eventRow struct {
	ID            uint   `gorm:"primaryKey"`
	ForumID       string `gorm:"size:64;not null;index"`
	ParticipantID string `gorm:"size:64;not null"`
	Kind          string `gorm:"size:10;not null"`
	CreatedAt     time.Time
}

func (eventRow) TableName() string { return "participant_events" }

type summaryRow struct {
	ID             uint   `gorm:"primaryKey"`
	ForumID        string `gorm:"size:64;not null;index"`
	Text           string `gorm:"type:text;not null"`
	MessageCountAt int    `gorm:"default:0"`
	CreatedAt      time.Time
}

func (summaryRow) TableName() string { return "forum_summaries" }

func encodeJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode json column: %w", err)
	}
	return string(data), nil
}

// decodeJSON tolerates empty columns but flags undecodable ones as corrupt.
func decodeJSON(raw, column, forumID string, dst any) error {
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("decode %s for forum %s: %v: %w", column, forumID, err, forum.ErrCorrupt)
	}
	return nil
}

func newForumRow(f forum.Forum) (forumRow, error) {
	tags, err := encodeJSON(f.Tags)
	if err != nil {
		return forumRow{}, err
	}
	settings, err := encodeJSON(f.Settings)
	if err != nil {
		return forumRow{}, err
	}
	return forumRow{
		ID:           f.ID,
		Name:         f.Name,
		Description:  f.Description,
		Mode:         string(f.Mode),
		State:        string(f.State),
		Topic:        f.Topic,
		TurnCount:    f.TurnCount,
		TurnCeiling:  f.TurnCeiling,
		MessageCount: f.MessageCount,
		Tags:         tags,
		Settings:     settings,
		CreatedAt:    f.CreatedAt,
		LastActivity: f.LastActivity,
	}, nil
}

func (r forumRow) toForum() (forum.Forum, error) {
	f := forum.Forum{
		ID:           r.ID,
		Name:         r.Name,
		Description:  r.Description,
		Mode:         forum.Mode(r.Mode),
		State:        forum.State(r.State),
		Topic:        r.Topic,
		TurnCount:    r.TurnCount,
		TurnCeiling:  r.TurnCeiling,
		MessageCount: r.MessageCount,
		CreatedAt:    r.CreatedAt,
		LastActivity: r.LastActivity,
	}
	if err := decodeJSON(r.Tags, "tags", r.ID, &f.Tags); err != nil {
		return forum.Forum{}, err
	}
	if err := decodeJSON(r.Settings, "settings", r.ID, &f.Settings); err != nil {
		return forum.Forum{}, err
	}
	return f, nil
}

func newMessageRow(m forum.Message) (messageRow, error) {
	meta, err := encodeJSON(m.Metadata)
	if err != nil {
		return messageRow{}, err
	}
	return messageRow{
		ID:        m.ID,
		ForumID:   m.ForumID,
		SenderID:  m.SenderID,
		Kind:      string(m.Kind),
		Content:   m.Content,
		Thinking:  m.Thinking,
		Metadata:  meta,
		Sequence:  m.Sequence,
		CreatedAt: m.CreatedAt,
	}, nil
}

func (r messageRow) toMessage() (forum.Message, error) {
	m := forum.Message{
		ID:        r.ID,
		ForumID:   r.ForumID,
		SenderID:  r.SenderID,
		Kind:      forum.Kind(r.Kind),
		Content:   r.Content,
		Thinking:  r.Thinking,
		Sequence:  r.Sequence,
		CreatedAt: r.CreatedAt,
	}
	if err := decodeJSON(r.Metadata, "message metadata", r.ForumID, &m.Metadata); err != nil {
		return forum.Message{}, err
	}
	return m, nil
}

func newParticipantRow(p forum.Participant) (participantRow, error) {
	traits, err := encodeJSON(p.Traits)
	if err != nil {
		return participantRow{}, err
	}
	expertise, err := encodeJSON(p.Expertise)
	if err != nil {
		return participantRow{}, err
	}
	return participantRow{
		ForumID:       p.ForumID,
		ParticipantID: p.ID,
		DisplayName:   p.DisplayName,
		Kind:          string(p.Kind),
		Traits:        traits,
		Expertise:     expertise,
		JoinedAt:      p.JoinedAt,
	}, nil
}

func (r participantRow) toParticipant() (forum.Participant, error) {
	p := forum.Participant{
		ForumID:     r.ForumID,
		ID:          r.ParticipantID,
		DisplayName: r.DisplayName,
		Kind:        forum.Kind(r.Kind),
		JoinedAt:    r.JoinedAt,
	}
	if err := decodeJSON(r.Traits, "participant traits", r.ForumID, &p.Traits); err != nil {
		return forum.Participant{}, err
	}
	if err := decodeJSON(r.Expertise, "participant expertise", r.ForumID, &p.Expertise); err != nil {
		return forum.Participant{}, err
	}
	return p, nil
}

func (r eventRow) toEvent() forum.Event {
	return forum.Event{
		ForumID:       r.ForumID,
		ParticipantID: r.ParticipantID,
		Kind:          forum.EventKind(r.Kind),
		CreatedAt:     r.CreatedAt,
	}
}

func (r summaryRow) toSummary() forum.Summary {
	return forum.Summary{
		ForumID:        r.ForumID,
		Text:           r.Text,
		MessageCountAt: r.MessageCountAt,
		CreatedAt:      r.CreatedAt,
	}
}
