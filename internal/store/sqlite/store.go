// Package sqlite persists forums, message logs, membership, and summaries
// in a single SQLite database file.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/hay-kot/symposium/internal/core/forum"
)

// Store implements forum.Store on a SQLite database.
type Store struct {
	db   *gorm.DB
	path string
}

// Open opens or creates the database at path and migrates the schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	// A single connection serializes writers; SQLite has no use for a pool.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&forumRow{},
		&messageRow{},
		&participantRow{},
		&eventRow{},
		&summaryRow{},
	); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("unwrap database handle: %w", err)
	}
	return sqlDB.Close()
}

// CreateForum persists a new forum. Returns ErrDuplicate on ID collision.
func (s *Store) CreateForum(ctx context.Context, f forum.Forum) error {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now()
	}
	if f.LastActivity.IsZero() {
		f.LastActivity = f.CreatedAt
	}

	row, err := newForumRow(f)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&forumRow{}).Where("id = ?", f.ID).Count(&n).Error; err != nil {
			return fmt.Errorf("check forum id: %w", err)
		}
		if n > 0 {
			return forum.ErrDuplicate
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("create forum: %w", err)
		}
		return nil
	})
}

// GetForum returns a forum by ID. Returns ErrNotFound if absent.
func (s *Store) GetForum(ctx context.Context, id string) (forum.Forum, error) {
	var row forumRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return forum.Forum{}, forum.ErrNotFound
		}
		return forum.Forum{}, fmt.Errorf("get forum: %w", err)
	}
	return row.toForum()
}

// ListForums returns all forums, most recently active first.
func (s *Store) ListForums(ctx context.Context) ([]forum.Forum, error) {
	var rows []forumRow
	err := s.db.WithContext(ctx).Order("last_activity DESC, id ASC").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list forums: %w", err)
	}

	forums := make([]forum.Forum, 0, len(rows))
	for _, row := range rows {
		f, err := row.toForum()
		if err != nil {
			return nil, err
		}
		forums = append(forums, f)
	}
	return forums, nil
}

// SaveForum updates a forum's mutable fields. The message count stays
// store-owned; only AppendMessage advances it.
func (s *Store) SaveForum(ctx context.Context, f forum.Forum) error {
	tags, err := encodeJSON(f.Tags)
	if err != nil {
		return err
	}
	settings, err := encodeJSON(f.Settings)
	if err != nil {
		return err
	}

	last := f.LastActivity
	if last.IsZero() {
		last = time.Now()
	}

	res := s.db.WithContext(ctx).Model(&forumRow{}).Where("id = ?", f.ID).Updates(map[string]any{
		"name":          f.Name,
		"description":   f.Description,
		"mode":          string(f.Mode),
		"state":         string(f.State),
		"topic":         f.Topic,
		"turn_count":    f.TurnCount,
		"turn_ceiling":  f.TurnCeiling,
		"tags":          tags,
		"settings":      settings,
		"last_activity": last,
	})
	if res.Error != nil {
		return fmt.Errorf("save forum: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return forum.ErrNotFound
	}
	return nil
}

// DeleteForum removes a forum and its messages, events, and summaries.
func (s *Store) DeleteForum(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("forum_id = ?", id).Delete(&summaryRow{}).Error; err != nil {
			return fmt.Errorf("delete summaries: %w", err)
		}
		if err := tx.Where("forum_id = ?", id).Delete(&eventRow{}).Error; err != nil {
			return fmt.Errorf("delete events: %w", err)
		}
		if err := tx.Where("forum_id = ?", id).Delete(&participantRow{}).Error; err != nil {
			return fmt.Errorf("delete participants: %w", err)
		}
		if err := tx.Where("forum_id = ?", id).Delete(&messageRow{}).Error; err != nil {
			return fmt.Errorf("delete messages: %w", err)
		}

		res := tx.Where("id = ?", id).Delete(&forumRow{})
		if res.Error != nil {
			return fmt.Errorf("delete forum: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return forum.ErrNotFound
		}
		return nil
	})
}

// AppendMessage durably records a message, assigning the next sequence
// number and advancing the forum's message count and activity time.
func (s *Store) AppendMessage(ctx context.Context, m forum.Message) (forum.Message, error) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forumExists(tx, m.ForumID); err != nil {
			return err
		}

		var next int64
		err := tx.Model(&messageRow{}).
			Where("forum_id = ?", m.ForumID).
			Select("COALESCE(MAX(sequence), 0) + 1").
			Scan(&next).Error
		if err != nil {
			return fmt.Errorf("next sequence: %w", err)
		}
		m.Sequence = next

		row, err := newMessageRow(m)
		if err != nil {
			return err
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("append message: %w", err)
		}

		err = tx.Model(&forumRow{}).Where("id = ?", m.ForumID).Updates(map[string]any{
			"message_count": gorm.Expr("message_count + 1"),
			"last_activity": m.CreatedAt,
		}).Error
		if err != nil {
			return fmt.Errorf("advance forum counters: %w", err)
		}
		return nil
	})
	if err != nil {
		return forum.Message{}, err
	}
	return m, nil
}

// ListMessages returns messages in append order. A limit > 0 returns only
// the most recent limit messages, still in append order.
func (s *Store) ListMessages(ctx context.Context, forumID string, limit int) ([]forum.Message, error) {
	q := s.db.WithContext(ctx).Where("forum_id = ?", forumID)
	if limit > 0 {
		q = q.Order("sequence DESC").Limit(limit)
	} else {
		q = q.Order("sequence ASC")
	}

	var rows []messageRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	if limit > 0 {
		slices.Reverse(rows)
	}

	return toMessages(rows)
}

// MessagesSince returns messages with sequence greater than the cursor.
func (s *Store) MessagesSince(ctx context.Context, forumID string, seq int64) ([]forum.Message, error) {
	var rows []messageRow
	err := s.db.WithContext(ctx).
		Where("forum_id = ? AND sequence > ?", forumID, seq).
		Order("sequence ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("messages since %d: %w", seq, err)
	}
	return toMessages(rows)
}

// SaveParticipant upserts a membership record. First joins record a join
// event; later saves refresh the persona snapshot without a new event.
func (s *Store) SaveParticipant(ctx context.Context, p forum.Participant) error {
	if p.JoinedAt.IsZero() {
		p.JoinedAt = time.Now()
	}

	row, err := newParticipantRow(p)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forumExists(tx, p.ForumID); err != nil {
			return err
		}

		var existing participantRow
		err := tx.First(&existing, "forum_id = ? AND participant_id = ?", p.ForumID, p.ID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("create participant: %w", err)
			}
			event := eventRow{
				ForumID:       p.ForumID,
				ParticipantID: p.ID,
				Kind:          string(forum.EventJoin),
				CreatedAt:     p.JoinedAt,
			}
			if err := tx.Create(&event).Error; err != nil {
				return fmt.Errorf("record join event: %w", err)
			}
		case err != nil:
			return fmt.Errorf("lookup participant: %w", err)
		default:
			err := tx.Model(&participantRow{}).
				Where("forum_id = ? AND participant_id = ?", p.ForumID, p.ID).
				Updates(map[string]any{
					"display_name": row.DisplayName,
					"kind":         row.Kind,
					"traits":       row.Traits,
					"expertise":    row.Expertise,
				}).Error
			if err != nil {
				return fmt.Errorf("update participant: %w", err)
			}
		}
		return nil
	})
}

// RemoveParticipant records a leave event and drops the membership row.
func (s *Store) RemoveParticipant(ctx context.Context, forumID, participantID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("forum_id = ? AND participant_id = ?", forumID, participantID).
			Delete(&participantRow{})
		if res.Error != nil {
			return fmt.Errorf("remove participant: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return forum.ErrNotFound
		}

		event := eventRow{
			ForumID:       forumID,
			ParticipantID: participantID,
			Kind:          string(forum.EventLeave),
			CreatedAt:     time.Now(),
		}
		if err := tx.Create(&event).Error; err != nil {
			return fmt.Errorf("record leave event: %w", err)
		}
		return nil
	})
}

// Participants returns current members in join order.
func (s *Store) Participants(ctx context.Context, forumID string) ([]forum.Participant, error) {
	var rows []participantRow
	err := s.db.WithContext(ctx).
		Where("forum_id = ?", forumID).
		Order("joined_at ASC, participant_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}

	participants := make([]forum.Participant, 0, len(rows))
	for _, row := range rows {
		p, err := row.toParticipant()
		if err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, nil
}

// Events returns membership events in record order.
func (s *Store) Events(ctx context.Context, forumID string) ([]forum.Event, error) {
	var rows []eventRow
	err := s.db.WithContext(ctx).
		Where("forum_id = ?", forumID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	events := make([]forum.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, row.toEvent())
	}
	return events, nil
}

// SaveSummary stores a summary snapshot. A zero MessageCountAt picks up the
// forum's current message count.
func (s *Store) SaveSummary(ctx context.Context, sum forum.Summary) error {
	if sum.CreatedAt.IsZero() {
		sum.CreatedAt = time.Now()
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var f forumRow
		err := tx.First(&f, "id = ?", sum.ForumID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return forum.ErrNotFound
			}
			return fmt.Errorf("lookup forum: %w", err)
		}

		count := sum.MessageCountAt
		if count == 0 {
			count = f.MessageCount
		}

		row := summaryRow{
			ForumID:        sum.ForumID,
			Text:           sum.Text,
			MessageCountAt: count,
			CreatedAt:      sum.CreatedAt,
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("save summary: %w", err)
		}
		return nil
	})
}

// Summaries returns summaries for a forum, newest first.
func (s *Store) Summaries(ctx context.Context, forumID string) ([]forum.Summary, error) {
	var rows []summaryRow
	err := s.db.WithContext(ctx).
		Where("forum_id = ?", forumID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}

	summaries := make([]forum.Summary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, row.toSummary())
	}
	return summaries, nil
}

// IntegrityReport counts rows whose parent forum no longer exists.
type IntegrityReport struct {
	OrphanMessages     int64
	OrphanEvents       int64
	OrphanSummaries    int64
	OrphanParticipants int64
}

// Clean reports whether no orphaned rows were found.
func (r IntegrityReport) Clean() bool {
	return r.OrphanMessages == 0 && r.OrphanEvents == 0 &&
		r.OrphanSummaries == 0 && r.OrphanParticipants == 0
}

// Total returns the number of orphaned rows across all tables.
func (r IntegrityReport) Total() int64 {
	return r.OrphanMessages + r.OrphanEvents + r.OrphanSummaries + r.OrphanParticipants
}

// Integrity scans for rows referencing missing forums.
func (s *Store) Integrity(ctx context.Context) (IntegrityReport, error) {
	var report IntegrityReport

	forumIDs := s.db.Model(&forumRow{}).Select("id")

	counts := []struct {
		model any
		dest  *int64
	}{
		{&messageRow{}, &report.OrphanMessages},
		{&eventRow{}, &report.OrphanEvents},
		{&summaryRow{}, &report.OrphanSummaries},
		{&participantRow{}, &report.OrphanParticipants},
	}

	for _, c := range counts {
		err := s.db.WithContext(ctx).Model(c.model).
			Where("forum_id NOT IN (?)", forumIDs).
			Count(c.dest).Error
		if err != nil {
			return IntegrityReport{}, fmt.Errorf("count orphan rows: %w", err)
		}
	}

	return report, nil
}

// PruneOrphans deletes rows referencing missing forums and returns the
// total number removed.
func (s *Store) PruneOrphans(ctx context.Context) (int64, error) {
	var removed int64

	forumIDs := s.db.Model(&forumRow{}).Select("id")

	for _, model := range []any{&messageRow{}, &eventRow{}, &summaryRow{}, &participantRow{}} {
		res := s.db.WithContext(ctx).
			Where("forum_id NOT IN (?)", forumIDs).
			Delete(model)
		if res.Error != nil {
			return removed, fmt.Errorf("delete orphan rows: %w", res.Error)
		}
		removed += res.RowsAffected
	}

	return removed, nil
}

func forumExists(tx *gorm.DB, id string) error {
	var n int64
	if err := tx.Model(&forumRow{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("check forum: %w", err)
	}
	if n == 0 {
		return forum.ErrNotFound
	}
	return nil
}

func toMessages(rows []messageRow) ([]forum.Message, error) {
	messages := make([]forum.Message, 0, len(rows))
	for _, row := range rows {
		m, err := row.toMessage()
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, nil
}
