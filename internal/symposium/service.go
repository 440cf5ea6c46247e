// Package symposium provides the service layer for orchestrating forums:
// creation, live engine sessions, persistence, hooks, and retention.
package symposium

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/symposium/internal/core/config"
	"github.com/hay-kot/symposium/internal/core/forum"
	"github.com/hay-kot/symposium/internal/core/journal"
	"github.com/hay-kot/symposium/internal/core/persona"
	"github.com/hay-kot/symposium/internal/engine"
	"github.com/hay-kot/symposium/pkg/executil"
	"github.com/hay-kot/symposium/pkg/randid"
	"github.com/hay-kot/symposium/pkg/tmpl"
)

// CreateOptions configures forum creation.
type CreateOptions struct {
	Name        string     // Forum name (rendered from the name pattern if empty)
	Topic       string     // Opening topic hint (naming only; the engine refines topic from messages)
	Description string     // Optional free-form description
	Mode        forum.Mode // Conversational mode (defaults to exploration)
	Personas    []string   // Persona ids or names from the library
	Seed        string     // Optional opening human message
	Tags        []string
	TurnCeiling int    // Hard turn limit (defaults from config)
	Provider    string // Pin a producer backend for this forum (defaults from config)
	Model       string // Pin a model for this forum (defaults from config)
}

// Service orchestrates symposium operations.
type Service struct {
	store    forum.Store
	journals journal.Store
	personas *persona.Library
	config   *config.Config
	log      zerolog.Logger
	hooks    *HookRunner

	mu   sync.Mutex
	live map[string]*liveSession
}

// New creates a new Service.
func New(
	store forum.Store,
	journals journal.Store,
	lib *persona.Library,
	cfg *config.Config,
	exec executil.Executor,
	log zerolog.Logger,
	stdout, stderr io.Writer,
) *Service {
	return &Service{
		store:    store,
		journals: journals,
		personas: lib,
		config:   cfg,
		log:      log,
		hooks:    NewHookRunner(log.With().Str("component", "hooks").Logger(), exec, stdout, stderr),
		live:     make(map[string]*liveSession),
	}
}

// CreateForum creates a forum, snapshots its participants, appends the
// optional seed message, and runs on_forum_create hooks.
func (s *Service) CreateForum(ctx context.Context, opts CreateOptions) (*forum.Forum, error) {
	s.log.Info().Str("name", opts.Name).Str("mode", string(opts.Mode)).Strs("personas", opts.Personas).Msg("creating forum")

	if opts.Mode == "" {
		opts.Mode = forum.ModeExploration
	}
	if _, ok := forum.ParseMode(string(opts.Mode)); !ok {
		return nil, fmt.Errorf("invalid mode %q", opts.Mode)
	}
	if len(opts.Personas) == 0 {
		return nil, fmt.Errorf("at least one persona is required")
	}

	profiles := make([]persona.Profile, 0, len(opts.Personas))
	seen := map[string]bool{}
	for _, name := range opts.Personas {
		p, ok := s.personas.Resolve(name)
		if !ok {
			return nil, fmt.Errorf("unknown persona %q", name)
		}
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		profiles = append(profiles, p)
	}

	name := opts.Name
	if name == "" {
		var err error
		name, err = s.renderName(opts.Topic, opts.Mode)
		if err != nil {
			return nil, fmt.Errorf("render forum name: %w", err)
		}
	}

	// An explicit topic hint wins; otherwise the seed message sets the
	// opening topic the same way later human messages will.
	topic := opts.Topic
	if topic == "" && opts.Seed != "" {
		topic = engine.ExtractTopic(opts.Seed)
	}

	ceiling := opts.TurnCeiling
	if ceiling <= 0 {
		ceiling = s.config.Engine.TurnCeiling
	}

	now := time.Now()
	frm := forum.Forum{
		ID:           randid.Generate(6),
		Name:         name,
		Description:  opts.Description,
		Mode:         opts.Mode,
		State:        forum.StateCreated,
		Topic:        topic,
		TurnCeiling:  ceiling,
		Tags:         opts.Tags,
		CreatedAt:    now,
		LastActivity: now,
	}
	if opts.Provider != "" || opts.Model != "" {
		frm.Settings = map[string]string{}
		if opts.Provider != "" {
			frm.Settings["provider"] = opts.Provider
		}
		if opts.Model != "" {
			frm.Settings["model"] = opts.Model
		}
	}

	if err := s.store.CreateForum(ctx, frm); err != nil {
		return nil, fmt.Errorf("create forum: %w", err)
	}

	// Membership snapshot: the human seat first, then personas. Join times
	// are staggered so Participants preserves registration order.
	members := make([]forum.Participant, 0, len(profiles)+1)
	members = append(members, forum.Participant{
		ForumID:     frm.ID,
		ID:          engine.HumanSenderID,
		DisplayName: "Human",
		Kind:        forum.KindHuman,
		JoinedAt:    now,
	})
	for i, p := range profiles {
		members = append(members, forum.Participant{
			ForumID:     frm.ID,
			ID:          p.ID,
			DisplayName: p.Name,
			Kind:        forum.KindAgent,
			Traits:      p.Traits,
			Expertise:   p.Expertise,
			JoinedAt:    now.Add(time.Duration(i+1) * time.Millisecond),
		})
	}
	for _, m := range members {
		if err := s.store.SaveParticipant(ctx, m); err != nil {
			return nil, fmt.Errorf("save participant %s: %w", m.ID, err)
		}
	}

	if opts.Seed != "" {
		msg := forum.NewMessage(frm.ID, engine.HumanSenderID, forum.KindHuman, opts.Seed)
		if _, err := s.store.AppendMessage(ctx, msg); err != nil {
			return nil, fmt.Errorf("append seed message: %w", err)
		}
	}

	if err := s.hooks.Run(ctx, s.config.Hooks.OnForumCreate, hookData(frm)); err != nil {
		return nil, fmt.Errorf("run hooks: %w", err)
	}

	s.log.Info().Str("forum_id", frm.ID).Str("name", frm.Name).Msg("forum created")

	return &frm, nil
}

// Library returns the persona library the service resolves personas from.
func (s *Service) Library() *persona.Library {
	return s.personas
}

// ListForums returns all forums, most recently active first.
func (s *Service) ListForums(ctx context.Context) ([]forum.Forum, error) {
	return s.store.ListForums(ctx)
}

// GetForum returns a forum by ID.
func (s *Service) GetForum(ctx context.Context, id string) (forum.Forum, error) {
	return s.store.GetForum(ctx, id)
}

// Participants returns the membership snapshot for a forum.
func (s *Service) Participants(ctx context.Context, id string) ([]forum.Participant, error) {
	return s.store.Participants(ctx, id)
}

// Messages returns a forum's transcript. A limit of 0 returns everything.
func (s *Service) Messages(ctx context.Context, id string, limit int) ([]forum.Message, error) {
	return s.store.ListMessages(ctx, id, limit)
}

// Search returns forums ranked against the query.
func (s *Service) Search(ctx context.Context, query string) ([]forum.SearchResult, error) {
	return s.store.Search(ctx, query)
}

// Journal returns recent coordinator decisions, newest first. forumID may
// be empty to read across forums.
func (s *Service) Journal(ctx context.Context, forumID string, limit int) ([]journal.Entry, error) {
	if forumID == "" {
		return s.journals.List(ctx, limit)
	}
	return s.journals.ListForum(ctx, forumID, limit)
}

// ClearJournal removes all recorded decisions.
func (s *Service) ClearJournal(ctx context.Context) error {
	return s.journals.Clear(ctx)
}

// EndForum transitions a forum to the ended state and runs on_forum_end
// hooks. Ending an already ended forum is a no-op.
func (s *Service) EndForum(ctx context.Context, id string) (*forum.Forum, error) {
	frm, err := s.store.GetForum(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get forum: %w", err)
	}

	if frm.State == forum.StateEnded {
		return &frm, nil
	}

	frm.MarkEnded(time.Now())
	if err := s.store.SaveForum(ctx, frm); err != nil {
		return nil, fmt.Errorf("save forum: %w", err)
	}
	s.dropLive(id)

	if err := s.hooks.Run(ctx, s.config.Hooks.OnForumEnd, hookData(frm)); err != nil {
		return nil, fmt.Errorf("run end hooks: %w", err)
	}

	s.log.Info().Str("forum_id", id).Msg("forum ended")

	return &frm, nil
}

// DeleteForum removes a forum and all its dependents.
func (s *Service) DeleteForum(ctx context.Context, id string) error {
	s.log.Info().Str("forum_id", id).Msg("deleting forum")

	if err := s.store.DeleteForum(ctx, id); err != nil {
		return fmt.Errorf("delete forum: %w", err)
	}
	s.dropLive(id)
	return nil
}

// Prune deletes ended forums whose last activity is older than the
// configured retention window. Retention of 0 disables pruning.
func (s *Service) Prune(ctx context.Context) (int, error) {
	days := s.config.Forums.RetentionDays
	if days <= 0 {
		return 0, nil
	}

	s.log.Info().Int("retention_days", days).Msg("pruning forums")

	forums, err := s.store.ListForums(ctx)
	if err != nil {
		return 0, fmt.Errorf("list forums: %w", err)
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	count := 0
	for _, frm := range forums {
		if frm.State != forum.StateEnded || frm.LastActivity.After(cutoff) {
			continue
		}

		if err := s.store.DeleteForum(ctx, frm.ID); err != nil {
			s.log.Warn().Err(err).Str("forum_id", frm.ID).Msg("failed to prune forum")
			continue
		}
		s.dropLive(frm.ID)
		count++
	}

	s.log.Info().Int("count", count).Msg("prune complete")

	return count, nil
}

// renderName builds a forum name from the configured pattern.
func (s *Service) renderName(topic string, mode forum.Mode) (string, error) {
	data := config.NameTemplateData{
		Topic: topic,
		Mode:  string(mode),
		Date:  time.Now().Format("2006-01-02"),
	}
	if data.Topic == "" {
		data.Topic = "Open symposium"
	}
	return tmpl.Render(s.config.Forums.NamePattern, data)
}

// hookData builds the template context for lifecycle hook commands.
func hookData(frm forum.Forum) config.HookTemplateData {
	return config.HookTemplateData{
		ID:    frm.ID,
		Name:  frm.Name,
		Mode:  string(frm.Mode),
		Topic: frm.Topic,
	}
}
