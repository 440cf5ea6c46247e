package symposium

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/hay-kot/symposium/internal/core/forum"
	"github.com/hay-kot/symposium/internal/core/journal"
	"github.com/hay-kot/symposium/internal/core/persona"
	"github.com/hay-kot/symposium/internal/engine"
	"github.com/hay-kot/symposium/internal/producer"
)

// liveSession pairs an engine session with its coordinator and cycle
// counter. One per open forum; the service mutex guards the map, the
// session's own lock guards its state.
type liveSession struct {
	session *engine.Session
	coord   *engine.Coordinator
	cycles  int
}

// OpenSession loads a forum and its history into a live engine session.
// Repeat calls return the same session until the forum ends or is dropped.
func (s *Service) OpenSession(ctx context.Context, forumID string) (*engine.Session, error) {
	ls, err := s.openLive(ctx, forumID)
	if err != nil {
		return nil, err
	}
	return ls.session, nil
}

// SubmitHuman appends a human message to the forum and persists it. The
// next RunCycles call lets agents respond.
func (s *Service) SubmitHuman(ctx context.Context, forumID, content string) (forum.Message, error) {
	ls, err := s.openLive(ctx, forumID)
	if err != nil {
		return forum.Message{}, err
	}

	msg, err := ls.session.SubmitHuman(content)
	if err != nil {
		return forum.Message{}, err
	}

	stored, err := s.store.AppendMessage(ctx, msg)
	if err != nil {
		return forum.Message{}, fmt.Errorf("persist message: %w", err)
	}

	if err := s.saveSessionMeta(ctx, ls.session); err != nil {
		return forum.Message{}, err
	}

	return stored, nil
}

// RunCycles drives coordinator cycles until the forum awaits the human or
// terminates, persisting every produced message and journaling every
// decision. It returns the messages produced by this call along with the
// final decision.
func (s *Service) RunCycles(ctx context.Context, forumID string) ([]forum.Message, engine.Decision, error) {
	ls, err := s.openLive(ctx, forumID)
	if err != nil {
		return nil, engine.Decision{}, err
	}

	var produced []forum.Message
	var last engine.Decision
	for {
		if err := ctx.Err(); err != nil {
			return produced, last, err
		}

		ls.cycles++
		last = ls.coord.RunCycle(ctx, ls.session)
		s.journalDecision(ctx, forumID, ls.cycles, ls.coord.Seed(), last)

		if last.Message != nil {
			stored, err := s.store.AppendMessage(ctx, *last.Message)
			if err != nil {
				return produced, last, fmt.Errorf("persist message: %w", err)
			}
			produced = append(produced, stored)
		}

		if err := s.saveSessionMeta(ctx, ls.session); err != nil {
			return produced, last, err
		}

		if last.Outcome != engine.OutcomeSpeak {
			break
		}
	}

	// A cycle that ended the forum fires end hooks here; the explicit
	// EndForum path is a no-op afterwards, so hooks run exactly once.
	if ls.session.State() == forum.StateEnded {
		s.dropLive(forumID)
		if err := s.hooks.Run(ctx, s.config.Hooks.OnForumEnd, hookData(ls.session.Forum())); err != nil {
			return produced, last, fmt.Errorf("run end hooks: %w", err)
		}
		s.log.Info().Str("forum_id", forumID).Str("reason", string(last.Reason)).Msg("forum ended")
	}

	return produced, last, nil
}

// openLive returns the live session for the forum, rehydrating one from the
// store on first access.
func (s *Service) openLive(ctx context.Context, forumID string) (*liveSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ls, ok := s.live[forumID]; ok {
		return ls, nil
	}

	frm, err := s.store.GetForum(ctx, forumID)
	if err != nil {
		return nil, fmt.Errorf("get forum: %w", err)
	}

	parts, err := s.store.Participants(ctx, forumID)
	if err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}

	msgs, err := s.store.ListMessages(ctx, forumID, 0)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	agents, err := s.buildAgents(frm, parts)
	if err != nil {
		return nil, err
	}

	sess, err := engine.NewSession(frm, agents)
	if err != nil {
		return nil, fmt.Errorf("build session: %w", err)
	}

	if len(msgs) > 0 {
		if err := sess.Rehydrate(msgs); err != nil {
			return nil, fmt.Errorf("rehydrate forum %s: %w", forumID, err)
		}
		// Warm each persona's memory with the stored history so topic
		// interest survives restarts.
		now := time.Now()
		for _, a := range agents {
			a.Memory().Observe(msgs, now)
		}
	}

	ls := &liveSession{
		session: sess,
		coord:   engine.NewCoordinator(s.engineOptions(frm), sessionSeed(forumID), s.log),
	}
	s.live[forumID] = ls

	s.log.Debug().Str("forum_id", forumID).Int("messages", len(msgs)).Int("agents", len(agents)).Msg("session opened")

	return ls, nil
}

// buildAgents turns the persisted membership snapshot into engine
// participants backed by the configured producer.
func (s *Service) buildAgents(frm forum.Forum, parts []forum.Participant) ([]engine.Participant, error) {
	names := displayNames(parts)

	prod, err := s.buildProducer(frm)
	if err != nil {
		return nil, err
	}

	var agents []engine.Participant
	for _, part := range parts {
		if part.Kind != forum.KindAgent {
			continue
		}

		profile, ok := s.personas.Get(part.ID)
		if !ok {
			// The persona definition is gone; the archived snapshot keeps
			// the forum functional.
			profile = persona.Profile{
				ID:        part.ID,
				Name:      part.DisplayName,
				Traits:    part.Traits,
				Expertise: part.Expertise,
			}
		}
		agents = append(agents, producer.NewAgent(profile, prod, names, s.log))
	}

	if len(agents) == 0 {
		return nil, fmt.Errorf("forum %s has no agent participants", frm.ID)
	}
	return agents, nil
}

// buildProducer builds the content backend for a forum. Forum settings pin
// provider and model over the global config.
func (s *Service) buildProducer(frm forum.Forum) (producer.Producer, error) {
	settings := producer.Settings{
		Provider:      s.config.Providers.Provider,
		Model:         s.config.Providers.Model,
		APIKey:        s.config.Providers.APIKey(),
		Temperature:   s.config.Providers.Temperature,
		MaxTokens:     s.config.Providers.MaxTokens,
		ContextTokens: s.config.Providers.ContextTokens,
		Timeout:       s.config.Providers.Timeout(),
		Seed:          sessionSeed(frm.ID),
	}
	if v := frm.Settings["provider"]; v != "" {
		settings.Provider = v
		settings.APIKey = s.config.Providers.APIKeyFor(v)
	}
	if v := frm.Settings["model"]; v != "" {
		settings.Model = v
	}

	prod, err := producer.New(settings)
	if err != nil {
		return nil, fmt.Errorf("build producer: %w", err)
	}
	return prod, nil
}

// engineOptions maps config tuning onto the coordinator, with the forum's
// own ceiling taking precedence.
func (s *Service) engineOptions(frm forum.Forum) engine.Options {
	opts := engine.Options{
		TurnCeiling:    frm.TurnCeiling,
		CrowdThreshold: s.config.Engine.CrowdThreshold,
		SmallThreshold: s.config.Engine.SmallThreshold,
		RelaxedFloor:   s.config.Engine.RelaxedFloor,
		TopWeight:      s.config.Engine.TopWeight,
		SecondWeight:   s.config.Engine.SecondWeight,
	}
	if opts.TurnCeiling <= 0 {
		opts.TurnCeiling = s.config.Engine.TurnCeiling
	}
	return opts
}

// journalDecision records one coordinator decision. Journal failures are
// logged, never fatal to the conversation.
func (s *Service) journalDecision(ctx context.Context, forumID string, cycle int, seed uint64, d engine.Decision) {
	entry := journal.Entry{
		ForumID:   forumID,
		Cycle:     cycle,
		Outcome:   journal.Outcome(d.Outcome),
		SpeakerID: d.SpeakerID,
		Reason:    string(d.Reason),
		Mention:   d.Mention,
		Scores:    d.Scores,
		Relaxed:   d.Relaxed,
		Seed:      seed,
	}
	if err := s.journals.Record(ctx, entry); err != nil {
		s.log.Warn().Err(err).Str("forum_id", forumID).Msg("failed to journal decision")
	}
}

// saveSessionMeta persists the session's mutable forum fields.
func (s *Service) saveSessionMeta(ctx context.Context, sess *engine.Session) error {
	if err := s.store.SaveForum(ctx, sess.Forum()); err != nil {
		return fmt.Errorf("save forum state: %w", err)
	}
	return nil
}

// dropLive discards the live session for a forum, forcing the next access
// to rehydrate from the store.
func (s *Service) dropLive(forumID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.live, forumID)
}

// sessionSeed derives the coordinator draw seed from the forum id, so a
// reopened forum replays the same draw sequence over the same history.
func sessionSeed(forumID string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(forumID))
	return h.Sum64()
}
