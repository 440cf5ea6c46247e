package symposium

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hay-kot/symposium/internal/core/forum"
	"github.com/hay-kot/symposium/internal/core/persona"
	"github.com/hay-kot/symposium/internal/engine"
	"github.com/hay-kot/symposium/internal/producer"
)

// oracleProfile frames summary production for remote backends. The oracle
// is not a participant; its messages carry the oracle kind.
var oracleProfile = persona.Profile{
	ID:          "oracle",
	Name:        "The Oracle",
	Description: "A neutral observer who distills the discussion into its essential positions, agreements, and open questions. Speaks in plain prose, never as a participant.",
	Expertise:   []string{"synthesis", "summary"},
	Traits:      map[string]float64{"analytical": 0.9},
	Method:      "Summarize what each voice contributed, then name what remains unresolved.",
	Style:       "concise, neutral, structured",
}

// Summarize produces and stores a summary of the forum so far. Open forums
// also get the summary injected into the transcript as an oracle message.
func (s *Service) Summarize(ctx context.Context, forumID string) (forum.Summary, error) {
	frm, err := s.store.GetForum(ctx, forumID)
	if err != nil {
		return forum.Summary{}, fmt.Errorf("get forum: %w", err)
	}

	msgs, err := s.store.ListMessages(ctx, forumID, 0)
	if err != nil {
		return forum.Summary{}, fmt.Errorf("load messages: %w", err)
	}
	if len(msgs) == 0 {
		return forum.Summary{}, fmt.Errorf("forum %s has no messages to summarize", forumID)
	}

	parts, err := s.store.Participants(ctx, forumID)
	if err != nil {
		return forum.Summary{}, fmt.Errorf("load participants: %w", err)
	}
	names := displayNames(parts)

	text := digest(frm, msgs, names)

	// The template backend produces conversation, not synthesis, so only
	// remote backends replace the digest. Their failure falls back to it.
	prod, err := s.buildProducer(frm)
	if err != nil {
		s.log.Warn().Err(err).Str("forum_id", forumID).Msg("producer unavailable, keeping digest summary")
	} else if prod.Name() != producer.ProviderTemplate {
		resp, perr := prod.Produce(ctx, producer.Request{
			Persona:  oracleProfile,
			Mode:     frm.Mode,
			Topic:    frm.Topic,
			Messages: msgs,
			Names:    names,
		})
		if perr != nil {
			s.log.Warn().Err(perr).Str("forum_id", forumID).Msg("summary production failed, keeping digest")
		} else if strings.TrimSpace(resp.Content) != "" {
			text = resp.Content
		}
	}

	sum := forum.Summary{
		ForumID:        forumID,
		Text:           text,
		MessageCountAt: frm.MessageCount,
		CreatedAt:      time.Now(),
	}
	if err := s.store.SaveSummary(ctx, sum); err != nil {
		return forum.Summary{}, fmt.Errorf("save summary: %w", err)
	}

	if frm.Open() {
		msg := forum.NewMessage(forumID, oracleProfile.ID, forum.KindOracle, text)
		if _, err := s.store.AppendMessage(ctx, msg); err != nil {
			return forum.Summary{}, fmt.Errorf("append summary message: %w", err)
		}
		// The live session does not know about the injected message; the
		// next open rehydrates past it.
		s.dropLive(forumID)
	}

	s.log.Info().Str("forum_id", forumID).Int("message_count", sum.MessageCountAt).Msg("summary stored")

	return sum, nil
}

// Summaries returns stored summaries for a forum, newest first.
func (s *Service) Summaries(ctx context.Context, forumID string) ([]forum.Summary, error) {
	return s.store.Summaries(ctx, forumID)
}

// digest builds a deterministic summary of the transcript: who spoke, what
// the discussion centers on, and where it stands.
func digest(frm forum.Forum, msgs []forum.Message, names map[string]string) string {
	name := func(id string) string {
		if n, ok := names[id]; ok {
			return n
		}
		return id
	}

	var order []string
	counts := map[string]int{}
	questions := 0
	var lastSpoken *forum.Message
	for i, m := range msgs {
		if m.Kind == forum.KindSystem || m.Kind == forum.KindOracle {
			continue
		}
		if counts[m.SenderID] == 0 {
			order = append(order, m.SenderID)
		}
		counts[m.SenderID]++
		if strings.Contains(m.Content, "?") {
			questions++
		}
		lastSpoken = &msgs[i]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s is a %s discussion", frm.Name, frm.Mode)
	if frm.Topic != "" && frm.Topic != engine.InitialTopic {
		fmt.Fprintf(&b, " centered on %s", frm.Topic)
	}
	b.WriteString(".")

	if len(order) > 0 {
		spoken := make([]string, 0, len(order))
		for _, id := range order {
			spoken = append(spoken, fmt.Sprintf("%s (%d)", name(id), counts[id]))
		}
		fmt.Fprintf(&b, " Contributions so far: %s.", strings.Join(spoken, ", "))
	}

	if lastSpoken != nil {
		fmt.Fprintf(&b, " Most recently %s said: %q.", name(lastSpoken.SenderID), trimmed(lastSpoken.Content, 120))
	}

	if questions > 0 {
		fmt.Fprintf(&b, " %d message(s) posed questions that remain on the table.", questions)
	}

	return b.String()
}

// trimmed shortens content to at most n runes, cutting on a word boundary.
func trimmed(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	cut := string([]rune(s)[:n])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}

// displayNames maps participant ids to display names, with the human seat
// always present.
func displayNames(parts []forum.Participant) map[string]string {
	names := make(map[string]string, len(parts)+1)
	names[engine.HumanSenderID] = "Human"
	for _, p := range parts {
		names[p.ID] = p.DisplayName
	}
	return names
}
