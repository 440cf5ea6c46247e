package symposium

import (
	"context"
	"fmt"
	"strings"

	"github.com/hay-kot/symposium/internal/core/forum"
)

// Transcript renders the forum as a markdown document: metadata, the
// participant roster, the full message log, and the latest stored summary.
func (s *Service) Transcript(ctx context.Context, forumID string) (string, error) {
	frm, err := s.store.GetForum(ctx, forumID)
	if err != nil {
		return "", fmt.Errorf("get forum: %w", err)
	}

	parts, err := s.store.Participants(ctx, forumID)
	if err != nil {
		return "", fmt.Errorf("load participants: %w", err)
	}

	msgs, err := s.store.ListMessages(ctx, forumID, 0)
	if err != nil {
		return "", fmt.Errorf("load messages: %w", err)
	}

	sums, err := s.store.Summaries(ctx, forumID)
	if err != nil {
		return "", fmt.Errorf("load summaries: %w", err)
	}

	names := displayNames(parts)
	name := func(id string) string {
		if n, ok := names[id]; ok {
			return n
		}
		return id
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", frm.Name)
	if frm.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", frm.Description)
	}

	fmt.Fprintf(&b, "- Mode: %s\n", frm.Mode)
	fmt.Fprintf(&b, "- State: %s\n", frm.State)
	fmt.Fprintf(&b, "- Topic: %s\n", frm.Topic)
	fmt.Fprintf(&b, "- Turns: %d of %d\n", frm.TurnCount, frm.TurnCeiling)
	fmt.Fprintf(&b, "- Created: %s\n", frm.CreatedAt.Format("2006-01-02 15:04"))
	if len(frm.Tags) > 0 {
		fmt.Fprintf(&b, "- Tags: %s\n", strings.Join(frm.Tags, ", "))
	}
	b.WriteString("\n## Participants\n\n")

	for _, p := range parts {
		if p.Kind == forum.KindHuman {
			fmt.Fprintf(&b, "- %s (human)\n", p.DisplayName)
			continue
		}
		line := "- " + p.DisplayName
		if len(p.Expertise) > 0 {
			line += ": " + strings.Join(p.Expertise, ", ")
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n## Transcript\n\n")

	if len(msgs) == 0 {
		b.WriteString("*No messages yet.*\n")
	}
	for _, m := range msgs {
		switch m.Kind {
		case forum.KindSystem:
			fmt.Fprintf(&b, "> %s\n\n", m.Content)
		case forum.KindOracle:
			fmt.Fprintf(&b, "> **%s:** %s\n\n", name(m.SenderID), m.Content)
		default:
			fmt.Fprintf(&b, "**%s:** %s\n\n", name(m.SenderID), m.Content)
		}
	}

	if len(sums) > 0 {
		fmt.Fprintf(&b, "## Summary\n\n%s\n", sums[0].Text)
	}

	return b.String(), nil
}
