package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/symposium/internal/core/forum"
	"github.com/hay-kot/symposium/internal/styles"
)

// senderLabel resolves a display name for a sender, falling back to the
// raw ID for senders that left no participant record.
func senderLabel(senderID string, names map[string]string) string {
	if name, ok := names[senderID]; ok && name != "" {
		return name
	}
	return senderID
}

// headerLine formats the forum title line above the transcript.
func headerLine(f forum.Forum) (title, meta string) {
	title = f.Name
	meta = string(f.Mode)
	if f.TurnCeiling > 0 {
		meta += fmt.Sprintf(" · turn %d/%d", f.TurnCount, f.TurnCeiling)
	}
	return title, meta
}

// renderTranscript renders messages into the scrollable viewport body.
func renderTranscript(msgs []forum.Message, names map[string]string, styleFor func(string) lipgloss.Style, width int) string {
	if len(msgs) == 0 {
		return styles.BannerStyle.Render(styles.Banner) + "\n\n " +
			systemStyle.Render("No messages yet. Say something to open the discussion.")
	}

	if width < 20 {
		width = 20
	}

	var b strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(renderMessage(msg, names, styleFor, width))
	}
	return b.String()
}

// renderMessage renders a single message block: a sender line, then the
// wrapped body.
func renderMessage(msg forum.Message, names map[string]string, styleFor func(string) lipgloss.Style, width int) string {
	name := senderLabel(msg.SenderID, names)

	switch msg.Kind {
	case forum.KindSystem:
		return systemStyle.Render(msg.Content) + "\n"
	case forum.KindOracle:
		head := oracleStyle.Render(name) + " " + timestampStyle.Render(clock(msg.CreatedAt))
		body := bodyStyle.Width(width).Render(msg.Content)
		return head + "\n" + body + "\n"
	default:
		head := styleFor(msg.SenderID).Render(name) + " " + timestampStyle.Render(clock(msg.CreatedAt))
		body := bodyStyle.Width(width).Render(msg.Content)
		return head + "\n" + body + "\n"
	}
}

func clock(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("15:04")
}
