// Package tui implements the Bubble Tea chat view for symposium.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/symposium/internal/styles"
)

// Additional Tokyo Night accents beyond the shared palette.
var (
	colorPurple = lipgloss.Color("#bb9af7")
	colorCyan   = lipgloss.Color("#7dcfff")
	colorRed    = lipgloss.Color("#f38ba8")
)

var (
	// Header line above the transcript.
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.ColorBlue).
			PaddingLeft(1)

	headerMetaStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray)

	// Divider between transcript and input.
	dividerStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray)

	// Sender name for the human participant.
	humanStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.ColorWhite)

	// Timestamp next to sender names.
	timestampStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray)

	// System notices (joins, leaves) rendered inline.
	systemStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray).
			Italic(true)

	// Oracle summaries injected into the transcript.
	oracleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPurple)

	// Message body below the sender line.
	bodyStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	// Footer status text (reasons, errors).
	statusStyle = lipgloss.NewStyle().
			Foreground(styles.ColorYellow).
			PaddingLeft(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			PaddingLeft(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray).
			PaddingLeft(1)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(styles.ColorBlue)
)

// agentPalette cycles sender colors by join order.
var agentPalette = []lipgloss.Color{
	styles.ColorGreen,
	styles.ColorYellow,
	colorCyan,
	colorPurple,
	styles.ColorBlue,
	colorRed,
}

// agentStyle returns the bold name style for the nth agent to join.
func agentStyle(n int) lipgloss.Style {
	c := agentPalette[n%len(agentPalette)]
	return lipgloss.NewStyle().Bold(true).Foreground(c)
}
