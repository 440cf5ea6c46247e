// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Tokyo Night color palette.
var (
	ColorGreen  = lipgloss.Color("#9ece6a")
	ColorYellow = lipgloss.Color("#e0af68")
	ColorBlue   = lipgloss.Color("#7aa2f7")
	ColorGray   = lipgloss.Color("#565f89")
	ColorWhite  = lipgloss.Color("#c0caf5")
)

// Banner ASCII art for the header.
const Banner = `
 ╔═╗╦ ╦╔╦╗╔═╗╔═╗╔═╗╦╦ ╦╔╦╗
 ╚═╗╚╦╝║║║╠═╝║ ║╚═╗║║ ║║║║
 ╚═╝ ╩ ╩ ╩╩  ╚═╝╚═╝╩╚═╝╩ ╩`

// BannerStyle styles the ASCII art banner.
var BannerStyle = lipgloss.NewStyle().
	Foreground(ColorBlue).
	Bold(true)

// CommandHeaderStyle styles the hook command headers.
var CommandHeaderStyle = lipgloss.NewStyle().
	Foreground(ColorBlue).
	Bold(true)

// CommandStyle styles the command text.
var CommandStyle = lipgloss.NewStyle().
	Foreground(ColorWhite)

// DividerStyle styles horizontal dividers.
var DividerStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// FormTheme returns a huh theme matching the Tokyo Night palette.
func FormTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = t.Focused.Title.Foreground(ColorBlue).Bold(true)
	t.Focused.SelectSelector = t.Focused.SelectSelector.Foreground(ColorBlue)
	t.Focused.MultiSelectSelector = t.Focused.MultiSelectSelector.Foreground(ColorBlue)
	t.Focused.SelectedOption = t.Focused.SelectedOption.Foreground(ColorGreen)
	t.Focused.SelectedPrefix = t.Focused.SelectedPrefix.Foreground(ColorGreen)
	t.Focused.TextInput.Cursor = t.Focused.TextInput.Cursor.Foreground(ColorBlue)
	t.Focused.TextInput.Prompt = t.Focused.TextInput.Prompt.Foreground(ColorBlue)
	t.Focused.FocusedButton = t.Focused.FocusedButton.
		Background(ColorBlue).
		Foreground(lipgloss.Color("#1a1b26"))
	t.Blurred.Title = t.Blurred.Title.Foreground(ColorGray)

	return t
}
