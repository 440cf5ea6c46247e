package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// keyMap defines the chat view's keybindings.
type keyMap struct {
	Send       key.Binding
	Summarize  key.Binding
	End        key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	Quit       key.Binding
}

var keys = keyMap{
	Send: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "send"),
	),
	Summarize: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "summary"),
	),
	End: key.NewBinding(
		key.WithKeys("ctrl+e"),
		key.WithHelp("ctrl+e", "end"),
	),
	ScrollUp: key.NewBinding(
		key.WithKeys("pgup", "ctrl+u"),
		key.WithHelp("pgup", "scroll up"),
	),
	ScrollDown: key.NewBinding(
		key.WithKeys("pgdown", "ctrl+d"),
		key.WithHelp("pgdn", "scroll down"),
	),
	Quit: key.NewBinding(
		key.WithKeys("esc", "ctrl+c"),
		key.WithHelp("esc", "quit"),
	),
}

// helpEntries returns the help pairs shown in the footer. Ended forums
// drop the bindings that would mutate the discussion.
func helpEntries(ended bool) [][2]string {
	if ended {
		return [][2]string{
			keyHelp(keys.ScrollUp),
			keyHelp(keys.ScrollDown),
			keyHelp(keys.Quit),
		}
	}
	return [][2]string{
		keyHelp(keys.Send),
		keyHelp(keys.Summarize),
		keyHelp(keys.End),
		keyHelp(keys.Quit),
	}
}

func keyHelp(b key.Binding) [2]string {
	h := b.Help()
	return [2]string{h.Key, h.Desc}
}

// renderHelp joins help pairs into a single dim line.
func renderHelp(entries [][2]string) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, e[0]+" "+e[1])
	}
	return strings.Join(parts, "  ·  ")
}
