package engine

import "strings"

// MentionTable resolves direct addresses in human messages to participant
// ids. Aliases are the participant's id and display name, matched case
// insensitively. Entries are checked in registration order; the first
// participant with a matching alias wins.
type MentionTable struct {
	entries []mentionEntry
}

type mentionEntry struct {
	id      string
	aliases []string
}

// NewMentionTable builds an empty table.
func NewMentionTable() *MentionTable {
	return &MentionTable{}
}

// Add registers a participant's aliases.
func (t *MentionTable) Add(id, displayName string) {
	aliases := []string{strings.ToLower(id)}
	if name := strings.ToLower(strings.TrimSpace(displayName)); name != "" && name != aliases[0] {
		aliases = append(aliases, name)
	}
	t.entries = append(t.entries, mentionEntry{id: id, aliases: aliases})
}

// Detect scans text for a direct address to a registered participant.
// Recognized forms: the name at the very start of the message, "hey <name>",
// the name followed by punctuation, and "what would <name> say".
func (t *MentionTable) Detect(text string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return "", false
	}
	for _, e := range t.entries {
		for _, alias := range e.aliases {
			if addressed(lower, alias) {
				return e.id, true
			}
		}
	}
	return "", false
}

func addressed(text, alias string) bool {
	if prefixedBy(text, alias, 0) {
		return true
	}
	if i := strings.Index(text, "hey "+alias); i >= 0 && prefixedBy(text, alias, i+len("hey ")) {
		return true
	}
	if i := strings.Index(text, "what would "+alias+" say"); i >= 0 {
		return true
	}

	// Name followed by addressing punctuation anywhere in the text.
	for start := 0; ; {
		i := strings.Index(text[start:], alias)
		if i < 0 {
			return false
		}
		end := start + i + len(alias)
		if wordBoundary(text, start+i, end) && end < len(text) && strings.ContainsRune(",!?.;:", rune(text[end])) {
			return true
		}
		start = end
	}
}

// prefixedBy reports whether alias occurs at offset and ends on a word
// boundary, so "kant" does not match inside "kantian".
func prefixedBy(text, alias string, offset int) bool {
	if !strings.HasPrefix(text[offset:], alias) {
		return false
	}
	return wordBoundary(text, offset, offset+len(alias))
}

func wordBoundary(text string, start, end int) bool {
	if start > 0 && isWordByte(text[start-1]) {
		return false
	}
	if end < len(text) && isWordByte(text[end]) {
		return false
	}
	return true
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '_'
}
