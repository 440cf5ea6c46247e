package engine

import "strings"

// DefaultTopic is the label used when no vocabulary word matches.
const DefaultTopic = "general discussion"

// InitialTopic labels a session that has no messages yet.
const InitialTopic = "introduction"

// topicVocabulary is scanned in order; the first word found in the text
// becomes the topic label.
var topicVocabulary = []string{
	"truth", "reality", "existence", "knowledge", "wisdom",
	"ethics", "morality", "justice", "virtue", "good", "evil",
	"beauty", "love", "friendship", "happiness", "death",
	"consciousness", "mind", "soul", "god", "divine",
}

// ExtractTopic derives a coarse topic label from message text. Pure and
// deterministic; no learning, no state.
func ExtractTopic(text string) string {
	lower := strings.ToLower(text)
	for _, word := range topicVocabulary {
		if strings.Contains(lower, word) {
			return word
		}
	}
	return DefaultTopic
}
