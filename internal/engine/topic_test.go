package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTopic(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"simple hit", "What is the nature of justice?", "justice"},
		{"case insensitive", "TRUTH matters", "truth"},
		{"vocabulary order wins over text order", "the reality of truth", "truth"},
		{"substring hit", "on consciousness and its limits", "consciousness"},
		{"no hit", "let's talk about sailing", "general discussion"},
		{"empty", "", "general discussion"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTopic(tt.text))
		})
	}
}

func TestExtractTopicIsDeterministic(t *testing.T) {
	text := "is beauty a kind of wisdom, or wisdom a kind of beauty?"
	first := ExtractTopic(text)
	for range 5 {
		assert.Equal(t, first, ExtractTopic(text))
	}
}
