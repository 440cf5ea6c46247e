package engine

import (
	"strings"

	"github.com/hay-kot/symposium/internal/core/forum"
	"github.com/hay-kot/symposium/internal/core/persona"
)

// Scoring weights. The mention bonus is intentionally large enough to
// dominate the other components; the sum is only clamped at the very end.
const (
	coldStartActivation = 0.3
	mentionBonus        = 0.8
	topicWeight         = 0.4
	engagementWeight    = 0.3
	personalityWeight   = 0.3
)

// weightyTerms raise engagement when they appear in the latest message.
var weightyTerms = []string{"truth", "reality", "existence", "ethics", "morality", "justice"}

// Score computes a participant's eagerness to speak given the current
// conversation snapshot. Pure: no side effects, safe to call redundantly and
// concurrently over the same snapshot. Absent traits, interests, and
// memories all default to neutral values; this never fails.
func Score(p persona.Profile, mem *persona.Memory, snap Snapshot) float64 {
	if len(snap.Messages) == 0 {
		return coldStartActivation
	}
	latest := snap.Messages[len(snap.Messages)-1]

	total := 0.0
	if latest.Kind == forum.KindHuman && mentioned(latest.Content, p) {
		total += mentionBonus
	}

	total += topicRelevance(p, mem, snap.Topic) * topicWeight

	if latest.SenderID != p.ID {
		total += engagement(latest.Content) * engagementWeight
	}

	total += personalityFactor(p, snap.Mode) * personalityWeight

	return clamp01(total)
}

// mentioned reports a case-insensitive substring hit of the participant's
// name or id in the text.
func mentioned(text string, p persona.Profile) bool {
	lower := strings.ToLower(text)
	if strings.Contains(lower, strings.ToLower(p.ID)) {
		return true
	}
	return p.Name != "" && strings.Contains(lower, strings.ToLower(p.Name))
}

// topicRelevance is the maximum interest across expertise areas that share a
// keyword with the topic. An empty topic is neutral; a topic touching none
// of the participant's expertise contributes nothing.
func topicRelevance(p persona.Profile, mem *persona.Memory, topic string) float64 {
	if topic == "" {
		return 0.5
	}
	lower := strings.ToLower(topic)

	relevance := 0.0
	for _, area := range p.Expertise {
		if strings.Contains(lower, strings.ToLower(area)) {
			relevance = max(relevance, interest(mem, area))
		}
	}
	return relevance
}

func interest(mem *persona.Memory, topic string) float64 {
	if mem == nil {
		return 0.5
	}
	return mem.Interest(topic)
}

// engagement measures how inviting the latest message is: questions and
// weighty terms pull participants in. Capped at 1.0 before weighting.
func engagement(content string) float64 {
	score := 0.3
	if strings.Contains(content, "?") {
		score += 0.3
	}
	lower := strings.ToLower(content)
	for _, term := range weightyTerms {
		if strings.Contains(lower, term) {
			score += 0.1
		}
	}
	return min(1.0, score)
}

// personalityFactor blends extroversion and agreeableness. Debate forums
// favor the disagreeable; everything else favors the agreeable.
func personalityFactor(p persona.Profile, mode forum.Mode) float64 {
	extroversion := p.Trait("extroversion")
	agreeableness := p.Trait("agreeableness")

	if mode == forum.ModeDebate {
		return extroversion*0.7 + (1-agreeableness)*0.3
	}
	return extroversion*0.8 + agreeableness*0.2
}

func clamp01(v float64) float64 {
	return min(1.0, max(0.0, v))
}
