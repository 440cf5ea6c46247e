package producer

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/hay-kot/symposium/internal/core/forum"
	"github.com/hay-kot/symposium/internal/core/persona"
)

// Conversational tones read off the last few messages.
const (
	toneNeutral       = "neutral"
	toneArgumentative = "argumentative"
	toneEnthusiastic  = "enthusiastic"
	toneInquisitive   = "inquisitive"
	toneReflective    = "reflective"
)

// conceptTerms are the concepts a templated reply can latch onto.
var conceptTerms = []string{"truth", "justice", "reality", "knowledge", "virtue", "freedom", "consciousness", "existence"}

// Template is the offline backend: it assembles replies from the persona
// profile and the conversation without calling any model. Output is
// deterministic for a given seed, which keeps scripted demos and tests
// stable.
type Template struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewTemplate builds the offline backend with a fixed variation seed.
func NewTemplate(seed uint64) *Template {
	return &Template{rng: rand.New(rand.NewPCG(seed, seed))}
}

func (t *Template) Name() string { return ProviderTemplate }

// Produce assembles a reply: a trait-keyed opening, an observation shaped by
// the persona's method, optionally a question in its style, and now and then
// a signature quote.
func (t *Template) Produce(_ context.Context, req Request) (Response, error) {
	p := req.Persona
	if len(req.Messages) == 0 {
		return Response{
			Content:  introduction(p),
			Thinking: fmt.Sprintf("Introducing myself as %s.", p.Name),
		}, nil
	}

	latest := req.Messages[len(req.Messages)-1]
	sender := req.displayName(latest.SenderID)
	recent := joinedContent(tail(req.Messages, 5))
	tone := assessTone(tail(req.Messages, 3))

	parts := []string{
		opening(p, sender),
		mainContent(p, recent, latest.Content),
	}
	if p.Trait("curiosity") > 0.6 && tone != toneArgumentative {
		parts = append(parts, question(p, latest.Content))
	}
	if span := eraSpan(p.Era); span != "" && len(req.Messages) > 3 {
		parts = append(parts, fmt.Sprintf("In my time (%s), we grappled with similar questions, though in different contexts.", span))
	}
	if quote, ok := t.maybeQuote(p); ok {
		parts = append(parts, quote)
	}

	return Response{
		Content:  strings.Join(parts, "\n\n"),
		Thinking: innerThinking(p, sender, recent, latest.Content),
	}, nil
}

func introduction(p persona.Profile) string {
	areas := p.Expertise
	if len(areas) > 2 {
		areas = areas[:2]
	}
	if len(areas) == 0 {
		return fmt.Sprintf("I am %s. I am eager to explore these ideas with you.", p.Name)
	}
	return fmt.Sprintf("I am %s. My work centers on %s. I am eager to explore these ideas with you.", p.Name, strings.Join(areas, ", "))
}

func opening(p persona.Profile, sender string) string {
	switch {
	case p.Trait("skeptical") > 0.7:
		return fmt.Sprintf("I find myself questioning what %s has proposed...", sender)
	case p.Trait("systematic") > 0.7:
		return "Let me approach this systematically..."
	case p.Trait("provocative") > 0.7:
		return "How fascinating! But I wonder if we're missing something fundamental here..."
	case p.Trait("harmonious") > 0.7:
		return "I appreciate this perspective, and it brings to mind..."
	default:
		return "This is indeed a profound question..."
	}
}

func mainContent(p persona.Profile, recent, latest string) string {
	var b strings.Builder
	if area := relevantExpertise(p, recent); area != "" {
		fmt.Fprintf(&b, "In my understanding of %s, ", prettyArea(area))
	}
	switch {
	case strings.Contains(p.Method, "dialogue"):
		b.WriteString("we must examine the underlying assumptions. ")
	case strings.Contains(p.Method, "empirical"):
		b.WriteString("we should consider what experience teaches us. ")
	case strings.Contains(p.Method, "logical"):
		b.WriteString("we must follow the logical implications. ")
	case strings.Contains(p.Method, "genealogical"):
		b.WriteString("we should trace the historical development of these ideas. ")
	}
	if idea := relevantIdea(p, latest); idea != "" {
		fmt.Fprintf(&b, "This connects to what I've called %s. ", idea)
	}
	b.WriteString("The deeper question here concerns the fundamental nature of what we're examining.")
	return b.String()
}

func question(p persona.Profile, latest string) string {
	method := strings.ToLower(p.Method)
	switch {
	case strings.Contains(method, "socratic"), strings.Contains(method, "dialogue"):
		return fmt.Sprintf("But I wonder: what do we really mean when we speak of %s?", keyConcept(latest))
	case strings.Contains(method, "critical"):
		return "Should we not also ask whether our assumptions here can withstand careful scrutiny?"
	case strings.Contains(method, "empirical"):
		return "What evidence do we have for this claim?"
	default:
		return "How might we understand this differently?"
	}
}

func (t *Template) maybeQuote(p persona.Profile) (string, bool) {
	if len(p.Quotes) == 0 {
		return "", false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.rng.Float64() >= 0.25 {
		return "", false
	}
	return fmt.Sprintf("As I have said: %q.", p.Quotes[t.rng.IntN(len(p.Quotes))]), true
}

func innerThinking(p persona.Profile, sender, recent, latest string) string {
	parts := []string{fmt.Sprintf("Contemplating %s's point about %s...", sender, keyConcept(latest))}
	if area := relevantExpertise(p, recent); area != "" {
		parts = append(parts, fmt.Sprintf("This relates to my work in %s.", prettyArea(area)))
	}
	if idea := relevantIdea(p, latest); idea != "" {
		parts = append(parts, fmt.Sprintf("This connects to my ideas about %s.", idea))
	}
	if p.Method != "" {
		parts = append(parts, fmt.Sprintf("I should approach this through %s.", p.Method))
	}
	return strings.Join(parts, " ")
}

// relevantExpertise returns the first expertise area that shares a keyword
// with the recent conversation.
func relevantExpertise(p persona.Profile, recent string) string {
	lower := strings.ToLower(recent)
	for _, area := range p.Expertise {
		for _, keyword := range splitArea(area) {
			if strings.Contains(lower, keyword) {
				return area
			}
		}
	}
	return ""
}

// relevantIdea returns the first key idea sharing a word with the latest
// message.
func relevantIdea(p persona.Profile, latest string) string {
	lower := strings.ToLower(latest)
	for _, idea := range p.KeyIdeas {
		for _, word := range strings.Fields(strings.ToLower(idea)) {
			if strings.Contains(lower, word) {
				return idea
			}
		}
	}
	return ""
}

func keyConcept(text string) string {
	words := strings.Fields(strings.ToLower(text))
	for _, term := range conceptTerms {
		for _, w := range words {
			if strings.Trim(w, `.,!?;:"'`) == term {
				return term
			}
		}
	}
	return "this matter"
}

func assessTone(msgs []forum.Message) string {
	if len(msgs) == 0 {
		return toneNeutral
	}
	recent := strings.ToLower(joinedContent(msgs))
	switch {
	case containsAny(recent, "disagree", "wrong", "false", "mistake"):
		return toneArgumentative
	case containsAny(recent, "fascinating", "interesting", "wonderful"):
		return toneEnthusiastic
	case strings.Contains(recent, "?"):
		return toneInquisitive
	default:
		return toneReflective
	}
}

// eraSpan pulls the parenthesized range out of an era like
// "Ancient Greece (470-399 BCE)", falling back to the whole string.
func eraSpan(era string) string {
	open := strings.Index(era, "(")
	if open < 0 {
		return era
	}
	if end := strings.Index(era[open:], ")"); end > 0 {
		return era[open+1 : open+end]
	}
	return era
}

func prettyArea(area string) string {
	return strings.ReplaceAll(area, "_", " ")
}

func splitArea(area string) []string {
	return strings.FieldsFunc(strings.ToLower(area), func(r rune) bool {
		return r == '_' || r == ' '
	})
}

func joinedContent(msgs []forum.Message) string {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		parts = append(parts, m.Content)
	}
	return strings.Join(parts, " ")
}

func tail(msgs []forum.Message, n int) []forum.Message {
	if len(msgs) <= n {
		return msgs
	}
	return msgs[len(msgs)-n:]
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
