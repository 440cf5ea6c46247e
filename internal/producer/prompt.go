package producer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hay-kot/symposium/internal/core/forum"
	"github.com/hay-kot/symposium/internal/core/persona"
	"github.com/hay-kot/symposium/pkg/tmpl"
)

// systemPromptTemplate frames a persona for a remote model. Sections render
// only when the profile fills them.
const systemPromptTemplate = `You are {{ .Name }}.
{{ if .Background }}
BACKGROUND:
{{ .Background }}
{{ end }}{{ if .Description }}
PERSONA:
{{ .Description }}
{{ end }}{{ if .Method }}
APPROACH:
{{ .Method }}
{{ end }}{{ if .Style }}
STYLE:
{{ .Style }}
{{ end }}{{ if .Expertise }}
AREAS OF EXPERTISE:
{{ join .Expertise ", " }}
{{ end }}{{ if .TraitsLine }}
PERSONALITY:
{{ .TraitsLine }}
{{ end }}{{ if .KeyIdeas }}
KEY IDEAS YOU DEVELOPED:
{{ join .KeyIdeas ", " }}
{{ end }}{{ if .Quotes }}
NOTABLE QUOTES:
{{ bullet .Quotes }}
{{ end }}
INSTRUCTIONS:
1. Respond authentically as {{ .Name }} would, drawing on your background and approach.
2. Use your characteristic style of reasoning and argumentation.
3. Reference your key ideas when they are relevant.
4. Engage thoughtfully with the other participants' points.
5. Ask probing questions that reflect your method.
6. Keep responses conversational but substantive, two to four sentences.
7. You are a living voice in this conversation, not a historical record.`

type systemPromptData struct {
	persona.Profile
	TraitsLine string
}

// systemPrompt renders the persona framing sent as the system message.
func systemPrompt(p persona.Profile) (string, error) {
	return tmpl.Render(systemPromptTemplate, systemPromptData{
		Profile:    p,
		TraitsLine: traitsLine(p.Traits),
	})
}

func traitsLine(traits map[string]float64) string {
	if len(traits) == 0 {
		return ""
	}
	names := make([]string, 0, len(traits))
	for name := range traits {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %g", name, traits[name]))
	}
	return strings.Join(parts, ", ")
}

// conversationContext renders the transcript window and the reply
// instructions sent as the user message.
func conversationContext(req Request, window []forum.Message) string {
	name := req.Persona.Name

	if len(window) == 0 {
		return fmt.Sprintf("This is the beginning of a new discussion. Introduce yourself as %s and share an opening thought that reflects your interests.", name)
	}

	var b strings.Builder
	b.WriteString("Here is the recent conversation:\n\n")
	for _, m := range window {
		fmt.Fprintf(&b, "%s: %s\n\n", req.displayName(m.SenderID), m.Content)
	}

	if req.Topic != "" {
		fmt.Fprintf(&b, "The current topic is %s.\n", req.Topic)
	}
	switch req.Mode {
	case forum.ModeDebate:
		b.WriteString("This forum is a debate; sharp disagreement is welcome.\n")
	case forum.ModeExploration:
		b.WriteString("This forum is an open exploration; follow the ideas where they lead.\n")
	}

	fmt.Fprintf(&b, `
Now respond as %s. Consider:
- Which aspects of this discussion align with your interests?
- What questions would you naturally ask, given your method?
- How can you move the conversation forward?

Respond authentically as %s would.`, name, name)
	return b.String()
}

// remoteThinking is the trace recorded alongside model-generated replies.
func remoteThinking(p persona.Profile) string {
	areas := p.Expertise
	if len(areas) > 2 {
		areas = areas[:2]
	}
	if len(areas) == 0 {
		return fmt.Sprintf("Considering this from my perspective as %s.", p.Name)
	}
	return fmt.Sprintf("Considering this from my perspective as %s, drawing on my expertise in %s.", p.Name, strings.Join(areas, ", "))
}
