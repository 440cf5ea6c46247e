// Package producer generates participant replies. Three backends sit behind
// one interface: an offline template generator, OpenAI chat completions, and
// Anthropic messages. The template backend is always available and is the
// default when no provider is configured.
package producer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hay-kot/symposium/internal/core/forum"
	"github.com/hay-kot/symposium/internal/core/persona"
)

// Provider names accepted by New.
const (
	ProviderTemplate  = "template"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

const (
	defaultOpenAIModel    = "gpt-4o-mini"
	defaultAnthropicModel = "claude-3-haiku-20240307"
	defaultTemperature    = 0.7
	defaultMaxTokens      = 500
	defaultContextTokens  = 2048
)

// Request is one production call: the persona who speaks, the forum mood,
// and the transcript so far. Producers must treat it as read only.
type Request struct {
	Persona  persona.Profile
	Mode     forum.Mode
	Topic    string
	Messages []forum.Message
	// Names maps sender ids to display names for transcript rendering.
	// Unmapped ids render as the id itself.
	Names map[string]string
}

func (r Request) displayName(id string) string {
	if name, ok := r.Names[id]; ok {
		return name
	}
	return id
}

// Response is a produced reply plus its provenance.
type Response struct {
	Content   string
	Thinking  string
	Model     string
	TokensIn  int
	TokensOut int
}

// Producer turns a request into persona-voiced content. Implementations
// must be safe for concurrent use.
type Producer interface {
	Name() string
	Produce(ctx context.Context, req Request) (Response, error)
}

// Settings selects and tunes a backend. Zero values fall back to the
// provider's defaults.
type Settings struct {
	Provider    string
	Model       string
	APIKey      string
	Temperature float64
	MaxTokens   int
	// ContextTokens bounds the transcript window sent to remote models.
	ContextTokens int
	// Timeout bounds each remote production call. Zero means no deadline
	// beyond the caller's context.
	Timeout time.Duration
	// Seed drives the template backend's variation draws.
	Seed uint64
}

func (s Settings) withDefaults(model string) Settings {
	if s.Model == "" {
		s.Model = model
	}
	if s.Temperature <= 0 {
		s.Temperature = defaultTemperature
	}
	if s.MaxTokens <= 0 {
		s.MaxTokens = defaultMaxTokens
	}
	if s.ContextTokens <= 0 {
		s.ContextTokens = defaultContextTokens
	}
	return s
}

// deadlineContext derives a timeout context for one production call. A zero
// or negative duration leaves the caller's context untouched.
func deadlineContext(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

// New builds the configured producer. Remote backends fail here on a
// missing API key, never mid-conversation.
func New(s Settings) (Producer, error) {
	switch strings.ToLower(s.Provider) {
	case "", ProviderTemplate:
		return NewTemplate(s.Seed), nil
	case ProviderOpenAI:
		return NewOpenAI(s)
	case ProviderAnthropic:
		return NewAnthropic(s)
	default:
		return nil, fmt.Errorf("unsupported provider %q", s.Provider)
	}
}
