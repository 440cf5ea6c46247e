package producer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Anthropic produces replies through the Anthropic messages API.
type Anthropic struct {
	client      *anthropic.Client
	model       string
	temperature float64
	maxTokens   int
	window      int
	timeout     time.Duration
	counter     *tokenCounter
}

// NewAnthropic builds the Anthropic backend. The API key is required;
// everything else falls back to defaults.
func NewAnthropic(s Settings) (*Anthropic, error) {
	if s.APIKey == "" {
		return nil, errors.New("anthropic api key is required")
	}
	s = s.withDefaults(defaultAnthropicModel)

	return &Anthropic{
		client:      anthropic.NewClient(option.WithAPIKey(s.APIKey)),
		model:       s.Model,
		temperature: s.Temperature,
		maxTokens:   s.MaxTokens,
		window:      s.ContextTokens,
		timeout:     s.Timeout,
		counter:     newTokenCounter(s.Model),
	}, nil
}

func (a *Anthropic) Name() string { return ProviderAnthropic }

func (a *Anthropic) Produce(ctx context.Context, req Request) (Response, error) {
	system, err := systemPrompt(req.Persona)
	if err != nil {
		return Response{}, fmt.Errorf("render system prompt: %w", err)
	}
	window := trimTranscript(req.Messages, a.window, a.counter.Count)

	ctx, cancel := deadlineContext(ctx, a.timeout)
	defer cancel()

	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.F(a.model),
		MaxTokens:   anthropic.F(int64(a.maxTokens)),
		Temperature: anthropic.F(a.temperature),
		System: anthropic.F([]anthropic.TextBlockParam{{
			Type: anthropic.F(anthropic.TextBlockParamTypeText),
			Text: anthropic.F(system),
		}}),
		Messages: anthropic.F([]anthropic.MessageParam{{
			Role: anthropic.F(anthropic.MessageParamRoleUser),
			Content: anthropic.F([]anthropic.ContentBlockParamUnion{
				anthropic.TextBlockParam{
					Type: anthropic.F(anthropic.TextBlockParamTypeText),
					Text: anthropic.F(conversationContext(req, window)),
				},
			}),
		}}),
	})
	if err != nil {
		return Response{}, fmt.Errorf("anthropic message: %w", err)
	}

	var content string
	for _, block := range resp.Content {
		if block.Type == anthropic.ContentBlockTypeText {
			content += block.Text
		}
	}
	if content == "" {
		return Response{}, errors.New("anthropic returned no text content")
	}

	return Response{
		Content:   content,
		Thinking:  remoteThinking(req.Persona),
		Model:     string(resp.Model),
		TokensIn:  int(resp.Usage.InputTokens),
		TokensOut: int(resp.Usage.OutputTokens),
	}, nil
}
