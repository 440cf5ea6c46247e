package producer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAI produces replies through the OpenAI chat completion API.
type OpenAI struct {
	client      *openai.Client
	model       string
	temperature float64
	maxTokens   int
	window      int
	timeout     time.Duration
	counter     *tokenCounter
}

// NewOpenAI builds the OpenAI backend. The API key is required; everything
// else falls back to defaults.
func NewOpenAI(s Settings) (*OpenAI, error) {
	if s.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}
	s = s.withDefaults(defaultOpenAIModel)

	return &OpenAI{
		client:      openai.NewClient(s.APIKey),
		model:       s.Model,
		temperature: s.Temperature,
		maxTokens:   s.MaxTokens,
		window:      s.ContextTokens,
		timeout:     s.Timeout,
		counter:     newTokenCounter(s.Model),
	}, nil
}

func (o *OpenAI) Name() string { return ProviderOpenAI }

func (o *OpenAI) Produce(ctx context.Context, req Request) (Response, error) {
	system, err := systemPrompt(req.Persona)
	if err != nil {
		return Response{}, fmt.Errorf("render system prompt: %w", err)
	}
	window := trimTranscript(req.Messages, o.window, o.counter.Count)

	ctx, cancel := deadlineContext(ctx, o.timeout)
	defer cancel()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: conversationContext(req, window)},
		},
		MaxTokens:   o.maxTokens,
		Temperature: float32(o.temperature),
	})
	if err != nil {
		return Response{}, fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, errors.New("openai returned no choices")
	}

	return Response{
		Content:   resp.Choices[0].Message.Content,
		Thinking:  remoteThinking(req.Persona),
		Model:     resp.Model,
		TokensIn:  resp.Usage.PromptTokens,
		TokensOut: resp.Usage.CompletionTokens,
	}, nil
}
