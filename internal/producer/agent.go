package producer

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/hay-kot/symposium/internal/core/forum"
	"github.com/hay-kot/symposium/internal/core/persona"
	"github.com/hay-kot/symposium/internal/engine"
)

// Agent adapts a Producer into an engine participant. It owns one persona's
// profile and private memory for the lifetime of a session and renders
// engine snapshots into production requests.
type Agent struct {
	profile  persona.Profile
	memory   *persona.Memory
	producer Producer
	names    map[string]string
	log      zerolog.Logger
}

// NewAgent builds a participant for the given persona. names maps sender ids
// to display names for transcript rendering and may be nil.
func NewAgent(profile persona.Profile, prod Producer, names map[string]string, logger zerolog.Logger) *Agent {
	return &Agent{
		profile:  profile,
		memory:   persona.NewMemory(profile),
		producer: prod,
		names:    names,
		log:      logger.With().Str("participant", profile.ID).Logger(),
	}
}

func (a *Agent) Profile() persona.Profile { return a.profile }
func (a *Agent) Memory() *persona.Memory  { return a.memory }

// Produce asks the backend for a reply and wraps it as a forum message with
// provenance metadata.
func (a *Agent) Produce(ctx context.Context, snap engine.Snapshot) (forum.Message, error) {
	resp, err := a.producer.Produce(ctx, Request{
		Persona:  a.profile,
		Mode:     snap.Mode,
		Topic:    snap.Topic,
		Messages: snap.Messages,
		Names:    a.names,
	})
	if err != nil {
		return forum.Message{}, err
	}

	msg := forum.NewMessage(snap.ForumID, a.profile.ID, forum.KindAgent, resp.Content)
	msg.Thinking = resp.Thinking
	msg.Metadata = map[string]string{"provider": a.producer.Name()}
	if resp.Model != "" {
		msg.Metadata["model"] = resp.Model
	}
	if resp.TokensIn > 0 || resp.TokensOut > 0 {
		msg.Metadata["tokens_in"] = strconv.Itoa(resp.TokensIn)
		msg.Metadata["tokens_out"] = strconv.Itoa(resp.TokensOut)
	}

	a.log.Debug().
		Str("provider", a.producer.Name()).
		Int("chars", len(resp.Content)).
		Msg("produced reply")
	return msg, nil
}
