package producer

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/hay-kot/symposium/internal/core/forum"
)

// perMessageOverhead approximates the per-message framing cost (role tag and
// separators) a chat API charges on top of the content itself.
const perMessageOverhead = 8

// tokenCounter lazily initializes a tiktoken encoding. First use may fetch
// encoding data; if that fails the counter degrades to a bytes/4 estimate
// instead of failing production.
type tokenCounter struct {
	encoding string
	once     sync.Once
	enc      *tiktoken.Tiktoken
}

func newTokenCounter(model string) *tokenCounter {
	return &tokenCounter{encoding: encodingFor(model)}
}

// encodingFor maps a model name to its tiktoken encoding. Non-OpenAI models
// get cl100k_base, which is close enough for window budgeting.
func encodingFor(model string) string {
	for _, prefix := range []string{"gpt-4o", "o1", "o3"} {
		if strings.HasPrefix(model, prefix) {
			return "o200k_base"
		}
	}
	return "cl100k_base"
}

func (t *tokenCounter) Count(text string) int {
	t.once.Do(func() {
		enc, err := tiktoken.GetEncoding(t.encoding)
		if err != nil {
			return
		}
		t.enc = enc
	})
	if t.enc == nil {
		return len(text)/4 + 1
	}
	return len(t.enc.Encode(text, nil, nil))
}

// trimTranscript keeps the newest messages whose combined cost fits the
// limit. The latest message always survives, over budget or not.
func trimTranscript(msgs []forum.Message, limit int, count func(string) int) []forum.Message {
	start := len(msgs)
	remaining := limit
	for i := len(msgs) - 1; i >= 0; i-- {
		cost := count(msgs[i].Content) + perMessageOverhead
		if cost > remaining && start < len(msgs) {
			break
		}
		remaining -= cost
		start = i
	}
	return msgs[start:]
}
