package tokens

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/tiktoken-go/tokenizer"

	"github.com/ravindranath-sawane/Zero-To-GenAI/pkg/conversation"
)

const (
	// tokens added by the chat format around every message
	tokensPerTurn = 3
	// tokens priming the assistant reply
	tokensPerReply = 3
)

// Counter estimates prompt sizes. The numbers are informational; nothing is
// truncated based on them.
type Counter struct {
	codec tokenizer.Codec
}

// NewCounter returns a counter for model, falling back to cl100k_base for
// models the tokenizer does not know.
func NewCounter(model string) (*Counter, error) {
	if model != "" {
		c, err := tokenizer.ForModel(tokenizer.Model(model))
		if err == nil {
			return &Counter{codec: c}, nil
		}
		log.Debug().Str("model", model).Err(err).Msg("unknown tokenizer model, using cl100k_base")
	}

	c, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		return nil, errors.Wrap(err, "could not load cl100k_base")
	}
	return &Counter{codec: c}, nil
}

func (c *Counter) Encoding() string {
	return c.codec.GetName()
}

func (c *Counter) Count(text string) (int, error) {
	ids, _, err := c.codec.Encode(text)
	if err != nil {
		return 0, errors.Wrap(err, "could not encode text")
	}
	return len(ids), nil
}

// CountTurns approximates the prompt tokens of sending turns as a chat request.
func (c *Counter) CountTurns(turns conversation.Conversation) (int, error) {
	total := tokensPerReply
	for _, t := range turns {
		n, err := c.Count(t.Content)
		if err != nil {
			return 0, err
		}
		r, err := c.Count(string(t.Role))
		if err != nil {
			return 0, err
		}
		total += tokensPerTurn + n + r
	}
	return total, nil
}
