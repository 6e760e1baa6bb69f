package research

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/ravindranath-sawane/Zero-To-GenAI/pkg/conversation"
)

// Researcher produces a markdown summary of a topic in a single exchange.
type Researcher struct {
	Completer conversation.Completer
}

func NewResearcher(c conversation.Completer) *Researcher {
	return &Researcher{Completer: c}
}

// Research validates req before the completer is touched. Every call uses a
// fresh store holding only the system prompt.
func (r *Researcher) Research(ctx context.Context, req *Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	prompt, err := RenderUserPrompt(req)
	if err != nil {
		return "", err
	}

	store := conversation.NewStore(conversation.WithSystemPrompt(SystemPrompt))
	log.Debug().
		Str("conversation_id", store.ID.String()).
		Str("topic", req.Topic).
		Int("bullets", req.Bullets).
		Msg("researching topic")

	return store.Exchange(ctx, r.Completer, prompt)
}
