package conversation

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type Store struct {
	ID    uuid.UUID
	turns Conversation
}

type StoreOption func(*Store)

// WithSystemPrompt seeds the store with a system turn. An empty prompt is ignored.
func WithSystemPrompt(prompt string) StoreOption {
	return func(s *Store) {
		if prompt == "" {
			return
		}
		s.turns = Conversation{NewTurn(RoleSystem, prompt)}
	}
}

func WithID(id uuid.UUID) StoreOption {
	return func(s *Store) {
		s.ID = id
	}
}

func NewStore(options ...StoreOption) *Store {
	ret := &Store{
		ID:    uuid.Nil,
		turns: Conversation{},
	}
	for _, option := range options {
		option(ret)
	}
	if ret.ID == uuid.Nil {
		ret.ID = uuid.New()
	}
	return ret
}

// Exchange appends userText, sends the whole history to c and appends the reply.
//
// When c fails the user turn stays in the store and no assistant turn is added;
// the failed attempt is neither retried nor removed.
func (s *Store) Exchange(ctx context.Context, c Completer, userText string) (string, error) {
	if err := s.appendUser(userText); err != nil {
		return "", err
	}

	reply, err := c.Complete(ctx, s.Export())
	if err != nil {
		return "", s.failed(err)
	}

	return s.commit(reply)
}

// ExchangeStream is Exchange for streaming capabilities. Every fragment is handed
// to sink as it arrives; the assistant turn is only appended once the stream has
// been folded completely.
func (s *Store) ExchangeStream(
	ctx context.Context,
	c StreamingCompleter,
	userText string,
	sink func(string),
) (string, error) {
	if err := s.appendUser(userText); err != nil {
		return "", err
	}

	stream, err := c.CompleteStream(ctx, s.Export())
	if err != nil {
		return "", s.failed(err)
	}
	defer func() {
		_ = stream.Close()
	}()

	reply, err := Fold(stream, sink)
	if err != nil {
		return "", s.failed(err)
	}

	return s.commit(reply)
}

func (s *Store) appendUser(userText string) error {
	if strings.TrimSpace(userText) == "" {
		return NewCompletionError(FailureValidation, ErrEmptyInput)
	}
	s.turns = append(s.turns, NewTurn(RoleUser, userText))
	return nil
}

func (s *Store) failed(err error) error {
	log.Debug().
		Str("conversation_id", s.ID.String()).
		Int("turns", len(s.turns)).
		Err(err).
		Msg("exchange failed, keeping user turn")

	var ce *CompletionError
	if errors.As(err, &ce) {
		return err
	}
	return NewCompletionError(FailureRemote, err)
}

func (s *Store) commit(reply string) (string, error) {
	if strings.TrimSpace(reply) == "" {
		return "", s.failed(NewCompletionError(FailureRemote, ErrEmptyCompletion))
	}
	s.turns = append(s.turns, NewTurn(RoleAssistant, reply))

	log.Debug().
		Str("conversation_id", s.ID.String()).
		Int("turns", len(s.turns)).
		Int("reply_length", len(reply)).
		Msg("exchange complete")

	return reply, nil
}

// Export returns a copy of the full history.
func (s *Store) Export() Conversation {
	ret := make(Conversation, len(s.turns))
	copy(ret, s.turns)
	return ret
}

func (s *Store) Len() int {
	return len(s.turns)
}

func (s *Store) Last() (Turn, bool) {
	if len(s.turns) == 0 {
		return Turn{}, false
	}
	return s.turns[len(s.turns)-1], true
}

// SaveToFile writes the history as an indented JSON list of role/content pairs.
func (s *Store) SaveToFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "could not create %s", path)
	}

	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(s.Export()); err != nil {
		return errors.Wrap(err, "could not encode conversation")
	}

	return nil
}
