package chat

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/ravindranath-sawane/Zero-To-GenAI/pkg/conversation"
)

const EchoEngine = "echo"

// EchoCompleter answers "Echo: <last user message>" without any network access.
type EchoCompleter struct {
	// TimePerFragment delays every streamed fragment, to make streaming visible.
	TimePerFragment time.Duration
}

var _ conversation.Completer = (*EchoCompleter)(nil)
var _ conversation.StreamingCompleter = (*EchoCompleter)(nil)

func NewEchoCompleter() *EchoCompleter {
	return &EchoCompleter{}
}

func (e *EchoCompleter) Complete(ctx context.Context, turns conversation.Conversation) (string, error) {
	last, ok := turns.LastUserContent()
	if !ok {
		return "", errors.New("no user message to echo")
	}
	return "Echo: " + last, nil
}

// CompleteStream emits the echo one word at a time.
func (e *EchoCompleter) CompleteStream(ctx context.Context, turns conversation.Conversation) (conversation.FragmentStream, error) {
	text, err := e.Complete(ctx, turns)
	if err != nil {
		return nil, err
	}
	return &echoStream{
		ctx:       ctx,
		fragments: strings.SplitAfter(text, " "),
		delay:     e.TimePerFragment,
	}, nil
}

type echoStream struct {
	ctx       context.Context
	fragments []string
	delay     time.Duration
	idx       int
}

func (s *echoStream) Recv() (string, error) {
	if s.idx >= len(s.fragments) {
		return "", io.EOF
	}
	if s.delay > 0 {
		select {
		case <-s.ctx.Done():
			return "", conversation.NewCompletionError(conversation.FailureNetwork, s.ctx.Err())
		case <-time.After(s.delay):
		}
	} else if err := s.ctx.Err(); err != nil {
		return "", conversation.NewCompletionError(conversation.FailureNetwork, err)
	}
	s.idx++
	return s.fragments[s.idx-1], nil
}

func (s *echoStream) Close() error {
	s.idx = len(s.fragments)
	return nil
}
