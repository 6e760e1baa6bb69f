package conversation

import (
	"context"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Completer is the stateless remote text-generation call. It receives the full
// ordered history on every call.
type Completer interface {
	Complete(ctx context.Context, turns Conversation) (string, error)
}

type CompleterFunc func(ctx context.Context, turns Conversation) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, turns Conversation) (string, error) {
	return f(ctx, turns)
}

// StreamingCompleter returns the completion as a lazy sequence of fragments.
type StreamingCompleter interface {
	CompleteStream(ctx context.Context, turns Conversation) (FragmentStream, error)
}

// FragmentStream is finite and can only be consumed once. Recv returns io.EOF
// after the last fragment.
type FragmentStream interface {
	Recv() (string, error)
	Close() error
}

// Fold drains the stream, handing every fragment to sink (which may be nil), and
// returns the concatenated text.
func Fold(stream FragmentStream, sink func(string)) (string, error) {
	var sb strings.Builder
	for {
		fragment, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return sb.String(), nil
		}
		if err != nil {
			return sb.String(), err
		}
		if fragment == "" {
			continue
		}
		sb.WriteString(fragment)
		if sink != nil {
			sink(fragment)
		}
	}
}

// SliceStream replays a fixed list of fragments, optionally failing after them.
type SliceStream struct {
	fragments []string
	err       error
	idx       int
	closed    bool
}

var _ FragmentStream = (*SliceStream)(nil)

func NewSliceStream(fragments []string, err error) *SliceStream {
	return &SliceStream{fragments: fragments, err: err}
}

func (s *SliceStream) Recv() (string, error) {
	if s.closed {
		return "", io.ErrClosedPipe
	}
	if s.idx < len(s.fragments) {
		s.idx++
		return s.fragments[s.idx-1], nil
	}
	if s.err != nil {
		return "", s.err
	}
	return "", io.EOF
}

func (s *SliceStream) Close() error {
	s.closed = true
	return nil
}
