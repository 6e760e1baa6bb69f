package chat

import (
	"context"
	"sync"

	"github.com/ravindranath-sawane/Zero-To-GenAI/pkg/conversation"
)

// MockCompleter replays scripted replies round-robin and records what it was sent.
type MockCompleter struct {
	replies []string
	err     error

	mu       sync.Mutex
	index    int
	received []conversation.Conversation
}

var _ conversation.Completer = (*MockCompleter)(nil)
var _ conversation.StreamingCompleter = (*MockCompleter)(nil)

func NewMockCompleter(replies ...string) *MockCompleter {
	return &MockCompleter{replies: replies}
}

// NewFailingCompleter returns a completer whose every call fails with err.
func NewFailingCompleter(err error) *MockCompleter {
	return &MockCompleter{err: err}
}

func (m *MockCompleter) Complete(ctx context.Context, turns conversation.Conversation) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.received = append(m.received, turns)
	if m.err != nil {
		return "", m.err
	}
	if len(m.replies) == 0 {
		return "", nil
	}

	reply := m.replies[m.index]
	m.index = (m.index + 1) % len(m.replies)
	return reply, nil
}

// CompleteStream streams the next scripted reply as a single fragment.
func (m *MockCompleter) CompleteStream(ctx context.Context, turns conversation.Conversation) (conversation.FragmentStream, error) {
	reply, err := m.Complete(ctx, turns)
	if err != nil {
		return nil, err
	}
	return conversation.NewSliceStream([]string{reply}, nil), nil
}

func (m *MockCompleter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.received)
}

// Received returns the conversations passed to each call, in call order.
func (m *MockCompleter) Received() []conversation.Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()
	ret := make([]conversation.Conversation, len(m.received))
	copy(ret, m.received)
	return ret
}
