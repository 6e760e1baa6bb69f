package chat

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/ravindranath-sawane/Zero-To-GenAI/pkg/conversation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEchoCompleterEchoesLastUserTurn(t *testing.T) {
	s := conversation.NewStore(conversation.WithSystemPrompt("sys"))
	e := NewEchoCompleter()

	reply, err := s.Exchange(context.Background(), e, "hello")
	require.NoError(t, err)
	assert.Equal(t, "Echo: hello", reply)

	reply, err = s.Exchange(context.Background(), e, "world")
	require.NoError(t, err)
	assert.Equal(t, "Echo: world", reply)
	assert.Equal(t, 5, s.Len())
}

func TestEchoCompleterStreamsWords(t *testing.T) {
	e := NewEchoCompleter()
	stream, err := e.CompleteStream(context.Background(), conversation.Conversation{
		conversation.NewTurn(conversation.RoleUser, "one two three"),
	})
	require.NoError(t, err)

	var fragments []string
	text, err := conversation.Fold(stream, func(f string) { fragments = append(fragments, f) })
	require.NoError(t, err)
	assert.Equal(t, "Echo: one two three", text)
	assert.Equal(t, []string{"Echo: ", "one ", "two ", "three"}, fragments)
}

func TestEchoStreamHonorsCancellation(t *testing.T) {
	e := &EchoCompleter{TimePerFragment: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	s := conversation.NewStore()

	cancel()
	_, err := s.ExchangeStream(ctx, e, "hi", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	last, _ := s.Last()
	assert.Equal(t, conversation.RoleUser, last.Role)
}

func TestEchoCompleterWithoutUserTurn(t *testing.T) {
	_, err := NewEchoCompleter().Complete(context.Background(), nil)
	assert.Error(t, err)
}

func TestMockCompleterRoundRobinAndRecording(t *testing.T) {
	m := NewMockCompleter("a", "b")
	s := conversation.NewStore()

	for _, want := range []string{"a", "b", "a"} {
		got, err := s.Exchange(context.Background(), m, "q")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	assert.Equal(t, 3, m.Calls())
	received := m.Received()
	require.Len(t, received, 3)
	assert.Len(t, received[0], 1)
	assert.Len(t, received[2], 5)
}

func TestFailingCompleter(t *testing.T) {
	boom := conversation.NewCompletionError(conversation.FailureQuota, errors.New("rate limited"))
	m := NewFailingCompleter(boom)
	s := conversation.NewStore()

	_, err := s.ExchangeStream(context.Background(), m, "x", nil)
	require.Error(t, err)
	assert.Equal(t, conversation.FailureQuota, conversation.KindOf(err))
	assert.Equal(t, 1, m.Calls())
	assert.Equal(t, 1, s.Len())
}
