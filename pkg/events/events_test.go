package events

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventRoundTripKeepsTypeAndPayload(t *testing.T) {
	meta := EventMetadata{ID: uuid.New(), ConversationID: uuid.New(), Engine: "echo"}

	p := NewPartialCompletionEvent(meta, "lo", "hello")
	b, err := json.Marshal(p)
	require.NoError(t, err)

	e, err := NewEventFromJson(b)
	require.NoError(t, err)
	partial, ok := e.(*EventPartialCompletion)
	require.True(t, ok)
	assert.Equal(t, "lo", partial.Delta)
	assert.Equal(t, "hello", partial.Completion)
	assert.Equal(t, meta, partial.Metadata())
	assert.Equal(t, b, partial.Payload())

	errEvent := NewErrorEvent(meta, errors.New("boom"), "quota")
	b, err = json.Marshal(errEvent)
	require.NoError(t, err)
	e, err = NewEventFromJson(b)
	require.NoError(t, err)
	assert.Equal(t, EventTypeError, e.Type())
	assert.Equal(t, "quota", e.(*EventError).Kind)
}

func TestNewEventFromJsonRejectsUnknownType(t *testing.T) {
	_, err := NewEventFromJson([]byte(`{"type":"tool-call"}`))
	assert.Error(t, err)

	_, err = NewEventFromJson([]byte(`not json`))
	assert.Error(t, err)
}

func TestRouterPrintsStreamInOrder(t *testing.T) {
	router, err := NewEventRouter()
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	router.AddHandler("printer", "chat", StepPrinterFunc("Bot", buf))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- router.Run(ctx)
	}()
	<-router.Running()

	sp := NewStreamPublisher(router.NewPublisher(), "chat", uuid.New(), "echo")
	sp.Start()
	for _, f := range []string{"Echo: ", "hello ", "world"} {
		sp.Partial(f)
	}
	sp.Final("Echo: hello world")

	assert.Equal(t, "Bot: Echo: hello world\n", buf.String())

	cancel()
	<-done
	require.NoError(t, router.Close())
}

func TestDumpRawEventsStripsMetadata(t *testing.T) {
	router, err := NewEventRouter()
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	router.AddHandler("dump", "chat", router.DumpRawEvents(buf))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = router.Run(ctx)
	}()
	<-router.Running()

	id := uuid.New()
	err = router.NewPublisher().PublishEvent("chat", NewFinalEvent(EventMetadata{ID: id}, "done"))
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"text": "done"`)
	assert.Contains(t, buf.String(), id.String())
	assert.NotContains(t, buf.String(), `"meta"`)

	require.NoError(t, router.Close())
}
