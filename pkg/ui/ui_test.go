package ui

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravindranath-sawane/Zero-To-GenAI/pkg/conversation"
	"github.com/ravindranath-sawane/Zero-To-GenAI/pkg/steps/ai/chat"
)

// send types text into the model and presses enter, running the resulting
// commands until the exchange is done.
func send(t *testing.T, m Model, text string) Model {
	t.Helper()
	m.textArea.SetValue(text)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	for cmd != nil {
		next, cmd = next.Update(cmd())
	}
	return next.(Model)
}

func TestSubmitRunsExchange(t *testing.T) {
	store := conversation.NewStore(conversation.WithSystemPrompt("sys"))
	m := NewModel(store, chat.NewEchoCompleter())

	m = send(t, m, "hello")
	assert.Equal(t, StateUserInput, m.state)
	assert.Equal(t, 3, store.Len())
	assert.Contains(t, m.View(), "Echo: hello")
	assert.NotContains(t, m.messageView(), "sys")
	assert.Empty(t, m.textArea.Value())
}

func TestSubmitStreams(t *testing.T) {
	echo := chat.NewEchoCompleter()
	store := conversation.NewStore()
	m := NewModel(store, echo, WithStreamer(echo))

	m.textArea.SetValue("one two")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	var fragments int
	for cmd != nil {
		msg := cmd()
		if _, ok := msg.(fragmentMsg); ok {
			fragments++
		}
		next, cmd = next.Update(msg)
	}

	m = next.(Model)
	assert.Equal(t, 3, fragments)
	assert.Equal(t, StateUserInput, m.state)
	last, _ := store.Last()
	assert.Equal(t, "Echo: one two", last.Content)
}

func TestEmptyInputIsIgnored(t *testing.T) {
	mock := chat.NewMockCompleter("x")
	m := NewModel(conversation.NewStore(), mock)

	m.textArea.SetValue("   ")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, 0, mock.Calls())
}

func TestFailureShowsErrorAndKeepsUserTurn(t *testing.T) {
	failing := chat.NewFailingCompleter(
		conversation.NewCompletionError(conversation.FailureCredential, errors.New("invalid key")),
	)
	store := conversation.NewStore()
	m := NewModel(store, failing)

	m = send(t, m, "hello")
	assert.Equal(t, StateError, m.state)
	assert.Contains(t, m.View(), "OPENAI_API_KEY")
	assert.Contains(t, m.messageView(), "hello")
	assert.Equal(t, 1, store.Len())

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	assert.Equal(t, StateUserInput, m.state)
	assert.Nil(t, m.err)
}

func TestSaveToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.json")
	store := conversation.NewStore()
	m := NewModel(store, chat.NewEchoCompleter(), WithSavePath(path))

	m = send(t, m, "hello")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = next.(Model)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"Echo: hello"`)
	assert.Contains(t, m.headerView(), "saved 2 turns")
}

func TestWindowResize(t *testing.T) {
	m := NewModel(conversation.NewStore(), chat.NewEchoCompleter())
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)
	assert.Equal(t, 120, m.viewport.Width)
	assert.Greater(t, m.viewport.Height, 0)
}
