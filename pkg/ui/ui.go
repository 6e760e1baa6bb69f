package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"

	"github.com/ravindranath-sawane/Zero-To-GenAI/pkg/conversation"
)

type State string

const (
	StateUserInput  State = "user_input"
	StateCompletion State = "completion"
	StateError      State = "error"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
)

// Model is the terminal chat. The store is only touched by the exchange
// goroutine while a completion runs; the view renders a snapshot taken after
// each exchange.
type Model struct {
	store     *conversation.Store
	completer conversation.Completer
	streamer  conversation.StreamingCompleter
	savePath  string

	viewport viewport.Model
	textArea textarea.Model
	help     help.Model
	keyMap   KeyMap
	style    *Style

	width  int
	height int

	state      State
	err        error
	status     string
	transcript conversation.Conversation

	pendingInput    string
	currentResponse string
	cancel          context.CancelFunc
	fragments       <-chan string
	done            <-chan exchangeDoneMsg
}

type Option func(*Model)

// WithStreamer streams replies fragment by fragment into the view.
func WithStreamer(s conversation.StreamingCompleter) Option {
	return func(m *Model) {
		m.streamer = s
	}
}

// WithSavePath enables the save key binding, exporting the history to path.
func WithSavePath(path string) Option {
	return func(m *Model) {
		m.savePath = path
	}
}

type fragmentMsg string

type exchangeDoneMsg struct {
	reply string
	err   error
}

func NewModel(store *conversation.Store, completer conversation.Completer, options ...Option) Model {
	ret := Model{
		store:     store,
		completer: completer,
		style:     DefaultStyles(),
		keyMap:    DefaultKeyMap,
		viewport:  viewport.New(defaultWidth, defaultHeight),
		help:      help.New(),
		width:     defaultWidth,
		height:    defaultHeight,
		state:     StateUserInput,
	}
	for _, o := range options {
		o(&ret)
	}

	ret.textArea = textarea.New()
	ret.textArea.Placeholder = "What is on your mind?"
	ret.textArea.ShowLineNumbers = false
	ret.textArea.SetHeight(3)
	ret.textArea.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))
	ret.textArea.Focus()

	ret.transcript = store.Export()
	ret.updateKeyBindings()
	ret.recomputeSize()

	return ret
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keyMap.Quit):
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit

		case key.Matches(msg, m.keyMap.SubmitMessage):
			cmd = m.submit()
			return m, cmd

		case key.Matches(msg, m.keyMap.CancelCompletion):
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil

		case key.Matches(msg, m.keyMap.DismissError):
			m.err = nil
			m.state = StateUserInput
			m.updateKeyBindings()
			m.recomputeSize()
			return m, nil

		case key.Matches(msg, m.keyMap.SaveToFile):
			m.save()
			return m, nil

		case key.Matches(msg, m.keyMap.ScrollUp), key.Matches(msg, m.keyMap.ScrollDown):
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd

		default:
			if m.state == StateUserInput {
				m.textArea, cmd = m.textArea.Update(msg)
			}
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recomputeSize()
		return m, nil

	case fragmentMsg:
		m.currentResponse += string(msg)
		m.recomputeSize()
		return m, m.waitForFragment()

	case exchangeDoneMsg:
		m.finishCompletion(msg)
		return m, nil
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) submit() tea.Cmd {
	text := m.textArea.Value()
	if m.state != StateUserInput || strings.TrimSpace(text) == "" {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.pendingInput = text
	m.currentResponse = ""
	m.status = ""
	m.state = StateCompletion
	m.textArea.Reset()
	m.textArea.Blur()
	m.updateKeyBindings()
	m.recomputeSize()

	store := m.store
	if m.streamer == nil {
		completer := m.completer
		return func() tea.Msg {
			reply, err := store.Exchange(ctx, completer, text)
			return exchangeDoneMsg{reply: reply, err: err}
		}
	}

	fragments := make(chan string, 64)
	done := make(chan exchangeDoneMsg, 1)
	m.fragments = fragments
	m.done = done

	streamer := m.streamer
	go func() {
		reply, err := store.ExchangeStream(ctx, streamer, text, func(f string) {
			select {
			case fragments <- f:
			case <-ctx.Done():
			}
		})
		close(fragments)
		done <- exchangeDoneMsg{reply: reply, err: err}
	}()

	return m.waitForFragment()
}

func (m Model) waitForFragment() tea.Cmd {
	fragments, done := m.fragments, m.done
	if fragments == nil {
		return nil
	}
	return func() tea.Msg {
		f, ok := <-fragments
		if !ok {
			return <-done
		}
		return fragmentMsg(f)
	}
}

func (m *Model) finishCompletion(msg exchangeDoneMsg) {
	if m.cancel != nil {
		m.cancel()
	}
	m.cancel = nil
	m.fragments = nil
	m.done = nil
	m.pendingInput = ""
	m.currentResponse = ""
	m.transcript = m.store.Export()

	if msg.err != nil {
		m.err = msg.err
		m.state = StateError
	} else {
		m.state = StateUserInput
	}
	m.textArea.Focus()

	m.updateKeyBindings()
	m.recomputeSize()
	m.viewport.GotoBottom()
}

func (m *Model) save() {
	if m.savePath == "" || m.state == StateCompletion {
		return
	}
	if err := m.store.SaveToFile(m.savePath); err != nil {
		m.err = errors.Wrap(err, "could not save conversation")
		m.state = StateError
	} else {
		m.status = fmt.Sprintf("saved %d turns to %s", m.store.Len(), m.savePath)
	}
	m.updateKeyBindings()
	m.recomputeSize()
}

func (m *Model) updateKeyBindings() {
	m.keyMap.SubmitMessage.SetEnabled(m.state == StateUserInput)
	m.keyMap.CancelCompletion.SetEnabled(m.state == StateCompletion)
	m.keyMap.DismissError.SetEnabled(m.state == StateError)
	m.keyMap.SaveToFile.SetEnabled(m.savePath != "" && m.state != StateCompletion)
}

func (m *Model) recomputeSize() {
	headerHeight := lipgloss.Height(m.headerView())
	inputHeight := lipgloss.Height(m.inputView())
	helpHeight := lipgloss.Height(m.help.View(m.keyMap))

	newHeight := m.height - headerHeight - inputHeight - helpHeight
	if newHeight < 0 {
		newHeight = 0
	}
	m.viewport.Width = m.width
	m.viewport.Height = newHeight

	h, _ := m.style.Input.GetFrameSize()
	m.textArea.SetWidth(m.width - h)

	m.viewport.SetContent(m.messageView())
	m.viewport.GotoBottom()
}

func (m Model) headerView() string {
	header := "ZERO-TO-GENAI CHAT"
	if m.status != "" {
		header += "  " + m.status
	}
	return m.style.Header.Render(header)
}

func (m Model) renderTurn(role conversation.Role, content string) string {
	style := m.style.UserMessage
	if role == conversation.RoleAssistant {
		style = m.style.AssistantMessage
	}
	w, _ := style.GetFrameSize()
	return style.Width(m.width - w).Render(fmt.Sprintf("[%s]: %s", role, content))
}

func (m Model) messageView() string {
	var sb strings.Builder
	for _, t := range m.transcript.WithoutSystem() {
		sb.WriteString(m.renderTurn(t.Role, t.Content))
		sb.WriteString("\n")
	}
	if m.pendingInput != "" {
		sb.WriteString(m.renderTurn(conversation.RoleUser, m.pendingInput))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) inputView() string {
	w, _ := m.style.Input.GetFrameSize()
	switch m.state {
	case StateError:
		return m.style.Error.Width(m.width - w).Render(errorText(m.err))
	case StateCompletion:
		return m.style.AssistantMessage.Width(m.width - w).Render(m.currentResponse + "▌")
	case StateUserInput:
	}
	return m.style.Input.Render(m.textArea.View())
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	if conversation.IsKind(err, conversation.FailureCredential) {
		return err.Error() + "\nCheck that OPENAI_API_KEY is set."
	}
	return err.Error()
}

func (m Model) View() string {
	return m.headerView() + "\n" +
		m.viewport.View() + "\n" +
		m.inputView() + "\n" +
		m.help.View(m.keyMap)
}

// Run starts the terminal chat on the alternate screen and blocks until the
// user quits.
func Run(ctx context.Context, store *conversation.Store, completer conversation.Completer, options ...Option) error {
	p := tea.NewProgram(
		NewModel(store, completer, options...),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "chat ui failed")
	}
	return nil
}
