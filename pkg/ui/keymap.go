package ui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	SubmitMessage    key.Binding
	CancelCompletion key.Binding
	DismissError     key.Binding
	ScrollUp         key.Binding
	ScrollDown       key.Binding
	SaveToFile       key.Binding
	Quit             key.Binding
}

var DefaultKeyMap = KeyMap{
	SubmitMessage: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "send"),
	),
	CancelCompletion: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	DismissError: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "dismiss error"),
	),
	ScrollUp: key.NewBinding(
		key.WithKeys("pgup"),
		key.WithHelp("pgup", "scroll up"),
	),
	ScrollDown: key.NewBinding(
		key.WithKeys("pgdown"),
		key.WithHelp("pgdown", "scroll down"),
	),
	SaveToFile: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "save"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.SubmitMessage,
		k.CancelCompletion,
		k.DismissError,
		k.SaveToFile,
		k.Quit,
	}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		k.ShortHelp(),
		{k.ScrollUp, k.ScrollDown},
	}
}
