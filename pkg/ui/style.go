package ui

import "github.com/charmbracelet/lipgloss"

type Style struct {
	Header           lipgloss.Style
	UserMessage      lipgloss.Style
	AssistantMessage lipgloss.Style
	Input            lipgloss.Style
	Error            lipgloss.Style
}

type BorderColors struct {
	User      string
	Assistant string
	Focused   string
	Error     string
}

func DefaultStyles() *Style {
	lightModeColors := BorderColors{
		User:      "#CCCCCC",
		Assistant: "#FFB6C1", // Light pink
		Focused:   "#FFFF99", // Light yellow
		Error:     "#FF6666",
	}

	darkModeColors := BorderColors{
		User:      "#444444",
		Assistant: "#DD7090",
		Focused:   "#DDDD77",
		Error:     "#CC4444",
	}

	border := func(b lipgloss.Border, light, dark string) lipgloss.Style {
		return lipgloss.NewStyle().
			Border(b).
			Padding(0, 1).
			BorderForeground(lipgloss.AdaptiveColor{Light: light, Dark: dark})
	}

	return &Style{
		Header:           lipgloss.NewStyle().Bold(true).Padding(0, 1),
		UserMessage:      border(lipgloss.NormalBorder(), lightModeColors.User, darkModeColors.User),
		AssistantMessage: border(lipgloss.RoundedBorder(), lightModeColors.Assistant, darkModeColors.Assistant),
		Input:            border(lipgloss.NormalBorder(), lightModeColors.Focused, darkModeColors.Focused),
		Error:            border(lipgloss.ThickBorder(), lightModeColors.Error, darkModeColors.Error),
	}
}
