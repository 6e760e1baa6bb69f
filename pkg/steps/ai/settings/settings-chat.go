package settings

import (
	"github.com/huandu/go-clone"
	"github.com/ravindranath-sawane/Zero-To-GenAI/pkg/helpers"
)

const (
	DefaultEngine      = "gpt-4o-mini"
	DefaultTemperature = 0.7
)

type ChatSettings struct {
	Engine            string   `yaml:"engine,omitempty"`
	Temperature       *float64 `yaml:"temperature,omitempty"`
	MaxResponseTokens *int     `yaml:"max_response_tokens,omitempty"`
	Stream            bool     `yaml:"stream,omitempty"`
}

func NewChatSettings() *ChatSettings {
	return &ChatSettings{
		Engine:      DefaultEngine,
		Temperature: helpers.Float64Pointer(DefaultTemperature),
	}
}

func (s *ChatSettings) Clone() *ChatSettings {
	return clone.Clone(s).(*ChatSettings)
}
