package settings

import (
	"time"

	"github.com/huandu/go-clone"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultTimeout = 60 * time.Second
)

type ClientSettings struct {
	// APIKey is resolved from the environment and never written out.
	APIKey       string         `yaml:"-" json:"-"`
	BaseURL      string         `yaml:"base_url,omitempty"`
	Organization string         `yaml:"organization,omitempty"`
	Timeout      *time.Duration `yaml:"timeout,omitempty"`
}

func NewClientSettings() *ClientSettings {
	defaultTimeout := DefaultTimeout
	return &ClientSettings{
		BaseURL: DefaultBaseURL,
		Timeout: &defaultTimeout,
	}
}

// UnmarshalYAML reads timeout as a number of seconds.
func (cs *ClientSettings) UnmarshalYAML(value *yaml.Node) error {
	aux := &struct {
		BaseURL      *string `yaml:"base_url,omitempty"`
		Organization *string `yaml:"organization,omitempty"`
		Timeout      *int    `yaml:"timeout,omitempty"`
	}{}
	if err := value.Decode(aux); err != nil {
		return err
	}
	if aux.BaseURL != nil {
		cs.BaseURL = *aux.BaseURL
	}
	if aux.Organization != nil {
		cs.Organization = *aux.Organization
	}
	if aux.Timeout != nil {
		t := time.Duration(*aux.Timeout) * time.Second
		cs.Timeout = &t
	}
	return nil
}

func (cs *ClientSettings) Clone() *ClientSettings {
	return clone.Clone(cs).(*ClientSettings)
}
