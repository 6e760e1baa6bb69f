package settings

import (
	"io"
	"time"

	"github.com/huandu/go-clone"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type factoryConfigFileWrapper struct {
	Factories *StepSettings
}

type StepSettings struct {
	Chat   *ChatSettings   `yaml:"chat,omitempty"`
	Client *ClientSettings `yaml:"client,omitempty"`
}

func NewStepSettings() *StepSettings {
	return &StepSettings{
		Chat:   NewChatSettings(),
		Client: NewClientSettings(),
	}
}

// NewStepSettingsFromYAML reads a `factories:` document on top of the defaults.
func NewStepSettingsFromYAML(s io.Reader) (*StepSettings, error) {
	settings_ := factoryConfigFileWrapper{
		Factories: NewStepSettings(),
	}
	if err := yaml.NewDecoder(s).Decode(&settings_); err != nil {
		return nil, errors.Wrap(err, "could not decode step settings")
	}

	return settings_.Factories, nil
}

// UpdateFromViper overrides settings with every key explicitly set through flags,
// environment or config file.
func (ss *StepSettings) UpdateFromViper(v *viper.Viper) {
	if v.IsSet("engine") {
		ss.Chat.Engine = v.GetString("engine")
	}
	if v.IsSet("temperature") {
		t := v.GetFloat64("temperature")
		ss.Chat.Temperature = &t
	}
	// 0 means unset; negative values are kept so Validate rejects them.
	if v.IsSet("max-tokens") {
		if m := v.GetInt("max-tokens"); m != 0 {
			ss.Chat.MaxResponseTokens = &m
		}
	}
	if v.IsSet("stream") {
		ss.Chat.Stream = v.GetBool("stream")
	}
	if v.IsSet("base-url") && v.GetString("base-url") != "" {
		ss.Client.BaseURL = v.GetString("base-url")
	}
	if v.IsSet("organization") {
		ss.Client.Organization = v.GetString("organization")
	}
	if v.IsSet("timeout") {
		t := v.GetDuration("timeout")
		ss.Client.Timeout = &t
	}
	if key := v.GetString(APIKeyName); key != "" {
		ss.Client.APIKey = key
	}
}

func (ss *StepSettings) Validate() error {
	if ss.Chat == nil {
		return errors.New("no chat settings")
	}
	if ss.Client == nil {
		return errors.New("no client settings")
	}
	if ss.Chat.Engine == "" {
		return errors.New("no engine specified")
	}
	if t := ss.Chat.Temperature; t != nil && (*t < 0 || *t > 2) {
		return errors.Errorf("temperature %.2f out of range [0, 2]", *t)
	}
	if m := ss.Chat.MaxResponseTokens; m != nil && *m <= 0 {
		return errors.Errorf("max response tokens must be positive, got %d", *m)
	}
	return nil
}

func (ss *StepSettings) Clone() *StepSettings {
	return clone.Clone(ss).(*StepSettings)
}

// GetMetadata summarizes the generation parameters for logs and exported files.
func (ss *StepSettings) GetMetadata() map[string]interface{} {
	metadata := make(map[string]interface{})

	if ss.Chat != nil {
		metadata["ai-engine"] = ss.Chat.Engine
		if ss.Chat.MaxResponseTokens != nil {
			metadata["ai-max-response-tokens"] = *ss.Chat.MaxResponseTokens
		}
		if ss.Chat.Temperature != nil {
			metadata["ai-temperature"] = *ss.Chat.Temperature
		}
		metadata["ai-stream"] = ss.Chat.Stream
	}

	if ss.Client != nil {
		metadata["ai-base-url"] = ss.Client.BaseURL
		if ss.Client.Timeout != nil {
			metadata["ai-timeout"] = ss.Client.Timeout.Round(time.Second).String()
		}
	}

	return metadata
}
