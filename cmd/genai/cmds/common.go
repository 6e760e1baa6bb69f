package cmds

import (
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/ravindranath-sawane/Zero-To-GenAI/pkg/conversation"
	"github.com/ravindranath-sawane/Zero-To-GenAI/pkg/helpers"
	"github.com/ravindranath-sawane/Zero-To-GenAI/pkg/steps/ai/chat"
	"github.com/ravindranath-sawane/Zero-To-GenAI/pkg/steps/ai/openai"
	"github.com/ravindranath-sawane/Zero-To-GenAI/pkg/steps/ai/settings"
)

// Completer is what every command needs from a backend: plain and streamed
// completions.
type Completer interface {
	conversation.Completer
	conversation.StreamingCompleter
}

type CompleterFactory func(s *settings.StepSettings) (Completer, error)

// DefaultCompleterFactory returns the offline echo completer for the "echo"
// engine and the OpenAI client for everything else.
func DefaultCompleterFactory(s *settings.StepSettings) (Completer, error) {
	if s.Chat.Engine == chat.EchoEngine {
		return chat.NewEchoCompleter(), nil
	}
	return openai.NewCompleter(s)
}

// App carries what the commands share: the configuration and the way to build
// a completer from it.
type App struct {
	Viper        *viper.Viper
	NewCompleter CompleterFactory
}

func NewApp(v *viper.Viper) *App {
	return &App{
		Viper:        v,
		NewCompleter: DefaultCompleterFactory,
	}
}

// LoadStepSettings layers the settings file, flags, environment and config
// file over the defaults. Non-echo engines need the API key; its absence is a
// credential failure reported before anything is sent.
func (a *App) LoadStepSettings() (*settings.StepSettings, error) {
	s := settings.NewStepSettings()

	if path := a.Viper.GetString("ai-settings"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "could not open settings file %s", path)
		}
		defer func(f *os.File) {
			_ = f.Close()
		}(f)

		s, err = settings.NewStepSettingsFromYAML(f)
		if err != nil {
			return nil, err
		}
	}

	s.UpdateFromViper(a.Viper)

	if s.Chat.Engine != chat.EchoEngine {
		key, err := settings.ResolveAPIKey(a.Viper)
		if err != nil {
			return nil, err
		}
		s.Client.APIKey = key
	}

	if err := s.Validate(); err != nil {
		return nil, conversation.NewCompletionError(conversation.FailureValidation, err)
	}

	log.Debug().Fields(s.GetMetadata()).Msg("Step settings")

	return s, nil
}

// completer loads the settings, applies the command specific defaults and
// builds a completer from them.
func (a *App) completer(defaults ...func(*settings.StepSettings)) (*settings.StepSettings, Completer, error) {
	s, err := a.LoadStepSettings()
	if err != nil {
		return nil, nil, err
	}
	for _, d := range defaults {
		d(s)
	}
	c, err := a.NewCompleter(s)
	if err != nil {
		return nil, nil, err
	}
	return s, c, nil
}

// withDefaultMaxTokens caps the answer length unless the user chose a limit.
func withDefaultMaxTokens(n int) func(*settings.StepSettings) {
	return func(s *settings.StepSettings) {
		if s.Chat.MaxResponseTokens == nil {
			s.Chat.MaxResponseTokens = helpers.IntPointer(n)
		}
	}
}

const credentialHint = "Make sure your " + settings.APIKeyEnv + " is set correctly in .env"
