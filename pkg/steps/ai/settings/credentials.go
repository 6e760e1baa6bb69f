package settings

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/ravindranath-sawane/Zero-To-GenAI/pkg/conversation"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// APIKeyName is the viper key of the credential. It is bound to the
// --openai-api-key flag and the OPENAI_API_KEY environment variable.
const APIKeyName = "openai-api-key"

const APIKeyEnv = "OPENAI_API_KEY"

var ErrMissingAPIKey = errors.New(APIKeyEnv + " not found")

// LoadDotEnv loads KEY=value files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return errors.Wrapf(err, "could not load %s", p)
		}
		log.Debug().Str("path", p).Msg("Loaded environment file")
	}
	return nil
}

// ResolveAPIKey returns the ambient credential or a credential failure.
func ResolveAPIKey(v *viper.Viper) (string, error) {
	key := v.GetString(APIKeyName)
	if key == "" {
		key = os.Getenv(APIKeyEnv)
	}
	if key == "" {
		return "", conversation.NewCompletionError(conversation.FailureCredential, ErrMissingAPIKey)
	}
	return key, nil
}
