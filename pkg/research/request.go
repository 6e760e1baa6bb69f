package research

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/ravindranath-sawane/Zero-To-GenAI/pkg/conversation"
)

const (
	MinBullets     = 1
	MaxBullets     = 10
	DefaultBullets = 3
)

var ErrBulletsOutOfRange = errors.Errorf("number of bullets must be between %d and %d", MinBullets, MaxBullets)
var ErrEmptyTopic = errors.New("topic must not be empty")

type Request struct {
	Topic   string
	Bullets int
}

func NewRequest(topic string) *Request {
	return &Request{
		Topic:   topic,
		Bullets: DefaultBullets,
	}
}

// Validate is run before anything is sent to the model. Failures are tagged as
// validation errors.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return conversation.NewCompletionError(conversation.FailureValidation, ErrEmptyTopic)
	}
	if r.Bullets < MinBullets || r.Bullets > MaxBullets {
		return conversation.NewCompletionError(
			conversation.FailureValidation,
			errors.Wrapf(ErrBulletsOutOfRange, "got %d", r.Bullets),
		)
	}
	return nil
}
