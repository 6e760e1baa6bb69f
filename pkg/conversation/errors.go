package conversation

import (
	"fmt"

	"github.com/pkg/errors"
)

// FailureKind tags why an exchange failed.
type FailureKind string

const (
	FailureCredential     FailureKind = "credential"
	FailureNetwork        FailureKind = "network"
	FailureQuota          FailureKind = "quota"
	FailureInvalidRequest FailureKind = "invalid-request"
	FailureValidation     FailureKind = "validation"
	FailureRemote         FailureKind = "remote"
)

var (
	ErrEmptyInput      = errors.New("empty input")
	ErrEmptyCompletion = errors.New("completion returned no text")
)

type CompletionError struct {
	Kind FailureKind
	Err  error
}

func NewCompletionError(kind FailureKind, err error) *CompletionError {
	return &CompletionError{Kind: kind, Err: err}
}

func (e *CompletionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s failure", e.Kind)
	}
	return fmt.Sprintf("%s failure: %s", e.Kind, e.Err.Error())
}

func (e *CompletionError) Unwrap() error {
	return e.Err
}

// KindOf returns the failure tag carried by err. Untagged errors count as remote
// failures; nil has no kind.
func KindOf(err error) FailureKind {
	if err == nil {
		return ""
	}
	var ce *CompletionError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return FailureRemote
}

// IsKind reports whether err carries the given failure tag.
func IsKind(err error, kind FailureKind) bool {
	return err != nil && KindOf(err) == kind
}
