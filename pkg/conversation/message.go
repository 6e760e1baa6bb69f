package conversation

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Turn is one role-tagged message of a conversation.
type Turn struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

func NewTurn(role Role, content string) Turn {
	return Turn{Role: role, Content: content}
}

func (t Turn) String() string {
	return fmt.Sprintf("[%s]: %s", t.Role, strings.TrimRight(t.Content, "\n"))
}

// Conversation is an ordered list of turns, oldest first.
type Conversation []Turn

// LastUserContent returns the content of the most recent user turn.
func (c Conversation) LastUserContent() (string, bool) {
	for i := len(c) - 1; i >= 0; i-- {
		if c[i].Role == RoleUser {
			return c[i].Content, true
		}
	}
	return "", false
}

// WithoutSystem drops the system turn, which front-ends don't display.
func (c Conversation) WithoutSystem() Conversation {
	ret := make(Conversation, 0, len(c))
	for _, t := range c {
		if t.Role == RoleSystem {
			continue
		}
		ret = append(ret, t)
	}
	return ret
}
