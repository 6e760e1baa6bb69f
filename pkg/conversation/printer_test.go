package conversation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatHistoryTruncatesLongContent(t *testing.T) {
	long := strings.Repeat("a", 150)
	var sb strings.Builder

	err := FormatHistory(&sb, Conversation{
		NewTurn(RoleSystem, "be nice"),
		NewTurn(RoleUser, long),
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "1. [SYSTEM]: be nice", lines[0])
	assert.Equal(t, "2. [USER]: "+strings.Repeat("a", 100)+"...", lines[1])
}

func TestConversationHelpers(t *testing.T) {
	c := Conversation{
		NewTurn(RoleSystem, "sys"),
		NewTurn(RoleUser, "one"),
		NewTurn(RoleAssistant, "reply"),
	}

	last, ok := c.LastUserContent()
	assert.True(t, ok)
	assert.Equal(t, "one", last)
	assert.Len(t, c.WithoutSystem(), 2)
	assert.True(t, RoleAssistant.IsValid())
	assert.False(t, Role("tool").IsValid())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, FailureKind(""), KindOf(nil))
	assert.Equal(t, FailureQuota, KindOf(NewCompletionError(FailureQuota, nil)))
	assert.Equal(t, "quota failure", NewCompletionError(FailureQuota, nil).Error())
}
