package openai

import (
	"testing"

	"github.com/ravindranath-sawane/Zero-To-GenAI/pkg/conversation"
	"github.com/ravindranath-sawane/Zero-To-GenAI/pkg/helpers"
	"github.com/ravindranath-sawane/Zero-To-GenAI/pkg/steps/ai/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeCompletionRequest(t *testing.T) {
	s := settings.NewStepSettings()
	s.Chat.MaxResponseTokens = helpers.IntPointer(100)

	req, err := MakeCompletionRequest(s, testTurns(), true)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", req.Model)
	assert.Equal(t, 100, req.MaxTokens)
	assert.True(t, req.Stream)
	assert.InDelta(t, 0.7, req.Temperature, 0.001)
	require.Len(t, req.Messages, 4)
	for i, turn := range testTurns() {
		assert.Equal(t, string(turn.Role), req.Messages[i].Role)
		assert.Equal(t, turn.Content, req.Messages[i].Content)
	}
}

func TestMakeCompletionRequestReasoningModelDropsTemperature(t *testing.T) {
	s := settings.NewStepSettings()
	s.Chat.Engine = "o3-mini"

	req, err := MakeCompletionRequest(s, testTurns(), false)
	require.NoError(t, err)
	assert.Zero(t, req.Temperature)
}

func TestMakeCompletionRequestRejectsBadInput(t *testing.T) {
	s := settings.NewStepSettings()

	_, err := MakeCompletionRequest(s, nil, false)
	assert.Error(t, err)

	_, err = MakeCompletionRequest(s, conversation.Conversation{{Role: "tool", Content: "x"}}, false)
	assert.Error(t, err)

	s.Chat.Engine = ""
	_, err = MakeCompletionRequest(s, testTurns(), false)
	assert.Error(t, err)
}

func TestIsOpenAiEngine(t *testing.T) {
	assert.True(t, IsOpenAiEngine("gpt-4o-mini"))
	assert.True(t, IsOpenAiEngine("o1-preview"))
	assert.False(t, IsOpenAiEngine("echo"))
}
