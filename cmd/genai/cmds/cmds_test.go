package cmds

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/ravindranath-sawane/Zero-To-GenAI/pkg/conversation"
	"github.com/ravindranath-sawane/Zero-To-GenAI/pkg/steps/ai/chat"
	"github.com/ravindranath-sawane/Zero-To-GenAI/pkg/steps/ai/settings"
)

const researchAnswer = `# Go

## Summary
Go is a programming language.

## Key Points
- Compiled
- Garbage collected
- Concurrent

## Why It Matters
It runs a lot of infrastructure.
`

type testApp struct {
	*App
	factoryCalls int
	completer    Completer
}

// newTestApp returns an app whose completer factory hands out c. The engine
// is set to a non-echo model with a fake key, so nothing can reach the network
// unnoticed.
func newTestApp(t *testing.T, c Completer) *testApp {
	t.Helper()
	v := viper.New()
	v.Set("engine", "gpt-4o-mini")
	v.Set(settings.APIKeyName, "sk-test")

	ret := &testApp{App: NewApp(v), completer: c}
	ret.NewCompleter = func(s *settings.StepSettings) (Completer, error) {
		ret.factoryCalls++
		return ret.completer, nil
	}
	return ret
}

func run(cmd *cobra.Command, stdin string, args ...string) (string, error) {
	out := &bytes.Buffer{}
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestChatLoop(t *testing.T) {
	app := newTestApp(t, chat.NewEchoCompleter())

	out, err := run(NewChatCommand(app.App), "hello\n\nhistory\nwhat was that?\nquit\n")
	require.NoError(t, err)

	assert.Contains(t, out, "AI: Echo: hello\n")
	assert.Contains(t, out, "(Please type something...)")
	assert.Contains(t, out, "1. [SYSTEM]: You are a helpful")
	assert.Contains(t, out, "2. [USER]: hello")
	assert.Contains(t, out, "3. [ASSISTANT]: Echo: hello")
	assert.Contains(t, out, "AI: Echo: what was that?\n")
	assert.Contains(t, out, "Goodbye! Thanks for chatting!")
}

func TestChatLoopResendsHistoryAndSaves(t *testing.T) {
	mock := chat.NewMockCompleter("Nice to meet you, Ada.", "Your name is Ada.")
	app := newTestApp(t, mock)
	path := filepath.Join(t.TempDir(), "chat.json")

	_, err := run(NewChatCommand(app.App), "My name is Ada\nWhat is my name?\n", "--save", path, "--system", "sys")
	require.NoError(t, err)

	received := mock.Received()
	require.Len(t, received, 2)
	assert.Len(t, received[0], 2)
	assert.Len(t, received[1], 4)
	assert.Equal(t, "Nice to meet you, Ada.", received[1][2].Content)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"Your name is Ada."`)
}

func TestChatLoopReportsErrorsAndContinues(t *testing.T) {
	failing := chat.NewFailingCompleter(
		conversation.NewCompletionError(conversation.FailureCredential, errors.New("invalid api key")),
	)
	app := newTestApp(t, failing)

	out, err := run(NewChatCommand(app.App), "one\ntwo\nexit\n")
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(out, "Error: credential failure"))
	assert.Contains(t, out, credentialHint)
	assert.Equal(t, 2, failing.Calls())
	// the second call still carries the first, unanswered user turn
	assert.Len(t, failing.Received()[1], 3)
}

func TestChatLoopStreamsThroughRouter(t *testing.T) {
	app := newTestApp(t, chat.NewEchoCompleter())
	app.Viper.Set("stream", true)

	out, err := run(NewChatCommand(app.App), "streaming works\nq\n")
	require.NoError(t, err)
	assert.Contains(t, out, "AI: Echo: streaming works\n")
}

type brokenRouter struct {
	running chan struct{}
}

func (b *brokenRouter) Run(ctx context.Context) error {
	return errors.New("cannot subscribe")
}

func (b *brokenRouter) Running() chan struct{} {
	return b.running
}

func TestStartRouterReturnsRunError(t *testing.T) {
	eg, ctx := errgroup.WithContext(context.Background())

	err := startRouter(ctx, eg, &brokenRouter{running: make(chan struct{})})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot subscribe")
}

func TestChatRequiresCredential(t *testing.T) {
	t.Setenv(settings.APIKeyEnv, "")
	app := newTestApp(t, chat.NewEchoCompleter())
	app.Viper.Set(settings.APIKeyName, "")

	_, err := run(NewChatCommand(app.App), "hello\n")
	require.Error(t, err)
	assert.True(t, conversation.IsKind(err, conversation.FailureCredential))
	assert.Equal(t, 0, app.factoryCalls)
}

func TestNegativeMaxTokensRejected(t *testing.T) {
	app := newTestApp(t, chat.NewEchoCompleter())
	app.Viper.Set("max-tokens", -5)

	_, err := run(NewAskCommand(app.App), "", "hi")
	require.Error(t, err)
	assert.True(t, conversation.IsKind(err, conversation.FailureValidation))
	assert.Equal(t, 0, app.factoryCalls)
}

func TestEchoEngineNeedsNoCredential(t *testing.T) {
	t.Setenv(settings.APIKeyEnv, "")
	v := viper.New()
	v.Set("engine", chat.EchoEngine)

	out, err := run(NewAskCommand(NewApp(v)), "", "hi", "there")
	require.NoError(t, err)
	assert.Equal(t, "Response:\nEcho: hi there\n", out)
}

func TestAskDefaultsMaxTokens(t *testing.T) {
	mock := chat.NewMockCompleter("Generative AI creates content.")
	app := newTestApp(t, mock)

	var seen *settings.StepSettings
	app.NewCompleter = func(s *settings.StepSettings) (Completer, error) {
		seen = s
		return mock, nil
	}

	out, err := run(NewAskCommand(app.App), "")
	require.NoError(t, err)
	assert.Contains(t, out, "Generative AI creates content.")

	require.NotNil(t, seen.Chat.MaxResponseTokens)
	assert.Equal(t, defaultAskMaxTokens, *seen.Chat.MaxResponseTokens)

	received := mock.Received()
	require.Len(t, received, 1)
	assert.Equal(t, defaultAskSystem, received[0][0].Content)
	assert.Equal(t, defaultAskPrompt, received[0][1].Content)
}

func TestResearchRejectsBulletsBeforeAnyCall(t *testing.T) {
	for _, bullets := range []string{"0", "11"} {
		mock := chat.NewMockCompleter(researchAnswer)
		app := newTestApp(t, mock)

		_, err := run(NewResearchCommand(app.App), "", "-t", "Go", "-b", bullets, "-o", t.TempDir())
		require.Error(t, err)
		assert.True(t, conversation.IsKind(err, conversation.FailureValidation))
		assert.Equal(t, 0, app.factoryCalls)
		assert.Equal(t, 0, mock.Calls())
	}
}

func TestResearchSavesMarkdown(t *testing.T) {
	mock := chat.NewMockCompleter(researchAnswer)
	app := newTestApp(t, mock)
	dir := filepath.Join(t.TempDir(), "research")

	out, err := run(NewResearchCommand(app.App), "", "--topic", "C++ vs C#: A/B?", "--output", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Research complete!")

	path := filepath.Join(dir, "C++_vs_C#_AB.md")
	assert.Contains(t, out, "Saved to: "+path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "---\n"))
	assert.Contains(t, string(b), "model: gpt-4o-mini")
	assert.True(t, strings.HasSuffix(string(b), researchAnswer))
}

func TestResearchPrintOnlyWritesNothing(t *testing.T) {
	app := newTestApp(t, chat.NewMockCompleter(researchAnswer))
	dir := filepath.Join(t.TempDir(), "never")

	out, err := run(NewResearchCommand(app.App), "", "-t", "Go", "-p", "-o", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "## Key Points")
	assert.NotContains(t, out, "Saved to")
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestTokensCount(t *testing.T) {
	out, err := run(NewTokensCommand(), "", "count", "--model", "gpt-4", "hello", "world")
	require.NoError(t, err)
	assert.Equal(t, "cl100k_base: 2\n", out)
}
