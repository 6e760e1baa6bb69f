package cmds

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ravindranath-sawane/Zero-To-GenAI/pkg/conversation"
	"github.com/ravindranath-sawane/Zero-To-GenAI/pkg/events"
	"github.com/ravindranath-sawane/Zero-To-GenAI/pkg/steps/ai/settings"
	"github.com/ravindranath-sawane/Zero-To-GenAI/pkg/tokens"
	"github.com/ravindranath-sawane/Zero-To-GenAI/pkg/ui"
)

const (
	defaultChatSystem = "You are a helpful, friendly AI assistant. Keep responses concise but informative."
	chatTopic         = "chat"
)

type chatSession struct {
	store     *conversation.Store
	completer Completer
	settings  *settings.StepSettings
	counter   *tokens.Counter
	out       io.Writer

	// set when streaming
	publisher *events.Publisher
}

func NewChatCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the model; the whole conversation is resent on every turn",
		RunE: func(cmd *cobra.Command, args []string) error {
			system, _ := cmd.Flags().GetString("system")
			useTUI, _ := cmd.Flags().GetBool("tui")
			savePath, _ := cmd.Flags().GetString("save")

			s, c, err := app.completer()
			if err != nil {
				return err
			}

			store := conversation.NewStore(conversation.WithSystemPrompt(system))
			ctx := cmd.Context()

			if useTUI {
				options := []ui.Option{ui.WithSavePath(savePath)}
				if s.Chat.Stream {
					options = append(options, ui.WithStreamer(c))
				}
				if err := ui.Run(ctx, store, c, options...); err != nil {
					return err
				}
			} else if err := runChatLoop(ctx, store, c, s, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
				return err
			}

			if savePath != "" {
				if err := store.SaveToFile(savePath); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Conversation saved to %s\n", savePath)
			}
			return nil
		},
	}

	cmd.Flags().String("system", defaultChatSystem, "System prompt")
	cmd.Flags().Bool("tui", false, "Use the full screen terminal UI")
	cmd.Flags().String("save", "", "Save the conversation as JSON to this file on exit")

	return cmd
}

func runChatLoop(
	ctx context.Context,
	store *conversation.Store,
	c Completer,
	s *settings.StepSettings,
	in io.Reader,
	out io.Writer,
) error {
	session := &chatSession{
		store:     store,
		completer: c,
		settings:  s,
		out:       out,
	}

	counter, err := tokens.NewCounter(s.Chat.Engine)
	if err != nil {
		log.Warn().Err(err).Msg("token counting disabled")
	}
	session.counter = counter

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	eg, ctx := errgroup.WithContext(ctx)

	if s.Chat.Stream {
		router, err := events.NewEventRouter(events.WithVerbose(zerolog.GlobalLevel() <= zerolog.TraceLevel))
		if err != nil {
			return err
		}
		defer func() {
			_ = router.Close()
		}()

		router.AddHandler("chat-printer", chatTopic, events.StepPrinterFunc("AI", out))
		if err := startRouter(ctx, eg, router); err != nil {
			return err
		}
		session.publisher = router.NewPublisher()
	}

	eg.Go(func() error {
		defer cancel()
		return session.loop(ctx, in)
	})

	return eg.Wait()
}

type runner interface {
	Run(ctx context.Context) error
	Running() chan struct{}
}

// startRouter runs r in eg and waits until it is running, or until ctx is
// done because it failed to start.
func startRouter(ctx context.Context, eg *errgroup.Group, r runner) error {
	eg.Go(func() error {
		if err := r.Run(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	})

	select {
	case <-r.Running():
		return nil
	case <-ctx.Done():
		if err := eg.Wait(); err != nil {
			return errors.Wrap(err, "event router failed to start")
		}
		return ctx.Err()
	}
}

func (cs *chatSession) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(cs.out, format, args...)
}

func (cs *chatSession) loop(ctx context.Context, in io.Reader) error {
	cs.printf("%s\n", strings.Repeat("=", 60))
	cs.printf("Simple Chatbot with Memory\n")
	cs.printf("%s\n", strings.Repeat("=", 60))
	cs.printf("Type 'quit' or 'exit' to end the conversation.\n")
	cs.printf("Type 'history' to see the full conversation history.\n\n")

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for {
		cs.printf("You: ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return errors.Wrap(err, "could not read input")
			}
			cs.printf("\nGoodbye!\n")
			return nil
		}

		input := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(input) {
		case "quit", "exit", "q":
			cs.printf("\nGoodbye! Thanks for chatting!\n")
			return nil
		case "":
			cs.printf("(Please type something...)\n\n")
			continue
		case "history":
			cs.printHistory()
			continue
		}

		if err := ctx.Err(); err != nil {
			return nil
		}
		cs.exchange(ctx, input)
	}
}

func (cs *chatSession) printHistory() {
	turns := cs.store.Export()
	cs.printf("\nConversation History:\n%s\n", strings.Repeat("-", 40))
	_ = conversation.FormatHistory(cs.out, turns)
	cs.printf("%s\n", strings.Repeat("-", 40))
	if cs.counter != nil {
		if n, err := cs.counter.CountTurns(turns); err == nil {
			cs.printf("~%d prompt tokens (%s)\n", n, cs.counter.Encoding())
		}
	}
	cs.printf("\n")
}

// exchange runs one turn. Failures are reported and the loop goes on; the
// failed user turn stays in the history.
func (cs *chatSession) exchange(ctx context.Context, input string) {
	var err error
	if cs.publisher != nil {
		sp := events.NewStreamPublisher(cs.publisher, chatTopic, cs.store.ID, cs.settings.Chat.Engine)
		sp.Start()
		var reply string
		reply, err = cs.store.ExchangeStream(ctx, cs.completer, input, sp.Partial)
		if err != nil {
			sp.Error(err, string(conversation.KindOf(err)))
		} else {
			sp.Final(reply)
		}
		cs.printf("\n")
	} else {
		var reply string
		reply, err = cs.store.Exchange(ctx, cs.completer, input)
		if err == nil {
			cs.printf("AI: %s\n\n", reply)
		}
	}

	if err != nil {
		cs.printf("Error: %v\n\n", err)
		cs.printf("%s\n\n", credentialHint)
		return
	}

	if cs.counter != nil {
		if n, err := cs.counter.CountTurns(cs.store.Export()); err == nil {
			log.Debug().
				Str("conversation_id", cs.store.ID.String()).
				Int("turns", cs.store.Len()).
				Int("prompt_tokens", n).
				Msg("history size")
		}
	}
}
