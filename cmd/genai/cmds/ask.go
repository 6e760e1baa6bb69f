package cmds

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ravindranath-sawane/Zero-To-GenAI/pkg/conversation"
)

const (
	defaultAskPrompt    = "Hello! What is Generative AI in one sentence?"
	defaultAskSystem    = "You are a helpful assistant."
	defaultAskMaxTokens = 100
)

func NewAskCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [prompt...]",
		Short: "Send a single prompt and print the answer",
		RunE: func(cmd *cobra.Command, args []string) error {
			system, _ := cmd.Flags().GetString("system")

			prompt := strings.Join(args, " ")
			if strings.TrimSpace(prompt) == "" {
				prompt = defaultAskPrompt
			}

			s, c, err := app.completer(withDefaultMaxTokens(defaultAskMaxTokens))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			store := conversation.NewStore(conversation.WithSystemPrompt(system))

			_, _ = fmt.Fprintln(out, "Response:")
			if s.Chat.Stream {
				_, err = store.ExchangeStream(cmd.Context(), c, prompt, func(f string) {
					_, _ = fmt.Fprint(out, f)
				})
				_, _ = fmt.Fprintln(out)
			} else {
				var reply string
				reply, err = store.Exchange(cmd.Context(), c, prompt)
				if err == nil {
					_, _ = fmt.Fprintln(out, reply)
				}
			}
			return err
		},
	}

	cmd.Flags().String("system", defaultAskSystem, "System prompt")

	return cmd
}
