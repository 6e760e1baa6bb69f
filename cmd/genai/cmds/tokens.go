package cmds

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ravindranath-sawane/Zero-To-GenAI/pkg/steps/ai/settings"
	"github.com/ravindranath-sawane/Zero-To-GenAI/pkg/tokens"
)

func NewTokensCommand() *cobra.Command {
	tokensCmd := &cobra.Command{
		Use:   "tokens",
		Short: "Commands related to tokens",
	}

	countCmd := &cobra.Command{
		Use:   "count [text...]",
		Short: "Count the tokens of the arguments, or of stdin when there are none",
		RunE: func(cmd *cobra.Command, args []string) error {
			model, _ := cmd.Flags().GetString("model")

			text := strings.Join(args, " ")
			if len(args) == 0 {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return errors.Wrap(err, "could not read stdin")
				}
				text = string(b)
			}

			counter, err := tokens.NewCounter(model)
			if err != nil {
				return err
			}
			n, err := counter.Count(text)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", counter.Encoding(), n)
			return nil
		},
	}
	countCmd.Flags().String("model", settings.DefaultEngine, "Model whose tokenizer is used")

	tokensCmd.AddCommand(countCmd)
	return tokensCmd
}
