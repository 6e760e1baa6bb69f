package cmds

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ravindranath-sawane/Zero-To-GenAI/pkg/research"
)

const defaultResearchMaxTokens = 1000

func NewResearchCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "research",
		Short: "Research a topic and save the summary as markdown",
		Example: `  genai research --topic "Black Holes"
  genai research --topic "Quantum Computing" --bullets 5
  genai research -t "Climate Change" -o ./research/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			topic, _ := cmd.Flags().GetString("topic")
			bullets, _ := cmd.Flags().GetInt("bullets")
			output, _ := cmd.Flags().GetString("output")
			printOnly, _ := cmd.Flags().GetBool("print-only")

			req := &research.Request{Topic: topic, Bullets: bullets}
			if err := req.Validate(); err != nil {
				return err
			}

			s, c, err := app.completer(withDefaultMaxTokens(defaultResearchMaxTokens))
			if err != nil {
				return err
			}

			if !printOnly {
				if err := os.MkdirAll(output, 0o755); err != nil {
					return errors.Wrapf(err, "could not create output directory %s", output)
				}
			}

			out := cmd.OutOrStdout()
			rule := strings.Repeat("=", 60)
			_, _ = fmt.Fprintf(out, "%s\nCLI Research Assistant\n%s\n", rule, rule)
			_, _ = fmt.Fprintf(out, "Topic: %s\nKey Points: %d\n\nResearching... (this may take a few seconds)\n\n", req.Topic, req.Bullets)

			result, err := research.NewResearcher(c).Research(cmd.Context(), req)
			if err != nil {
				return errors.Wrap(err, "failed to generate research")
			}

			summary, err := research.ParseSummary(result)
			if err != nil {
				log.Warn().Err(err).Msg("could not parse research summary")
			} else if len(summary.KeyPoints) != req.Bullets {
				log.Warn().
					Int("requested", req.Bullets).
					Int("received", len(summary.KeyPoints)).
					Msg("model returned a different number of key points")
			}

			_, _ = fmt.Fprintf(out, "%s\nRESEARCH RESULTS\n%s\n\n", rule, rule)
			_, _ = fmt.Fprintln(out, renderMarkdown(out, result))

			if !printOnly {
				path, err := research.SaveMarkdown(result, research.Metadata{
					Topic:     req.Topic,
					Generated: time.Now(),
					Model:     s.Chat.Engine,
				}, output)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(out, "%s\nSaved to: %s\n%s\n", rule, path, rule)
			}

			_, _ = fmt.Fprintln(out, "\nResearch complete!")
			return nil
		},
	}

	cmd.Flags().StringP("topic", "t", "", "The topic to research (e.g. 'Machine Learning')")
	cmd.Flags().IntP("bullets", "b", research.DefaultBullets,
		fmt.Sprintf("Number of key points to generate (%d-%d)", research.MinBullets, research.MaxBullets))
	cmd.Flags().StringP("output", "o", ".", "Output directory for the markdown file")
	cmd.Flags().BoolP("print-only", "p", false, "Print to console only, don't save to file")
	_ = cmd.MarkFlagRequired("topic")

	return cmd
}

// renderMarkdown styles markdown with glamour when w is a terminal and returns
// it unchanged otherwise.
func renderMarkdown(w io.Writer, markdown string) string {
	f, ok := w.(*os.File)
	if !ok || !isatty.IsTerminal(f.Fd()) {
		return markdown
	}
	styled, err := glamour.Render(markdown, "dark")
	if err != nil {
		log.Warn().Err(err).Msg("could not render markdown")
		return markdown
	}
	return styled
}
