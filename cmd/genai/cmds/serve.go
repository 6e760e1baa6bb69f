package cmds

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ravindranath-sawane/Zero-To-GenAI/pkg/conversation"
	"github.com/ravindranath-sawane/Zero-To-GenAI/pkg/web"
)

const defaultServeSystem = "You are a helpful AI assistant."

func NewServeCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chatbot as a web page",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			system, _ := cmd.Flags().GetString("system")

			_, c, err := app.completer()
			if err != nil {
				return err
			}

			store := conversation.NewStore(conversation.WithSystemPrompt(system))
			server := web.NewServer(store, c, web.WithStreamer(c))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, &http.Server{
				Addr:              addr,
				Handler:           server.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			})
		},
	}

	cmd.Flags().String("addr", ":8501", "Address to listen on")
	cmd.Flags().String("system", defaultServeSystem, "System prompt")

	return cmd
}

// serve runs srv until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server) error {
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("Listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server failed")
		}
		return nil
	})

	eg.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
