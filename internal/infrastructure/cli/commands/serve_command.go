package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/doeshing/aura-go/internal/infrastructure/cli/helpers"
)

// NewServeCommand creates the serve command, the websocket boundary used by
// the control panel and speech front ends.
func NewServeCommand(env *helpers.Env) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Accept commands over a websocket",
		Long: "Listens on /ws for JSON messages {\"text\": ..., \"mode\": ...} and replies with " +
			"{\"id\", \"status\", \"message\", \"handler\"}. Commands are executed one at a time in arrival order.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			container, err := env.Container(ctx)
			if err != nil {
				return err
			}
			container.Watch(ctx)

			srv := container.NewServer(addr)
			fmt.Fprintf(cmd.OutOrStdout(), "Listening on ws://%s/ws (Ctrl+C to stop)\n", srv.Addr())
			if err := srv.ListenAndServe(ctx); err != nil {
				return fmt.Errorf("serve %s: %w", srv.Addr(), err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Server stopped.")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, 127.0.0.1:8765)")
	return cmd
}
