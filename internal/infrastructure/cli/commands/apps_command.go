package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/aura-go/internal/infrastructure/cli/helpers"
)

// NewAppsCommand manages the application index used by "open <app>".
func NewAppsCommand(env *helpers.Env) *cobra.Command {
	appsCmd := &cobra.Command{
		Use:   "apps",
		Short: "Manage the application index",
	}

	appsCmd.AddCommand(
		newAppsReindexCommand(env),
		newAppsListCommand(env),
		newAppsLocateCommand(env),
	)
	return appsCmd
}

func newAppsReindexCommand(env *helpers.Env) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rescan application directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := env.Container(cmd.Context())
			if err != nil {
				return err
			}

			stop := helpers.StartSpinner(cmd.ErrOrStderr(), "Scanning applications")
			n, err := container.Apps.Reindex(cmd.Context())
			stop()
			if err != nil {
				return fmt.Errorf("reindex failed after %d apps: %w", n, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d applications into %s\n", n, container.Apps.CachePath())
			return nil
		},
	}
}

func newAppsListCommand(env *helpers.Env) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List indexed applications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := env.Container(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			filter = strings.ToLower(strings.TrimSpace(filter))

			shown := 0
			for _, app := range container.Apps.Entries() {
				if filter != "" && !strings.Contains(app.Key, filter) {
					continue
				}
				fmt.Fprintf(out, "%-30s %-8s %s\n", app.Display, app.Kind, app.Path)
				shown++
			}
			if shown == 0 {
				fmt.Fprintln(out, MsgNoAppsIndexed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Only show apps whose name contains this text")
	return cmd
}

func newAppsLocateCommand(env *helpers.Env) *cobra.Command {
	return &cobra.Command{
		Use:   "locate <name>",
		Short: "Show which application 'open <name>' would launch",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := env.Container(cmd.Context())
			if err != nil {
				return err
			}
			name := strings.Join(args, " ")
			app, ok := container.Apps.Locate(name)
			if !ok {
				return fmt.Errorf("no application matches %q", name)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) %s\n", app.Display, app.Kind, app.Path)
			return nil
		},
	}
}
