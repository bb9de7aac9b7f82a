package commands

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/doeshing/aura-go/internal/app"
	"github.com/doeshing/aura-go/internal/infrastructure/cli/helpers"
	"github.com/doeshing/aura-go/internal/version"
)

// NewVersionCommand prints build metadata and the handler table in effect.
func NewVersionCommand(env *helpers.Env) *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show Aura version and handler table",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if short {
				fmt.Fprintln(out, version.Version)
				return nil
			}
			writeBuildInfo(out)
			container, err := env.Container(cmd.Context())
			if err != nil {
				fmt.Fprintf(out, "Handlers: unavailable (%v)\n", err)
				return nil
			}
			writeEngineInfo(out, container)
			return nil
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "Print only the version number")
	return cmd
}

func writeBuildInfo(out io.Writer) {
	fmt.Fprintf(out, "Aura version %s\n", version.Version)
	if version.Commit != "" {
		fmt.Fprintf(out, "Commit: %s\n", version.Commit)
	}
	if version.BuildDate != "" {
		fmt.Fprintf(out, "Built: %s\n", version.BuildDate)
	}
	fmt.Fprintf(out, "Go: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

func writeEngineInfo(out io.Writer, c *app.Container) {
	fallback := "none"
	for _, h := range c.Engine.Registry().Handlers() {
		if h.IsFallback() {
			fallback = h.ID()
			break
		}
	}
	fmt.Fprintf(out, "Handlers: %d from %s (fallback: %s)\n", c.Engine.Registry().Len(), c.HandlerSource, fallback)
	fmt.Fprintf(out, "Threshold: %.2f\n", c.Config.GetMinConfidence())
	fmt.Fprintf(out, "Config: %s\n", c.ConfigLoader.Path())
}
