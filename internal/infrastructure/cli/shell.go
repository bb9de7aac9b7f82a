package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/aura-go/internal/application/dispatch"
	"github.com/doeshing/aura-go/internal/domain"
	"github.com/doeshing/aura-go/internal/infrastructure/cli/helpers"
)

const (
	shellPrompt       = "aura> "
	shellBanner       = "Aura is listening. Type 'exit' to leave, 'history' to see this session."
	shellGoodbye      = "Goodbye."
	shellHistoryLimit = 10
)

// lineReader is the part of the Prompter the REPL needs.
type lineReader interface {
	ReadLine(prompt string) (string, error)
}

func newShellCommand(env *helpers.Env) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive session",
		Long:  "Reads one command per line until 'exit' or end of input. Timers keep running while the session is open.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := env.Container(cmd.Context())
			if err != nil {
				return err
			}
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			container.Watch(ctx)

			inputMode := container.Config.GetDefaultMode()
			if mode != "" {
				inputMode = domain.ParseInputMode(mode)
			}
			session := &shellSession{
				out:     cmd.OutOrStdout(),
				lines:   NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout()),
				engine:  container.Engine,
				mode:    inputMode,
				verbose: env.Verbose,
			}
			return session.run(ctx)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "Input mode recorded in history (voice|text, default from config)")
	return cmd
}

type shellSession struct {
	out     io.Writer
	lines   lineReader
	engine  *dispatch.Engine
	mode    domain.InputMode
	verbose bool
}

func (s *shellSession) run(ctx context.Context) error {
	fmt.Fprintln(s.out, shellBanner)
	for ctx.Err() == nil {
		line, err := s.lines.ReadLine(shellPrompt)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(s.out)
			return nil
		}
		if err != nil {
			return err
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "":
			continue
		case "exit", "quit", "bye":
			fmt.Fprintln(s.out, shellGoodbye)
			return nil
		case "history":
			RenderHistory(s.out, s.engine.History(shellHistoryLimit))
			continue
		}
		RenderOutcome(s.out, s.engine.Dispatch(ctx, line, dispatch.WithMode(s.mode)), s.verbose)
	}
	return nil
}
