package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/aura-go/internal/app"
	"github.com/doeshing/aura-go/internal/application/dispatch"
	"github.com/doeshing/aura-go/internal/domain"
	"github.com/doeshing/aura-go/internal/infrastructure/cli/commands"
	"github.com/doeshing/aura-go/internal/infrastructure/cli/helpers"
)

// ErrCommandFailed is returned after an error reply has been printed, so
// callers can set the exit status without printing it again.
var ErrCommandFailed = errors.New("command failed")

const timerPollInterval = 250 * time.Millisecond

// Options holds CLI-level configuration.
type Options struct {
	Verbose    bool
	ConfigPath string
	// Adapters overrides container adapters; tests inject fakes here.
	Adapters app.Options
}

type runFlags struct {
	mode          string
	minConfidence float64
	wait          bool
}

// NewRootCmd wires the cobra root command. The container is built by the
// first subcommand that needs it and closed when that command returns.
func NewRootCmd(ctx context.Context, opts Options) *cobra.Command {
	env := &helpers.Env{
		ConfigPath: opts.ConfigPath,
		Verbose:    opts.Verbose,
		Adapters:   opts.Adapters,
	}

	var flags runFlags
	root := &cobra.Command{
		Use:   "aura [command text]",
		Short: "Aura - voice assistant command engine",
		Long:  "Aura interprets spoken or typed commands and dispatches each one to exactly one handler.",
		Args:  cobra.ArbitraryArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if env.Adapters.Out == nil {
				env.Adapters.Out = cmd.OutOrStdout()
			}
			if env.Prompter == nil {
				env.Prompter = NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return dispatchText(cmd, env, args, flags)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetContext(ctx)
	root.PersistentFlags().StringVar(&env.ConfigPath, "config", opts.ConfigPath, "Config file (default ~/.aura/config.yaml)")
	root.PersistentFlags().BoolVarP(&env.Verbose, "verbose", "v", opts.Verbose, "Enable debug logging and show dispatch details")
	bindRunFlags(root, &flags)

	root.AddCommand(newRunCommand(env))
	root.AddCommand(newShellCommand(env))
	root.AddCommand(commands.NewServeCommand(env))
	root.AddCommand(commands.NewHistoryCommand(env))
	root.AddCommand(commands.NewHandlersCommand(env))
	root.AddCommand(commands.NewConfigCommand(env))
	root.AddCommand(commands.NewDoctorCommand(env))
	root.AddCommand(commands.NewAppsCommand(env))
	root.AddCommand(commands.NewContactsCommand(env))
	root.AddCommand(commands.NewCacheCommand(env))
	root.AddCommand(commands.NewVersionCommand(env))

	closeAfterRun(root, env)
	return root
}

func bindRunFlags(cmd *cobra.Command, flags *runFlags) {
	cmd.Flags().StringVar(&flags.mode, "mode", "", "Input mode recorded in history (voice|text, default from config)")
	cmd.Flags().Float64Var(&flags.minConfidence, "min-confidence", 0, "Override the match threshold for this command")
	cmd.Flags().BoolVar(&flags.wait, "wait", false, "Stay running until pending timers fire")
}

// closeAfterRun wraps every RunE so the container is released even when the
// command fails; PersistentPostRun is skipped on error.
func closeAfterRun(cmd *cobra.Command, env *helpers.Env) {
	if run := cmd.RunE; run != nil {
		cmd.RunE = func(c *cobra.Command, args []string) error {
			defer env.Close()
			return run(c, args)
		}
	}
	for _, child := range cmd.Commands() {
		closeAfterRun(child, env)
	}
}

func newRunCommand(env *helpers.Env) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run [command text]",
		Short: "Interpret and execute one command",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return dispatchText(cmd, env, args, flags)
		},
	}
	bindRunFlags(cmd, &flags)
	return cmd
}

func dispatchText(cmd *cobra.Command, env *helpers.Env, args []string, flags runFlags) error {
	ctx := cmd.Context()
	container, err := env.Container(ctx)
	if err != nil {
		return err
	}

	mode := container.Config.GetDefaultMode()
	if flags.mode != "" {
		mode = domain.ParseInputMode(flags.mode)
	}
	opts := []dispatch.Option{dispatch.WithMode(mode)}
	if cmd.Flags().Changed("min-confidence") {
		opts = append(opts, dispatch.WithMinConfidence(flags.minConfidence))
	}

	outcome := container.Engine.Dispatch(ctx, strings.Join(args, " "), opts...)
	RenderOutcome(cmd.OutOrStdout(), outcome, env.Verbose)

	if flags.wait {
		waitForTimers(ctx, cmd, container)
	}
	if outcome.Result.Status == domain.StatusError {
		return ErrCommandFailed
	}
	return nil
}

// waitForTimers blocks until no timer is pending or the user interrupts.
func waitForTimers(ctx context.Context, cmd *cobra.Command, container *app.Container) {
	timers := container.Skills.Timers()
	if timers.Active() == 0 {
		return
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	fmt.Fprintf(cmd.ErrOrStderr(), "Waiting for %d timer(s), press Ctrl+C to cancel\n", timers.Active())
	ticker := time.NewTicker(timerPollInterval)
	defer ticker.Stop()
	for timers.Active() > 0 {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
