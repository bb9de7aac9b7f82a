package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/doeshing/aura-go/internal/domain"
	"github.com/doeshing/aura-go/internal/infrastructure/cli/helpers"
	"github.com/doeshing/aura-go/internal/infrastructure/history"
)

// maxHistoryAnalysisRecords bounds the entries read for the success rate.
const maxHistoryAnalysisRecords = 1000

// NewHistoryCommand creates the history command with all subcommands
func NewHistoryCommand(env *helpers.Env) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the command log",
	}

	historyCmd.AddCommand(
		newHistoryListCommand(env),
		newHistorySearchCommand(env),
		newHistoryClearCommand(env),
		newHistoryExportCommand(env),
		newHistoryStatsCommand(env),
		newHistoryRetainCommand(env),
	)

	return historyCmd
}

// newHistoryListCommand creates the 'history list' subcommand
func newHistoryListCommand(env *helpers.Env) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent commands, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return errors.New(ErrInvalidLimit)
			}
			store, err := historyStore(cmd.Context(), env)
			if err != nil {
				return err
			}
			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("failed to read history: %w", err)
			}
			printHistoryEntries(cmd.OutOrStdout(), entries, MsgNoHistoryRecorded)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", domain.DefaultHistoryLimit, "Max entries to show")
	return cmd
}

// newHistorySearchCommand creates the 'history search' subcommand
func newHistorySearchCommand(env *helpers.Env) *cobra.Command {
	var query string
	var limit int

	cmd := &cobra.Command{
		Use:   "search [text]",
		Short: "Search past commands and replies",
		RunE: func(cmd *cobra.Command, args []string) error {
			if query == "" && len(args) > 0 {
				query = args[0]
			}
			if query == "" {
				return errors.New(ErrQueryRequired)
			}
			store, err := historyStore(cmd.Context(), env)
			if err != nil {
				return err
			}
			entries, err := store.Search(cmd.Context(), query, limit)
			if err != nil {
				return fmt.Errorf("failed to search history: %w", err)
			}
			printHistoryEntries(cmd.OutOrStdout(), entries, MsgNoHistoryMatches)
			return nil
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "Text to look for")
	cmd.Flags().IntVar(&limit, "limit", domain.DefaultHistorySearchLimit, "Max entries to show")
	return cmd
}

// newHistoryClearCommand creates the 'history clear' subcommand
func newHistoryClearCommand(env *helpers.Env) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded command",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := historyStore(cmd.Context(), env)
			if err != nil {
				return err
			}
			if !yes && env.Prompter != nil && env.Prompter.Enabled() {
				confirmed, err := env.Prompter.Confirm("Delete all history?")
				if err != nil || !confirmed {
					return errors.New(ErrClearCancelled)
				}
			}
			if err := store.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("failed to clear history: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// newHistoryExportCommand creates the 'history export' subcommand
func newHistoryExportCommand(env *helpers.Env) *cobra.Command {
	return &cobra.Command{
		Use:   "export <path|->",
		Short: "Export history as JSON lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := historyStore(cmd.Context(), env)
			if err != nil {
				return err
			}
			return exportHistory(cmd.Context(), cmd.OutOrStdout(), store, args[0])
		},
	}
}

// newHistoryStatsCommand creates the 'history stats' subcommand
func newHistoryStatsCommand(env *helpers.Env) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show usage per handler category",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := historyStore(cmd.Context(), env)
			if err != nil {
				return err
			}
			return showHistoryStats(cmd.Context(), cmd.OutOrStdout(), store)
		},
	}
}

// newHistoryRetainCommand creates the 'history retain' subcommand
func newHistoryRetainCommand(env *helpers.Env) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "retain",
		Short: "Prune old entries and update the retention policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return errors.New(ErrInvalidRetainDays)
			}
			store, err := historyStore(cmd.Context(), env)
			if err != nil {
				return err
			}
			return updateHistoryRetention(cmd.Context(), cmd.OutOrStdout(), env, store, days)
		},
	}

	cmd.Flags().IntVar(&days, "days", domain.DefaultHistoryRetainDays, "Days of history to keep")
	return cmd
}

func historyStore(ctx context.Context, env *helpers.Env) (history.Store, error) {
	container, err := env.Container(ctx)
	if err != nil {
		return nil, err
	}
	if container.HistoryStore == nil {
		return nil, errors.New(ErrHistoryStoreUnavailable)
	}
	return container.HistoryStore, nil
}

// printHistoryEntries renders one line per entry with a relative timestamp.
func printHistoryEntries(out io.Writer, entries []domain.HistoryEntry, empty string) {
	if len(entries) == 0 {
		fmt.Fprintln(out, empty)
		return
	}
	for _, e := range entries {
		handler := e.Handler
		if handler == "" {
			handler = "-"
		}
		fmt.Fprintf(out, "%-16s %-8s %-14s %s => %s\n",
			humanize.Time(e.Timestamp),
			e.Status,
			handler,
			e.Input,
			truncateLine(e.Output, historyOutputWidth))
	}
}

// exportHistory writes JSON lines to path, or to out when path is "-".
func exportHistory(ctx context.Context, out io.Writer, store history.Store, path string) error {
	if path == "-" {
		return store.Export(ctx, out)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, domain.SecureFilePermissions)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := store.Export(ctx, f); err != nil {
		f.Close()
		return fmt.Errorf("failed to export history to %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(out, "History exported to %s\n", path)
	return nil
}

// showHistoryStats displays the success rate and per-category usage
func showHistoryStats(ctx context.Context, out io.Writer, store history.Store) error {
	counts, err := store.CategoryStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to compute statistics: %w", err)
	}
	stats, total := helpers.CalculateCategoryShares(counts, 0)
	if total == 0 {
		fmt.Fprintln(out, MsgNoHistoryRecorded)
		return nil
	}

	recent, err := store.Recent(ctx, maxHistoryAnalysisRecords)
	if err != nil {
		return fmt.Errorf("failed to retrieve history for analysis: %w", err)
	}

	fmt.Fprintf(out, "Commands recorded: %s\nSuccess rate: %.1f%%\n",
		humanize.Comma(int64(total)),
		helpers.CalculateSuccessRate(recent))
	fmt.Fprintln(out, "By category:")
	for _, stat := range stats {
		fmt.Fprintf(out, "  %-14s %5d  %5.1f%%\n", stat.Category, stat.Count, stat.Share)
	}
	return nil
}

// updateHistoryRetention prunes old history and updates retention policy
func updateHistoryRetention(ctx context.Context, out io.Writer, env *helpers.Env, store history.Store, days int) error {
	removed, err := store.Prune(ctx, days)
	if err != nil {
		return fmt.Errorf("failed to prune old history: %w", err)
	}

	loader := env.Loader()
	cfg, err := loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.History.RetentionDays = days
	if err := helpers.SaveConfigWithValidation(loader, cfg); err != nil {
		return err
	}

	fmt.Fprintf(out, "Retained last %d days of history (%d removed).\n", days, removed)
	return nil
}

func truncateLine(s string, n int) string {
	r := []rune(s)
	for i, c := range r {
		if c == '\n' {
			r = r[:i]
			break
		}
	}
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "..."
}
