package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/doeshing/aura-go/internal/infrastructure/cache"
	"github.com/doeshing/aura-go/internal/infrastructure/cli/helpers"
)

// NewCacheCommand creates the cache command with all subcommands
func NewCacheCommand(env *helpers.Env) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear cached knowledge answers",
	}

	cacheCmd.AddCommand(
		newCacheListCommand(env),
		newCacheSizeCommand(env),
		newCacheClearCommand(env),
	)

	return cacheCmd
}

// newCacheListCommand creates the 'cache list' subcommand
func newCacheListCommand(env *helpers.Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached answers, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := answerCache(cmd.Context(), env)
			if err != nil {
				return err
			}
			entries, err := store.Entries()
			if err != nil {
				return fmt.Errorf("failed to retrieve cache entries: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, MsgNoCachedAnswers)
				return nil
			}
			for _, entry := range entries {
				fmt.Fprintf(out, "%-16s %-24s %s\n",
					humanize.Time(entry.CreatedAt),
					entry.Topic,
					truncateLine(entry.Answer, historyOutputWidth))
			}
			return nil
		},
	}
}

// newCacheSizeCommand creates the 'cache size' subcommand
func newCacheSizeCommand(env *helpers.Env) *cobra.Command {
	return &cobra.Command{
		Use:   "size",
		Short: "Show cache size",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := answerCache(cmd.Context(), env)
			if err != nil {
				return err
			}
			size, err := store.Size()
			if err != nil {
				return fmt.Errorf("failed to measure cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s in %s\n", humanize.Bytes(uint64(size)), store.Dir())
			return nil
		},
	}
}

// newCacheClearCommand creates the 'cache clear' subcommand
func newCacheClearCommand(env *helpers.Env) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear cache directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := answerCache(cmd.Context(), env)
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared.")
			return nil
		},
	}
}

func answerCache(ctx context.Context, env *helpers.Env) (*cache.FileCache, error) {
	container, err := env.Container(ctx)
	if err != nil {
		return nil, err
	}
	if container.AnswerCache == nil {
		return nil, errors.New(ErrCacheDisabled)
	}
	return container.AnswerCache, nil
}
