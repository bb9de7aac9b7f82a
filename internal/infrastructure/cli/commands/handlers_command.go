package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/aura-go/internal/application/registry"
	"github.com/doeshing/aura-go/internal/domain"
	"github.com/doeshing/aura-go/internal/infrastructure/cli/helpers"
)

// NewHandlersCommand lists the registered handlers in priority order.
func NewHandlersCommand(env *helpers.Env) *cobra.Command {
	var category string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "handlers",
		Short: "List registered handlers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := env.Container(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(container.Engine.HandlerInfo())
			}
			var filter domain.Category
			if category != "" {
				if filter, err = domain.ParseCategory(category); err != nil {
					return err
				}
			}
			listHandlers(cmd.OutOrStdout(), container.Engine.Registry().Handlers(), filter)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Only show one category")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the handler map as JSON")
	cmd.AddCommand(newHandlersExplainCommand(env))
	return cmd
}

func newHandlersExplainCommand(env *helpers.Env) *cobra.Command {
	return &cobra.Command{
		Use:   "explain [command text]",
		Short: "Show how each handler scores a command",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := env.Container(cmd.Context())
			if err != nil {
				return err
			}
			text := strings.Join(args, " ")
			reg := container.Engine.Registry()
			explainMatches(cmd.OutOrStdout(), reg, text, container.Config.GetMinConfidence())
			return nil
		},
	}
}

func listHandlers(out io.Writer, handlers []*registry.Handler, filter domain.Category) {
	for _, h := range handlers {
		if filter != "" && h.Category() != filter {
			continue
		}
		keywords := strings.Join(h.Keywords(), ", ")
		if h.IsFallback() {
			keywords = "(fallback)"
		}
		fmt.Fprintf(out, "%-22s %-14s %s\n", h.ID(), h.Category(), keywords)
	}
}

// explainMatches prints every non-zero score, best first, and the handler
// that would run.
func explainMatches(out io.Writer, reg *registry.Registry, text string, minConfidence float64) {
	matches := reg.Matches(text)
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
	for _, m := range matches {
		fmt.Fprintf(out, "%-22s %.2f\n", m.HandlerID, m.Confidence)
	}
	if best, match, ok := reg.Best(text); ok && match.Confidence > minConfidence {
		fmt.Fprintf(out, "=> %s\n", best.ID())
		return
	}
	fmt.Fprintln(out, "=> no handler above threshold")
}
