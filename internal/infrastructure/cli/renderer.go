package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/doeshing/aura-go/internal/application/dispatch"
	"github.com/doeshing/aura-go/internal/domain"
)

// RenderOutcome prints a reply in a friendly, ASCII-only format. Successful
// replies are printed as-is; warnings and errors carry a status tag.
func RenderOutcome(out io.Writer, outcome dispatch.Outcome, verbose bool) {
	res := outcome.Result
	switch res.Status {
	case domain.StatusError, domain.StatusWarning:
		fmt.Fprintf(out, "[%s] %s\n", strings.ToUpper(string(res.Status)), res.Message)
	default:
		fmt.Fprintln(out, res.Message)
	}

	if !verbose {
		return
	}
	handler := outcome.Handler
	if handler == "" {
		handler = "none"
	}
	fmt.Fprintf(out, "  handler: %s\n  id: %s\n", handler, outcome.ID)
}

// RenderHistory prints the session window, oldest first.
func RenderHistory(out io.Writer, entries []domain.HistoryEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "Nothing said yet.")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%s  %s => %s\n", e.Timestamp.Format(domain.ClockFormat), e.Input, firstLine(e.Output))
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
