// Package dispatch turns raw utterances into exactly one handler invocation
// and a user-facing result.
package dispatch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/aura-go/internal/application/registry"
	"github.com/doeshing/aura-go/internal/domain"
	"github.com/doeshing/aura-go/internal/ports"
)

const (
	emptyInputMessage = "Please say something."
	noMatchMessage    = "I didn't understand that. Try: 'open chrome', 'set timer for 5 minutes', 'call amma', or 'search for golang'."
)

// Dependencies wires the engine's collaborators. Registry is required; the
// rest are optional.
type Dependencies struct {
	Registry  *registry.Registry
	Corrector ports.Corrector
	Intents   ports.IntentExtractor
	History   ports.HistoryRepository
	Logger    ports.Logger
	Now       func() time.Time
	NewID     func() string
}

// Settings holds the engine tunables. Zero values select the defaults, so a
// threshold of exactly 0 is only reachable through WithMinConfidence.
type Settings struct {
	MinConfidence float64
	HistorySize   int
	Timeout       time.Duration
}

// Engine is the command dispatcher. It is safe for concurrent use, though
// commands are expected one at a time.
type Engine struct {
	deps     Dependencies
	settings Settings

	mu      sync.Mutex
	history []domain.HistoryEntry
}

// Option adjusts a single Execute call.
type Option func(*execOptions)

type execOptions struct {
	minConfidence float64
	mode          domain.InputMode
}

// WithMinConfidence overrides the confidence threshold for one call.
func WithMinConfidence(v float64) Option {
	return func(o *execOptions) { o.minConfidence = v }
}

// WithMode records how the command was captured.
func WithMode(mode domain.InputMode) Option {
	return func(o *execOptions) { o.mode = mode }
}

// New builds an engine.
func New(deps Dependencies, settings Settings) (*Engine, error) {
	if deps.Registry == nil {
		return nil, fmt.Errorf("dispatch.Engine requires a handler registry")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}
	if settings.MinConfidence <= 0 {
		settings.MinConfidence = domain.DefaultMinConfidence
	}
	if settings.HistorySize <= 0 {
		settings.HistorySize = domain.DefaultHistorySize
	}
	return &Engine{deps: deps, settings: settings}, nil
}

// Outcome is a dispatched command together with the handler that served it.
// Handler is empty when nothing matched.
type Outcome struct {
	ID      string
	Handler string
	Result  domain.Result
}

// Execute dispatches one command. It never panics and never returns an empty
// message for success or error results.
func (e *Engine) Execute(ctx context.Context, text string, opts ...Option) domain.Result {
	return e.Dispatch(ctx, text, opts...).Result
}

// Dispatch is Execute for callers that also need the command id and handler.
func (e *Engine) Dispatch(ctx context.Context, text string, opts ...Option) Outcome {
	o := execOptions{minConfidence: e.settings.MinConfidence, mode: domain.ModeText}
	for _, opt := range opts {
		opt(&o)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cmd := domain.Command{
		ID:         e.deps.NewID(),
		Raw:        text,
		Mode:       o.mode,
		ReceivedAt: e.deps.Now(),
	}

	if strings.TrimSpace(text) == "" {
		return Outcome{ID: cmd.ID, Result: domain.Failure(emptyInputMessage)}
	}

	cmd.Corrected = e.correct(strings.TrimSpace(text))

	req := registry.Request{ID: cmd.ID, Text: cmd.Corrected, Raw: text, Mode: cmd.Mode}
	if e.deps.Intents != nil {
		req.Intent = e.deps.Intents.Classify(cmd.Corrected)
		req.Entities = e.deps.Intents.ExtractEntities(cmd.Corrected)
	}

	entry := domain.HistoryEntry{
		ID:        cmd.ID,
		Timestamp: cmd.ReceivedAt,
		Input:     text,
		Mode:      cmd.Mode,
		Intent:    string(req.Intent),
	}

	handler, match, ok := e.deps.Registry.Best(cmd.Corrected)
	var result domain.Result
	if !ok || match.Confidence <= o.minConfidence {
		result = domain.Failure(noMatchMessage)
		e.debug("no handler above threshold", map[string]interface{}{
			"input":      cmd.Corrected,
			"confidence": match.Confidence,
			"threshold":  o.minConfidence,
		})
	} else {
		entry.Handler = handler.ID()
		entry.Category = handler.Category()
		e.debug("dispatching", map[string]interface{}{
			"id":         cmd.ID,
			"handler":    handler.ID(),
			"confidence": match.Confidence,
			"intent":     req.Intent,
		})
		result = e.invoke(ctx, handler, req)
	}

	result = result.Normalize()
	entry.Output = result.Message
	entry.Status = result.Status
	e.record(ctx, entry)
	return Outcome{ID: cmd.ID, Handler: entry.Handler, Result: result}
}

// ExecuteText is the plain-string boundary. Only the first extra argument is
// used, as a confidence override.
func (e *Engine) ExecuteText(text string, minConfidence ...float64) string {
	var opts []Option
	if len(minConfidence) > 0 {
		opts = append(opts, WithMinConfidence(minConfidence[0]))
	}
	return e.Execute(context.Background(), text, opts...).Message
}

// History returns up to limit entries, most recent last. limit <= 0 returns all.
func (e *Engine) History(limit int) []domain.HistoryEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	start := 0
	if limit > 0 && limit < len(e.history) {
		start = len(e.history) - limit
	}
	return append([]domain.HistoryEntry(nil), e.history[start:]...)
}

// HandlerInfo describes the registered handlers.
func (e *Engine) HandlerInfo() map[string]domain.HandlerInfo {
	return e.deps.Registry.Info()
}

// Registry exposes the handler registry for diagnostics.
func (e *Engine) Registry() *registry.Registry {
	return e.deps.Registry
}

func (e *Engine) correct(text string) (out string) {
	if e.deps.Corrector == nil {
		return text
	}
	defer func() {
		if r := recover(); r != nil {
			out = text
		}
	}()
	corrected := e.deps.Corrector.Correct(text)
	if strings.TrimSpace(corrected) == "" {
		return text
	}
	return corrected
}

func (e *Engine) invoke(ctx context.Context, handler *registry.Handler, req registry.Request) (result domain.Result) {
	defer func() {
		if r := recover(); r != nil {
			e.logError("handler panicked", fmt.Errorf("%v", r), handler.ID())
			result = domain.Failure(fmt.Sprintf("Sorry, %s failed: %s", handler.ID(), truncate(fmt.Sprint(r), domain.MaxErrorDetail)))
		}
	}()

	if e.settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.settings.Timeout)
		defer cancel()
	}

	res, err := handler.Handle(ctx, req)
	if err != nil {
		e.logError("handler failed", err, handler.ID())
		return domain.Failure(fmt.Sprintf("Sorry, %s failed: %s", handler.ID(), truncate(err.Error(), domain.MaxErrorDetail)))
	}
	return res
}

func (e *Engine) record(ctx context.Context, entry domain.HistoryEntry) {
	e.mu.Lock()
	e.history = append(e.history, entry)
	if overflow := len(e.history) - e.settings.HistorySize; overflow > 0 {
		e.history = append([]domain.HistoryEntry(nil), e.history[overflow:]...)
	}
	e.mu.Unlock()

	if e.deps.History == nil {
		return
	}
	if err := e.deps.History.Save(context.WithoutCancel(ctx), entry); err != nil {
		e.logError("history sink failed", err, entry.Handler)
	}
}

func (e *Engine) debug(msg string, fields map[string]interface{}) {
	if e.deps.Logger != nil {
		e.deps.Logger.Debug(msg, fields)
	}
}

func (e *Engine) logError(msg string, err error, handlerID string) {
	if e.deps.Logger != nil {
		e.deps.Logger.Error(msg, err, map[string]interface{}{"handler": handlerID})
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
