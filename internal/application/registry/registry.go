// Package registry holds the keyword-scored command handlers the dispatch
// engine chooses between.
package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/doeshing/aura-go/internal/domain"
)

// Request is what a handler action receives for one command.
type Request struct {
	ID       string
	Text     string
	Raw      string
	Mode     domain.InputMode
	Intent   domain.IntentLabel
	Entities domain.Entities
}

// Action performs the work of a handler.
type Action func(ctx context.Context, req Request) (domain.Result, error)

// Handler is a registered command handler. Immutable once registered.
type Handler struct {
	id       string
	keywords []string
	category domain.Category
	action   Action
}

// ID returns the handler identifier.
func (h *Handler) ID() string { return h.id }

// Category returns the handler category.
func (h *Handler) Category() domain.Category { return h.category }

// Keywords returns a copy of the lower-cased trigger keywords.
func (h *Handler) Keywords() []string {
	return append([]string(nil), h.keywords...)
}

// IsFallback reports whether the handler has no keywords.
func (h *Handler) IsFallback() bool { return len(h.keywords) == 0 }

// Confidence scores how well text matches the handler's keywords.
func (h *Handler) Confidence(text string) float64 {
	if len(h.keywords) == 0 {
		return domain.FallbackConfidence
	}
	lower := strings.ToLower(text)
	matched := 0
	for _, kw := range h.keywords {
		if strings.Contains(lower, kw) {
			matched++
		}
	}
	if matched == 0 {
		return 0
	}
	return min(1.0, 0.3+0.2*float64(matched))
}

// Handle runs the handler's action.
func (h *Handler) Handle(ctx context.Context, req Request) (domain.Result, error) {
	return h.action(ctx, req)
}

// Registry is an ordered set of handlers. Registration order breaks score ties.
// Register must not be called once dispatching has started.
type Registry struct {
	handlers []*Handler
	byID     map[string]*Handler
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{byID: make(map[string]*Handler)}
}

// Register adds a handler. Ids must be unique and the action non-nil.
func (r *Registry) Register(id string, keywords []string, category domain.Category, action Action) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("handler id must not be empty")
	}
	if action == nil {
		return fmt.Errorf("handler %q: action must not be nil", id)
	}
	if _, exists := r.byID[id]; exists {
		return fmt.Errorf("handler %q: %w", id, domain.ErrDuplicateHandler)
	}
	if category == "" {
		category = domain.CategoryOther
	}
	h := &Handler{id: id, keywords: normalizeKeywords(keywords), category: category, action: action}
	r.handlers = append(r.handlers, h)
	r.byID[id] = h
	return nil
}

// Get returns the handler registered under id.
func (r *Registry) Get(id string) (*Handler, bool) {
	h, ok := r.byID[id]
	return h, ok
}

// Len returns the number of registered handlers.
func (r *Registry) Len() int { return len(r.handlers) }

// Handlers returns the handlers in registration order.
func (r *Registry) Handlers() []*Handler {
	return append([]*Handler(nil), r.handlers...)
}

// Matches scores every handler against text, in registration order.
func (r *Registry) Matches(text string) []domain.Match {
	matches := make([]domain.Match, 0, len(r.handlers))
	for _, h := range r.handlers {
		matches = append(matches, domain.Match{HandlerID: h.id, Confidence: h.Confidence(text), Category: h.category})
	}
	return matches
}

// Best returns the highest scoring handler. Only a strictly greater score
// displaces an earlier handler. The second return value is false for an empty registry.
func (r *Registry) Best(text string) (*Handler, domain.Match, bool) {
	var (
		best      *Handler
		bestMatch domain.Match
	)
	for _, h := range r.handlers {
		score := h.Confidence(text)
		if best == nil || score > bestMatch.Confidence {
			best = h
			bestMatch = domain.Match{HandlerID: h.id, Confidence: score, Category: h.category}
		}
	}
	return best, bestMatch, best != nil
}

// Info describes every handler for introspection.
func (r *Registry) Info() map[string]domain.HandlerInfo {
	info := make(map[string]domain.HandlerInfo, len(r.handlers))
	for _, h := range r.handlers {
		info[h.id] = domain.HandlerInfo{Keywords: h.Keywords(), Category: h.category}
	}
	return info
}

func normalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
