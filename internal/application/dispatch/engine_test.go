package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/doeshing/aura-go/internal/application/registry"
	"github.com/doeshing/aura-go/internal/domain"
	"github.com/doeshing/aura-go/internal/ports"
)

type stubCorrector struct {
	out   string
	panic bool
}

func (s stubCorrector) Correct(text string) string {
	if s.panic {
		panic("corrector exploded")
	}
	if s.out == "" {
		return text
	}
	return s.out
}

type stubIntents struct{}

func (stubIntents) Classify(string) domain.IntentLabel { return domain.IntentGeneral }

func (stubIntents) ExtractEntities(string) domain.Entities { return domain.Entities{} }

type stubHistory struct {
	mu      sync.Mutex
	entries []domain.HistoryEntry
	err     error
}

func (s *stubHistory) Save(_ context.Context, entry domain.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return s.err
}

func (s *stubHistory) Recent(context.Context, int) ([]domain.HistoryEntry, error) { return nil, nil }

func (s *stubHistory) Search(context.Context, string, int) ([]domain.HistoryEntry, error) {
	return nil, nil
}

func (s *stubHistory) CategoryStats(context.Context) ([]domain.CategoryCount, error) {
	return nil, nil
}

func (s *stubHistory) Clear(context.Context) error { return nil }

func (s *stubHistory) Prune(context.Context, int) (int, error) { return 0, nil }

var _ ports.HistoryRepository = (*stubHistory)(nil)

type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (c *callLog) action(id, message string) registry.Action {
	return func(_ context.Context, req registry.Request) (domain.Result, error) {
		c.mu.Lock()
		c.calls = append(c.calls, id)
		c.mu.Unlock()
		return domain.Success(message), nil
	}
}

func (c *callLog) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func newTestEngine(t *testing.T, reg *registry.Registry, deps Dependencies, settings Settings) *Engine {
	t.Helper()
	deps.Registry = reg
	if deps.Intents == nil {
		deps.Intents = stubIntents{}
	}
	engine, err := New(deps, settings)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	return engine
}

func mustRegister(t *testing.T, reg *registry.Registry, id string, keywords []string, action registry.Action) {
	t.Helper()
	if err := reg.Register(id, keywords, domain.CategoryOther, action); err != nil {
		t.Fatalf("Register(%s) error: %v", id, err)
	}
}

func TestExecute_EmptyInputInvokesNothing(t *testing.T) {
	calls := &callLog{}
	reg := registry.New()
	mustRegister(t, reg, "fallback", nil, calls.action("fallback", "searched"))
	sink := &stubHistory{}
	engine := newTestEngine(t, reg, Dependencies{History: sink}, Settings{})

	for _, input := range []string{"", "   ", "\t\n"} {
		res := engine.Execute(context.Background(), input)
		if res.Status != domain.StatusError || res.Message != emptyInputMessage {
			t.Errorf("Execute(%q) = %+v", input, res)
		}
	}
	if calls.count() != 0 {
		t.Fatalf("handlers invoked %d times for empty input", calls.count())
	}
	if len(engine.History(0)) != 0 || len(sink.entries) != 0 {
		t.Fatal("empty input must not be recorded")
	}
}

func TestExecute_FallbackWinsForGibberish(t *testing.T) {
	calls := &callLog{}
	reg := registry.New()
	mustRegister(t, reg, "timer", []string{"timer"}, calls.action("timer", "timer"))
	mustRegister(t, reg, "smart_search", nil, calls.action("smart_search", "Searching Google for 'xyzzy plugh'"))
	engine := newTestEngine(t, reg, Dependencies{}, Settings{})

	res := engine.Execute(context.Background(), "xyzzy plugh")
	if !res.OK() || !strings.Contains(res.Message, "Google") {
		t.Fatalf("unexpected result %+v", res)
	}
	history := engine.History(1)
	if len(history) != 1 || history[0].Handler != "smart_search" {
		t.Fatalf("history = %+v", history)
	}
}

func TestExecute_ThresholdGate(t *testing.T) {
	calls := &callLog{}
	reg := registry.New()
	mustRegister(t, reg, "fallback", nil, calls.action("fallback", "fallback"))
	engine := newTestEngine(t, reg, Dependencies{}, Settings{})

	res := engine.Execute(context.Background(), "anything", WithMinConfidence(0.25))
	if res.Status != domain.StatusError || !strings.HasPrefix(res.Message, "I didn't understand that") {
		t.Fatalf("expected no-match error, got %+v", res)
	}
	if calls.count() != 0 {
		t.Fatal("handler invoked below threshold")
	}

	if got := engine.ExecuteText("anything", 0.2, 0.9); got != "fallback" {
		t.Fatalf("ExecuteText = %q, want fallback", got)
	}
}

func TestNew_ZeroThresholdSelectsDefault(t *testing.T) {
	reg := registry.New()
	for _, tt := range []struct {
		configured, want float64
	}{
		{configured: 0, want: domain.DefaultMinConfidence},
		{configured: -1, want: domain.DefaultMinConfidence},
		{configured: 0.05, want: 0.05},
	} {
		engine := newTestEngine(t, reg, Dependencies{}, Settings{MinConfidence: tt.configured})
		if engine.settings.MinConfidence != tt.want {
			t.Errorf("MinConfidence %v -> %v, want %v", tt.configured, engine.settings.MinConfidence, tt.want)
		}
	}
}

func TestExecute_TieBreakFirstRegistered(t *testing.T) {
	calls := &callLog{}
	reg := registry.New()
	mustRegister(t, reg, "open_app", []string{"open"}, calls.action("open_app", "first"))
	mustRegister(t, reg, "open_file", []string{"open"}, calls.action("open_file", "second"))
	engine := newTestEngine(t, reg, Dependencies{}, Settings{})

	if got := engine.ExecuteText("open notes"); got != "first" {
		t.Fatalf("ExecuteText = %q, want first", got)
	}
}

func TestExecute_UsesCorrectedText(t *testing.T) {
	calls := &callLog{}
	reg := registry.New()
	mustRegister(t, reg, "open_chrome", []string{"chrome", "open chrome"}, calls.action("open_chrome", "Opening chrome..."))
	mustRegister(t, reg, "smart_search", nil, calls.action("smart_search", "search"))
	engine := newTestEngine(t, reg, Dependencies{Corrector: stubCorrector{out: "open chrome"}}, Settings{})

	if got := engine.ExecuteText("open chromee"); got != "Opening chrome..." {
		t.Fatalf("ExecuteText = %q", got)
	}
	if got := engine.History(1)[0].Input; got != "open chromee" {
		t.Fatalf("history input = %q, want the raw text", got)
	}
}

func TestExecute_CorrectorPanicFallsBackToRaw(t *testing.T) {
	calls := &callLog{}
	reg := registry.New()
	mustRegister(t, reg, "timer", []string{"timer"}, calls.action("timer", "timer set"))
	engine := newTestEngine(t, reg, Dependencies{Corrector: stubCorrector{panic: true}}, Settings{})

	if got := engine.ExecuteText("set timer for 1 minute"); got != "timer set" {
		t.Fatalf("ExecuteText = %q", got)
	}
}

func TestExecute_HandlerFailuresBecomeResults(t *testing.T) {
	reg := registry.New()
	mustRegister(t, reg, "boom", []string{"boom"}, func(context.Context, registry.Request) (domain.Result, error) {
		panic("kaboom")
	})
	mustRegister(t, reg, "fail", []string{"fail"}, func(context.Context, registry.Request) (domain.Result, error) {
		return domain.Result{}, errors.New(strings.Repeat("x", 200))
	})
	mustRegister(t, reg, "silent", []string{"silent"}, func(context.Context, registry.Request) (domain.Result, error) {
		return domain.Result{}, nil
	})
	engine := newTestEngine(t, reg, Dependencies{}, Settings{})

	res := engine.Execute(context.Background(), "boom")
	if res.Status != domain.StatusError || !strings.Contains(res.Message, "kaboom") {
		t.Fatalf("panic result = %+v", res)
	}

	res = engine.Execute(context.Background(), "fail")
	if res.Status != domain.StatusError || len(res.Message) > 120 {
		t.Fatalf("error result = %+v", res)
	}

	res = engine.Execute(context.Background(), "silent")
	if res.Message == "" {
		t.Fatal("success result must carry a message")
	}

	if len(engine.History(0)) != 3 {
		t.Fatalf("history has %d entries, want 3", len(engine.History(0)))
	}
}

func TestExecute_HistoryBoundedFIFO(t *testing.T) {
	reg := registry.New()
	mustRegister(t, reg, "echo", nil, func(_ context.Context, req registry.Request) (domain.Result, error) {
		return domain.Success("echo " + req.Text), nil
	})
	engine := newTestEngine(t, reg, Dependencies{}, Settings{HistorySize: 3})

	for i := 1; i <= 4; i++ {
		engine.Execute(context.Background(), fmt.Sprintf("cmd %d", i))
	}

	history := engine.History(0)
	if len(history) != 3 {
		t.Fatalf("history size = %d, want 3", len(history))
	}
	for i, entry := range history {
		want := fmt.Sprintf("cmd %d", i+2)
		if entry.Input != want {
			t.Errorf("history[%d].Input = %q, want %q", i, entry.Input, want)
		}
	}
	if last := engine.History(1); len(last) != 1 || last[0].Output != "echo cmd 4" {
		t.Fatalf("History(1) = %+v", last)
	}
}

func TestExecute_HistorySinkErrorsSwallowed(t *testing.T) {
	reg := registry.New()
	mustRegister(t, reg, "ok", nil, func(context.Context, registry.Request) (domain.Result, error) {
		return domain.Success("fine"), nil
	})
	sink := &stubHistory{err: errors.New("disk full")}
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	engine := newTestEngine(t, reg, Dependencies{
		History: sink,
		Now:     func() time.Time { return fixed },
		NewID:   func() string { return "cmd-1" },
	}, Settings{})

	res := engine.Execute(context.Background(), "hello", WithMode(domain.ModeVoice))
	if res.Message != "fine" {
		t.Fatalf("result = %+v", res)
	}
	if len(sink.entries) != 1 {
		t.Fatalf("sink received %d entries", len(sink.entries))
	}
	entry := sink.entries[0]
	if entry.ID != "cmd-1" || entry.Mode != domain.ModeVoice || !entry.Timestamp.Equal(fixed) || entry.Status != domain.StatusSuccess {
		t.Fatalf("sink entry = %+v", entry)
	}
}

func TestExecute_ConcurrentCallersKeepHistoryBounded(t *testing.T) {
	reg := registry.New()
	mustRegister(t, reg, "ok", nil, func(context.Context, registry.Request) (domain.Result, error) {
		return domain.Success("ok"), nil
	})
	engine := newTestEngine(t, reg, Dependencies{}, Settings{HistorySize: 10})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			engine.Execute(context.Background(), fmt.Sprintf("cmd %d", i))
		}(i)
	}
	wg.Wait()

	if got := len(engine.History(0)); got != 10 {
		t.Fatalf("history size = %d, want 10", got)
	}
}

func TestNewRequiresRegistry(t *testing.T) {
	if _, err := New(Dependencies{}, Settings{}); err == nil {
		t.Fatal("expected error without registry")
	}
}

func TestDispatch_ReportsHandlerAndID(t *testing.T) {
	calls := &callLog{}
	reg := registry.New()
	mustRegister(t, reg, "open_chrome", []string{"chrome"}, calls.action("open_chrome", "Opening chrome..."))
	mustRegister(t, reg, "fallback", nil, calls.action("fallback", "searched"))
	ids := 0
	engine := newTestEngine(t, reg, Dependencies{NewID: func() string {
		ids++
		return fmt.Sprintf("cmd-%d", ids)
	}}, Settings{})

	out := engine.Dispatch(context.Background(), "open chrome")
	if out.ID != "cmd-1" || out.Handler != "open_chrome" || out.Result.Message != "Opening chrome..." {
		t.Fatalf("Dispatch = %+v", out)
	}

	out = engine.Dispatch(context.Background(), "zzz", WithMinConfidence(0.9))
	if out.Handler != "" || out.Result.Status != domain.StatusError {
		t.Fatalf("unmatched Dispatch = %+v", out)
	}
	if got := engine.History(1)[0].ID; got != "cmd-2" {
		t.Fatalf("history id = %q", got)
	}
}
