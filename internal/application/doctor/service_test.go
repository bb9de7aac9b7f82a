package doctor

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/doeshing/aura-go/internal/domain"
)

type stubConfig struct {
	cfg domain.Config
	err error
}

func (s stubConfig) Load(context.Context) (domain.Config, error) { return s.cfg, s.err }

type stubHandlers map[string]domain.HandlerInfo

func (s stubHandlers) HandlerInfo() map[string]domain.HandlerInfo { return s }

type stubHistory struct{ err error }

func (s stubHistory) Save(context.Context, domain.HistoryEntry) error { return nil }
func (s stubHistory) Recent(context.Context, int) ([]domain.HistoryEntry, error) {
	return nil, s.err
}
func (s stubHistory) Search(context.Context, string, int) ([]domain.HistoryEntry, error) {
	return nil, nil
}
func (s stubHistory) CategoryStats(context.Context) ([]domain.CategoryCount, error) {
	return nil, nil
}
func (s stubHistory) Clear(context.Context) error { return nil }
func (s stubHistory) Prune(context.Context, int) (int, error) { return 0, nil }

type stubContacts []domain.Contact

func (s stubContacts) Find(string) (domain.Contact, error) { return domain.Contact{}, domain.ErrContactNotFound }
func (s stubContacts) All() []domain.Contact { return s }

type stubMailer bool

func (m stubMailer) Send(context.Context, string, string, string) error { return nil }
func (m stubMailer) Configured() bool { return bool(m) }

func validConfig() domain.Config {
	return domain.Config{
		ConfigFormatVersion: "1",
		Preferences:         domain.Preferences{MinConfidence: 0.2, HistorySize: 50},
	}
}

func statusByName(report domain.HealthReport) map[string]domain.HealthStatus {
	out := make(map[string]domain.HealthStatus, len(report.Checks))
	for _, c := range report.Checks {
		out[c.Name] = c.Status
	}
	return out
}

func TestRunHealthy(t *testing.T) {
	svc := &Service{
		ConfigProvider: stubConfig{cfg: validConfig()},
		Handlers: stubHandlers{
			"timer":        {Keywords: []string{"timer"}},
			"smart_search": {},
		},
		History:  stubHistory{},
		Contacts: stubContacts{{Name: "amma"}},
		Mailer:   stubMailer(true),
		LookPath: func(name string) (string, error) { return "/usr/bin/" + name, nil },
	}
	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if !report.Healthy() {
		t.Fatalf("expected healthy report, got %+v", report.Checks)
	}
	got := statusByName(report)
	want := map[string]domain.HealthStatus{
		"Config file":    domain.HealthOK,
		"Handlers":       domain.HealthOK,
		"History":        domain.HealthOK,
		"Contacts":       domain.HealthOK,
		"App index":      domain.HealthWarn,
		"Email":          domain.HealthOK,
		"Speech":         domain.HealthWarn,
		"Screen reading": domain.HealthOK,
	}
	for name, status := range want {
		if got[name] != status {
			t.Errorf("%s = %s, want %s", name, got[name], status)
		}
	}
}

func TestRunReportsFailures(t *testing.T) {
	cfg := validConfig()
	cfg.Preferences.MinConfidence = 2
	svc := &Service{
		ConfigProvider: stubConfig{cfg: cfg},
		Handlers:       stubHandlers{"timer": {Keywords: []string{"timer"}}},
		History:        stubHistory{err: errors.New("database is locked")},
		LookPath:       func(string) (string, error) { return "", exec.ErrNotFound },
	}
	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	got := statusByName(report)
	if got["Config file"] != domain.HealthError || got["History"] != domain.HealthError {
		t.Fatalf("expected config and history failures, got %v", got)
	}
	if got["Handlers"] != domain.HealthWarn {
		t.Errorf("missing fallback should warn, got %s", got["Handlers"])
	}
	if got["Screen reading"] != domain.HealthWarn {
		t.Errorf("missing tesseract should warn, got %s", got["Screen reading"])
	}
	if report.Healthy() {
		t.Fatal("report with failures must not be healthy")
	}
}

func TestRunStopsWhenConfigFails(t *testing.T) {
	svc := &Service{ConfigProvider: stubConfig{err: errors.New("permission denied")}}
	report, err := svc.Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if len(report.Checks) != 1 || report.Checks[0].Status != domain.HealthError {
		t.Fatalf("unexpected checks: %+v", report.Checks)
	}
}
