package doctor

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	appconfig "github.com/doeshing/aura-go/internal/application/config"
	"github.com/doeshing/aura-go/internal/domain"
	"github.com/doeshing/aura-go/internal/ports"
)

// HandlerSource lists the registered handlers.
type HandlerSource interface {
	HandlerInfo() map[string]domain.HandlerInfo
}

// Service runs environment diagnostics. Only ConfigProvider is required; a nil
// collaborator is reported as a warning.
type Service struct {
	ConfigProvider ports.ConfigProvider
	Handlers       HandlerSource
	History        ports.HistoryRepository
	Contacts       ports.ContactDirectory
	Apps           ports.AppLocator
	Mailer         ports.Mailer
	Announcer      ports.Announcer
	LookPath       func(string) (string, error)
}

// Run executes checks and returns a report.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	if err := appconfig.Validate(cfg); err != nil {
		checks = append(checks, fail("Config file", err.Error()))
	} else {
		checks = append(checks, ok("Config file", fmt.Sprintf("loaded %s", cfg.ConfigFormatVersion)))
	}

	checks = append(checks,
		s.handlerCheck(),
		s.historyCheck(ctx),
		s.contactsCheck(),
		s.appsCheck(),
		s.mailCheck(),
		s.speechCheck(),
		s.ocrCheck(),
	)
	return domain.HealthReport{Checks: checks}, nil
}

func (s *Service) handlerCheck() domain.HealthCheck {
	if s.Handlers == nil {
		return warn("Handlers", "handler table not loaded")
	}
	info := s.Handlers.HandlerInfo()
	if len(info) == 0 {
		return fail("Handlers", "no handlers registered")
	}
	for _, h := range info {
		if len(h.Keywords) == 0 {
			return ok("Handlers", fmt.Sprintf("%d registered, fallback present", len(info)))
		}
	}
	return warn("Handlers", fmt.Sprintf("%d registered, no fallback: unmatched commands will be rejected", len(info)))
}

func (s *Service) historyCheck(ctx context.Context) domain.HealthCheck {
	if s.History == nil {
		return warn("History", "history store disabled")
	}
	if _, err := s.History.Recent(ctx, 1); err != nil {
		return fail("History", err.Error())
	}
	return ok("History", "store reachable")
}

func (s *Service) contactsCheck() domain.HealthCheck {
	if s.Contacts == nil {
		return warn("Contacts", "contact book not loaded")
	}
	n := len(s.Contacts.All())
	if n == 0 {
		return warn("Contacts", "contact book is empty")
	}
	return ok("Contacts", fmt.Sprintf("%d contacts", n))
}

func (s *Service) appsCheck() domain.HealthCheck {
	if s.Apps == nil {
		return warn("App index", "app index disabled")
	}
	n := len(s.Apps.Entries())
	if n == 0 {
		return warn("App index", "empty; run 'aura apps reindex'")
	}
	return ok("App index", fmt.Sprintf("%d apps indexed", n))
}

func (s *Service) mailCheck() domain.HealthCheck {
	if s.Mailer == nil || !s.Mailer.Configured() {
		return warn("Email", "SMTP not configured; emails are drafted only")
	}
	return ok("Email", "SMTP configured")
}

func (s *Service) speechCheck() domain.HealthCheck {
	if s.Announcer == nil || !s.Announcer.Available() {
		return warn("Speech", "no TTS program; notifications are printed")
	}
	return ok("Speech", "TTS available")
}

func (s *Service) ocrCheck() domain.HealthCheck {
	lookPath := s.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	var missing []string
	for _, tool := range []string{"tesseract"} {
		if _, err := lookPath(tool); err != nil {
			missing = append(missing, tool)
		}
	}
	if len(missing) > 0 {
		return warn("Screen reading", strings.Join(missing, ", ")+" not installed")
	}
	return ok("Screen reading", "tesseract available")
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
