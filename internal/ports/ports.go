// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the dispatch core and external
// adapters (infrastructure). Following the Ports and Adapters (Hexagonal) pattern,
// these interfaces allow the engine to remain independent of specific
// implementations like databases, HTTP clients, speech engines or the host OS.
//
// Key architectural concepts:
//   - Ports: Interfaces defined here (e.g., ActionExecutor, HistoryRepository)
//   - Adapters: Concrete implementations in the infrastructure layer
//   - Dependency inversion: Application depends on abstractions, not implementations
package ports

import (
	"context"
	"time"

	"github.com/doeshing/aura-go/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.aura/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// Corrector rewrites near-miss utterances to canonical command phrases.
// Implementations must never fail: on any problem they return the input unchanged.
type Corrector interface {
	Correct(text string) string
}

// IntentExtractor classifies an utterance and pulls structured entities out of it.
type IntentExtractor interface {
	Classify(text string) domain.IntentLabel
	ExtractEntities(text string) domain.Entities
}

// HistoryRepository persists dispatched commands beyond the in-memory window.
type HistoryRepository interface {
	Save(ctx context.Context, entry domain.HistoryEntry) error
	Recent(ctx context.Context, limit int) ([]domain.HistoryEntry, error)
	Search(ctx context.Context, query string, limit int) ([]domain.HistoryEntry, error)
	CategoryStats(ctx context.Context) ([]domain.CategoryCount, error)
	Clear(ctx context.Context) error
	Prune(ctx context.Context, retainDays int) (int, error)
}

// ActionExecutor performs side effects on the host operating system.
// Every method returns domain.ErrUnsupportedPlatform when the host cannot do it.
type ActionExecutor interface {
	OpenURL(ctx context.Context, url string) error
	OpenPath(ctx context.Context, path string) error
	OpenSettings(ctx context.Context, page string) error
	LaunchApp(ctx context.Context, name string) error
	StartProcess(ctx context.Context, path string, args ...string) error
	KillProcess(ctx context.Context, name string) (bool, error)
	ToggleSetting(ctx context.Context, setting string) error
	SetLevel(ctx context.Context, control string, percent int) error
	PressKeys(ctx context.Context, keys ...string) error
	CaptureScreen(ctx context.Context, dest string) error
	RecognizeText(ctx context.Context, imagePath string) (string, error)
}

// Timer is a handle to a scheduled callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs callbacks after a delay. Tests substitute a fake clock.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Announcer speaks (or otherwise surfaces) asynchronous notifications such as
// a finished timer.
type Announcer interface {
	Announce(ctx context.Context, message string) error
	SetVoice(index int) error
	Available() bool
}

// Mailer delivers outgoing email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
	Configured() bool
}

// KnowledgeSource answers encyclopedic questions with a short summary.
type KnowledgeSource interface {
	Summary(ctx context.Context, topic string) (string, error)
}

// AppLocator resolves a spoken application name against the local app index.
type AppLocator interface {
	Locate(name string) (domain.AppEntry, bool)
	Reindex(ctx context.Context) (int, error)
	Entries() []domain.AppEntry
}

// ContactDirectory resolves spoken names to address book entries.
type ContactDirectory interface {
	Find(name string) (domain.Contact, error)
	All() []domain.Contact
}

// ConfirmationPrompter reads interactive input for the REPL and confirmations.
type ConfirmationPrompter interface {
	Confirm(message string) (bool, error)
	ReadLine(prompt string) (string, error)
	Enabled() bool
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
