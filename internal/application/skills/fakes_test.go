package skills

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/doeshing/aura-go/internal/application/registry"
	"github.com/doeshing/aura-go/internal/domain"
	"github.com/doeshing/aura-go/internal/pkg/clock"
)

type fakeExecutor struct {
	mu       sync.Mutex
	calls    []string
	fail     error
	running  map[string]bool
	ocrText  string
}

func (f *fakeExecutor) record(format string, args ...interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
	return f.fail
}

func (f *fakeExecutor) last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return ""
	}
	return f.calls[len(f.calls)-1]
}

func (f *fakeExecutor) OpenURL(_ context.Context, url string) error { return f.record("url %s", url) }
func (f *fakeExecutor) OpenPath(_ context.Context, path string) error {
	return f.record("path %s", path)
}
func (f *fakeExecutor) OpenSettings(_ context.Context, page string) error {
	return f.record("settings %s", page)
}
func (f *fakeExecutor) LaunchApp(_ context.Context, name string) error {
	return f.record("launch %s", name)
}
func (f *fakeExecutor) StartProcess(_ context.Context, path string, args ...string) error {
	return f.record("start %s %s", path, strings.Join(args, " "))
}
func (f *fakeExecutor) KillProcess(_ context.Context, name string) (bool, error) {
	err := f.record("kill %s", name)
	return f.running[name], err
}
func (f *fakeExecutor) ToggleSetting(_ context.Context, setting string) error {
	return f.record("toggle %s", setting)
}
func (f *fakeExecutor) SetLevel(_ context.Context, control string, percent int) error {
	return f.record("level %s %d", control, percent)
}
func (f *fakeExecutor) PressKeys(_ context.Context, keys ...string) error {
	return f.record("keys %s", strings.Join(keys, "+"))
}
func (f *fakeExecutor) CaptureScreen(_ context.Context, dest string) error {
	return f.record("capture %s", dest)
}
func (f *fakeExecutor) RecognizeText(_ context.Context, imagePath string) (string, error) {
	err := f.record("ocr %s", imagePath)
	return f.ocrText, err
}

type fakeAnnouncer struct {
	mu        sync.Mutex
	messages  []string
	voice     int
	available bool
}

func (a *fakeAnnouncer) Announce(_ context.Context, msg string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.messages = append(a.messages, msg)
	return nil
}

func (a *fakeAnnouncer) SetVoice(i int) error {
	a.voice = i
	return nil
}

func (a *fakeAnnouncer) Available() bool { return a.available }

func (a *fakeAnnouncer) said() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.messages...)
}

type fakeMailer struct {
	configured bool
	sent       []string
	err        error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.sent = append(m.sent, to+"|"+subject+"|"+body)
	return m.err
}

func (m *fakeMailer) Configured() bool { return m.configured }

type fakeKnowledge struct {
	answer string
	err    error
	asked  []string
}

func (k *fakeKnowledge) Summary(_ context.Context, topic string) (string, error) {
	k.asked = append(k.asked, topic)
	return k.answer, k.err
}

type fakeApps struct {
	entries   map[string]domain.AppEntry
	reindexed int
}

func (a *fakeApps) Locate(name string) (domain.AppEntry, bool) {
	e, ok := a.entries[strings.ToLower(name)]
	return e, ok
}

func (a *fakeApps) Reindex(context.Context) (int, error) {
	a.reindexed++
	return len(a.entries), nil
}

func (a *fakeApps) Entries() []domain.AppEntry { return nil }

type fakeContacts map[string]domain.Contact

func (c fakeContacts) Find(name string) (domain.Contact, error) {
	if contact, ok := c[domain.ContactKey(name)]; ok {
		return contact, nil
	}
	return domain.Contact{}, domain.ErrContactNotFound
}

func (c fakeContacts) All() []domain.Contact {
	return []domain.Contact{c["amma"], c["sinchana"]}
}

type harness struct {
	skills    *Skills
	catalog   registry.Catalog
	exec      *fakeExecutor
	announcer *fakeAnnouncer
	mailer    *fakeMailer
	knowledge *fakeKnowledge
	apps      *fakeApps
	clock     *clock.Fake
	baseDir   string
}

var start = time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC)

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		exec:      &fakeExecutor{running: map[string]bool{}},
		announcer: &fakeAnnouncer{available: true},
		mailer:    &fakeMailer{configured: true},
		knowledge: &fakeKnowledge{},
		apps:      &fakeApps{entries: map[string]domain.AppEntry{}},
		clock:     clock.NewFake(start),
		baseDir:   t.TempDir(),
	}
	cfg := domain.Config{
		Files: domain.FileSettings{BaseDir: h.baseDir, PreviewLength: 20},
		Email: domain.EmailSettings{SenderName: "Aura"},
		Apps: domain.AppSettings{
			Aliases: map[string]string{"browser": "chrome"},
		},
	}
	h.skills = New(Deps{
		Config:    cfg,
		Executor:  h.exec,
		Scheduler: h.clock,
		Announcer: h.announcer,
		Mailer:    h.mailer,
		Knowledge: h.knowledge,
		Apps:      h.apps,
		Contacts: fakeContacts{
			"amma":     {Name: "amma", Phone: "+919876543210", Email: "amma@gmail.com"},
			"sinchana": {Name: "sinchana", Phone: "+919876543212", Email: "sinchana@gmail.com"},
		},
	})
	h.catalog = h.skills.Catalog()
	return h
}

func (h *harness) run(t *testing.T, action, text string) domain.Result {
	t.Helper()
	fn, ok := h.catalog[action]
	if !ok {
		t.Fatalf("catalog has no action %q", action)
	}
	res, err := fn(context.Background(), registry.Request{Text: text})
	if err != nil {
		t.Fatalf("%s(%q) error: %v", action, text, err)
	}
	return res
}
