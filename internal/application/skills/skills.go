// Package skills implements the built-in handler actions and exposes them as
// a catalog the handler table refers to by name.
package skills

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/doeshing/aura-go/internal/application/registry"
	"github.com/doeshing/aura-go/internal/domain"
	"github.com/doeshing/aura-go/internal/ports"
)

// Deps are the collaborators the skills act through. Executor, Scheduler and
// Contacts are required; the others degrade to error results when nil.
type Deps struct {
	Config    domain.Config
	Executor  ports.ActionExecutor
	Scheduler ports.Scheduler
	Announcer ports.Announcer
	Mailer    ports.Mailer
	Knowledge ports.KnowledgeSource
	Apps      ports.AppLocator
	Contacts  ports.ContactDirectory
	Logger    ports.Logger
	// ScreenshotDir is where captures are written. Defaults to <files.base_dir>/screenshots.
	ScreenshotDir string
}

// Skills owns the handler actions and the state they share (active timers).
type Skills struct {
	deps   Deps
	timers *TimerBook
	faq    *FAQ
}

// New builds the skill set.
func New(deps Deps) *Skills {
	if deps.ScreenshotDir == "" {
		deps.ScreenshotDir = filepath.Join(deps.Config.Files.BaseDir, "screenshots")
	}
	s := &Skills{deps: deps}
	s.timers = NewTimerBook(deps.Scheduler, deps.Announcer, deps.Logger)
	s.faq = NewFAQ(s.now)
	return s
}

// Timers exposes the timer book so callers can cancel pending timers on shutdown.
func (s *Skills) Timers() *TimerBook {
	return s.timers
}

// Catalog maps every action name usable in a handler table to its implementation.
func (s *Skills) Catalog() registry.Catalog {
	catalog := registry.Catalog{
		"timer":         s.setTimer,
		"alarm":         s.setAlarm,
		"list_timers":   s.listTimers,
		"cancel_timers": s.cancelTimers,

		"file": s.fileOperation,

		"call":    s.call,
		"message": s.message,
		"email":   s.email,

		"open_app":     s.openApp,
		"close_app":    s.closeApp,
		"open_chrome":  s.openNamedApp("chrome"),
		"play_music":   s.openNamedApp("spotify"),
		"reindex_apps": s.reindexApps,

		"open_settings":  s.openSettings,
		"brightness_set": s.setLevel("brightness"),
		"volume_set":     s.setLevel("volume"),

		"pause_music":   s.pressKeys("Media paused.", "playpause"),
		"next_song":     s.pressKeys("Next track.", "nexttrack"),
		"previous_song": s.pressKeys("Previous track.", "prevtrack"),
		"new_tab":       s.pressKeys("New tab opened.", "ctrl", "t"),
		"close_tab":     s.pressKeys("Tab closed.", "ctrl", "w"),
		"next_tab":      s.pressKeys("Next tab.", "ctrl", "tab"),
		"previous_tab":  s.pressKeys("Previous tab.", "ctrl", "shift", "tab"),

		"screenshot":   s.screenshot,
		"read_screen":  s.readScreen,
		"change_voice": s.changeVoice,

		"youtube":      s.youtube,
		"weather":      s.weather,
		"news":         s.news,
		"faq":          s.answerFAQ,
		"web_search":   s.smartSearch,
		"smart_search": s.smartSearch,
	}
	for name, toggle := range toggles {
		catalog[name] = s.toggle(name, toggle)
	}
	return catalog
}

func (s *Skills) now() time.Time {
	if s.deps.Scheduler == nil {
		return time.Now()
	}
	return s.deps.Scheduler.Now()
}

func (s *Skills) warn(msg string, fields map[string]interface{}) {
	if s.deps.Logger != nil {
		s.deps.Logger.Warn(msg, fields)
	}
}

func lower(req registry.Request) string {
	return strings.ToLower(strings.TrimSpace(req.Text))
}

// shorten trims text to at most n runes on a word boundary.
func shorten(text string, n int) string {
	r := []rune(strings.TrimSpace(text))
	if len(r) <= n {
		return string(r)
	}
	cut := string(r[:n])
	if i := strings.LastIndexByte(cut, ' '); i > n/2 {
		cut = cut[:i]
	}
	return cut + "..."
}
