package skills

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/doeshing/aura-go/internal/application/registry"
	"github.com/doeshing/aura-go/internal/domain"
	"github.com/doeshing/aura-go/internal/ports"
)

var (
	timerPattern = regexp.MustCompile(`(?i)(\d+)\s*(minutes?|mins?|hours?|hrs?)\b`)
	alarmPattern = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
)

// TimerBook tracks scheduled timers and alarms until they fire or are cancelled.
type TimerBook struct {
	scheduler ports.Scheduler
	announcer ports.Announcer
	logger    ports.Logger

	mu     sync.Mutex
	nextID int
	active map[int]activeTimer
}

type activeTimer struct {
	label string
	due   time.Time
	timer ports.Timer
}

// NewTimerBook creates an empty book.
func NewTimerBook(scheduler ports.Scheduler, announcer ports.Announcer, logger ports.Logger) *TimerBook {
	return &TimerBook{
		scheduler: scheduler,
		announcer: announcer,
		logger:    logger,
		active:    make(map[int]activeTimer),
	}
}

// Schedule announces message after d.
func (b *TimerBook) Schedule(label string, d time.Duration, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	t := b.scheduler.AfterFunc(d, func() { b.fire(id, message) })
	b.active[id] = activeTimer{label: label, due: b.scheduler.Now().Add(d), timer: t}
}

// Active returns the number of timers that have neither fired nor been cancelled.
func (b *TimerBook) Active() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.active)
}

// Labels lists pending timers in due order.
func (b *TimerBook) Labels() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	pending := make([]activeTimer, 0, len(b.active))
	for _, t := range b.active {
		pending = append(pending, t)
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].due.Before(pending[j].due) })
	labels := make([]string, 0, len(pending))
	for _, t := range pending {
		labels = append(labels, t.label)
	}
	return labels
}

// StopAll cancels every pending timer and returns how many were stopped.
func (b *TimerBook) StopAll() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	stopped := 0
	for id, t := range b.active {
		if t.timer.Stop() {
			stopped++
		}
		delete(b.active, id)
	}
	return stopped
}

func (b *TimerBook) fire(id int, message string) {
	b.mu.Lock()
	delete(b.active, id)
	b.mu.Unlock()

	if b.logger != nil {
		b.logger.Info("timer fired", map[string]interface{}{"message": message})
	}
	if b.announcer == nil {
		return
	}
	if err := b.announcer.Announce(context.Background(), message); err != nil && b.logger != nil {
		b.logger.Error("announce timer", err, nil)
	}
}

func (s *Skills) setTimer(_ context.Context, req registry.Request) (domain.Result, error) {
	m := timerPattern.FindStringSubmatch(req.Text)
	if m == nil {
		return domain.Failure("Say: 'set timer for 5 minutes' or 'set timer for 1 hour'"), nil
	}
	minutes, err := strconv.Atoi(m[1])
	if err != nil || minutes <= 0 {
		return domain.Failure("Timer length must be a positive number."), nil
	}
	if unit := strings.ToLower(m[2]); strings.HasPrefix(unit, "h") {
		minutes *= 60
	}
	s.timers.Schedule(
		fmt.Sprintf("%d minute timer", minutes),
		time.Duration(minutes)*time.Minute,
		fmt.Sprintf("Timer for %d minutes is finished", minutes),
	)
	return domain.Success(fmt.Sprintf("Timer set for %d minutes", minutes)), nil
}

func (s *Skills) setAlarm(_ context.Context, req registry.Request) (domain.Result, error) {
	m := alarmPattern.FindStringSubmatch(req.Text)
	if m == nil {
		return domain.Failure("Say: 'set alarm for 7:30'"), nil
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return domain.Failure(fmt.Sprintf("%s is not a valid time.", m[0])), nil
	}

	now := s.now()
	at := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !at.After(now) {
		at = at.AddDate(0, 0, 1)
	}
	clock := fmt.Sprintf("%02d:%02d", hour, minute)
	s.timers.Schedule("alarm "+clock, at.Sub(now), "Alarm ringing for "+clock)
	return domain.Success(fmt.Sprintf("Alarm set for %s (%s)", clock, humanize.RelTime(at, now, "ago", "from now"))), nil
}

func (s *Skills) listTimers(context.Context, registry.Request) (domain.Result, error) {
	labels := s.timers.Labels()
	if len(labels) == 0 {
		return domain.Success("No active timers"), nil
	}
	return domain.Success(fmt.Sprintf("Active timers: %d (%s)", len(labels), strings.Join(labels, ", "))), nil
}

func (s *Skills) cancelTimers(context.Context, registry.Request) (domain.Result, error) {
	n := s.timers.StopAll()
	if n == 0 {
		return domain.Warning("There were no active timers."), nil
	}
	return domain.Success(fmt.Sprintf("Cancelled %d timer(s).", n)), nil
}
