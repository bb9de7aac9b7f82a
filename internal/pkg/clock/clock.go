// Package clock provides the scheduler used for timers and alarms, plus a
// manually advanced fake for tests.
package clock

import (
	"sort"
	"sync"
	"time"

	"github.com/doeshing/aura-go/internal/ports"
)

// Real schedules callbacks on the runtime timer heap.
type Real struct{}

// NewReal returns the wall-clock scheduler.
func NewReal() Real { return Real{} }

func (Real) Now() time.Time { return time.Now() }

func (Real) AfterFunc(d time.Duration, f func()) ports.Timer {
	return time.AfterFunc(d, f)
}

// Fake is a deterministic scheduler. Callbacks run synchronously inside Advance.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	seq     int
	pending []*fakeTimer
}

type fakeTimer struct {
	owner   *Fake
	seq     int
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

// NewFake returns a fake clock frozen at start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

func (c *Fake) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Fake) AfterFunc(d time.Duration, f func()) ports.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	t := &fakeTimer{owner: c, seq: c.seq, at: c.now.Add(d), fn: f}
	c.pending = append(c.pending, t)
	return t
}

// Advance moves the clock forward and fires every due callback in deadline order.
func (c *Fake) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	var due, keep []*fakeTimer
	for _, t := range c.pending {
		if t.stopped {
			continue
		}
		if !t.at.After(now) {
			t.fired = true
			due = append(due, t)
			continue
		}
		keep = append(keep, t)
	}
	c.pending = keep
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool {
		if due[i].at.Equal(due[j].at) {
			return due[i].seq < due[j].seq
		}
		return due[i].at.Before(due[j].at)
	})
	for _, t := range due {
		t.fn()
	}
}

// Pending reports how many callbacks are still scheduled.
func (c *Fake) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.pending {
		if !t.stopped {
			n++
		}
	}
	return n
}

func (t *fakeTimer) Stop() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

var (
	_ ports.Scheduler = Real{}
	_ ports.Scheduler = (*Fake)(nil)
)
