// Package highlight marks recently merged keys for a bounded window so the
// consumer can emphasize fresh arrivals, then auto-clears them.
package highlight

import (
	"sync"
	"time"
)

// DefaultWindow is how long a key stays marked.
const DefaultWindow = 3 * time.Second

// CancelFunc cancels a scheduled removal. Calling it after the removal has
// fired is a no-op.
type CancelFunc func()

// Scheduler runs a function once after a delay and allows cancelling it.
// Abstracted so tests can drive time explicitly.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) CancelFunc
}

// TimerScheduler schedules on real timers.
type TimerScheduler struct{}

// Schedule implements Scheduler with time.AfterFunc.
func (TimerScheduler) Schedule(d time.Duration, fn func()) CancelFunc {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// Tracker holds the active highlight set. Safe for concurrent use: removals
// fire from timer goroutines.
type Tracker struct {
	window time.Duration
	sched  Scheduler

	mu     sync.Mutex
	gen    uint64
	active map[string]*mark
}

// mark ties an active key to the generation of its pending removal, so a
// timer that already fired when its cancel was issued cannot clear a newer
// mark for the same key.
type mark struct {
	cancel CancelFunc
	gen    uint64
}

// New creates a tracker with the given window, using real timers. A
// non-positive window falls back to DefaultWindow.
func New(window time.Duration) *Tracker {
	return NewWithScheduler(window, TimerScheduler{})
}

// NewWithScheduler creates a tracker with an explicit scheduler.
func NewWithScheduler(window time.Duration, sched Scheduler) *Tracker {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Tracker{
		window: window,
		sched:  sched,
		active: make(map[string]*mark),
	}
}

// Mark adds the key to the active set and schedules its removal after the
// window. Re-marking an already active key cancels the earlier pending
// removal first, so the key stays marked for a full window from the latest
// mark instead of being cleared early by the stale timer.
func (t *Tracker) Mark(key string) {
	if key == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if m, ok := t.active[key]; ok {
		m.cancel()
	}
	t.gen++
	gen := t.gen
	cancel := t.sched.Schedule(t.window, func() { t.expire(key, gen) })
	t.active[key] = &mark{cancel: cancel, gen: gen}
}

func (t *Tracker) expire(key string, gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if m, ok := t.active[key]; ok && m.gen == gen {
		delete(t.active, key)
	}
}

// Active reports whether the key is currently marked.
func (t *Tracker) Active(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.active[key]
	return ok
}

// Keys returns the currently marked keys in unspecified order.
func (t *Tracker) Keys() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.active))
	for k := range t.active {
		out = append(out, k)
	}
	return out
}

// Len returns the number of marked keys.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.active)
}

// Stop cancels all pending removals and clears the set.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k, m := range t.active {
		m.cancel()
		delete(t.active, k)
	}
}
