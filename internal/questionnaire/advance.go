package questionnaire

import (
	"sync"
	"time"
)

// Scheduler runs fn once after d and returns a function that stops it.
// stop reports whether the call was prevented.
type Scheduler func(d time.Duration, fn func()) (stop func() bool)

// TimerScheduler schedules on the runtime timer.
func TimerScheduler(d time.Duration, fn func()) func() bool {
	return time.AfterFunc(d, fn).Stop
}

// Advancer owns at most one pending deferred transition. Scheduling a new one
// cancels the previous, so a stale transition never fires after faster input.
type Advancer struct {
	mu       sync.Mutex
	delay    time.Duration
	schedule Scheduler
	seq      uint64
	stop     func() bool
}

func NewAdvancer(delay time.Duration, schedule Scheduler) *Advancer {
	if schedule == nil {
		schedule = TimerScheduler
	}
	return &Advancer{delay: delay, schedule: schedule}
}

func (a *Advancer) Delay() time.Duration {
	return a.delay
}

// Schedule replaces any pending transition with fn.
func (a *Advancer) Schedule(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.cancelLocked()
	a.seq++
	token := a.seq
	a.stop = a.schedule(a.delay, func() {
		a.mu.Lock()
		if token != a.seq || a.stop == nil {
			a.mu.Unlock()
			return
		}
		a.stop = nil
		a.mu.Unlock()
		fn()
	})
}

// Cancel drops the pending transition, if any, and reports whether one was pending.
func (a *Advancer) Cancel() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cancelLocked()
}

func (a *Advancer) cancelLocked() bool {
	if a.stop == nil {
		return false
	}
	a.stop()
	a.stop = nil
	a.seq++
	return true
}

func (a *Advancer) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stop != nil
}
