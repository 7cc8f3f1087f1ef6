package planner

import (
	"sync"
	"time"
)

// Stopper cancels a scheduled callback. It reports whether the call stopped
// the callback before it ran.
type Stopper interface {
	Stop() bool
}

// Clock abstracts wall time and timers so eviction can be driven manually in
// tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Stopper
}

type systemClock struct{}

// SystemClock returns a Clock backed by the time package.
func SystemClock() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, fn func()) Stopper {
	return time.AfterFunc(d, fn)
}

// Deferred is a cancellable delayed action. At most one action is pending;
// arming again replaces it.
type Deferred struct {
	clock Clock

	mu      sync.Mutex
	gen     uint64
	timer   Stopper
	pending bool
}

func NewDeferred(clock Clock) *Deferred {
	if clock == nil {
		clock = SystemClock()
	}
	return &Deferred{clock: clock}
}

// Arm schedules fn to run after d, cancelling any pending action.
func (d *Deferred) Arm(delay time.Duration, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.gen++
	gen := d.gen
	d.pending = true
	d.timer = d.clock.AfterFunc(delay, func() {
		d.mu.Lock()
		if gen != d.gen || !d.pending {
			d.mu.Unlock()
			return
		}
		d.pending = false
		d.timer = nil
		d.mu.Unlock()
		fn()
	})
}

// Cancel drops the pending action, if any.
func (d *Deferred) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.gen++
}

// Pending reports whether an action is armed and has not fired.
func (d *Deferred) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

func (d *Deferred) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = false
}
