package planner

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/alexanderramin/planboard/internal/testutil"
)

// fakePlans is an in-memory PlanService.
type fakePlans struct {
	mu       sync.Mutex
	items    []domain.ScheduledTask
	fetches  []string
	applied  [][]domain.PlanUpdate
	applyErr error
	fetchErr error
	// gates blocks fetches of a week (keyed YYYY-MM-DD) until closed.
	gates map[string]chan struct{}
}

func newFakePlans(items ...domain.ScheduledTask) *fakePlans {
	return &fakePlans{items: items, gates: make(map[string]chan struct{})}
}

func (f *fakePlans) gate(week string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[week] = ch
	return ch
}

func (f *fakePlans) FetchPlanRange(ctx context.Context, userID string, start, end time.Time) ([]domain.ScheduledTask, error) {
	key := domain.DateKey(start)
	f.mu.Lock()
	f.fetches = append(f.fetches, key)
	gate := f.gates[key]
	err := f.fetchErr
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ScheduledTask
	for _, it := range f.items {
		d := it.Entry.PlanDate
		if !d.Before(start) && !d.After(end) {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Entry.Position < out[j].Entry.Position })
	return out, nil
}

func (f *fakePlans) ApplyPlanUpdates(ctx context.Context, updates []domain.PlanUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.applyErr != nil {
		return f.applyErr
	}
	f.applied = append(f.applied, updates)
	byID := make(map[string]domain.PlanUpdate)
	for _, u := range updates {
		byID[u.EntryID] = u
	}
	for i, it := range f.items {
		if u, ok := byID[it.Entry.ID]; ok {
			f.items[i].Entry.Position = u.Position
			f.items[i].Entry.PlanDate = u.PlanDate
		}
	}
	return nil
}

func (f *fakePlans) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fetches)
}

func (f *fakePlans) positions(day string) map[string]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]int)
	for _, it := range f.items {
		if domain.DateKey(it.Entry.PlanDate) == day {
			out[it.Task.Title] = it.Entry.Position
		}
	}
	return out
}

// fakeClock fires timers only when advanced.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) Stopper {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves time forward and runs every timer that became due.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.fn()
	}
}

func syncRun(fn func()) { fn() }

// thursday is 2026-10-15; its Sunday week starts 2026-10-11.
var thursday = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

func scheduled(title, date string, pos int) domain.ScheduledTask {
	return testutil.NewScheduled(title, testutil.Date(date), pos)
}
