package planner

import (
	"testing"
	"time"

	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/alexanderramin/planboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keys(ts []time.Time) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = domain.DateKey(t)
	}
	return out
}

func TestEvictionPolicy_BaseWindow(t *testing.T) {
	p := NewEvictionPolicy(newFakeClock(thursday), nil, time.Sunday, 4, 2*time.Second)

	early := testutil.Date("2026-10-13")
	assert.Len(t, p.BaseDays(early), 7)
	assert.Equal(t, []string{"2026-10-11"}, keys(p.BaseWeeks(early)))

	late := testutil.Date("2026-10-15")
	days := p.BaseDays(late)
	require.Len(t, days, 12)
	assert.Equal(t, "2026-10-22", domain.DateKey(days[11]))
	assert.Equal(t, []string{"2026-10-11", "2026-10-18"}, keys(p.BaseWeeks(late)))

	assert.True(t, p.InBase(testutil.Date("2026-10-22"), late))
	assert.False(t, p.InBase(testutil.Date("2026-10-23"), late))
	assert.False(t, p.InBase(testutil.Date("2026-10-10"), late))
}

func TestEvictionPolicy_ObserveArmsAndCancels(t *testing.T) {
	clock := newFakeClock(thursday)
	p := NewEvictionPolicy(clock, nil, time.Sunday, 4, 2*time.Second)
	today := testutil.Date("2026-10-15")
	fired := 0
	fire := func() { fired++ }
	inBase := domain.NewDay(today)
	outside := domain.NewDay(testutil.Date("2026-10-30"))

	assert.False(t, p.Observe(inBase, 2, true, today, fire), "nothing beyond the base window")
	assert.False(t, p.Observe(inBase, 4, false, today, fire), "disabled while dragging")
	assert.False(t, p.Observe(outside, 4, true, today, fire))

	require.True(t, p.Observe(inBase, 4, true, today, fire))
	clock.Advance(time.Second)
	p.Observe(outside, 4, true, today, fire)
	clock.Advance(5 * time.Second)
	assert.Equal(t, 0, fired, "leaving the base window cancels")

	require.True(t, p.Observe(inBase, 4, true, today, fire))
	clock.Advance(2 * time.Second)
	assert.Equal(t, 1, fired)
}

// stubWindow records the eviction sequence.
type stubWindow struct {
	day      domain.Day
	offset   int
	removed  int
	restore  bool
	calls    []string
	views    []time.Time
	keptWeek func(time.Time) bool
}

func (w *stubWindow) ControllingDay() (domain.Day, bool) { return w.day, true }
func (w *stubWindow) Anchor(string) (int, bool) {
	w.calls = append(w.calls, "anchor")
	return w.offset, true
}
func (w *stubWindow) ViewWeeks() []time.Time { return w.views }
func (w *stubWindow) PruneTo(keep func(time.Time) bool, _ time.Time) int {
	w.calls = append(w.calls, "prune")
	w.keptWeek = keep
	return w.removed
}
func (w *stubWindow) SetRestoring(on bool) {
	if on {
		w.calls = append(w.calls, "restoring")
	} else {
		w.calls = append(w.calls, "restored")
	}
}
func (w *stubWindow) ReloadDays() { w.calls = append(w.calls, "reload") }
func (w *stubWindow) RestoreAnchor(string, int) bool {
	w.calls = append(w.calls, "scroll")
	return w.restore
}

func TestEvictionPolicy_EvictSequence(t *testing.T) {
	p := NewEvictionPolicy(newFakeClock(thursday), nil, time.Sunday, 4, 2*time.Second)
	w := &stubWindow{day: domain.NewDay(testutil.Date("2026-10-15")), offset: 40, removed: 2, restore: true}

	res := p.Evict(w, testutil.Date("2026-10-15"))

	assert.Equal(t, []string{"anchor", "prune", "restoring", "reload", "scroll", "restored"}, w.calls)
	assert.Equal(t, EvictionResult{Anchor: "2026-10-15", Offset: 40, Removed: 2, Restored: true}, res)
	assert.True(t, w.keptWeek(testutil.Date("2026-10-18")))
	assert.False(t, w.keptWeek(testutil.Date("2026-10-25")))
}

func TestEvictionPolicy_AnchorMissSkipsRestore(t *testing.T) {
	p := NewEvictionPolicy(newFakeClock(thursday), nil, time.Sunday, 4, 2*time.Second)
	w := &stubWindow{day: domain.NewDay(testutil.Date("2026-10-15")), removed: 1, restore: false}

	res := p.Evict(w, testutil.Date("2026-10-15"))

	assert.False(t, res.Restored)
	assert.Equal(t, "restored", w.calls[len(w.calls)-1])
}

func TestEvictionPolicy_NothingToPrune(t *testing.T) {
	p := NewEvictionPolicy(newFakeClock(thursday), nil, time.Sunday, 4, 2*time.Second)
	w := &stubWindow{day: domain.NewDay(testutil.Date("2026-10-15"))}

	res := p.Evict(w, testutil.Date("2026-10-15"))

	assert.Equal(t, 0, res.Removed)
	assert.Equal(t, []string{"anchor", "prune"}, w.calls)
}

func TestEvictionPolicy_KeepsWeeksUnderViewport(t *testing.T) {
	monday := testutil.Date("2026-10-12")
	p := NewEvictionPolicy(newFakeClock(monday), nil, time.Sunday, 4, 2*time.Second)
	w := &stubWindow{
		day:     domain.NewDay(testutil.Date("2026-10-16")),
		offset:  3,
		removed: 1,
		restore: true,
		views:   []time.Time{testutil.Date("2026-10-11"), testutil.Date("2026-10-18")},
	}

	p.Evict(w, monday)

	assert.True(t, w.keptWeek(testutil.Date("2026-10-11")))
	assert.True(t, w.keptWeek(testutil.Date("2026-10-18")), "the viewport still shows the start of next week")
	assert.False(t, w.keptWeek(testutil.Date("2026-10-25")))
}
