package planner

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/alexanderramin/planboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		UserID:           testutil.TestUserID,
		FirstWeekday:     time.Sunday,
		ColumnWidth:      10,
		Overscan:         1,
		ViewportWidth:    30,
		EdgeThreshold:    1,
		WheelThreshold:   1,
		LookAheadWeekday: 4,
		EvictionDelay:    2 * time.Second,
	}
}

type boardHarness struct {
	board   *Board
	src     *fakePlans
	clock   *fakeClock
	notices atomic.Int32
}

func newHarness(t *testing.T, items ...domain.ScheduledTask) *boardHarness {
	t.Helper()
	return newHarnessWith(t, testConfig(), items...)
}

func newHarnessWith(t *testing.T, cfg Config, items ...domain.ScheduledTask) *boardHarness {
	t.Helper()
	return newHarnessAt(t, cfg, thursday, items...)
}

func newHarnessAt(t *testing.T, cfg Config, now time.Time, items ...domain.ScheduledTask) *boardHarness {
	t.Helper()
	h := &boardHarness{src: newFakePlans(items...), clock: newFakeClock(now)}
	h.board = NewBoard(h.src, cfg,
		WithClock(h.clock),
		WithFetchRunner(syncRun),
		WithNotify(func() { h.notices.Add(1) }),
	)
	require.NoError(t, h.board.Load(context.Background()))
	return h
}

func TestBoard_LoadScrollsToTodayAndLooksAhead(t *testing.T) {
	h := newHarness(t)

	v := h.board.View()

	assert.Equal(t, "2026-10-15", v.Controlling.ID)
	assert.Equal(t, 40, v.ScrollOffset)
	assert.Len(t, v.Days, 14, "Thursday prefetches the next week")
	assert.Equal(t, []string{"2026-10-11", "2026-10-18"}, h.src.fetches)
	assert.Equal(t, testutil.Date("2026-10-15"), v.Today)
	assert.False(t, h.board.EvictionPending())
}

func TestBoard_ScrollToStartPrependsWithoutJump(t *testing.T) {
	h := newHarness(t)
	h.board.View()

	h.board.ScrollTo(0)
	v := h.board.View()

	assert.Equal(t, "2026-10-04", v.Days[0].ID)
	assert.Equal(t, "2026-10-11", v.Controlling.ID)
	assert.Equal(t, 70, v.ScrollOffset)
}

func TestBoard_WheelAtEdgesExpands(t *testing.T) {
	cfg := testConfig()
	// The viewport shows every column, so both edges are reached at once.
	cfg.ViewportWidth = 1000
	h := newHarnessWith(t, cfg)
	require.Len(t, h.board.View().Days, 7)

	assert.False(t, h.board.Wheel(0, 0), "no movement")
	require.True(t, h.board.Wheel(0, 5))
	assert.Equal(t, "2026-10-24", lastDay(h.board.View().Days))

	require.True(t, h.board.Wheel(-5, 0))
	v := h.board.View()
	assert.Equal(t, "2026-10-04", v.Days[0].ID)
	assert.False(t, v.LoadingFuture)
	assert.False(t, v.LoadingPast)
}

func lastDay(days []domain.Day) string {
	return days[len(days)-1].ID
}

func TestBoard_EvictionRestoresAnchor(t *testing.T) {
	h := newHarness(t)
	h.board.View()

	// Load the previous week, then rest on Wednesday 2026-10-14, 3 cells in.
	h.board.ScrollTo(0)
	v := h.board.View()
	require.Equal(t, "2026-10-04", v.Days[0].ID)
	idx := indexOfDay(v.Days, "2026-10-14")
	h.board.ScrollTo(idx*10 + 3)
	require.Equal(t, "2026-10-14", h.board.View().Controlling.ID)
	require.True(t, h.board.EvictionPending())

	h.clock.Advance(2 * time.Second)

	v = h.board.View()
	assert.True(t, v.Restoring, "first view after eviction sees the restoring flag")
	assert.Equal(t, []string{"2026-10-11", "2026-10-18"}, keys(h.board.Store().Weeks()))
	assert.Equal(t, "2026-10-14", v.Controlling.ID)
	newIdx := indexOfDay(v.Days, "2026-10-14")
	assert.Equal(t, newIdx*10+3, v.ScrollOffset)
	assert.False(t, h.board.View().Restoring)
	assert.Positive(t, h.notices.Load())
}

func TestBoard_EvictionEarlyInWeekKeepsViewport(t *testing.T) {
	monday := time.Date(2026, 10, 12, 9, 30, 0, 0, time.UTC)
	h := newHarnessAt(t, testConfig(), monday)
	require.Len(t, h.board.View().Days, 7)

	// Reaching the end of the content loads what follows it.
	h.board.ScrollTo(40)
	h.board.View()
	h.board.ScrollTo(1000)
	h.board.View()
	require.GreaterOrEqual(t, h.board.Store().Len(), 3)

	h.board.ScrollTo(53)
	v := h.board.View()
	require.Equal(t, "2026-10-16", v.Controlling.ID)
	require.True(t, h.board.EvictionPending())

	h.clock.Advance(2 * time.Second)

	v = h.board.View()
	assert.Equal(t, []string{"2026-10-11", "2026-10-18"}, keys(h.board.Store().Weeks()))
	assert.Equal(t, "2026-10-16", v.Controlling.ID)
	assert.Equal(t, 53, v.ScrollOffset)

	fetches := h.src.fetchCount()
	h.board.ScrollTo(53)
	h.board.View()
	assert.Equal(t, fetches, h.src.fetchCount(), "restored view is not at an edge")
}

func TestBoard_LateEvictionOutsideBaseIsIgnored(t *testing.T) {
	h := newHarness(t)
	h.board.View()
	h.board.ScrollTo(0)
	h.board.View()
	h.board.ScrollTo(1000)
	h.board.View()
	loaded := h.board.Store().Len()
	require.Greater(t, loaded, 3)

	h.board.ScrollTo(2)
	require.Equal(t, "2026-10-04", h.board.View().Controlling.ID)
	// A timer that fired just before the scroll still reaches evict.
	h.board.evict()

	assert.Equal(t, loaded, h.board.Store().Len())
}

func TestBoard_EvictionWaitsForRest(t *testing.T) {
	h := newHarness(t)
	h.board.View()
	h.board.ScrollTo(0)
	h.board.View()
	require.True(t, h.board.EvictionPending())

	h.clock.Advance(time.Second)
	// Leaving the base window cancels the timer.
	h.board.ScrollTo(2)
	require.Equal(t, "2026-10-04", h.board.View().Controlling.ID)
	h.clock.Advance(5 * time.Second)

	assert.Len(t, h.board.Store().Weeks(), 3)
}

func TestBoard_NoEvictionWhileDragging(t *testing.T) {
	mon := scheduled("a", "2026-10-12", 0)
	h := newHarness(t, mon)
	h.board.View()
	h.board.ScrollTo(0)
	h.board.View()
	require.True(t, h.board.EvictionPending())

	require.NoError(t, h.board.DragStart(DragEvent{ActiveID: mon.Entry.ID, ActiveType: ActiveTask, SourceContainerID: "2026-10-12"}))
	h.clock.Advance(5 * time.Second)

	assert.Len(t, h.board.Store().Weeks(), 3)
	assert.True(t, h.board.View().Dragging)
}

func TestBoard_DragPersistsDensePositions(t *testing.T) {
	a0, a1 := scheduled("a0", "2026-10-12", 0), scheduled("a1", "2026-10-12", 1)
	b0 := scheduled("b0", "2026-10-13", 0)
	h := newHarness(t, a0, a1, b0)
	ctx := context.Background()

	require.NoError(t, h.board.DragStart(DragEvent{ActiveID: a0.Entry.ID, ActiveType: ActiveTask, SourceContainerID: "2026-10-12"}))
	over := DragEvent{ActiveID: a0.Entry.ID, OverContainerID: "2026-10-13", OverID: b0.Entry.ID}
	require.True(t, h.board.DragOver(over))
	assert.Equal(t, []string{"a0", "b0"}, titles(h.board.View().ByDay["2026-10-13"]))

	require.NoError(t, h.board.DragEnd(ctx, over))

	assert.Equal(t, map[string]int{"a1": 0}, h.src.positions("2026-10-12"))
	assert.Equal(t, map[string]int{"a0": 0, "b0": 1}, h.src.positions("2026-10-13"))
	v := h.board.View()
	assert.False(t, v.Dragging)
	assert.Equal(t, []string{"a1"}, titles(v.ByDay["2026-10-12"]))
	assert.Equal(t, []string{"a0", "b0"}, titles(v.ByDay["2026-10-13"]))
}

func TestBoard_ChainedMovesKeepPositionsDense(t *testing.T) {
	a, b, c := scheduled("a", "2026-10-12", 0), scheduled("b", "2026-10-12", 1), scheduled("c", "2026-10-12", 2)
	d := scheduled("d", "2026-10-13", 0)
	e := scheduled("e", "2026-10-19", 0)
	h := newHarness(t, a, b, c, d, e)
	ctx := context.Background()
	require.True(t, h.board.Store().HasWeek(testutil.Date("2026-10-18")))

	move := func(item domain.ScheduledTask, from, to, overID string) {
		t.Helper()
		require.NoError(t, h.board.DragStart(DragEvent{ActiveID: item.Entry.ID, ActiveType: ActiveTask, SourceContainerID: from}))
		over := DragEvent{ActiveID: item.Entry.ID, OverContainerID: to, OverID: overID}
		h.board.DragOver(over)
		require.NoError(t, h.board.DragEnd(ctx, over))
		for _, day := range []string{"2026-10-12", "2026-10-13", "2026-10-19"} {
			assertDense(t, h.src.positions(day), day)
		}
	}

	move(a, "2026-10-12", "2026-10-12", c.Entry.ID)
	assert.Equal(t, map[string]int{"b": 0, "c": 1, "a": 2}, h.src.positions("2026-10-12"))

	move(b, "2026-10-12", "2026-10-13", d.Entry.ID)
	move(b, "2026-10-13", "2026-10-12", c.Entry.ID)
	assert.Equal(t, map[string]int{"b": 0, "c": 1, "a": 2}, h.src.positions("2026-10-12"))
	assert.Equal(t, map[string]int{"d": 0}, h.src.positions("2026-10-13"))

	move(a, "2026-10-12", "2026-10-19", "2026-10-19")
	move(e, "2026-10-19", "2026-10-19", a.Entry.ID)
	move(d, "2026-10-13", "2026-10-19", a.Entry.ID)

	assert.Equal(t, map[string]int{"b": 0, "c": 1}, h.src.positions("2026-10-12"))
	assert.Empty(t, h.src.positions("2026-10-13"))
	assert.Equal(t, map[string]int{"d": 0, "a": 1, "e": 2}, h.src.positions("2026-10-19"))
	assert.Equal(t, []string{"d", "a", "e"}, titles(h.board.View().ByDay["2026-10-19"]))
}

func assertDense(t *testing.T, positions map[string]int, day string) {
	t.Helper()
	seen := make([]bool, len(positions))
	for title, pos := range positions {
		if !assert.Truef(t, pos >= 0 && pos < len(positions), "%s: %s at position %d", day, title, pos) {
			continue
		}
		assert.Falsef(t, seen[pos], "%s: position %d used twice", day, pos)
		seen[pos] = true
	}
}

func TestBoard_DragFailureRollsBack(t *testing.T) {
	a0, a1 := scheduled("a0", "2026-10-12", 0), scheduled("a1", "2026-10-12", 1)
	h := newHarness(t, a0, a1)
	before := h.board.View().ByDay
	h.src.applyErr = errors.New("write failed")

	require.NoError(t, h.board.DragStart(DragEvent{ActiveID: a1.Entry.ID, SourceContainerID: "2026-10-12"}))
	over := DragEvent{ActiveID: a1.Entry.ID, OverContainerID: "2026-10-14", OverID: "2026-10-14"}
	h.board.DragOver(over)
	err := h.board.DragEnd(context.Background(), over)

	require.Error(t, err)
	assert.Equal(t, before, h.board.View().ByDay)
}

func TestBoard_DragCancelDiscards(t *testing.T) {
	a0, a1 := scheduled("a0", "2026-10-12", 0), scheduled("a1", "2026-10-12", 1)
	h := newHarness(t, a0, a1)
	before := h.board.View().ByDay

	require.NoError(t, h.board.DragStart(DragEvent{ActiveID: a0.Entry.ID, SourceContainerID: "2026-10-12"}))
	h.board.DragOver(DragEvent{ActiveID: a0.Entry.ID, OverContainerID: "2026-10-12", OverID: a1.Entry.ID})
	h.board.DragCancel()

	assert.Equal(t, before, h.board.View().ByDay)
	assert.Empty(t, h.src.applied)
}

func TestBoard_SideTablesFeedEnrichment(t *testing.T) {
	x := scheduled("x", "2026-10-15", 0)
	h := newHarness(t, x)
	sub := testutil.NewTestSubtask(x.Task.ID, "s", testutil.WithSubtaskPlanned(600))

	h.board.SetSideTables([]*domain.Subtask{sub}, []*domain.TimeEntry{
		testutil.NewTestTimeEntry(x.Task.ID, &sub.ID, testutil.Date("2026-10-15"), 90),
	})

	col := h.board.View().ByDay["2026-10-15"]
	require.Len(t, col, 1)
	assert.Equal(t, 600, col[0].TimePlanned)
	assert.Equal(t, 90, col[0].TimeSpent)
}

func TestBoard_JumpToToday(t *testing.T) {
	h := newHarness(t)
	h.board.View()
	h.board.ScrollTo(0)
	h.board.View()

	require.NoError(t, h.board.JumpToToday(context.Background()))

	assert.Equal(t, "2026-10-15", h.board.View().Controlling.ID)
}

func indexOfDay(days []domain.Day, id string) int {
	for i, d := range days {
		if d.ID == id {
			return i
		}
	}
	return -1
}
