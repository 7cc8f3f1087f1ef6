package planner

import (
	"testing"

	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/alexanderramin/planboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoWeeks() []domain.Day {
	return GenerateDays([]domain.PlanPage{
		{WeekStart: testutil.Date("2026-10-11")},
		{WeekStart: testutil.Date("2026-10-18")},
	})
}

func newTestVirtualizer() *Virtualizer {
	return NewVirtualizer(VirtualizerOptions{
		ColumnWidth:    336,
		Overscan:       2,
		ViewportWidth:  1000,
		EdgeThreshold:  10,
		WheelThreshold: 10,
	})
}

func TestVirtualizer_ItemsIncludeOverscan(t *testing.T) {
	v := newTestVirtualizer()
	v.SetDays(twoWeeks())
	v.ScrollTo(336 * 5)

	items := v.Items()

	// Columns 5..7 are visible; two more on each side.
	require.NotEmpty(t, items)
	assert.Equal(t, 3, items[0].Index)
	assert.Equal(t, 9, items[len(items)-1].Index)
	assert.Equal(t, 336*3, items[0].Start)
	assert.Equal(t, 336*14, v.TotalSize())
}

func TestVirtualizer_ControllingDayByMidpoint(t *testing.T) {
	v := newTestVirtualizer()
	v.SetDays(twoWeeks())

	v.ScrollTo(336 + 167)
	day, ok := v.ControllingDay()
	require.True(t, ok)
	assert.Equal(t, "2026-10-12", day.ID)

	v.ScrollTo(336 + 168)
	day, _ = v.ControllingDay()
	assert.Equal(t, "2026-10-13", day.ID)
}

func TestVirtualizer_NotifiesOnlyOnIdentityChange(t *testing.T) {
	v := newTestVirtualizer()
	var seen []string
	v.OnControllingChange(func(d domain.Day) { seen = append(seen, d.ID) })
	v.SetDays(twoWeeks())

	for off := 0; off < 336; off += 20 {
		v.ScrollTo(off)
	}

	assert.Equal(t, []string{"2026-10-11", "2026-10-12"}, seen)
}

func TestVirtualizer_PrependKeepsViewStable(t *testing.T) {
	v := newTestVirtualizer()
	v.SetDays(GenerateDays([]domain.PlanPage{{WeekStart: testutil.Date("2026-10-11")}, {WeekStart: testutil.Date("2026-10-18")}}))
	v.ScrollTo(336*2 + 40)
	before, _ := v.ControllingDay()

	v.SetDays(GenerateDays([]domain.PlanPage{
		{WeekStart: testutil.Date("2026-10-04")},
		{WeekStart: testutil.Date("2026-10-11")},
		{WeekStart: testutil.Date("2026-10-18")},
	}))

	assert.Equal(t, 336*9+40, v.ScrollOffset())
	after, _ := v.ControllingDay()
	assert.Equal(t, before.ID, after.ID)
}

func TestVirtualizer_AnchorRoundTrip(t *testing.T) {
	v := newTestVirtualizer()
	v.SetDays(GenerateDays([]domain.PlanPage{
		{WeekStart: testutil.Date("2026-10-04")},
		{WeekStart: testutil.Date("2026-10-11")},
		{WeekStart: testutil.Date("2026-10-18")},
	}))
	v.ScrollTo(336*11 + 57)
	day, _ := v.ControllingDay()
	offset, ok := v.Anchor(day.ID)
	require.True(t, ok)
	assert.Equal(t, 57, offset)

	v.SetDays(twoWeeks())
	require.True(t, v.RestoreAnchor(day.ID, offset))

	i, _ := v.IndexOf(day.ID)
	assert.Equal(t, 336*i+57, v.ScrollOffset())
	assert.False(t, v.RestoreAnchor("1999-01-01", 0))
}

func TestVirtualizer_ScrollToIndexAlign(t *testing.T) {
	v := newTestVirtualizer()
	v.SetDays(twoWeeks())

	require.True(t, v.ScrollToIndex(4, AlignStart))
	assert.Equal(t, 336*4, v.ScrollOffset())

	require.True(t, v.ScrollToIndex(4, AlignCenter))
	assert.Equal(t, 336*4-(1000-336)/2, v.ScrollOffset())

	assert.False(t, v.ScrollToIndex(99, AlignStart))
}

func TestVirtualizer_ScrollClampsToContent(t *testing.T) {
	v := newTestVirtualizer()
	v.SetDays(twoWeeks())

	v.ScrollTo(-50)
	assert.Equal(t, 0, v.ScrollOffset())
	v.ScrollTo(1 << 20)
	assert.Equal(t, 336*14-1000, v.ScrollOffset())
}

func TestVirtualizer_MeasureOverridesWidth(t *testing.T) {
	v := newTestVirtualizer()
	v.SetDays(twoWeeks())

	v.Measure("2026-10-11", 500)

	assert.Equal(t, 336*13+500, v.TotalSize())
	v.ScrollTo(500)
	day, _ := v.ControllingDay()
	assert.Equal(t, "2026-10-12", day.ID)
}

func TestVirtualizer_EdgesAndWheel(t *testing.T) {
	v := newTestVirtualizer()
	v.SetDays(twoWeeks())

	v.ScrollTo(5)
	assert.Equal(t, Edges{AtStart: true}, v.EdgeAt())
	dir, ok := v.Wheel(0, -40)
	require.True(t, ok)
	assert.Equal(t, Past, dir)

	_, ok = v.Wheel(-9, 0)
	assert.False(t, ok, "below wheel threshold")
	_, ok = v.Wheel(0, 40)
	assert.False(t, ok, "moving away from the edge")

	v.ScrollTo(336*14 - 1000)
	assert.True(t, v.EdgeAt().AtEnd)
	dir, ok = v.Wheel(25, -100)
	require.True(t, ok, "horizontal delta wins")
	assert.Equal(t, Future, dir)

	v.ScrollTo(2000)
	assert.Equal(t, Edges{}, v.EdgeAt())
}
