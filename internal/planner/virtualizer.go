package planner

import (
	"sort"

	"github.com/alexanderramin/planboard/internal/domain"
)

// Align positions a scrolled-to column inside the viewport.
type Align int

const (
	AlignStart Align = iota
	AlignCenter
	AlignEnd
)

// Direction of a range expansion.
type Direction int

const (
	Past Direction = iota
	Future
)

func (d Direction) String() string {
	if d == Past {
		return "past"
	}
	return "future"
}

// VirtualItem is one rendered column.
type VirtualItem struct {
	Index int
	Key   string
	Start int
	Size  int
}

// End is the offset just past the column.
func (it VirtualItem) End() int { return it.Start + it.Size }

// VirtualizerOptions sizes the scroll container. Widths are in pixels, or
// cells for a terminal.
type VirtualizerOptions struct {
	ColumnWidth    int
	Overscan       int
	ViewportWidth  int
	EdgeThreshold  int
	WheelThreshold int
}

// Edges reports whether the scroll position is within the edge threshold of
// either end of the content.
type Edges struct {
	AtStart bool
	AtEnd   bool
}

// Virtualizer maps the day list onto a horizontal viewport.
type Virtualizer struct {
	opts     VirtualizerOptions
	days     []domain.Day
	index    map[string]int
	measured map[string]int
	offsets  []int // offsets[i] is the start of column i; offsets[n] is the total size
	scroll   int

	controlling string
	onControl   func(domain.Day)
}

func NewVirtualizer(opts VirtualizerOptions) *Virtualizer {
	if opts.ColumnWidth <= 0 {
		opts.ColumnWidth = 1
	}
	if opts.Overscan < 0 {
		opts.Overscan = 0
	}
	return &Virtualizer{
		opts:     opts,
		index:    make(map[string]int),
		measured: make(map[string]int),
		offsets:  []int{0},
	}
}

// OnControllingChange registers fn to run whenever the controlling day
// changes identity.
func (v *Virtualizer) OnControllingChange(fn func(domain.Day)) {
	v.onControl = fn
}

// SetDays replaces the column list. When days were prepended, the scroll
// offset shifts by the inserted width so the visible columns stay put.
func (v *Virtualizer) SetDays(days []domain.Day) {
	var prevFirst string
	if len(v.days) > 0 {
		prevFirst = v.days[0].ID
	}

	v.days = days
	v.index = make(map[string]int, len(days))
	for i, d := range days {
		v.index[d.ID] = i
	}
	v.rebuild()

	if prevFirst != "" {
		if k, ok := v.index[prevFirst]; ok && k > 0 {
			v.scroll += v.offsets[k]
		}
	}
	v.scroll = v.clamp(v.scroll)
	v.updateControlling()
}

// Measure overrides the width of one column.
func (v *Virtualizer) Measure(dayID string, size int) {
	if size <= 0 {
		delete(v.measured, dayID)
	} else {
		v.measured[dayID] = size
	}
	v.rebuild()
	v.scroll = v.clamp(v.scroll)
	v.updateControlling()
}

// SetViewportWidth resizes the viewport.
func (v *Virtualizer) SetViewportWidth(w int) {
	v.opts.ViewportWidth = w
	v.scroll = v.clamp(v.scroll)
	v.updateControlling()
}

func (v *Virtualizer) ViewportWidth() int { return v.opts.ViewportWidth }

func (v *Virtualizer) rebuild() {
	v.offsets = make([]int, len(v.days)+1)
	for i, d := range v.days {
		v.offsets[i+1] = v.offsets[i] + v.sizeOf(d.ID)
	}
}

func (v *Virtualizer) sizeOf(id string) int {
	if s, ok := v.measured[id]; ok {
		return s
	}
	return v.opts.ColumnWidth
}

func (v *Virtualizer) clamp(offset int) int {
	maxScroll := v.TotalSize() - v.opts.ViewportWidth
	if offset > maxScroll {
		offset = maxScroll
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

// TotalSize is the width of all columns.
func (v *Virtualizer) TotalSize() int {
	return v.offsets[len(v.offsets)-1]
}

func (v *Virtualizer) ScrollOffset() int { return v.scroll }

func (v *Virtualizer) Days() []domain.Day { return v.days }

// ScrollTo moves the viewport to offset, clamped to the content.
func (v *Virtualizer) ScrollTo(offset int) {
	v.scroll = v.clamp(offset)
	v.updateControlling()
}

// ScrollBy moves the viewport by delta.
func (v *Virtualizer) ScrollBy(delta int) {
	v.ScrollTo(v.scroll + delta)
}

// ScrollToIndex brings column i into view with the given alignment.
func (v *Virtualizer) ScrollToIndex(i int, align Align) bool {
	if i < 0 || i >= len(v.days) {
		return false
	}
	start, size := v.offsets[i], v.offsets[i+1]-v.offsets[i]
	switch align {
	case AlignCenter:
		start -= (v.opts.ViewportWidth - size) / 2
	case AlignEnd:
		start -= v.opts.ViewportWidth - size
	}
	v.ScrollTo(start)
	return true
}

// IndexOf returns the column index of a day id.
func (v *Virtualizer) IndexOf(dayID string) (int, bool) {
	i, ok := v.index[dayID]
	return i, ok
}

// Items returns the visible columns plus the overscan margin on both sides.
func (v *Virtualizer) Items() []VirtualItem {
	n := len(v.days)
	if n == 0 {
		return nil
	}
	first := sort.Search(n, func(i int) bool { return v.offsets[i+1] > v.scroll })
	last := sort.Search(n, func(i int) bool { return v.offsets[i] >= v.scroll+v.opts.ViewportWidth }) - 1
	if last < first {
		last = first
	}
	first -= v.opts.Overscan
	last += v.opts.Overscan
	if first < 0 {
		first = 0
	}
	if last > n-1 {
		last = n - 1
	}

	items := make([]VirtualItem, 0, last-first+1)
	for i := first; i <= last; i++ {
		items = append(items, v.item(i))
	}
	return items
}

func (v *Virtualizer) item(i int) VirtualItem {
	return VirtualItem{
		Index: i,
		Key:   v.days[i].ID,
		Start: v.offsets[i],
		Size:  v.offsets[i+1] - v.offsets[i],
	}
}

// ControllingDay is the first column whose midpoint lies past the scroll
// offset.
func (v *Virtualizer) ControllingDay() (domain.Day, bool) {
	i, ok := v.controllingIndex()
	if !ok {
		return domain.Day{}, false
	}
	return v.days[i], true
}

func (v *Virtualizer) controllingIndex() (int, bool) {
	n := len(v.days)
	i := sort.Search(n, func(i int) bool {
		it := v.item(i)
		return it.Start+it.Size/2 > v.scroll
	})
	if i >= n {
		return 0, false
	}
	return i, true
}

func (v *Virtualizer) updateControlling() {
	day, ok := v.ControllingDay()
	if !ok {
		v.controlling = ""
		return
	}
	if day.ID == v.controlling {
		return
	}
	v.controlling = day.ID
	if v.onControl != nil {
		v.onControl(day)
	}
}

// Anchor returns the distance from the start of dayID's column to the scroll
// offset.
func (v *Virtualizer) Anchor(dayID string) (int, bool) {
	i, ok := v.index[dayID]
	if !ok {
		return 0, false
	}
	return v.scroll - v.offsets[i], true
}

// RestoreAnchor scrolls so that dayID's column sits offset pixels before the
// viewport start. It reports false when the day is not loaded.
func (v *Virtualizer) RestoreAnchor(dayID string, offset int) bool {
	i, ok := v.index[dayID]
	if !ok {
		return false
	}
	v.ScrollTo(v.offsets[i] + offset)
	return true
}

// DaysAround returns the columns overlapping the viewport widened by the
// edge threshold on both sides.
func (v *Virtualizer) DaysAround() []domain.Day {
	n := len(v.days)
	from := v.scroll - v.opts.EdgeThreshold
	to := v.scroll + v.opts.ViewportWidth + v.opts.EdgeThreshold
	first := sort.Search(n, func(i int) bool { return v.offsets[i+1] > from })
	last := sort.Search(n, func(i int) bool { return v.offsets[i] > to }) - 1
	if first > last {
		return nil
	}
	return v.days[first : last+1]
}

// EdgeAt reports proximity to the content ends.
func (v *Virtualizer) EdgeAt() Edges {
	if len(v.days) == 0 {
		return Edges{}
	}
	return Edges{
		AtStart: v.scroll <= v.opts.EdgeThreshold,
		AtEnd:   v.scroll+v.opts.ViewportWidth >= v.TotalSize()-v.opts.EdgeThreshold,
	}
}

// Wheel interprets a wheel or trackpad delta. Horizontal delta wins when
// non-zero. A delta below the wheel threshold, or one pointing away from the
// edge the viewport sits on, requests nothing.
func (v *Virtualizer) Wheel(dx, dy int) (Direction, bool) {
	delta := dx
	if delta == 0 {
		delta = dy
	}
	if abs(delta) < v.opts.WheelThreshold {
		return 0, false
	}
	edges := v.EdgeAt()
	switch {
	case delta > 0 && edges.AtEnd:
		return Future, true
	case delta < 0 && edges.AtStart:
		return Past, true
	}
	return 0, false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
