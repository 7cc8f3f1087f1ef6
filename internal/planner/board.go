package planner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alexanderramin/planboard/internal/domain"
)

// Config tunes the board. Widths are in the unit the caller renders with.
type Config struct {
	UserID         string
	FirstWeekday   time.Weekday
	ColumnWidth    int
	Overscan       int
	ViewportWidth  int
	EdgeThreshold  int
	WheelThreshold int
	// LookAheadWeekday is the weekday offset from the week start at which the
	// next week is prefetched and the base window gains its buffer.
	LookAheadWeekday int
	EvictionDelay    time.Duration
}

func DefaultConfig() Config {
	return Config{
		FirstWeekday:     time.Sunday,
		ColumnWidth:      336,
		Overscan:         2,
		ViewportWidth:    336 * 4,
		EdgeThreshold:    10,
		WheelThreshold:   10,
		LookAheadWeekday: 4,
		EvictionDelay:    2 * time.Second,
	}
}

// BoardView is an immutable snapshot for rendering. ByDay must be treated as
// read-only.
type BoardView struct {
	Days          []domain.Day
	Items         []VirtualItem
	ByDay         domain.TasksByDay
	Controlling   domain.Day
	Restoring     bool
	Dragging      bool
	DragActive    string
	LoadingPast   bool
	LoadingFuture bool
	TotalSize     int
	ScrollOffset  int
	ViewportWidth int
	Today         time.Time
}

// Tasks returns the column for day in view order.
func (v BoardView) Tasks(dayID string) []domain.EnrichedTask {
	return v.ByDay[dayID]
}

// Board owns the page store, virtualizer, range controller, eviction policy
// and drag engine, and serialises access to them. Fetch completions only
// bump the store revision; derived state is rebuilt on the next call.
type Board struct {
	cfg      Config
	svc      PlanService
	clock    Clock
	logger   *slog.Logger
	notify   func()
	runner   func(func())
	history  *History
	store    *PageStore
	ranges   *RangeController
	eviction *EvictionPolicy

	mu          sync.Mutex
	ctx         context.Context
	virt        *Virtualizer
	drag        DragEngine
	enricher    Enricher
	subtasks    []*domain.Subtask
	timeEntries []*domain.TimeEntry
	sideRev     uint64
	daysRev     uint64
	daysBuilt   bool
	scrolled    bool
	restoring   bool
	settling    bool
}

type BoardOption func(*Board)

func WithClock(c Clock) BoardOption {
	return func(b *Board) { b.clock = c }
}

func WithLogger(l *slog.Logger) BoardOption {
	return func(b *Board) { b.logger = l }
}

// WithNotify registers fn to run after background work changed the board.
// fn runs without the board lock held and may call View.
func WithNotify(fn func()) BoardOption {
	return func(b *Board) { b.notify = fn }
}

// WithFetchRunner replaces the goroutine launcher used for range fetches.
func WithFetchRunner(run func(func())) BoardOption {
	return func(b *Board) { b.runner = run }
}

func NewBoard(svc PlanService, cfg Config, opts ...BoardOption) *Board {
	b := &Board{
		cfg:     cfg,
		svc:     svc,
		clock:   SystemClock(),
		history: &History{},
		ctx:     context.Background(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = loggerOrDiscard(b.logger)

	b.store = NewPageStore(svc, cfg.UserID, cfg.FirstWeekday)
	rangeOpts := []RangeOption{WithSettleHook(func(Direction, MergeResult, error) { b.changed() })}
	if b.runner != nil {
		rangeOpts = append(rangeOpts, WithRunner(b.runner))
	}
	b.ranges = NewRangeController(b.store, b.logger, cfg.FirstWeekday, cfg.LookAheadWeekday, rangeOpts...)
	b.eviction = NewEvictionPolicy(b.clock, b.logger, cfg.FirstWeekday, cfg.LookAheadWeekday, cfg.EvictionDelay)
	b.virt = NewVirtualizer(VirtualizerOptions{
		ColumnWidth:    cfg.ColumnWidth,
		Overscan:       cfg.Overscan,
		ViewportWidth:  cfg.ViewportWidth,
		EdgeThreshold:  cfg.EdgeThreshold,
		WheelThreshold: cfg.WheelThreshold,
	})
	b.virt.OnControllingChange(b.controllingChanged)
	return b
}

func (b *Board) Store() *PageStore { return b.store }

func (b *Board) History() *History { return b.history }

func (b *Board) Today() time.Time { return domain.DateOf(b.clock.Now()) }

// Load resets the board to the week containing today and scrolls today to
// the start of the viewport. ctx bounds every fetch the board starts later.
func (b *Board) Load(ctx context.Context) error {
	b.mu.Lock()
	b.ctx = ctx
	b.scrolled = false
	b.mu.Unlock()

	if err := b.store.LoadInitial(ctx, b.Today()); err != nil {
		return fmt.Errorf("loading board: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.syncLocked()
	return nil
}

// SetSideTables replaces the subtasks and time entries used for enrichment.
func (b *Board) SetSideTables(subtasks []*domain.Subtask, entries []*domain.TimeEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subtasks = subtasks
	b.timeEntries = entries
	b.sideRev++
}

// Refresh re-fetches the weeks holding dates, e.g. after an edit made
// outside a drag.
func (b *Board) Refresh(ctx context.Context, dates ...time.Time) {
	seen := make(map[string]bool)
	for _, d := range dates {
		week := b.store.WeekOf(d)
		key := domain.DateKey(week)
		if seen[key] {
			continue
		}
		seen[key] = true
		if _, err := b.store.Refresh(ctx, week); err != nil {
			b.logger.ErrorContext(ctx, "refresh failed", "week", key, "error", err)
		}
	}
}

// Resize changes the viewport width.
func (b *Board) Resize(width int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.syncLocked()
	b.virt.SetViewportWidth(width)
}

// ScrollBy moves the viewport and expands the loaded range when it lands
// near either end.
func (b *Board) ScrollBy(delta int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.syncLocked()
	b.virt.ScrollBy(delta)
	b.checkEdgesLocked()
}

// ScrollTo moves the viewport to an absolute offset.
func (b *Board) ScrollTo(offset int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.syncLocked()
	b.virt.ScrollTo(offset)
	b.checkEdgesLocked()
}

// Wheel handles a wheel or trackpad event. It reports whether a range
// expansion was started.
func (b *Board) Wheel(dx, dy int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.syncLocked()
	started := false
	if dir, ok := b.virt.Wheel(dx, dy); ok {
		started = b.ranges.Request(b.ctx, dir)
	}
	delta := dx
	if delta == 0 {
		delta = dy
	}
	b.virt.ScrollBy(delta)
	return started
}

// JumpToToday scrolls today to the viewport start, reloading when today is
// no longer loaded.
func (b *Board) JumpToToday(ctx context.Context) error {
	b.mu.Lock()
	b.syncLocked()
	i, ok := b.virt.IndexOf(domain.DateKey(b.Today()))
	if ok {
		b.virt.ScrollToIndex(i, AlignStart)
		b.mu.Unlock()
		return nil
	}
	b.mu.Unlock()
	return b.Load(ctx)
}

// View syncs derived state and returns a snapshot.
func (b *Board) View() BoardView {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.syncLocked()

	today := b.Today()
	plan := b.enricher.Enrich(
		EnrichKey{StoreRev: b.store.Revision(), SideRev: b.sideRev, Today: today},
		b.store.Pages, b.subtasks, b.timeEntries,
	)

	v := BoardView{
		Days:          b.virt.Days(),
		Items:         b.virt.Items(),
		ByDay:         plan.ByDay,
		Restoring:     b.restoring,
		Dragging:      b.drag.State() == Dragging,
		LoadingPast:   b.ranges.InFlight(Past),
		LoadingFuture: b.ranges.InFlight(Future),
		TotalSize:     b.virt.TotalSize(),
		ScrollOffset:  b.virt.ScrollOffset(),
		ViewportWidth: b.virt.ViewportWidth(),
		Today:         today,
	}
	if layout := b.drag.Layout(); layout != nil {
		v.ByDay = layout.Clone()
		v.DragActive, _ = b.drag.Active()
	}
	if day, ok := b.virt.ControllingDay(); ok {
		v.Controlling = day
	}
	if b.settling {
		b.restoring = false
		b.settling = false
	}
	return v
}

// DragStart begins a gesture over the current enriched layout.
func (b *Board) DragStart(ev DragEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.syncLocked()
	plan := b.enricher.Enrich(
		EnrichKey{StoreRev: b.store.Revision(), SideRev: b.sideRev, Today: b.Today()},
		b.store.Pages, b.subtasks, b.timeEntries,
	)
	if err := b.drag.Start(plan.ByDay, ev); err != nil {
		return err
	}
	b.eviction.Cancel()
	return nil
}

// DragOver updates the optimistic layout. It reports whether it changed.
func (b *Board) DragOver(ev DragEvent) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.drag.Over(ev)
}

// DragCancel abandons the gesture without persisting anything.
func (b *Board) DragCancel() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.drag.Cancel()
	b.drag.Reset()
	b.reobserveLocked()
}

// DragEnd drops the active item. Changed columns are applied to the cache
// at once and persisted as one batch; on failure the cache reverts to its
// state before the drop and the error is returned. After a successful write
// the affected weeks are re-fetched.
func (b *Board) DragEnd(ctx context.Context, ev DragEvent) error {
	b.mu.Lock()
	source := b.drag.source
	updates, err := b.drag.Drop(ev)
	if err != nil {
		b.mu.Unlock()
		return err
	}
	b.drag.Reset()
	if len(updates) == 0 {
		b.reobserveLocked()
		b.mu.Unlock()
		return nil
	}
	snap := b.store.Snapshot()
	b.store.ApplyUpdates(updates)
	b.reobserveLocked()
	b.mu.Unlock()

	if err := b.svc.ApplyPlanUpdates(ctx, updates); err != nil {
		b.store.Restore(snap)
		b.logger.ErrorContext(ctx, "reorder failed, reverted", "updates", len(updates), "error", err)
		b.changed()
		return fmt.Errorf("persisting reorder: %w", err)
	}

	dates := make([]time.Time, 0, len(updates)+1)
	if d, err := domain.ParseDate(source); err == nil {
		dates = append(dates, d)
	}
	for _, u := range updates {
		dates = append(dates, u.PlanDate)
	}
	b.Refresh(ctx, dates...)
	b.changed()
	return nil
}

// Wait blocks until background fetches settle.
func (b *Board) Wait() {
	b.ranges.Wait()
}

// Close cancels a pending eviction.
func (b *Board) Close() {
	b.eviction.Cancel()
}

// EvictionPending reports whether an eviction timer is armed.
func (b *Board) EvictionPending() bool {
	return b.eviction.Pending()
}

func (b *Board) changed() {
	if b.notify != nil {
		b.notify()
	}
}

// syncLocked rebuilds the day list when the page set changed.
func (b *Board) syncLocked() {
	if b.daysBuilt && b.daysRev == b.store.Revision() {
		return
	}
	b.reloadDaysLocked()
	if !b.restoring {
		b.reobserveLocked()
	}
}

func (b *Board) reloadDaysLocked() {
	rev := b.store.Revision()
	b.virt.SetDays(GenerateDays(b.store.Pages()))
	b.daysRev = rev
	b.daysBuilt = true

	if !b.scrolled {
		if i, ok := b.virt.IndexOf(domain.DateKey(b.Today())); ok {
			b.scrolled = true
			b.virt.ScrollToIndex(i, AlignStart)
		}
	}
}

func (b *Board) checkEdgesLocked() {
	edges := b.virt.EdgeAt()
	if edges.AtEnd {
		b.ranges.Request(b.ctx, Future)
	}
	if edges.AtStart {
		b.ranges.Request(b.ctx, Past)
	}
}

// controllingChanged runs under the board lock whenever the virtualizer
// reports a new controlling day.
func (b *Board) controllingChanged(day domain.Day) {
	if b.restoring {
		return
	}
	b.ranges.LookAhead(b.ctx, day)
	b.observeLocked(day)
}

func (b *Board) reobserveLocked() {
	if day, ok := b.virt.ControllingDay(); ok {
		b.observeLocked(day)
	}
}

func (b *Board) observeLocked(day domain.Day) {
	b.eviction.Observe(day, b.store.Len(), b.drag.State() != Dragging, b.Today(), b.evict)
}

// evict runs on the eviction timer.
func (b *Board) evict() {
	b.mu.Lock()
	b.syncLocked()
	if b.drag.State() == Dragging {
		b.mu.Unlock()
		return
	}
	// The timer may have fired just before a scroll out of the base window.
	if day, ok := b.virt.ControllingDay(); !ok || !b.eviction.InBase(day.FullDate, b.Today()) {
		b.mu.Unlock()
		return
	}
	b.eviction.Evict(boardWindow{b}, b.Today())
	b.mu.Unlock()
	b.changed()
}

// boardWindow exposes the board to the eviction policy. Its methods assume
// the board lock is held.
type boardWindow struct {
	b *Board
}

func (w boardWindow) ControllingDay() (domain.Day, bool) { return w.b.virt.ControllingDay() }

func (w boardWindow) Anchor(dayID string) (int, bool) { return w.b.virt.Anchor(dayID) }

func (w boardWindow) ViewWeeks() []time.Time {
	var weeks []time.Time
	for _, d := range w.b.virt.DaysAround() {
		wk := w.b.store.WeekOf(d.FullDate)
		if len(weeks) == 0 || !weeks[len(weeks)-1].Equal(wk) {
			weeks = append(weeks, wk)
		}
	}
	return weeks
}

func (w boardWindow) PruneTo(keep func(time.Time) bool, anchorWeek time.Time) int {
	return w.b.store.Prune(keep, anchorWeek)
}

func (w boardWindow) SetRestoring(on bool) {
	if on {
		w.b.restoring = true
		w.b.settling = false
		return
	}
	// Cleared after the next view has observed it.
	w.b.settling = true
}

func (w boardWindow) ReloadDays() { w.b.reloadDaysLocked() }

func (w boardWindow) RestoreAnchor(dayID string, offset int) bool {
	return w.b.virt.RestoreAnchor(dayID, offset)
}
