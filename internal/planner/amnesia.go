package planner

import (
	"log/slog"
	"time"

	"github.com/alexanderramin/planboard/internal/domain"
)

// BaseBufferDays extends the base window past the current week when today is
// late in the week.
const BaseBufferDays = 5

// Window is the view surface eviction operates on.
type Window interface {
	ControllingDay() (domain.Day, bool)
	Anchor(dayID string) (int, bool)
	// ViewWeeks lists the weeks the current viewport and its edge margins
	// overlap.
	ViewWeeks() []time.Time
	PruneTo(keep func(weekStart time.Time) bool, anchorWeek time.Time) int
	SetRestoring(bool)
	ReloadDays()
	RestoreAnchor(dayID string, offset int) bool
}

// EvictionResult summarises one eviction pass.
type EvictionResult struct {
	Anchor   string
	Offset   int
	Removed  int
	Restored bool
}

// EvictionPolicy drops weeks outside the base window once the view has
// rested inside it for Delay.
type EvictionPolicy struct {
	first     time.Weekday
	threshold int
	delay     time.Duration
	timer     *Deferred
	logger    *slog.Logger
}

func NewEvictionPolicy(clock Clock, logger *slog.Logger, first time.Weekday, lookAheadOffset int, delay time.Duration) *EvictionPolicy {
	return &EvictionPolicy{
		first:     first,
		threshold: lookAheadOffset,
		delay:     delay,
		timer:     NewDeferred(clock),
		logger:    loggerOrDiscard(logger),
	}
}

// BaseDays is the current week, plus BaseBufferDays when today's weekday
// offset is at or past the look-ahead threshold.
func (p *EvictionPolicy) BaseDays(today time.Time) []time.Time {
	start := domain.WeekStart(today, p.first)
	n := domain.DaysPerWeek
	if domain.WeekdayOffset(today, p.first) >= p.threshold {
		n += BaseBufferDays
	}
	days := make([]time.Time, n)
	for i := range days {
		days[i] = domain.AddDays(start, i)
	}
	return days
}

// BaseWeeks lists the distinct week starts covered by BaseDays.
func (p *EvictionPolicy) BaseWeeks(today time.Time) []time.Time {
	var weeks []time.Time
	for _, d := range p.BaseDays(today) {
		w := domain.WeekStart(d, p.first)
		if len(weeks) == 0 || !weeks[len(weeks)-1].Equal(w) {
			weeks = append(weeks, w)
		}
	}
	return weeks
}

// InBase reports whether day lies in the base window.
func (p *EvictionPolicy) InBase(day, today time.Time) bool {
	days := p.BaseDays(today)
	d := domain.DateOf(day)
	return !d.Before(days[0]) && !d.After(days[len(days)-1])
}

// Observe runs on every controlling-day change. Any pending eviction is
// cancelled; a new one is armed when enabled, day is inside the base window
// and more weeks are loaded than the window needs. It reports whether fire
// was armed.
func (p *EvictionPolicy) Observe(day domain.Day, loadedWeeks int, enabled bool, today time.Time, fire func()) bool {
	p.timer.Cancel()
	if !enabled || !p.InBase(day.FullDate, today) || loadedWeeks <= len(p.BaseWeeks(today)) {
		return false
	}
	p.timer.Arm(p.delay, fire)
	return true
}

func (p *EvictionPolicy) Cancel() { p.timer.Cancel() }

func (p *EvictionPolicy) Pending() bool { return p.timer.Pending() }

// Evict prunes w to the base weeks around the controlling day and restores
// the scroll position relative to it. Weeks the viewport still overlaps are
// kept so the restored offset is reachable and no edge fetch follows. A
// missing anchor after the prune skips restoration.
func (p *EvictionPolicy) Evict(w Window, today time.Time) EvictionResult {
	day, ok := w.ControllingDay()
	if !ok {
		return EvictionResult{}
	}
	offset, _ := w.Anchor(day.ID)
	res := EvictionResult{Anchor: day.ID, Offset: offset}

	base := make(map[string]bool)
	for _, wk := range p.BaseWeeks(today) {
		base[domain.DateKey(wk)] = true
	}
	for _, wk := range w.ViewWeeks() {
		base[domain.DateKey(domain.WeekStart(wk, p.first))] = true
	}
	keep := func(weekStart time.Time) bool { return base[domain.DateKey(weekStart)] }

	res.Removed = w.PruneTo(keep, domain.WeekStart(day.FullDate, p.first))
	if res.Removed == 0 {
		return res
	}

	w.SetRestoring(true)
	w.ReloadDays()
	res.Restored = w.RestoreAnchor(day.ID, offset)
	w.SetRestoring(false)

	if !res.Restored {
		p.logger.Warn("eviction anchor missing", "anchor", day.ID)
	}
	p.logger.Info("evicted weeks", "removed", res.Removed, "anchor", day.ID, "offset", offset)
	return res
}
