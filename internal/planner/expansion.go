package planner

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/alexanderramin/planboard/internal/domain"
)

// RangeController turns edge and look-ahead signals into page fetches. At
// most one fetch per direction is in flight; requests made meanwhile are
// dropped.
type RangeController struct {
	store     *PageStore
	logger    *slog.Logger
	first     time.Weekday
	threshold int

	// run starts a fetch. It defaults to a new goroutine.
	run      func(func())
	onSettle func(dir Direction, res MergeResult, err error)

	mu        sync.Mutex
	inFlight  [2]bool
	triggered map[string]bool
	wg        sync.WaitGroup
}

type RangeOption func(*RangeController)

// WithRunner replaces the goroutine launcher, e.g. with a synchronous one.
func WithRunner(run func(func())) RangeOption {
	return func(c *RangeController) { c.run = run }
}

// WithSettleHook registers fn to run after every fetch completes.
func WithSettleHook(fn func(dir Direction, res MergeResult, err error)) RangeOption {
	return func(c *RangeController) { c.onSettle = fn }
}

func NewRangeController(store *PageStore, logger *slog.Logger, first time.Weekday, lookAheadOffset int, opts ...RangeOption) *RangeController {
	c := &RangeController{
		store:     store,
		logger:    loggerOrDiscard(logger),
		first:     first,
		threshold: lookAheadOffset,
		run:       func(fn func()) { go fn() },
		triggered: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request starts a fetch in dir unless one is already running. It reports
// whether a fetch was started.
func (c *RangeController) Request(ctx context.Context, dir Direction) bool {
	c.mu.Lock()
	if c.inFlight[dir] {
		c.mu.Unlock()
		return false
	}
	c.inFlight[dir] = true
	c.mu.Unlock()

	c.wg.Add(1)
	c.run(func() {
		defer c.wg.Done()
		var (
			res MergeResult
			err error
		)
		if dir == Future {
			res, err = c.store.FetchForward(ctx)
		} else {
			res, err = c.store.FetchBackward(ctx)
		}

		c.mu.Lock()
		c.inFlight[dir] = false
		c.mu.Unlock()

		if err != nil {
			c.logger.ErrorContext(ctx, "range expansion failed", "direction", dir.String(), "error", err)
		} else {
			c.logger.DebugContext(ctx, "range expanded", "direction", dir.String(), "result", res.String())
		}
		if c.onSettle != nil {
			c.onSettle(dir, res, err)
		}
	})
	return true
}

// InFlight reports whether a fetch in dir has not settled.
func (c *RangeController) InFlight(dir Direction) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight[dir]
}

// LookAhead prefetches the following week once the controlling day reaches
// the threshold weekday. Each week triggers at most once.
func (c *RangeController) LookAhead(ctx context.Context, day domain.Day) bool {
	if domain.WeekdayOffset(day.FullDate, c.first) < c.threshold {
		return false
	}
	week := domain.WeekStart(day.FullDate, c.first)
	if c.store.HasWeek(domain.AddDays(week, domain.DaysPerWeek)) {
		return false
	}

	key := domain.DateKey(week)
	c.mu.Lock()
	if c.triggered[key] || c.inFlight[Future] {
		c.mu.Unlock()
		return false
	}
	c.triggered[key] = true
	c.mu.Unlock()

	c.logger.DebugContext(ctx, "look-ahead triggered", "week", key, "day", day.ID)
	return c.Request(ctx, Future)
}

// Wait blocks until every started fetch has settled.
func (c *RangeController) Wait() {
	c.wg.Wait()
}

func loggerOrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l
}
