package planner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/alexanderramin/planboard/internal/domain"
)

// ErrNoPages is returned by relative fetches on an empty store.
var ErrNoPages = errors.New("no pages loaded")

// MergeResult describes what happened to a fetched week.
type MergeResult int

const (
	MergeInserted MergeResult = iota
	MergeReplaced
	MergeDiscarded
)

func (r MergeResult) String() string {
	switch r {
	case MergeInserted:
		return "inserted"
	case MergeReplaced:
		return "replaced"
	default:
		return "discarded"
	}
}

type mergeMode int

const (
	mergeAdjacent mergeMode = iota // insert at either edge, or replace in place
	mergeExisting                  // replace only
)

// pageSlot pairs a page with the sequence number of the operation that last
// wrote it.
type pageSlot struct {
	page    domain.PlanPage
	version uint64
}

// PageStore holds the loaded weeks in ascending order. The weeks are always
// contiguous. Fetches run outside the lock and are merged on completion, so
// results may arrive in any order.
type PageStore struct {
	src    PlanSource
	userID string
	first  time.Weekday

	mu      sync.Mutex
	pages   []pageSlot
	seq     uint64
	resetAt uint64
	rev     uint64
}

func NewPageStore(src PlanSource, userID string, firstWeekday time.Weekday) *PageStore {
	return &PageStore{src: src, userID: userID, first: firstWeekday}
}

// Snapshot is an opaque copy of the store contents.
type Snapshot struct {
	pages []pageSlot
}

// WeekOf returns the start of the week containing t.
func (s *PageStore) WeekOf(t time.Time) time.Time {
	return domain.WeekStart(t, s.first)
}

// LoadInitial discards every page and loads the week containing focus.
// Fetches issued before the reset are discarded when they complete.
func (s *PageStore) LoadInitial(ctx context.Context, focus time.Time) error {
	s.mu.Lock()
	s.seq++
	s.resetAt = s.seq
	s.pages = nil
	s.rev++
	s.mu.Unlock()

	_, err := s.fetch(ctx, s.WeekOf(focus), mergeAdjacent)
	return err
}

// FetchForward loads the week after the last loaded page.
func (s *PageStore) FetchForward(ctx context.Context) (MergeResult, error) {
	return s.fetchFrom(ctx, s.nextWeekLocked)
}

// FetchBackward loads the week before the first loaded page.
func (s *PageStore) FetchBackward(ctx context.Context) (MergeResult, error) {
	return s.fetchFrom(ctx, s.prevWeekLocked)
}

// Refresh re-fetches a loaded week. Weeks that are no longer loaded are left
// alone.
func (s *PageStore) Refresh(ctx context.Context, week time.Time) (MergeResult, error) {
	return s.fetch(ctx, s.WeekOf(week), mergeExisting)
}

// fetchFrom reads the cursor and takes the sequence number in one critical
// section.
func (s *PageStore) fetchFrom(ctx context.Context, cursor func() (time.Time, bool)) (MergeResult, error) {
	s.mu.Lock()
	week, ok := cursor()
	if !ok {
		s.mu.Unlock()
		return MergeDiscarded, ErrNoPages
	}
	s.seq++
	issued := s.seq
	s.mu.Unlock()
	return s.load(ctx, week, issued, mergeAdjacent)
}

func (s *PageStore) fetch(ctx context.Context, week time.Time, mode mergeMode) (MergeResult, error) {
	s.mu.Lock()
	s.seq++
	issued := s.seq
	s.mu.Unlock()
	return s.load(ctx, week, issued, mode)
}

func (s *PageStore) load(ctx context.Context, week time.Time, issued uint64, mode mergeMode) (MergeResult, error) {
	items, err := s.src.FetchPlanRange(ctx, s.userID, week, domain.AddDays(week, domain.DaysPerWeek-1))
	if err != nil {
		return MergeDiscarded, fmt.Errorf("fetching week %s: %w", domain.DateKey(week), err)
	}
	return s.merge(domain.PlanPage{WeekStart: week, Items: items}, issued, mode), nil
}

// merge upserts page keyed on its week. A page written by an operation newer
// than issued wins.
func (s *PageStore) merge(page domain.PlanPage, issued uint64, mode mergeMode) MergeResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if issued < s.resetAt {
		return MergeDiscarded
	}
	page = page.Clone()
	page.WeekStart = domain.DateOf(page.WeekStart)

	if i, ok := s.indexLocked(page.WeekStart); ok {
		if s.pages[i].version > issued {
			return MergeDiscarded
		}
		s.pages[i] = pageSlot{page: page, version: issued}
		s.rev++
		return MergeReplaced
	}
	if mode == mergeExisting {
		return MergeDiscarded
	}

	slot := pageSlot{page: page, version: issued}
	switch {
	case len(s.pages) == 0:
		s.pages = []pageSlot{slot}
	case page.WeekStart.Equal(domain.AddDays(s.pages[0].page.WeekStart, -domain.DaysPerWeek)):
		s.pages = append([]pageSlot{slot}, s.pages...)
	case page.WeekStart.Equal(domain.AddDays(s.pages[len(s.pages)-1].page.WeekStart, domain.DaysPerWeek)):
		s.pages = append(s.pages, slot)
	default:
		// The window moved while the fetch was in flight.
		return MergeDiscarded
	}
	s.rev++
	return MergeInserted
}

// NextWeekStart is the week after the last loaded page.
func (s *PageStore) NextWeekStart() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextWeekLocked()
}

// PrevWeekStart is the week before the first loaded page.
func (s *PageStore) PrevWeekStart() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prevWeekLocked()
}

func (s *PageStore) nextWeekLocked() (time.Time, bool) {
	if len(s.pages) == 0 {
		return time.Time{}, false
	}
	return domain.AddDays(s.pages[len(s.pages)-1].page.WeekStart, domain.DaysPerWeek), true
}

func (s *PageStore) prevWeekLocked() (time.Time, bool) {
	if len(s.pages) == 0 {
		return time.Time{}, false
	}
	return domain.AddDays(s.pages[0].page.WeekStart, -domain.DaysPerWeek), true
}

// Prune drops pages failing keep, working inward from both ends and stopping
// at the first page that passes or that holds anchorWeek. Interior pages are
// never removed. A prune that would empty the store is refused. It returns
// the number of pages removed.
func (s *PageStore) Prune(keep func(weekStart time.Time) bool, anchorWeek time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	anchorWeek = domain.DateOf(anchorWeek)
	drop := func(p pageSlot) bool {
		return !keep(p.page.WeekStart) && !p.page.WeekStart.Equal(anchorWeek)
	}
	lo, hi := 0, len(s.pages)-1
	for lo <= hi && drop(s.pages[lo]) {
		lo++
	}
	for hi >= lo && drop(s.pages[hi]) {
		hi--
	}
	if lo > hi {
		return 0
	}
	removed := len(s.pages) - (hi - lo + 1)
	if removed == 0 {
		return 0
	}
	kept := make([]pageSlot, hi-lo+1)
	copy(kept, s.pages[lo:hi+1])
	s.pages = kept
	s.rev++
	return removed
}

// ApplyUpdates rewrites cached entries in place of a server round trip.
// Entries whose new date falls in a week that is not loaded leave the cache.
func (s *PageStore) ApplyUpdates(updates []domain.PlanUpdate) {
	if len(updates) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	byID := make(map[string]domain.PlanUpdate, len(updates))
	for _, u := range updates {
		byID[u.EntryID] = u
	}

	s.seq++
	version := s.seq
	pages := make([]pageSlot, len(s.pages))
	for i, p := range s.pages {
		pages[i] = pageSlot{page: p.page.Clone(), version: p.version}
	}

	var moved []domain.ScheduledTask
	touched := make(map[int]bool)
	for i := range pages {
		items := pages[i].page.Items[:0]
		for _, it := range pages[i].page.Items {
			u, ok := byID[it.Entry.ID]
			if !ok {
				items = append(items, it)
				continue
			}
			touched[i] = true
			it.Entry.Position = u.Position
			if !u.PlanDate.IsZero() {
				it.Entry.PlanDate = domain.DateOf(u.PlanDate)
			}
			if domain.WeekStart(it.Entry.PlanDate, s.first).Equal(pages[i].page.WeekStart) {
				items = append(items, it)
			} else {
				moved = append(moved, it)
			}
		}
		pages[i].page.Items = items
	}
	for _, it := range moved {
		week := domain.WeekStart(it.Entry.PlanDate, s.first)
		for i := range pages {
			if pages[i].page.WeekStart.Equal(week) {
				pages[i].page.Items = append(pages[i].page.Items, it)
				touched[i] = true
				break
			}
		}
	}
	for i := range touched {
		sortItems(pages[i].page.Items)
		pages[i].version = version
	}
	s.pages = pages
	s.rev++
}

// Snapshot copies the current pages for a later Restore.
func (s *PageStore) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]pageSlot, len(s.pages))
	for i, p := range s.pages {
		out[i] = pageSlot{page: p.page.Clone(), version: p.version}
	}
	return Snapshot{pages: out}
}

// Restore reinstates a snapshot. Restored pages count as a fresh write, so
// fetches issued before the restore cannot overwrite them.
func (s *PageStore) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	pages := make([]pageSlot, len(snap.pages))
	for i, p := range snap.pages {
		pages[i] = pageSlot{page: p.page.Clone(), version: s.seq}
	}
	s.pages = pages
	s.rev++
}

// Pages returns copies of the loaded pages in week order.
func (s *PageStore) Pages() []domain.PlanPage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.PlanPage, len(s.pages))
	for i, p := range s.pages {
		out[i] = p.page.Clone()
	}
	return out
}

// Weeks returns the loaded week starts in order.
func (s *PageStore) Weeks() []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Time, len(s.pages))
	for i, p := range s.pages {
		out[i] = p.page.WeekStart
	}
	return out
}

func (s *PageStore) HasWeek(week time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.indexLocked(domain.DateOf(week))
	return ok
}

func (s *PageStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pages)
}

// Revision increases on every change to the page set or its contents.
func (s *PageStore) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rev
}

func (s *PageStore) indexLocked(week time.Time) (int, bool) {
	i := sort.Search(len(s.pages), func(i int) bool {
		return !s.pages[i].page.WeekStart.Before(week)
	})
	if i < len(s.pages) && s.pages[i].page.WeekStart.Equal(week) {
		return i, true
	}
	return 0, false
}

func sortItems(items []domain.ScheduledTask) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Entry, items[j].Entry
		if !a.PlanDate.Equal(b.PlanDate) {
			return a.PlanDate.Before(b.PlanDate)
		}
		return a.Position < b.Position
	})
}
