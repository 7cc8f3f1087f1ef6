package domain

import "time"

// PlanEntry binds a task to a calendar date. Position is the dense zero-based
// rank of the entry among all entries sharing PlanDate.
type PlanEntry struct {
	ID       string
	UserID   string
	TaskID   string
	PlanDate time.Time
	Position int
}

// ScheduledTask is a plan entry joined with the task it schedules.
type ScheduledTask struct {
	Entry PlanEntry
	Task  Task
}

// PlanPage is one week of scheduled tasks, the unit of pagination and eviction.
type PlanPage struct {
	WeekStart time.Time
	Items     []ScheduledTask
}

// Clone returns a deep enough copy of the page that callers may reorder or
// rewrite items without affecting the original.
func (p PlanPage) Clone() PlanPage {
	items := make([]ScheduledTask, len(p.Items))
	copy(items, p.Items)
	return PlanPage{WeekStart: p.WeekStart, Items: items}
}

// PlanUpdate is one position/date reassignment produced by a reorder.
type PlanUpdate struct {
	EntryID  string
	Position int
	PlanDate time.Time
}

// PlanEntryPatch lists the plan entry fields an update may change.
type PlanEntryPatch struct {
	Position *int
	PlanDate *time.Time
}
