package planner

import (
	"sort"
	"time"

	"github.com/alexanderramin/planboard/internal/domain"
)

// EnrichedPlan is the read model consumed by the board.
type EnrichedPlan struct {
	Tasks []domain.EnrichedTask
	ByDay domain.TasksByDay
}

type timeKey struct {
	taskID    string
	subtaskID string
}

// Enrich joins the loaded pages with subtasks and today's time entries.
// A task's spent time is its direct entry plus its subtasks' entries for
// today. Planned time comes from the subtasks when the task has any.
func Enrich(pages []domain.PlanPage, subtasks []*domain.Subtask, entries []*domain.TimeEntry, today time.Time) EnrichedPlan {
	today = domain.DateOf(today)

	subsByTask := make(map[string][]*domain.Subtask)
	for _, st := range subtasks {
		subsByTask[st.TaskID] = append(subsByTask[st.TaskID], st)
	}
	for _, list := range subsByTask {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Position < list[j].Position })
	}

	spent := make(map[timeKey]int)
	for _, e := range entries {
		if !domain.DateOf(e.Date).Equal(today) {
			continue
		}
		k := timeKey{taskID: e.TaskID}
		if e.SubtaskID != nil {
			k.subtaskID = *e.SubtaskID
		}
		spent[k] += e.TimeSpentSeconds
	}

	out := EnrichedPlan{ByDay: make(domain.TasksByDay)}
	for _, page := range pages {
		for _, item := range page.Items {
			et := enrichTask(item, subsByTask[item.Task.ID], spent)
			out.Tasks = append(out.Tasks, et)
			key := domain.DateKey(et.PlanDate)
			out.ByDay[key] = append(out.ByDay[key], et)
		}
	}
	for _, col := range out.ByDay {
		sort.SliceStable(col, func(i, j int) bool { return col[i].Position < col[j].Position })
	}
	return out
}

func enrichTask(item domain.ScheduledTask, subs []*domain.Subtask, spent map[timeKey]int) domain.EnrichedTask {
	et := domain.EnrichedTask{
		Task:                item.Task,
		EntryID:             item.Entry.ID,
		PlanDate:            domain.DateOf(item.Entry.PlanDate),
		Position:            item.Entry.Position,
		TimeSpent:           spent[timeKey{taskID: item.Task.ID}],
		TimePlanned:         item.Task.PlannedTimeSeconds,
		PlannedTimeEditable: !domain.PlannedFromSubtasks(subs),
	}
	if len(subs) == 0 {
		return et
	}
	planned := 0
	et.Subtasks = make([]domain.EnrichedSubtask, 0, len(subs))
	for _, st := range subs {
		s := spent[timeKey{taskID: item.Task.ID, subtaskID: st.ID}]
		et.Subtasks = append(et.Subtasks, domain.EnrichedSubtask{Subtask: *st, TimeSpent: s})
		et.TimeSpent += s
		planned += st.PlannedTimeSeconds
	}
	// Subtasks without planned time leave the parent's own figure in charge.
	if !et.PlannedTimeEditable {
		et.TimePlanned = planned
	}
	return et
}

// EnrichKey identifies the inputs of an enrichment pass.
type EnrichKey struct {
	StoreRev uint64
	SideRev  uint64
	Today    time.Time
}

// Enricher memoizes Enrich on identical inputs.
type Enricher struct {
	key   EnrichKey
	valid bool
	plan  EnrichedPlan
}

// Enrich returns the cached plan when key matches the previous call.
func (e *Enricher) Enrich(key EnrichKey, pages func() []domain.PlanPage, subtasks []*domain.Subtask, entries []*domain.TimeEntry) EnrichedPlan {
	key.Today = domain.DateOf(key.Today)
	if e.valid && e.key.StoreRev == key.StoreRev && e.key.SideRev == key.SideRev && e.key.Today.Equal(key.Today) {
		return e.plan
	}
	e.plan = Enrich(pages(), subtasks, entries, key.Today)
	e.key = key
	e.valid = true
	return e.plan
}

// Invalidate forces the next call to recompute.
func (e *Enricher) Invalidate() {
	e.valid = false
}
