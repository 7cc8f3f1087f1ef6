package domain

import "time"

type EnrichedSubtask struct {
	Subtask
	TimeSpent int
}

// EnrichedTask is a scheduled task with derived time totals. TimeSpent and
// TimePlanned are in seconds and cover the enrichment day only.
type EnrichedTask struct {
	Task
	EntryID     string
	PlanDate    time.Time
	Position    int
	TimeSpent   int
	TimePlanned int
	// PlannedTimeEditable is false once a subtask has planned time of its
	// own.
	PlannedTimeEditable bool
	Subtasks            []EnrichedSubtask
}

// TasksByDay maps a day id (YYYY-MM-DD) to its tasks ordered by position.
type TasksByDay map[string][]EnrichedTask

// Clone copies the map and every column slice.
func (m TasksByDay) Clone() TasksByDay {
	out := make(TasksByDay, len(m))
	for k, v := range m {
		col := make([]EnrichedTask, len(v))
		copy(col, v)
		out[k] = col
	}
	return out
}
