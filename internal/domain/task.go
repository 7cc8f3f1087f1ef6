package domain

import "time"

type Project struct {
	ID        string
	UserID    string
	Name      string
	Color     string
	Position  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Task struct {
	ID                 string
	UserID             string
	ProjectID          *string
	Title              string
	Description        string
	IsCompleted        bool
	Highlighted        bool
	PlannedTimeSeconds int
	DueDate            *time.Time
	StartTime          *string // HH:MM on the planned day
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type Subtask struct {
	ID                 string
	UserID             string
	TaskID             string
	Title              string
	IsCompleted        bool
	PlannedTimeSeconds int
	Position           int
	CreatedAt          time.Time
}

// TimeEntry records seconds spent on a task, or on one of its subtasks, for a
// single day. (TaskID, SubtaskID, Date) is unique.
type TimeEntry struct {
	ID               string
	UserID           string
	TaskID           string
	SubtaskID        *string
	Date             time.Time
	TimeSpentSeconds int
	UpdatedAt        time.Time
}

// IsDirect reports whether the entry is booked against the task itself rather
// than a subtask.
func (e TimeEntry) IsDirect() bool {
	return e.SubtaskID == nil
}

// PlannedFromSubtasks reports whether any subtask carries planned time. The
// parent's own planned time is then not editable.
func PlannedFromSubtasks(subs []*Subtask) bool {
	for _, s := range subs {
		if s.PlannedTimeSeconds > 0 {
			return true
		}
	}
	return false
}

// TaskPatch lists the task fields an update may change. Nil fields are left
// untouched.
type TaskPatch struct {
	ProjectID          **string
	Title              *string
	Description        *string
	IsCompleted        *bool
	Highlighted        *bool
	PlannedTimeSeconds *int
	DueDate            **time.Time
	StartTime          **string
}

// Apply copies the non-nil patch fields onto t.
func (p TaskPatch) Apply(t *Task) {
	if p.ProjectID != nil {
		t.ProjectID = *p.ProjectID
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.IsCompleted != nil {
		t.IsCompleted = *p.IsCompleted
	}
	if p.Highlighted != nil {
		t.Highlighted = *p.Highlighted
	}
	if p.PlannedTimeSeconds != nil {
		t.PlannedTimeSeconds = *p.PlannedTimeSeconds
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.StartTime != nil {
		t.StartTime = *p.StartTime
	}
}
