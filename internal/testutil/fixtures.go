package testutil

import (
	"time"

	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/google/uuid"
)

// TestUserID owns every fixture unless overridden.
const TestUserID = "user-1"

// Date builds a civil date; it panics on malformed input and is meant for
// test literals only.
func Date(s string) time.Time {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

type ProjectOption func(*domain.Project)

func WithProjectPosition(pos int) ProjectOption {
	return func(p *domain.Project) {
		p.Position = pos
	}
}

func WithColor(c string) ProjectOption {
	return func(p *domain.Project) {
		p.Color = c
	}
}

func NewTestProject(name string, opts ...ProjectOption) *domain.Project {
	now := time.Now().UTC()
	p := &domain.Project{
		ID:        uuid.New().String(),
		UserID:    TestUserID,
		Name:      name,
		Color:     "#83a598",
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type TaskOption func(*domain.Task)

func WithPlannedSeconds(s int) TaskOption {
	return func(t *domain.Task) {
		t.PlannedTimeSeconds = s
	}
}

func WithProject(id string) TaskOption {
	return func(t *domain.Task) {
		t.ProjectID = &id
	}
}

func WithCompleted() TaskOption {
	return func(t *domain.Task) {
		t.IsCompleted = true
	}
}

func WithDueDate(d time.Time) TaskOption {
	return func(t *domain.Task) {
		t.DueDate = &d
	}
}

func NewTestTask(title string, opts ...TaskOption) *domain.Task {
	now := time.Now().UTC()
	t := &domain.Task{
		ID:        uuid.New().String(),
		UserID:    TestUserID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type SubtaskOption func(*domain.Subtask)

func WithSubtaskPlanned(s int) SubtaskOption {
	return func(st *domain.Subtask) {
		st.PlannedTimeSeconds = s
	}
}

func WithSubtaskPosition(pos int) SubtaskOption {
	return func(st *domain.Subtask) {
		st.Position = pos
	}
}

func NewTestSubtask(taskID, title string, opts ...SubtaskOption) *domain.Subtask {
	s := &domain.Subtask{
		ID:        uuid.New().String(),
		UserID:    TestUserID,
		TaskID:    taskID,
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewTestTimeEntry books seconds against a task (subtaskID nil) or subtask.
func NewTestTimeEntry(taskID string, subtaskID *string, date time.Time, seconds int) *domain.TimeEntry {
	return &domain.TimeEntry{
		ID:               uuid.New().String(),
		UserID:           TestUserID,
		TaskID:           taskID,
		SubtaskID:        subtaskID,
		Date:             domain.DateOf(date),
		TimeSpentSeconds: seconds,
		UpdatedAt:        time.Now().UTC(),
	}
}

func NewTestPlanEntry(taskID string, date time.Time, position int) *domain.PlanEntry {
	return &domain.PlanEntry{
		ID:       uuid.New().String(),
		UserID:   TestUserID,
		TaskID:   taskID,
		PlanDate: domain.DateOf(date),
		Position: position,
	}
}

// NewScheduled builds a ScheduledTask without touching a database.
func NewScheduled(title string, date time.Time, position int, opts ...TaskOption) domain.ScheduledTask {
	t := NewTestTask(title, opts...)
	e := NewTestPlanEntry(t.ID, date, position)
	return domain.ScheduledTask{Entry: *e, Task: *t}
}
