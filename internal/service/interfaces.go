package service

import (
	"context"
	"time"

	"github.com/alexanderramin/planboard/internal/domain"
)

type PlanService interface {
	// FetchPlanRange returns the user's entries dated within [start, end],
	// joined with their tasks and ordered by position.
	FetchPlanRange(ctx context.Context, userID string, start, end time.Time) ([]domain.ScheduledTask, error)
	CreatePlanEntry(ctx context.Context, taskID string, date time.Time, position int) (*domain.PlanEntry, error)
	UpdatePlanEntry(ctx context.Context, id string, patch domain.PlanEntryPatch) (*domain.PlanEntry, error)
	DeletePlanEntry(ctx context.Context, id string) error
	// ApplyPlanUpdates writes a reorder batch in one transaction.
	ApplyPlanUpdates(ctx context.Context, updates []domain.PlanUpdate) error
	ScheduleTask(ctx context.Context, taskID string, date time.Time) (*domain.PlanEntry, error)
	MoveEntry(ctx context.Context, id string, date time.Time, position int) error
	Unschedule(ctx context.Context, id string) error
}

// DeletedTask is what a task deletion removed, kept for undo.
type DeletedTask struct {
	Task    domain.Task
	Entries []domain.PlanEntry
}

type TaskService interface {
	// CreateTask stores t and, when planDate is set, schedules it at the end
	// of that day.
	CreateTask(ctx context.Context, t *domain.Task, planDate *time.Time) (*domain.PlanEntry, error)
	GetTask(ctx context.Context, id string) (*domain.Task, error)
	ListTasks(ctx context.Context, userID string) ([]*domain.Task, error)
	UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error)
	DeleteTask(ctx context.Context, id string) (*DeletedTask, error)
	RestoreTask(ctx context.Context, task domain.Task, planDate *time.Time, position int) error
}

type SubtaskService interface {
	List(ctx context.Context, userID string) ([]*domain.Subtask, error)
	ListByTask(ctx context.Context, taskID string) ([]*domain.Subtask, error)
	Create(ctx context.Context, s *domain.Subtask) error
	Update(ctx context.Context, s *domain.Subtask) error
	Delete(ctx context.Context, id string) error
	Reorder(ctx context.Context, taskID string, orderedIDs []string) error
}

// TimeEntryInput addresses one (task, subtask, date) time bucket.
type TimeEntryInput struct {
	UserID    string
	TaskID    string
	SubtaskID *string
	Date      time.Time
	Seconds   int
}

type TimeService interface {
	List(ctx context.Context, userID string) ([]*domain.TimeEntry, error)
	// Upsert sets the bucket to in.Seconds.
	Upsert(ctx context.Context, in TimeEntryInput) (*domain.TimeEntry, error)
	// AddSeconds adds in.Seconds to the bucket, creating it when missing.
	AddSeconds(ctx context.Context, in TimeEntryInput) (*domain.TimeEntry, error)
}

type ProjectService interface {
	List(ctx context.Context, userID string) ([]*domain.Project, error)
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	Create(ctx context.Context, p *domain.Project) error
	Update(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, id string) error
	Reorder(ctx context.Context, userID string, orderedIDs []string) error
}
