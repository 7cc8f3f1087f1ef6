package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/planboard/internal/domain"
)

type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	UpdatePosition(ctx context.Context, id string, position int) error
	Delete(ctx context.Context, id string) error
}

type TaskRepo interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Task, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, id string) error
}

type SubtaskRepo interface {
	Create(ctx context.Context, s *domain.Subtask) error
	GetByID(ctx context.Context, id string) (*domain.Subtask, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Subtask, error)
	ListByTask(ctx context.Context, taskID string) ([]*domain.Subtask, error)
	NextPosition(ctx context.Context, taskID string) (int, error)
	Update(ctx context.Context, s *domain.Subtask) error
	UpdatePosition(ctx context.Context, id string, position int) error
	Delete(ctx context.Context, id string) error
}

type TimeEntryRepo interface {
	ListByUser(ctx context.Context, userID string) ([]*domain.TimeEntry, error)
	Find(ctx context.Context, taskID string, subtaskID *string, date time.Time) (*domain.TimeEntry, error)
	Create(ctx context.Context, e *domain.TimeEntry) error
	UpdateSeconds(ctx context.Context, id string, seconds int, at time.Time) error
}

type PlanEntryRepo interface {
	Create(ctx context.Context, e *domain.PlanEntry) error
	GetByID(ctx context.Context, id string) (*domain.PlanEntry, error)
	// ListRange returns the user's entries with plan_date in [start, end],
	// joined with their tasks and ordered by position.
	ListRange(ctx context.Context, userID string, start, end time.Time) ([]domain.ScheduledTask, error)
	ListByDate(ctx context.Context, userID string, date time.Time) ([]*domain.PlanEntry, error)
	ListByTask(ctx context.Context, taskID string) ([]*domain.PlanEntry, error)
	CountByDate(ctx context.Context, userID string, date time.Time) (int, error)
	Update(ctx context.Context, e *domain.PlanEntry) error
	Delete(ctx context.Context, id string) error
}
