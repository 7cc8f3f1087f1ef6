package service

import (
	"context"
	"strings"
	"time"

	"github.com/alexanderramin/planboard/internal/db"
	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/alexanderramin/planboard/internal/repository"
	"github.com/google/uuid"
)

type taskService struct {
	tasks    repository.TaskRepo
	entries  repository.PlanEntryRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewTaskService(
	tasks repository.TaskRepo,
	entries repository.PlanEntryRepo,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) TaskService {
	return &taskService{
		tasks:    tasks,
		entries:  entries,
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *taskService) CreateTask(ctx context.Context, t *domain.Task, planDate *time.Time) (entry *domain.PlanEntry, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"scheduled": planDate != nil}
	defer func() {
		fields["task_id"] = t.ID
		finishUseCase(ctx, s.observer, "task.create", startedAt, fields, &err)
	}()

	if err := validateTask(t); err != nil {
		return nil, err
	}
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLiteTaskRepo(tx).Create(ctx, t); err != nil {
			return err
		}
		if planDate == nil {
			return nil
		}
		entry, err = appendEntry(ctx, repository.NewSQLitePlanEntryRepo(tx), t, *planDate)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *taskService) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	return s.tasks.GetByID(ctx, id)
}

func (s *taskService) ListTasks(ctx context.Context, userID string) ([]*domain.Task, error) {
	return s.tasks.ListByUser(ctx, userID)
}

func (s *taskService) UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (task *domain.Task, err error) {
	startedAt := time.Now().UTC()
	defer func() {
		finishUseCase(ctx, s.observer, "task.update", startedAt, map[string]any{"task_id": id}, &err)
	}()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txTasks := repository.NewSQLiteTaskRepo(tx)
		t, err := txTasks.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if patch.PlannedTimeSeconds != nil && *patch.PlannedTimeSeconds != t.PlannedTimeSeconds {
			subs, err := repository.NewSQLiteSubtaskRepo(tx).ListByTask(ctx, id)
			if err != nil {
				return err
			}
			if domain.PlannedFromSubtasks(subs) {
				return ErrPlannedTimeDerived
			}
		}
		patch.Apply(t)
		if err := validateTask(t); err != nil {
			return err
		}
		t.UpdatedAt = time.Now().UTC()
		if err := txTasks.Update(ctx, t); err != nil {
			return err
		}
		task = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask removes the task with its subtasks, time entries and plan
// entries, and closes the gaps it leaves in each planned day.
func (s *taskService) DeleteTask(ctx context.Context, id string) (deleted *DeletedTask, err error) {
	startedAt := time.Now().UTC()
	defer func() {
		finishUseCase(ctx, s.observer, "task.delete", startedAt, map[string]any{"task_id": id}, &err)
	}()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txTasks := repository.NewSQLiteTaskRepo(tx)
		txEntries := repository.NewSQLitePlanEntryRepo(tx)

		task, err := txTasks.GetByID(ctx, id)
		if err != nil {
			return err
		}
		entries, err := txEntries.ListByTask(ctx, id)
		if err != nil {
			return err
		}
		if err := txTasks.Delete(ctx, id); err != nil {
			return err
		}

		deleted = &DeletedTask{Task: *task}
		seen := make(map[string]bool)
		for _, e := range entries {
			deleted.Entries = append(deleted.Entries, *e)
			key := domain.DateKey(e.PlanDate)
			if seen[key] {
				continue
			}
			seen[key] = true
			if err := densifyDay(ctx, txEntries, e.UserID, e.PlanDate); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// RestoreTask re-creates a deleted task and, when planDate is set, puts it
// back at position in that day.
func (s *taskService) RestoreTask(ctx context.Context, task domain.Task, planDate *time.Time, position int) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		finishUseCase(ctx, s.observer, "task.restore", startedAt, map[string]any{"task_id": task.ID}, &err)
	}()

	if position < 0 {
		return invalidf("negative position %d", position)
	}
	if err := validateTask(&task); err != nil {
		return err
	}
	task.UpdatedAt = time.Now().UTC()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLiteTaskRepo(tx).Create(ctx, &task); err != nil {
			return err
		}
		if planDate == nil {
			return nil
		}
		entry := &domain.PlanEntry{
			ID:       uuid.New().String(),
			UserID:   task.UserID,
			TaskID:   task.ID,
			PlanDate: domain.DateOf(*planDate),
		}
		return insertEntryAt(ctx, repository.NewSQLitePlanEntryRepo(tx), entry, position)
	})
}

func validateTask(t *domain.Task) error {
	if strings.TrimSpace(t.Title) == "" {
		return invalidf("task title is required")
	}
	if t.UserID == "" {
		return invalidf("task user is required")
	}
	if t.PlannedTimeSeconds < 0 {
		return invalidf("planned time %d is negative", t.PlannedTimeSeconds)
	}
	if t.StartTime != nil {
		if _, err := time.Parse("15:04", *t.StartTime); err != nil {
			return invalidf("start time %q is not HH:MM", *t.StartTime)
		}
	}
	return nil
}
