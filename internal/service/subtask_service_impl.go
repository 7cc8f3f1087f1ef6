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

type subtaskService struct {
	subtasks repository.SubtaskRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewSubtaskService(subtasks repository.SubtaskRepo, uow db.UnitOfWork, observers ...UseCaseObserver) SubtaskService {
	return &subtaskService{subtasks: subtasks, uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *subtaskService) List(ctx context.Context, userID string) ([]*domain.Subtask, error) {
	return s.subtasks.ListByUser(ctx, userID)
}

func (s *subtaskService) ListByTask(ctx context.Context, taskID string) ([]*domain.Subtask, error) {
	return s.subtasks.ListByTask(ctx, taskID)
}

// Create appends st to its task's subtask list.
func (s *subtaskService) Create(ctx context.Context, st *domain.Subtask) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		finishUseCase(ctx, s.observer, "subtask.create", startedAt, map[string]any{"task_id": st.TaskID, "subtask_id": st.ID}, &err)
	}()

	if err := validateSubtask(st); err != nil {
		return err
	}
	if st.ID == "" {
		st.ID = uuid.New().String()
	}
	st.CreatedAt = time.Now().UTC()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txSubtasks := repository.NewSQLiteSubtaskRepo(tx)
		pos, err := txSubtasks.NextPosition(ctx, st.TaskID)
		if err != nil {
			return err
		}
		st.Position = pos
		return txSubtasks.Create(ctx, st)
	})
}

func (s *subtaskService) Update(ctx context.Context, st *domain.Subtask) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		finishUseCase(ctx, s.observer, "subtask.update", startedAt, map[string]any{"subtask_id": st.ID}, &err)
	}()

	if err := validateSubtask(st); err != nil {
		return err
	}
	return s.subtasks.Update(ctx, st)
}

func (s *subtaskService) Delete(ctx context.Context, id string) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		finishUseCase(ctx, s.observer, "subtask.delete", startedAt, map[string]any{"subtask_id": id}, &err)
	}()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txSubtasks := repository.NewSQLiteSubtaskRepo(tx)
		st, err := txSubtasks.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := txSubtasks.Delete(ctx, id); err != nil {
			return err
		}
		rest, err := txSubtasks.ListByTask(ctx, st.TaskID)
		if err != nil {
			return err
		}
		for i, r := range rest {
			if r.Position == i {
				continue
			}
			if err := txSubtasks.UpdatePosition(ctx, r.ID, i); err != nil {
				return err
			}
		}
		return nil
	})
}

// Reorder assigns positions following orderedIDs, which must name every
// subtask of the task exactly once.
func (s *subtaskService) Reorder(ctx context.Context, taskID string, orderedIDs []string) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		finishUseCase(ctx, s.observer, "subtask.reorder", startedAt, map[string]any{"task_id": taskID, "count": len(orderedIDs)}, &err)
	}()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txSubtasks := repository.NewSQLiteSubtaskRepo(tx)
		current, err := txSubtasks.ListByTask(ctx, taskID)
		if err != nil {
			return err
		}
		ids := make([]string, len(current))
		for i, st := range current {
			ids[i] = st.ID
		}
		if err := checkPermutation(ids, orderedIDs); err != nil {
			return err
		}
		for i, id := range orderedIDs {
			if err := txSubtasks.UpdatePosition(ctx, id, i); err != nil {
				return err
			}
		}
		return nil
	})
}

func validateSubtask(st *domain.Subtask) error {
	if st.TaskID == "" {
		return invalidf("subtask task is required")
	}
	if strings.TrimSpace(st.Title) == "" {
		return invalidf("subtask title is required")
	}
	if st.PlannedTimeSeconds < 0 {
		return invalidf("planned time %d is negative", st.PlannedTimeSeconds)
	}
	return nil
}

func checkPermutation(current, ordered []string) error {
	if len(current) != len(ordered) {
		return invalidf("reorder names %d items, have %d", len(ordered), len(current))
	}
	known := make(map[string]bool, len(current))
	for _, id := range current {
		known[id] = true
	}
	for _, id := range ordered {
		if !known[id] {
			return invalidf("reorder names unknown or repeated id %s", id)
		}
		delete(known, id)
	}
	return nil
}
