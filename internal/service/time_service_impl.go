package service

import (
	"context"
	"errors"
	"time"

	"github.com/alexanderramin/planboard/internal/db"
	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/alexanderramin/planboard/internal/repository"
	"github.com/google/uuid"
)

type timeService struct {
	entries  repository.TimeEntryRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewTimeService(entries repository.TimeEntryRepo, uow db.UnitOfWork, observers ...UseCaseObserver) TimeService {
	return &timeService{entries: entries, uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *timeService) List(ctx context.Context, userID string) ([]*domain.TimeEntry, error) {
	return s.entries.ListByUser(ctx, userID)
}

func (s *timeService) Upsert(ctx context.Context, in TimeEntryInput) (entry *domain.TimeEntry, err error) {
	startedAt := time.Now().UTC()
	defer func() {
		finishUseCase(ctx, s.observer, "time.upsert", startedAt, timeFields(in), &err)
	}()

	if in.Seconds < 0 {
		return nil, invalidf("time spent %d is negative", in.Seconds)
	}
	return s.write(ctx, in, func(int) int { return in.Seconds })
}

func (s *timeService) AddSeconds(ctx context.Context, in TimeEntryInput) (entry *domain.TimeEntry, err error) {
	startedAt := time.Now().UTC()
	defer func() {
		finishUseCase(ctx, s.observer, "time.add", startedAt, timeFields(in), &err)
	}()

	return s.write(ctx, in, func(cur int) int { return max(cur+in.Seconds, 0) })
}

// write finds the bucket for in and stores next(current seconds) in the same
// transaction as the lookup.
func (s *timeService) write(ctx context.Context, in TimeEntryInput, next func(int) int) (*domain.TimeEntry, error) {
	if in.TaskID == "" || in.UserID == "" {
		return nil, invalidf("time entry needs a user and a task")
	}
	date := domain.DateOf(in.Date)
	now := time.Now().UTC()

	var out *domain.TimeEntry
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txEntries := repository.NewSQLiteTimeEntryRepo(tx)
		existing, err := txEntries.Find(ctx, in.TaskID, in.SubtaskID, date)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			out = &domain.TimeEntry{
				ID:               uuid.New().String(),
				UserID:           in.UserID,
				TaskID:           in.TaskID,
				SubtaskID:        in.SubtaskID,
				Date:             date,
				TimeSpentSeconds: next(0),
				UpdatedAt:        now,
			}
			return txEntries.Create(ctx, out)
		case err != nil:
			return err
		}
		existing.TimeSpentSeconds = next(existing.TimeSpentSeconds)
		existing.UpdatedAt = now
		out = existing
		return txEntries.UpdateSeconds(ctx, existing.ID, existing.TimeSpentSeconds, now)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func timeFields(in TimeEntryInput) map[string]any {
	fields := map[string]any{
		"task_id": in.TaskID,
		"date":    domain.DateKey(in.Date),
		"seconds": in.Seconds,
	}
	if in.SubtaskID != nil {
		fields["subtask_id"] = *in.SubtaskID
	}
	return fields
}
