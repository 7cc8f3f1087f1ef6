package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/planboard/internal/db"
	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/alexanderramin/planboard/internal/repository"
	"github.com/google/uuid"
)

type planService struct {
	entries  repository.PlanEntryRepo
	tasks    repository.TaskRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewPlanService(
	entries repository.PlanEntryRepo,
	tasks repository.TaskRepo,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) PlanService {
	return &planService{
		entries:  entries,
		tasks:    tasks,
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *planService) FetchPlanRange(ctx context.Context, userID string, start, end time.Time) (items []domain.ScheduledTask, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"start": domain.DateKey(start), "end": domain.DateKey(end)}
	defer func() {
		fields["items"] = len(items)
		finishUseCase(ctx, s.observer, "plan.fetch_range", startedAt, fields, &err)
	}()

	if end.Before(start) {
		return nil, invalidf("range end %s precedes start %s", domain.DateKey(end), domain.DateKey(start))
	}
	return s.entries.ListRange(ctx, userID, domain.DateOf(start), domain.DateOf(end))
}

func (s *planService) CreatePlanEntry(ctx context.Context, taskID string, date time.Time, position int) (*domain.PlanEntry, error) {
	if position < 0 {
		return nil, invalidf("negative position %d", position)
	}
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	entry := &domain.PlanEntry{
		ID:       uuid.New().String(),
		UserID:   task.UserID,
		TaskID:   task.ID,
		PlanDate: domain.DateOf(date),
	}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return insertEntryAt(ctx, repository.NewSQLitePlanEntryRepo(tx), entry, position)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// UpdatePlanEntry writes the patched fields as given. Callers that need the
// day to stay dense use MoveEntry or ApplyPlanUpdates.
func (s *planService) UpdatePlanEntry(ctx context.Context, id string, patch domain.PlanEntryPatch) (*domain.PlanEntry, error) {
	if patch.Position != nil && *patch.Position < 0 {
		return nil, invalidf("negative position %d", *patch.Position)
	}
	entry, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Position != nil {
		entry.Position = *patch.Position
	}
	if patch.PlanDate != nil {
		entry.PlanDate = domain.DateOf(*patch.PlanDate)
	}
	if err := s.entries.Update(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *planService) DeletePlanEntry(ctx context.Context, id string) error {
	return s.entries.Delete(ctx, id)
}

func (s *planService) ApplyPlanUpdates(ctx context.Context, updates []domain.PlanUpdate) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		finishUseCase(ctx, s.observer, "plan.apply_updates", startedAt, map[string]any{"updates": len(updates)}, &err)
	}()

	if len(updates) == 0 {
		return nil
	}
	for _, u := range updates {
		if u.EntryID == "" {
			return invalidf("update without entry id")
		}
		if u.Position < 0 {
			return invalidf("entry %s: negative position %d", u.EntryID, u.Position)
		}
	}

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txEntries := repository.NewSQLitePlanEntryRepo(tx)
		for _, u := range updates {
			entry, err := txEntries.GetByID(ctx, u.EntryID)
			if err != nil {
				return err
			}
			entry.Position = u.Position
			if !u.PlanDate.IsZero() {
				entry.PlanDate = domain.DateOf(u.PlanDate)
			}
			if err := txEntries.Update(ctx, entry); err != nil {
				return fmt.Errorf("updating entry %s: %w", u.EntryID, err)
			}
		}
		return nil
	})
}

func (s *planService) ScheduleTask(ctx context.Context, taskID string, date time.Time) (entry *domain.PlanEntry, err error) {
	startedAt := time.Now().UTC()
	defer func() {
		finishUseCase(ctx, s.observer, "plan.schedule", startedAt, map[string]any{"task_id": taskID, "date": domain.DateKey(date)}, &err)
	}()

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		entry, err = appendEntry(ctx, repository.NewSQLitePlanEntryRepo(tx), task, date)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *planService) MoveEntry(ctx context.Context, id string, date time.Time, position int) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		finishUseCase(ctx, s.observer, "plan.move", startedAt, map[string]any{"entry_id": id, "date": domain.DateKey(date), "position": position}, &err)
	}()

	if position < 0 {
		return invalidf("negative position %d", position)
	}
	date = domain.DateOf(date)

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txEntries := repository.NewSQLitePlanEntryRepo(tx)
		entry, err := txEntries.GetByID(ctx, id)
		if err != nil {
			return err
		}
		source := entry.PlanDate

		if !source.Equal(date) {
			rest, err := txEntries.ListByDate(ctx, entry.UserID, source)
			if err != nil {
				return err
			}
			if err := writeDayOrder(ctx, txEntries, withoutEntry(rest, id), source); err != nil {
				return err
			}
		}

		target, err := txEntries.ListByDate(ctx, entry.UserID, date)
		if err != nil {
			return err
		}
		target = withoutEntry(target, id)
		return writeDayOrder(ctx, txEntries, insertAt(target, entry, position), date)
	})
}

func (s *planService) Unschedule(ctx context.Context, id string) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		finishUseCase(ctx, s.observer, "plan.unschedule", startedAt, map[string]any{"entry_id": id}, &err)
	}()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txEntries := repository.NewSQLitePlanEntryRepo(tx)
		entry, err := txEntries.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := txEntries.Delete(ctx, id); err != nil {
			return err
		}
		return densifyDay(ctx, txEntries, entry.UserID, entry.PlanDate)
	})
}

// appendEntry schedules task at the end of date.
func appendEntry(ctx context.Context, entries repository.PlanEntryRepo, task *domain.Task, date time.Time) (*domain.PlanEntry, error) {
	date = domain.DateOf(date)
	n, err := entries.CountByDate(ctx, task.UserID, date)
	if err != nil {
		return nil, err
	}
	entry := &domain.PlanEntry{
		ID:       uuid.New().String(),
		UserID:   task.UserID,
		TaskID:   task.ID,
		PlanDate: date,
		Position: n,
	}
	if err := entries.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// insertEntryAt creates entry at position within its day, shifting later
// entries down. Positions past the end append.
func insertEntryAt(ctx context.Context, entries repository.PlanEntryRepo, entry *domain.PlanEntry, position int) error {
	day, err := entries.ListByDate(ctx, entry.UserID, entry.PlanDate)
	if err != nil {
		return err
	}
	ordered := insertAt(day, entry, position)
	entry.Position = indexOfEntry(ordered, entry.ID)
	if err := entries.Create(ctx, entry); err != nil {
		return err
	}
	return writeDayOrder(ctx, entries, ordered, entry.PlanDate)
}

// densifyDay renumbers the entries of one day to 0..n-1.
func densifyDay(ctx context.Context, entries repository.PlanEntryRepo, userID string, date time.Time) error {
	day, err := entries.ListByDate(ctx, userID, date)
	if err != nil {
		return err
	}
	return writeDayOrder(ctx, entries, day, date)
}

// writeDayOrder stores ordered as the full content of date. Only entries
// whose position or date changed are written.
func writeDayOrder(ctx context.Context, entries repository.PlanEntryRepo, ordered []*domain.PlanEntry, date time.Time) error {
	for i, e := range ordered {
		if e.Position == i && e.PlanDate.Equal(date) {
			continue
		}
		e.Position = i
		e.PlanDate = date
		if err := entries.Update(ctx, e); err != nil {
			return fmt.Errorf("renumbering %s: %w", domain.DateKey(date), err)
		}
	}
	return nil
}

func withoutEntry(list []*domain.PlanEntry, id string) []*domain.PlanEntry {
	out := make([]*domain.PlanEntry, 0, len(list))
	for _, e := range list {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}

func insertAt(list []*domain.PlanEntry, e *domain.PlanEntry, position int) []*domain.PlanEntry {
	if position > len(list) {
		position = len(list)
	}
	out := make([]*domain.PlanEntry, 0, len(list)+1)
	out = append(out, list[:position]...)
	out = append(out, e)
	return append(out, list[position:]...)
}

func indexOfEntry(list []*domain.PlanEntry, id string) int {
	for i, e := range list {
		if e.ID == id {
			return i
		}
	}
	return -1
}
