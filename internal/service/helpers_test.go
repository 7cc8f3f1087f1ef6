package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/planboard/internal/db"
	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/alexanderramin/planboard/internal/repository"
	"github.com/alexanderramin/planboard/internal/testutil"
	"github.com/stretchr/testify/require"
)

type testRepos struct {
	db       *sql.DB
	projects repository.ProjectRepo
	tasks    repository.TaskRepo
	subtasks repository.SubtaskRepo
	times    repository.TimeEntryRepo
	entries  repository.PlanEntryRepo
	uow      db.UnitOfWork
}

func setupRepos(t *testing.T) testRepos {
	database := testutil.NewTestDB(t)
	return testRepos{
		db:       database,
		projects: repository.NewSQLiteProjectRepo(database),
		tasks:    repository.NewSQLiteTaskRepo(database),
		subtasks: repository.NewSQLiteSubtaskRepo(database),
		times:    repository.NewSQLiteTimeEntryRepo(database),
		entries:  repository.NewSQLitePlanEntryRepo(database),
		uow:      testutil.NewTestUoW(database),
	}
}

// seedDay creates one task per title and schedules them on date in order.
func seedDay(t *testing.T, r testRepos, date time.Time, titles ...string) []*domain.PlanEntry {
	t.Helper()
	ctx := context.Background()
	out := make([]*domain.PlanEntry, 0, len(titles))
	for i, title := range titles {
		task := testutil.NewTestTask(title)
		require.NoError(t, r.tasks.Create(ctx, task))
		e := testutil.NewTestPlanEntry(task.ID, date, i)
		require.NoError(t, r.entries.Create(ctx, e))
		out = append(out, e)
	}
	return out
}

// dayTitles lists the task titles of date in position order and checks the
// positions are dense.
func dayTitles(t *testing.T, r testRepos, date time.Time) []string {
	t.Helper()
	ctx := context.Background()
	entries, err := r.entries.ListByDate(ctx, testutil.TestUserID, date)
	require.NoError(t, err)
	titles := make([]string, 0, len(entries))
	for i, e := range entries {
		require.Equal(t, i, e.Position, "positions on %s must be dense", domain.DateKey(date))
		task, err := r.tasks.GetByID(ctx, e.TaskID)
		require.NoError(t, err)
		titles = append(titles, task.Title)
	}
	return titles
}

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, ev UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, ev)
}

func (o *recordingObserver) names() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, len(o.events))
	for i, ev := range o.events {
		out[i] = ev.Name
	}
	return out
}

func (o *recordingObserver) last() UseCaseEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.events[len(o.events)-1]
}
