package service

import (
	"context"
	"testing"

	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/alexanderramin/planboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeService_UpsertAndAdd(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	obs := &recordingObserver{}
	svc := NewTimeService(r.times, r.uow, obs)

	task := testutil.NewTestTask("focus")
	require.NoError(t, r.tasks.Create(ctx, task))
	day := testutil.Date("2026-10-15")
	in := TimeEntryInput{UserID: testutil.TestUserID, TaskID: task.ID, Date: day, Seconds: 60}

	first, err := svc.Upsert(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 60, first.TimeSpentSeconds)

	in.Seconds = 120
	second, err := svc.Upsert(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "same bucket is updated in place")
	assert.Equal(t, 120, second.TimeSpentSeconds)

	in.Seconds = 30
	added, err := svc.AddSeconds(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 150, added.TimeSpentSeconds)

	list, err := svc.List(ctx, testutil.TestUserID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 150, list[0].TimeSpentSeconds)

	assert.Equal(t, []string{"time.upsert", "time.upsert", "time.add"}, obs.names())
}

func TestTimeService_SubtaskBucketIsSeparate(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	svc := NewTimeService(r.times, r.uow)

	task := testutil.NewTestTask("parent")
	require.NoError(t, r.tasks.Create(ctx, task))
	st := testutil.NewTestSubtask(task.ID, "child")
	require.NoError(t, r.subtasks.Create(ctx, st))
	day := testutil.Date("2026-10-15")

	_, err := svc.AddSeconds(ctx, TimeEntryInput{UserID: testutil.TestUserID, TaskID: task.ID, Date: day, Seconds: 40})
	require.NoError(t, err)
	_, err = svc.AddSeconds(ctx, TimeEntryInput{UserID: testutil.TestUserID, TaskID: task.ID, SubtaskID: &st.ID, Date: day, Seconds: 90})
	require.NoError(t, err)

	list, err := svc.List(ctx, testutil.TestUserID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	var direct, viaSubtask *domain.TimeEntry
	for _, e := range list {
		if e.IsDirect() {
			direct = e
		} else {
			viaSubtask = e
		}
	}
	require.NotNil(t, direct)
	require.NotNil(t, viaSubtask)
	assert.Equal(t, 40, direct.TimeSpentSeconds)
	assert.Equal(t, 90, viaSubtask.TimeSpentSeconds)
}

func TestTimeService_AddSecondsClampsAtZero(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	svc := NewTimeService(r.times, r.uow)

	task := testutil.NewTestTask("t")
	require.NoError(t, r.tasks.Create(ctx, task))
	in := TimeEntryInput{UserID: testutil.TestUserID, TaskID: task.ID, Date: testutil.Date("2026-10-15"), Seconds: 30}
	_, err := svc.AddSeconds(ctx, in)
	require.NoError(t, err)

	in.Seconds = -100
	e, err := svc.AddSeconds(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 0, e.TimeSpentSeconds)

	_, err = svc.Upsert(ctx, in)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
