package service

import (
	"context"
	"testing"

	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/alexanderramin/planboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func subtaskTitles(t *testing.T, svc SubtaskService, taskID string) []string {
	t.Helper()
	list, err := svc.ListByTask(context.Background(), taskID)
	require.NoError(t, err)
	out := make([]string, len(list))
	for i, st := range list {
		require.Equal(t, i, st.Position)
		out[i] = st.Title
	}
	return out
}

func TestSubtaskService_CreateAppends(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	svc := NewSubtaskService(r.subtasks, r.uow)

	task := testutil.NewTestTask("parent")
	require.NoError(t, r.tasks.Create(ctx, task))

	for _, title := range []string{"one", "two", "three"} {
		require.NoError(t, svc.Create(ctx, &domain.Subtask{UserID: testutil.TestUserID, TaskID: task.ID, Title: title}))
	}
	assert.Equal(t, []string{"one", "two", "three"}, subtaskTitles(t, svc, task.ID))

	err := svc.Create(ctx, &domain.Subtask{UserID: testutil.TestUserID, TaskID: task.ID})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSubtaskService_DeleteDensifies(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	svc := NewSubtaskService(r.subtasks, r.uow)

	task := testutil.NewTestTask("parent")
	require.NoError(t, r.tasks.Create(ctx, task))
	var ids []string
	for _, title := range []string{"one", "two", "three"} {
		st := &domain.Subtask{UserID: testutil.TestUserID, TaskID: task.ID, Title: title}
		require.NoError(t, svc.Create(ctx, st))
		ids = append(ids, st.ID)
	}

	require.NoError(t, svc.Delete(ctx, ids[0]))
	assert.Equal(t, []string{"two", "three"}, subtaskTitles(t, svc, task.ID))
}

func TestSubtaskService_Reorder(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	svc := NewSubtaskService(r.subtasks, r.uow)

	task := testutil.NewTestTask("parent")
	require.NoError(t, r.tasks.Create(ctx, task))
	var ids []string
	for _, title := range []string{"one", "two", "three"} {
		st := &domain.Subtask{UserID: testutil.TestUserID, TaskID: task.ID, Title: title}
		require.NoError(t, svc.Create(ctx, st))
		ids = append(ids, st.ID)
	}

	require.NoError(t, svc.Reorder(ctx, task.ID, []string{ids[2], ids[0], ids[1]}))
	assert.Equal(t, []string{"three", "one", "two"}, subtaskTitles(t, svc, task.ID))

	err := svc.Reorder(ctx, task.ID, []string{ids[0], ids[0], ids[1]})
	assert.ErrorIs(t, err, ErrInvalidInput)
	err = svc.Reorder(ctx, task.ID, ids[:2])
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, []string{"three", "one", "two"}, subtaskTitles(t, svc, task.ID))
}

func TestSubtaskService_ReportsUseCases(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	obs := &recordingObserver{}
	svc := NewSubtaskService(r.subtasks, r.uow, obs)

	task := testutil.NewTestTask("parent")
	require.NoError(t, r.tasks.Create(ctx, task))
	st := &domain.Subtask{UserID: testutil.TestUserID, TaskID: task.ID, Title: "one"}
	require.NoError(t, svc.Create(ctx, st))
	st.IsCompleted = true
	require.NoError(t, svc.Update(ctx, st))
	require.NoError(t, svc.Reorder(ctx, task.ID, []string{st.ID}))
	require.NoError(t, svc.Delete(ctx, st.ID))

	assert.Equal(t, []string{"subtask.create", "subtask.update", "subtask.reorder", "subtask.delete"}, obs.names())
	assert.Equal(t, st.ID, obs.events[0].Fields["subtask_id"])
	assert.True(t, obs.last().Success)
}
