package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/planboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubtaskRepo_ListByTaskOrdered(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	tasks := NewSQLiteTaskRepo(db)
	subs := NewSQLiteSubtaskRepo(db)

	task := testutil.NewTestTask("Parent")
	require.NoError(t, tasks.Create(ctx, task))

	next, err := subs.NextPosition(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, next)

	require.NoError(t, subs.Create(ctx, testutil.NewTestSubtask(task.ID, "B", testutil.WithSubtaskPosition(1))))
	require.NoError(t, subs.Create(ctx, testutil.NewTestSubtask(task.ID, "A", testutil.WithSubtaskPosition(0))))

	list, err := subs.ListByTask(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "A", list[0].Title)
	assert.Equal(t, "B", list[1].Title)

	next, err = subs.NextPosition(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, next)
}

func TestSubtaskRepo_UpdateAndDelete(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	tasks := NewSQLiteTaskRepo(db)
	subs := NewSQLiteSubtaskRepo(db)

	task := testutil.NewTestTask("Parent")
	require.NoError(t, tasks.Create(ctx, task))
	s := testutil.NewTestSubtask(task.ID, "Step", testutil.WithSubtaskPlanned(300))
	require.NoError(t, subs.Create(ctx, s))

	s.IsCompleted = true
	s.PlannedTimeSeconds = 450
	require.NoError(t, subs.Update(ctx, s))

	got, err := subs.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, got.IsCompleted)
	assert.Equal(t, 450, got.PlannedTimeSeconds)

	require.NoError(t, subs.Delete(ctx, s.ID))
	_, err = subs.GetByID(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
