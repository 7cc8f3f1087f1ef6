package service

import (
	"context"
	"testing"

	"github.com/alexanderramin/planboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSideTables(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()

	project := testutil.NewTestProject("Work")
	require.NoError(t, r.projects.Create(ctx, project))
	task := testutil.NewTestTask("parent", testutil.WithProject(project.ID))
	require.NoError(t, r.tasks.Create(ctx, task))
	st := testutil.NewTestSubtask(task.ID, "child")
	require.NoError(t, r.subtasks.Create(ctx, st))
	require.NoError(t, r.times.Create(ctx, testutil.NewTestTimeEntry(task.ID, nil, testutil.Date("2026-10-15"), 120)))

	tables, err := LoadSideTables(ctx, testutil.TestUserID,
		NewSubtaskService(r.subtasks, r.uow),
		NewTimeService(r.times, r.uow),
		NewProjectService(r.projects, r.uow),
	)
	require.NoError(t, err)
	assert.Len(t, tables.Subtasks, 1)
	assert.Len(t, tables.Entries, 1)
	assert.Len(t, tables.Projects, 1)
}

func TestLoadSideTables_CancelledContext(t *testing.T) {
	r := setupRepos(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LoadSideTables(ctx, testutil.TestUserID,
		NewSubtaskService(r.subtasks, r.uow),
		NewTimeService(r.times, r.uow),
		NewProjectService(r.projects, r.uow),
	)
	assert.ErrorIs(t, err, context.Canceled)
}
