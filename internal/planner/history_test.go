package planner

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/alexanderramin/planboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type restorerFunc func(ctx context.Context, task domain.Task, planDate *time.Time, position int) error

func (f restorerFunc) RestoreTask(ctx context.Context, task domain.Task, planDate *time.Time, position int) error {
	return f(ctx, task, planDate, position)
}

func TestHistory_BoundedStack(t *testing.T) {
	var h History
	for i := 0; i < HistoryLimit+5; i++ {
		h.Push(Action{Kind: ActionDeleteTask, Task: domain.Task{Title: fmt.Sprint(i)}})
	}

	assert.Equal(t, HistoryLimit, h.Len())
	last, ok := h.Pop()
	require.True(t, ok)
	assert.Equal(t, fmt.Sprint(HistoryLimit+4), last.Task.Title)
}

func TestHistory_UndoDeleteRecreates(t *testing.T) {
	var h History
	date := testutil.Date("2026-10-15")
	task := testutil.NewTestTask("gone")
	h.Push(Action{Kind: ActionDeleteTask, Task: *task, PlanDate: &date, Position: 2})

	var got domain.Task
	var gotPos int
	a, err := h.Undo(context.Background(), restorerFunc(func(_ context.Context, tk domain.Task, d *time.Time, pos int) error {
		got, gotPos = tk, pos
		require.NotNil(t, d)
		assert.Equal(t, date, *d)
		return nil
	}))

	require.NoError(t, err)
	assert.Equal(t, ActionDeleteTask, a.Kind)
	assert.Equal(t, task.ID, got.ID)
	assert.Equal(t, 2, gotPos)
	assert.Equal(t, 0, h.Len())
}

func TestHistory_FailedUndoKeepsAction(t *testing.T) {
	var h History
	h.Push(Action{Kind: ActionDeleteTask})

	_, err := h.Undo(context.Background(), restorerFunc(func(context.Context, domain.Task, *time.Time, int) error {
		return errors.New("offline")
	}))

	require.Error(t, err)
	assert.Equal(t, 1, h.Len())
}

func TestHistory_EmptyUndo(t *testing.T) {
	var h History
	_, err := h.Undo(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNothingToUndo)
}
