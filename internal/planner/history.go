package planner

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/alexanderramin/planboard/internal/domain"
)

// HistoryLimit bounds the undo stack.
const HistoryLimit = 20

// ErrNothingToUndo is returned by Undo on an empty stack.
var ErrNothingToUndo = errors.New("nothing to undo")

type ActionKind string

const (
	ActionDeleteTask ActionKind = "delete_task"
)

// Action is one undoable user action. For a deleted task, PlanDate and
// Position record where it was scheduled.
type Action struct {
	Kind     ActionKind
	Task     domain.Task
	PlanDate *time.Time
	Position int
}

// TaskRestorer recreates a deleted task, scheduling it when planDate is set.
type TaskRestorer interface {
	RestoreTask(ctx context.Context, task domain.Task, planDate *time.Time, position int) error
}

// History is an in-memory undo stack. The oldest action is dropped once the
// stack holds HistoryLimit entries.
type History struct {
	mu    sync.Mutex
	stack []Action
}

func (h *History) Push(a Action) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stack = append(h.stack, a)
	if len(h.stack) > HistoryLimit {
		h.stack = append([]Action(nil), h.stack[len(h.stack)-HistoryLimit:]...)
	}
}

func (h *History) Pop() (Action, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.stack) == 0 {
		return Action{}, false
	}
	a := h.stack[len(h.stack)-1]
	h.stack = h.stack[:len(h.stack)-1]
	return a, true
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.stack)
}

// Undo reverts the most recent action. A failed undo puts the action back.
func (h *History) Undo(ctx context.Context, r TaskRestorer) (Action, error) {
	a, ok := h.Pop()
	if !ok {
		return Action{}, ErrNothingToUndo
	}
	switch a.Kind {
	case ActionDeleteTask:
		if err := r.RestoreTask(ctx, a.Task, a.PlanDate, a.Position); err != nil {
			h.Push(a)
			return a, err
		}
	}
	return a, nil
}
