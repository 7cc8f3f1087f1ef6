package planner

import (
	"errors"

	"github.com/alexanderramin/planboard/internal/domain"
)

// ErrNotDragging is returned by drag operations issued outside a gesture.
var ErrNotDragging = errors.New("no drag in progress")

// ErrUnknownItem is returned when a drag starts on an entry that is not on
// the board.
var ErrUnknownItem = errors.New("drag item not on board")

type DragState int

const (
	DragIdle DragState = iota
	Dragging
	DragDropped
	DragCancelled
)

func (s DragState) String() string {
	switch s {
	case Dragging:
		return "dragging"
	case DragDropped:
		return "dropped"
	case DragCancelled:
		return "cancelled"
	default:
		return "idle"
	}
}

// ActiveTask is the only draggable type the board reorders.
const ActiveTask = "task"

// DragEvent is the payload of every gesture callback. ActiveID and OverID
// are plan entry ids; container ids are day ids. OverID may name a container
// when the pointer is over an empty part of a column.
type DragEvent struct {
	ActiveID          string
	ActiveType        string
	SourceContainerID string
	OverContainerID   string
	OverID            string
}

func (ev DragEvent) overContainer() string {
	if ev.OverContainerID != "" {
		return ev.OverContainerID
	}
	return ev.OverID
}

// DragEngine computes the optimistic column layout during a drag and the
// plan updates a drop implies.
type DragEngine struct {
	state   DragState
	base    domain.TasksByDay
	work    domain.TasksByDay
	active  string
	source  string
	current string
}

func (e *DragEngine) State() DragState { return e.state }

// Active returns the dragged entry id and the column it currently sits in.
func (e *DragEngine) Active() (entryID, containerID string) {
	return e.active, e.current
}

// Start snapshots byDay and enters Dragging.
func (e *DragEngine) Start(byDay domain.TasksByDay, ev DragEvent) error {
	if ev.ActiveType != "" && ev.ActiveType != ActiveTask {
		return nil
	}
	container := ev.SourceContainerID
	if indexOf(byDay[container], ev.ActiveID) < 0 {
		container = ""
		for day, col := range byDay {
			if indexOf(col, ev.ActiveID) >= 0 {
				container = day
				break
			}
		}
		if container == "" {
			return ErrUnknownItem
		}
	}
	e.state = Dragging
	e.base = byDay.Clone()
	e.work = byDay.Clone()
	e.active = ev.ActiveID
	e.source = container
	e.current = container
	return nil
}

// Over moves the active item to the hovered position. It reports whether the
// optimistic layout changed.
func (e *DragEngine) Over(ev DragEvent) bool {
	if e.state != Dragging {
		return false
	}
	target := ev.overContainer()
	if target == "" || ev.OverID == e.active {
		return false
	}

	from := e.work[e.current]
	ai := indexOf(from, e.active)
	if ai < 0 {
		return false
	}
	oi := indexOf(e.work[target], ev.OverID)

	if target == e.current {
		if oi < 0 || oi == ai {
			return false
		}
		e.work[target] = arrayMove(from, ai, oi)
		return true
	}

	moved := from[ai]
	rest := make([]domain.EnrichedTask, 0, len(from)-1)
	rest = append(rest, from[:ai]...)
	rest = append(rest, from[ai+1:]...)

	to := e.work[target]
	if oi < 0 {
		oi = len(to)
	}
	dest := make([]domain.EnrichedTask, 0, len(to)+1)
	dest = append(dest, to[:oi]...)
	dest = append(dest, moved)
	dest = append(dest, to[oi:]...)

	e.work[e.current] = rest
	e.work[target] = dest
	e.current = target
	return true
}

// Drop ends the gesture. A drop with no target cancels. The returned updates
// reassign positions 0..n-1 in every column whose order or membership
// changed; they are empty for a no-op drop.
func (e *DragEngine) Drop(ev DragEvent) ([]domain.PlanUpdate, error) {
	if e.state != Dragging {
		return nil, ErrNotDragging
	}
	if ev.overContainer() == "" {
		e.Cancel()
		return nil, nil
	}

	var updates []domain.PlanUpdate
	for _, day := range changedColumns(e.base, e.work, e.source, e.current) {
		date, err := domain.ParseDate(day)
		if err != nil {
			e.Cancel()
			return nil, err
		}
		for i, t := range e.work[day] {
			updates = append(updates, domain.PlanUpdate{EntryID: t.EntryID, Position: i, PlanDate: date})
		}
	}
	e.state = DragDropped
	return updates, nil
}

// Cancel discards the optimistic layout.
func (e *DragEngine) Cancel() {
	if e.state != Dragging {
		return
	}
	e.state = DragCancelled
	e.work = nil
}

// Reset returns the engine to Idle after a drop or cancel has been handled.
func (e *DragEngine) Reset() {
	*e = DragEngine{}
}

// Layout is the optimistic map while dragging, and nil otherwise.
func (e *DragEngine) Layout() domain.TasksByDay {
	if e.state != Dragging {
		return nil
	}
	return e.work
}

// Original is the map captured at drag start.
func (e *DragEngine) Original() domain.TasksByDay {
	return e.base
}

func changedColumns(before, after domain.TasksByDay, source, current string) []string {
	cols := []string{source}
	if current != source {
		cols = append(cols, current)
	}
	var out []string
	for _, day := range cols {
		if !sameOrder(before[day], after[day]) {
			out = append(out, day)
		}
	}
	return out
}

func sameOrder(a, b []domain.EnrichedTask) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].EntryID != b[i].EntryID || a[i].Position != i {
			return false
		}
	}
	return true
}

func indexOf(col []domain.EnrichedTask, entryID string) int {
	for i, t := range col {
		if t.EntryID == entryID {
			return i
		}
	}
	return -1
}

func arrayMove(col []domain.EnrichedTask, from, to int) []domain.EnrichedTask {
	out := make([]domain.EnrichedTask, 0, len(col))
	out = append(out, col[:from]...)
	out = append(out, col[from+1:]...)
	item := col[from]
	out = append(out[:to], append([]domain.EnrichedTask{item}, out[to:]...)...)
	return out
}
