package service

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks a request rejected before touching storage.
var ErrInvalidInput = errors.New("invalid input")

// ErrPlannedTimeDerived rejects a planned-time edit on a task whose subtasks
// carry planned time.
var ErrPlannedTimeDerived = fmt.Errorf("%w: planned time is derived from subtasks", ErrInvalidInput)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
