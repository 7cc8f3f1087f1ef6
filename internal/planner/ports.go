package planner

import (
	"context"
	"time"

	"github.com/alexanderramin/planboard/internal/domain"
)

// PlanSource reads scheduled tasks for an inclusive date range, ordered by
// position.
type PlanSource interface {
	FetchPlanRange(ctx context.Context, userID string, start, end time.Time) ([]domain.ScheduledTask, error)
}

// PlanWriter persists a batch of position/date reassignments atomically.
type PlanWriter interface {
	ApplyPlanUpdates(ctx context.Context, updates []domain.PlanUpdate) error
}

// PlanService is the backing store as the board sees it.
type PlanService interface {
	PlanSource
	PlanWriter
}
