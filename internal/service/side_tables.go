package service

import (
	"context"
	"fmt"

	"github.com/alexanderramin/planboard/internal/domain"
	"golang.org/x/sync/errgroup"
)

// SideTables are the per-user tables the board enriches plan pages with.
type SideTables struct {
	Subtasks []*domain.Subtask
	Entries  []*domain.TimeEntry
	Projects []*domain.Project
}

// LoadSideTables reads subtasks, time entries and projects concurrently.
func LoadSideTables(ctx context.Context, userID string, subtasks SubtaskService, times TimeService, projects ProjectService) (SideTables, error) {
	var out SideTables
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := subtasks.List(ctx, userID)
		if err != nil {
			return fmt.Errorf("loading subtasks: %w", err)
		}
		out.Subtasks = list
		return nil
	})
	g.Go(func() error {
		list, err := times.List(ctx, userID)
		if err != nil {
			return fmt.Errorf("loading time entries: %w", err)
		}
		out.Entries = list
		return nil
	})
	g.Go(func() error {
		list, err := projects.List(ctx, userID)
		if err != nil {
			return fmt.Errorf("loading projects: %w", err)
		}
		out.Projects = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return SideTables{}, err
	}
	return out, nil
}
