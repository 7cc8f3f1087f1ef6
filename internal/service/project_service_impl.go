package service

import (
	"context"
	"strings"
	"time"

	"github.com/alexanderramin/planboard/internal/db"
	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/alexanderramin/planboard/internal/repository"
	"github.com/google/uuid"
)

type projectService struct {
	projects repository.ProjectRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewProjectService(projects repository.ProjectRepo, uow db.UnitOfWork, observers ...UseCaseObserver) ProjectService {
	return &projectService{projects: projects, uow: uow, observer: useCaseObserverOrNoop(observers)}
}

// Create appends p after the user's existing projects.
func (s *projectService) Create(ctx context.Context, p *domain.Project) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		finishUseCase(ctx, s.observer, "project.create", startedAt, map[string]any{"project_id": p.ID}, &err)
	}()

	if strings.TrimSpace(p.Name) == "" {
		return invalidf("project name is required")
	}
	if p.UserID == "" {
		return invalidf("project user is required")
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txProjects := repository.NewSQLiteProjectRepo(tx)
		existing, err := txProjects.ListByUser(ctx, p.UserID)
		if err != nil {
			return err
		}
		p.Position = len(existing)
		return txProjects.Create(ctx, p)
	})
}

func (s *projectService) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	return s.projects.GetByID(ctx, id)
}

func (s *projectService) List(ctx context.Context, userID string) ([]*domain.Project, error) {
	return s.projects.ListByUser(ctx, userID)
}

func (s *projectService) Update(ctx context.Context, p *domain.Project) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		finishUseCase(ctx, s.observer, "project.update", startedAt, map[string]any{"project_id": p.ID}, &err)
	}()

	if strings.TrimSpace(p.Name) == "" {
		return invalidf("project name is required")
	}
	p.UpdatedAt = time.Now().UTC()
	return s.projects.Update(ctx, p)
}

// Delete removes the project. Its tasks stay and lose their project.
func (s *projectService) Delete(ctx context.Context, id string) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		finishUseCase(ctx, s.observer, "project.delete", startedAt, map[string]any{"project_id": id}, &err)
	}()

	return s.projects.Delete(ctx, id)
}

func (s *projectService) Reorder(ctx context.Context, userID string, orderedIDs []string) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		finishUseCase(ctx, s.observer, "project.reorder", startedAt, map[string]any{"count": len(orderedIDs)}, &err)
	}()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txProjects := repository.NewSQLiteProjectRepo(tx)
		current, err := txProjects.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		ids := make([]string, len(current))
		for i, p := range current {
			ids[i] = p.ID
		}
		if err := checkPermutation(ids, orderedIDs); err != nil {
			return err
		}
		for i, id := range orderedIDs {
			if err := txProjects.UpdatePosition(ctx, id, i); err != nil {
				return err
			}
		}
		return nil
	})
}
