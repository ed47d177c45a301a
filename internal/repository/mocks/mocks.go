package mocks

import (
	"context"

	"github.com/rpggio/postflow/internal/domain/cycle"
	"github.com/rpggio/postflow/internal/domain/project"
	"github.com/rpggio/postflow/internal/domain/retainer"
	"github.com/rpggio/postflow/internal/domain/team"
	"github.com/stretchr/testify/mock"
)

// ProjectRepository is a mock for project.Repository.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Create(ctx context.Context, proj *project.Project) error {
	args := m.Called(ctx, proj)
	return args.Error(0)
}

func (m *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	args := m.Called(ctx, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) List(ctx context.Context, opts project.ListOptions) ([]project.Project, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]project.Project); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) Update(ctx context.Context, proj *project.Project) error {
	args := m.Called(ctx, proj)
	return args.Error(0)
}

func (m *ProjectRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ProjectRepository) SetCurrentCycle(ctx context.Context, id string, number int) error {
	args := m.Called(ctx, id, number)
	return args.Error(0)
}

// CycleRepository is a mock for cycle.Repository.
type CycleRepository struct {
	mock.Mock
}

func (m *CycleRepository) Create(ctx context.Context, c *cycle.Cycle) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *CycleRepository) Get(ctx context.Context, projectID, id string) (*cycle.Cycle, error) {
	args := m.Called(ctx, projectID, id)
	if c, ok := args.Get(0).(*cycle.Cycle); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CycleRepository) ListByProject(ctx context.Context, projectID string) ([]cycle.Cycle, error) {
	args := m.Called(ctx, projectID)
	if list, ok := args.Get(0).([]cycle.Cycle); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CycleRepository) ListAll(ctx context.Context) ([]cycle.Cycle, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]cycle.Cycle); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CycleRepository) Update(ctx context.Context, c *cycle.Cycle) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *CycleRepository) DeleteByProject(ctx context.Context, projectID string) error {
	args := m.Called(ctx, projectID)
	return args.Error(0)
}

// HistoryRepository is a mock for cycle.HistoryRepository.
type HistoryRepository struct {
	mock.Mock
}

func (m *HistoryRepository) Append(ctx context.Context, event *cycle.HistoryEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *HistoryRepository) ListByProject(ctx context.Context, projectID string) ([]cycle.HistoryEvent, error) {
	args := m.Called(ctx, projectID)
	if list, ok := args.Get(0).([]cycle.HistoryEvent); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *HistoryRepository) DeleteByProject(ctx context.Context, projectID string) error {
	args := m.Called(ctx, projectID)
	return args.Error(0)
}

// ProjectService is a mock for cycle.ProjectService.
type ProjectService struct {
	mock.Mock
}

func (m *ProjectService) Get(ctx context.Context, id string) (*project.Project, error) {
	args := m.Called(ctx, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectService) SetCurrentCycle(ctx context.Context, id string, number int) error {
	args := m.Called(ctx, id, number)
	return args.Error(0)
}

func (m *ProjectService) Complete(ctx context.Context, id string) (*project.Project, error) {
	args := m.Called(ctx, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

// RetainerRepository is a mock for retainer.Repository.
type RetainerRepository struct {
	mock.Mock
}

func (m *RetainerRepository) Create(ctx context.Context, r *retainer.Retainer) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *RetainerRepository) Get(ctx context.Context, id string) (*retainer.Retainer, error) {
	args := m.Called(ctx, id)
	if r, ok := args.Get(0).(*retainer.Retainer); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RetainerRepository) List(ctx context.Context, activeOnly bool) ([]retainer.Retainer, error) {
	args := m.Called(ctx, activeOnly)
	if list, ok := args.Get(0).([]retainer.Retainer); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RetainerRepository) Update(ctx context.Context, r *retainer.Retainer) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *RetainerRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// TeamRepository is a mock for team.Repository.
type TeamRepository struct {
	mock.Mock
}

func (m *TeamRepository) Create(ctx context.Context, member *team.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *TeamRepository) List(ctx context.Context) ([]team.Member, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]team.Member); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TeamRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
