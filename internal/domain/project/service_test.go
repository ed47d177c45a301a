package project_test

import (
	"context"
	"testing"

	"github.com/rpggio/postflow/internal/domain/project"
	"github.com/rpggio/postflow/internal/repository"
	"github.com/rpggio/postflow/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProjectService_CreateDefaults(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProjectRepository{}
	repo.On("Create", ctx, mock.Anything).Return(nil)

	svc := project.NewService(repo, nil)
	proj, err := svc.Create(ctx, project.CreateRequest{Name: " Spot ", Client: "Carbono"})
	require.NoError(t, err)
	require.NotEmpty(t, proj.ID)
	require.Equal(t, "Spot", proj.Name)
	require.Equal(t, project.StageRecording, proj.Stage)
	require.Equal(t, project.StatusPending, proj.Status)
	repo.AssertExpectations(t)
}

func TestProjectService_CreateValidation(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProjectRepository{}
	svc := project.NewService(repo, nil)

	_, err := svc.Create(ctx, project.CreateRequest{Name: "", Client: "Carbono"})
	require.ErrorIs(t, err, project.ErrInvalidInput)

	_, err = svc.Create(ctx, project.CreateRequest{Name: "Spot", Client: ""})
	require.ErrorIs(t, err, project.ErrInvalidInput)

	_, err = svc.Create(ctx, project.CreateRequest{Name: "Spot", Client: "Carbono", StartDate: "2025-02-10", Deadline: "2025-02-01"})
	require.ErrorIs(t, err, project.ErrInvalidInput)

	_, err = svc.Create(ctx, project.CreateRequest{Name: "Spot", Client: "Carbono", Deadline: "10/02/2025"})
	require.ErrorIs(t, err, project.ErrInvalidInput)

	// Validation happens before any storage call.
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProjectService_CreateConflict(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProjectRepository{}
	repo.On("Create", ctx, mock.Anything).Return(repository.ErrConflict)

	svc := project.NewService(repo, nil)
	_, err := svc.Create(ctx, project.CreateRequest{ID: "p1", Name: "Spot", Client: "Carbono"})
	require.ErrorIs(t, err, project.ErrInvalidInput)
}

func TestProjectService_GetNotFound(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProjectRepository{}
	repo.On("Get", ctx, "missing").Return((*project.Project)(nil), repository.ErrNotFound)

	svc := project.NewService(repo, nil)
	_, err := svc.Get(ctx, "missing")
	require.ErrorIs(t, err, project.ErrProjectNotFound)
}

func TestProjectService_PatchMergesProperties(t *testing.T) {
	ctx := context.Background()

	existing := &project.Project{
		ID:         "p1",
		Name:       "Spot",
		Client:     "Carbono",
		Stage:      project.StageEditing,
		Status:     project.StatusInProgress,
		Properties: map[string]any{"tag": "carbono", "notes": "x"},
	}
	repo := &mocks.ProjectRepository{}
	repo.On("Get", ctx, "p1").Return(existing, nil)
	repo.On("Update", ctx, mock.MatchedBy(func(p *project.Project) bool {
		return p.Property("tag") == "carbono" && p.Property("color") == "red" && p.Properties["notes"] == nil
	})).Return(nil)

	svc := project.NewService(repo, nil)
	updated, err := svc.Patch(ctx, "p1", project.Patch{Properties: map[string]any{"color": "red", "notes": nil}})
	require.NoError(t, err)
	require.Equal(t, "red", updated.Property("color"))
	require.Equal(t, "x", existing.Property("notes"), "stored copy is not mutated")
	repo.AssertExpectations(t)
}

func TestProjectService_Complete(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProjectRepository{}
	repo.On("Get", ctx, "p1").Return(&project.Project{
		ID: "p1", Name: "Spot", Client: "Carbono", Stage: project.StageCorrections, Status: project.StatusInReview,
	}, nil)
	repo.On("Update", ctx, mock.Anything).Return(nil)

	svc := project.NewService(repo, nil)
	proj, err := svc.Complete(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, project.StatusCompleted, proj.Status)
	require.Equal(t, project.StageDelivered, proj.Stage)
	require.NotEmpty(t, proj.Property("completedAt"))
}

func TestProjectService_DeleteNotFound(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProjectRepository{}
	repo.On("Delete", ctx, "missing").Return(repository.ErrNotFound)

	svc := project.NewService(repo, nil)
	require.ErrorIs(t, svc.Delete(ctx, "missing"), project.ErrProjectNotFound)
}
