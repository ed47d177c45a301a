package cycle_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rpggio/postflow/internal/domain/cycle"
	"github.com/rpggio/postflow/internal/domain/project"
	"github.com/rpggio/postflow/internal/repository"
	"github.com/rpggio/postflow/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	cycles   *mocks.CycleRepository
	history  *mocks.HistoryRepository
	projects *mocks.ProjectService
	svc      *cycle.Service
}

func newFixture() *fixture {
	f := &fixture{
		cycles:   &mocks.CycleRepository{},
		history:  &mocks.HistoryRepository{},
		projects: &mocks.ProjectService{},
	}
	f.svc = cycle.NewService(f.cycles, f.history, f.projects, nil)
	return f
}

func TestCycleService_CreateCycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.projects.On("Get", ctx, "p1").Return(&project.Project{ID: "p1", CurrentCycle: 0}, nil)
	f.cycles.On("ListByProject", ctx, "p1").Return([]cycle.Cycle{}, nil)
	f.cycles.On("Create", ctx, mock.Anything).Return(nil)
	f.projects.On("SetCurrentCycle", ctx, "p1", 1).Return(nil)

	c, err := f.svc.CreateCycle(ctx, "p1", cycle.CreateRequest{Number: 1})
	require.NoError(t, err)
	require.Equal(t, cycle.StatusEditing, c.Status)
	require.Equal(t, 1, c.Number)
	f.projects.AssertExpectations(t)
}

func TestCycleService_CreateCycleDuplicate(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.projects.On("Get", ctx, "p1").Return(&project.Project{ID: "p1", CurrentCycle: 1}, nil)
	f.cycles.On("ListByProject", ctx, "p1").Return([]cycle.Cycle{{ID: "c1", ProjectID: "p1", Number: 1}}, nil)

	_, err := f.svc.CreateCycle(ctx, "p1", cycle.CreateRequest{Number: 1})
	require.ErrorIs(t, err, cycle.ErrCycleExists)
	f.cycles.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	// A concurrent insert surfaces as a storage conflict.
	f2 := newFixture()
	f2.projects.On("Get", ctx, "p1").Return(&project.Project{ID: "p1"}, nil)
	f2.cycles.On("ListByProject", ctx, "p1").Return([]cycle.Cycle{}, nil)
	f2.cycles.On("Create", ctx, mock.Anything).Return(repository.ErrConflict)
	_, err = f2.svc.CreateCycle(ctx, "p1", cycle.CreateRequest{Number: 1})
	require.ErrorIs(t, err, cycle.ErrCycleExists)
}

func TestCycleService_CreateCycleInvalid(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.svc.CreateCycle(ctx, "p1", cycle.CreateRequest{Number: 0})
	require.ErrorIs(t, err, cycle.ErrInvalidInput)

	_, err = f.svc.CreateCycle(ctx, "p1", cycle.CreateRequest{Number: 1, Status: "listo"})
	require.ErrorIs(t, err, cycle.ErrInvalidInput)
}

func TestCycleService_MoveToStep(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.cycles.On("Get", ctx, "p1", "c1").Return(&cycle.Cycle{ID: "c1", ProjectID: "p1", Number: 1, Status: cycle.StatusEditing}, nil)
	f.cycles.On("Update", ctx, mock.MatchedBy(func(c *cycle.Cycle) bool {
		return c.Status == cycle.StatusSent && c.SentAt != nil
	})).Return(nil)
	f.history.On("Append", ctx, mock.MatchedBy(func(e *cycle.HistoryEvent) bool {
		return e.CycleID == "c1" && e.FromStatus == cycle.StatusEditing && e.ToStatus == cycle.StatusSent
	})).Return(nil)

	c, err := f.svc.MoveToStep(ctx, "p1", "c1", cycle.StatusSent, "")
	require.NoError(t, err)
	require.Equal(t, cycle.StatusSent, c.Status)
	f.cycles.AssertExpectations(t)
	f.history.AssertExpectations(t)
}

func TestCycleService_MoveToStepIllegal(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.cycles.On("Get", ctx, "p1", "c1").Return(&cycle.Cycle{ID: "c1", ProjectID: "p1", Number: 1, Status: cycle.StatusEditing}, nil)

	_, err := f.svc.MoveToStep(ctx, "p1", "c1", cycle.StatusApproved, "")
	require.ErrorIs(t, err, cycle.ErrInvalidTransition)
	f.cycles.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	f.history.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestCycleService_MoveToStepHistoryFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.cycles.On("Get", ctx, "p1", "c1").Return(&cycle.Cycle{ID: "c1", ProjectID: "p1", Number: 1, Status: cycle.StatusSent}, nil)
	f.cycles.On("Update", ctx, mock.Anything).Return(nil)
	f.history.On("Append", ctx, mock.Anything).Return(errors.New("disk full"))

	c, err := f.svc.MoveToStep(ctx, "p1", "c1", cycle.StatusCorrecting, "cambios de color")
	require.ErrorIs(t, err, cycle.ErrHistoryNotRecorded)
	require.NotNil(t, c, "the cycle change is kept")
	require.Equal(t, cycle.StatusCorrecting, c.Status)
	require.NotNil(t, c.ClientReturnedAt)
}

func TestCycleService_MoveToStepNotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.cycles.On("Get", ctx, "p1", "missing").Return((*cycle.Cycle)(nil), repository.ErrNotFound)

	_, err := f.svc.MoveToStep(ctx, "p1", "missing", cycle.StatusSent, "")
	require.ErrorIs(t, err, cycle.ErrCycleNotFound)
}

func TestCycleService_MarkApprovedOpensNextCycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	current := &cycle.Cycle{ID: "c1", ProjectID: "p1", Number: 1, Status: cycle.StatusCorrecting}
	f.cycles.On("Get", ctx, "p1", "c1").Return(current, nil)
	f.cycles.On("Update", ctx, mock.Anything).Return(nil)
	f.history.On("Append", ctx, mock.Anything).Return(nil)
	f.projects.On("Get", ctx, "p1").Return(&project.Project{ID: "p1", CurrentCycle: 1}, nil)
	f.cycles.On("ListByProject", ctx, "p1").Return([]cycle.Cycle{{ID: "c1", ProjectID: "p1", Number: 1, Status: cycle.StatusApproved}}, nil)
	f.cycles.On("Create", ctx, mock.MatchedBy(func(c *cycle.Cycle) bool {
		return c.Number == 2 && c.Status == cycle.StatusEditing
	})).Return(nil).Once()
	f.projects.On("SetCurrentCycle", ctx, "p1", 2).Return(nil)

	result, err := f.svc.MarkApproved(ctx, "p1", "c1", cycle.ApproveRequest{})
	require.NoError(t, err)
	require.Equal(t, cycle.StatusApproved, result.Cycle.Status)
	require.NotNil(t, result.Next)
	require.Equal(t, 2, result.Next.Number)
	require.Equal(t, cycle.StatusEditing, result.Next.Status)
	require.Nil(t, result.Project)
	f.cycles.AssertNumberOfCalls(t, "Create", 1)
	f.projects.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestCycleService_MarkApprovedContinuesAfterHistoryFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.cycles.On("Get", ctx, "p1", "c1").Return(&cycle.Cycle{ID: "c1", ProjectID: "p1", Number: 1, Status: cycle.StatusSent}, nil)
	f.cycles.On("Update", ctx, mock.Anything).Return(nil)
	f.history.On("Append", ctx, mock.Anything).Return(errors.New("disk full"))
	f.projects.On("Get", ctx, "p1").Return(&project.Project{ID: "p1", CurrentCycle: 1}, nil)
	f.cycles.On("ListByProject", ctx, "p1").Return([]cycle.Cycle{{ID: "c1", ProjectID: "p1", Number: 1, Status: cycle.StatusApproved}}, nil)
	f.cycles.On("Create", ctx, mock.Anything).Return(nil)
	f.projects.On("SetCurrentCycle", ctx, "p1", 2).Return(nil)

	result, err := f.svc.MarkApproved(ctx, "p1", "c1", cycle.ApproveRequest{})
	require.ErrorIs(t, err, cycle.ErrHistoryNotRecorded)
	require.NotNil(t, result)
	require.Equal(t, cycle.StatusApproved, result.Cycle.Status)
	require.NotNil(t, result.Next)
	require.Equal(t, 2, result.Next.Number)

	finalize := newFixture()
	finalize.cycles.On("Get", ctx, "p1", "c1").Return(&cycle.Cycle{ID: "c1", ProjectID: "p1", Number: 1, Status: cycle.StatusCorrecting}, nil)
	finalize.cycles.On("Update", ctx, mock.Anything).Return(nil)
	finalize.history.On("Append", ctx, mock.Anything).Return(errors.New("disk full"))
	finalize.projects.On("Complete", ctx, "p1").Return(&project.Project{ID: "p1", Status: project.StatusCompleted}, nil)

	result, err = finalize.svc.MarkApproved(ctx, "p1", "c1", cycle.ApproveRequest{Finalize: true})
	require.ErrorIs(t, err, cycle.ErrHistoryNotRecorded)
	require.Equal(t, project.StatusCompleted, result.Project.Status)
}

func TestCycleService_MarkApprovedFinalize(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.cycles.On("Get", ctx, "p1", "c2").Return(&cycle.Cycle{ID: "c2", ProjectID: "p1", Number: 2, Status: cycle.StatusAwaitingFeedback}, nil)
	f.cycles.On("Update", ctx, mock.Anything).Return(nil)
	f.history.On("Append", ctx, mock.Anything).Return(nil)
	f.projects.On("Complete", ctx, "p1").Return(&project.Project{ID: "p1", Status: project.StatusCompleted, Stage: project.StageDelivered}, nil)

	result, err := f.svc.MarkApproved(ctx, "p1", "c2", cycle.ApproveRequest{Finalize: true})
	require.NoError(t, err)
	require.Nil(t, result.Next)
	require.Equal(t, project.StatusCompleted, result.Project.Status)
	f.cycles.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCycleService_MarkApprovedFromEditing(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.cycles.On("Get", ctx, "p1", "c1").Return(&cycle.Cycle{ID: "c1", ProjectID: "p1", Number: 1, Status: cycle.StatusEditing}, nil)

	_, err := f.svc.MarkApproved(ctx, "p1", "c1", cycle.ApproveRequest{})
	require.ErrorIs(t, err, cycle.ErrInvalidTransition)
}

func TestCycleService_ResetCycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.projects.On("Get", ctx, "p1").Return(&project.Project{ID: "p1", CurrentCycle: 0}, nil)
	f.history.On("DeleteByProject", ctx, "p1").Return(nil)
	f.cycles.On("DeleteByProject", ctx, "p1").Return(nil)
	f.projects.On("SetCurrentCycle", ctx, "p1", 0).Return(nil)
	f.cycles.On("ListByProject", ctx, "p1").Return([]cycle.Cycle{}, nil)
	f.cycles.On("Create", ctx, mock.Anything).Return(nil)
	f.projects.On("SetCurrentCycle", ctx, "p1", 1).Return(nil)

	c, err := f.svc.ResetCycle(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 1, c.Number)
	require.Equal(t, cycle.StatusEditing, c.Status)
	f.history.AssertExpectations(t)
	f.cycles.AssertExpectations(t)
}

func TestCycleService_BoardCreatesFirstCycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	created := cycle.Cycle{ID: "c1", ProjectID: "p1", Number: 1, Status: cycle.StatusEditing, StartedAt: time.Now()}
	f.projects.On("Get", ctx, "p1").Return(&project.Project{ID: "p1"}, nil)
	f.cycles.On("ListByProject", ctx, "p1").Return([]cycle.Cycle{}, nil).Twice()
	f.cycles.On("Create", ctx, mock.Anything).Return(nil)
	f.projects.On("SetCurrentCycle", ctx, "p1", 1).Return(nil)
	f.cycles.On("ListByProject", ctx, "p1").Return([]cycle.Cycle{created}, nil)
	f.history.On("ListByProject", ctx, "p1").Return([]cycle.HistoryEvent(nil), nil)

	b, err := f.svc.Board(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, b.Current)
	require.Equal(t, 1, b.Current.Number)
	require.Len(t, b.Cycles, 1)
	require.NotNil(t, b.History)
}
