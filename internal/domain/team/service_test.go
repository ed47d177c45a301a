package team_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rpggio/postflow/internal/domain/team"
	"github.com/rpggio/postflow/internal/repository"
	"github.com/rpggio/postflow/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTeamService_Create(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.TeamRepository{}
	repo.On("Create", ctx, mock.Anything).Return(nil)

	svc := team.NewService(repo, nil)
	m, err := svc.Create(ctx, team.CreateRequest{Name: " Luis ", Role: "editor", CapacityPerWeekHrs: 40})
	require.NoError(t, err)
	require.Equal(t, "Luis", m.Name)
	require.NotEmpty(t, m.ID)

	_, err = svc.Create(ctx, team.CreateRequest{Name: " "})
	require.ErrorIs(t, err, team.ErrInvalidInput)
	repo.AssertNumberOfCalls(t, "Create", 1)
}

func TestTeamService_ListAndDelete(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.TeamRepository{}
	repo.On("List", ctx).Return(nil, errors.New("disk"))
	repo.On("Delete", ctx, "gone").Return(repository.ErrNotFound)

	svc := team.NewService(repo, nil)
	_, err := svc.List(ctx)
	require.ErrorContains(t, err, "disk")
	require.ErrorIs(t, svc.Delete(ctx, "gone"), team.ErrMemberNotFound)
}
