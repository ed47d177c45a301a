package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/postflow/internal/domain/retainer"
	"github.com/rpggio/postflow/internal/domain/team"
	"github.com/rpggio/postflow/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestRetainerRepository(t *testing.T) {
	db := NewTestDB(t)
	repo := NewRetainerRepository(db)
	ctx := context.Background()

	r := &retainer.Retainer{ID: "r1", Client: "Carbono", Monthly: 2000, ProjectsPerMonth: 4, Tag: "carbono", Active: true, CreatedAt: time.Now().UTC()}
	require.NoError(t, repo.Create(ctx, r))
	require.NoError(t, repo.Create(ctx, &retainer.Retainer{ID: "r2", Client: "Antiguo", Active: false, CreatedAt: time.Now().UTC()}))

	got, err := repo.Get(ctx, "r1")
	require.NoError(t, err)
	require.Equal(t, 4, got.ProjectsPerMonth)
	require.True(t, got.Active)

	all, err := repo.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)

	active, err := repo.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, "r1", active[0].ID)

	got.Active = false
	require.NoError(t, repo.Update(ctx, got))
	active, err = repo.List(ctx, true)
	require.NoError(t, err)
	require.Empty(t, active)

	require.NoError(t, repo.Delete(ctx, "r1"))
	_, err = repo.Get(ctx, "r1")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTeamRepository(t *testing.T) {
	db := NewTestDB(t)
	repo := NewTeamRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &team.Member{ID: "m2", Name: "Luis", Role: "editor", CapacityPerWeekHrs: 30, CreatedAt: time.Now().UTC()}))
	require.NoError(t, repo.Create(ctx, &team.Member{ID: "m1", Name: "Ana", Role: "productora", CapacityPerWeekHrs: 40, CreatedAt: time.Now().UTC()}))

	members, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, members, 2)
	require.Equal(t, "Ana", members[0].Name)
	require.Equal(t, 40.0, members[0].CapacityPerWeekHrs)

	require.NoError(t, repo.Delete(ctx, "m1"))
	require.ErrorIs(t, repo.Delete(ctx, "m1"), repository.ErrNotFound)
}

func TestAPIKeyRepository(t *testing.T) {
	db := NewTestDB(t)
	repo := NewAPIKeyRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, "secret-token", "ci"))
	require.ErrorIs(t, repo.Add(ctx, "secret-token", "again"), repository.ErrConflict)

	require.NoError(t, repo.Lookup(ctx, "secret-token"))
	require.ErrorIs(t, repo.Lookup(ctx, "other"), repository.ErrNotFound)

	var stored string
	require.NoError(t, db.QueryRow(`SELECT key_hash FROM api_keys`).Scan(&stored))
	require.Equal(t, HashToken("secret-token"), stored)
	require.NotEqual(t, "secret-token", stored)
}
