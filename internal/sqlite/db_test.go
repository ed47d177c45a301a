package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestDB creates a new in-memory SQLite database for testing
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test database")

	err = db.RunMigrations()
	require.NoError(t, err, "failed to run migrations")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// TestMigrations verifies that migrations run successfully
func TestMigrations(t *testing.T) {
	db := NewTestDB(t)

	tables := []string{
		"projects",
		"revision_cycles",
		"revision_history",
		"retainers",
		"team_members",
		"api_keys",
	}

	for _, table := range tables {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		require.NoError(t, err, "failed to query table %s", table)
		require.Equal(t, 1, count, "table %s not found", table)
	}

	// Running twice must not fail.
	require.NoError(t, db.RunMigrations())
}

// TestForeignKeys verifies that foreign key constraints are enabled
func TestForeignKeys(t *testing.T) {
	db := NewTestDB(t)

	var enabled int
	err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled)
	require.NoError(t, err)
	require.Equal(t, 1, enabled, "foreign keys not enabled")
}

func TestCyclesTable(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx,
		`INSERT INTO projects (id, name, client, stage, status) VALUES (?, ?, ?, ?, ?)`,
		"p1", "Spot", "Carbono", "grabacion", "Pendiente")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx,
		`INSERT INTO revision_cycles (id, project_id, number, status, started_at) VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		"c1", "p1", 1, "editando")
	require.NoError(t, err)

	// Duplicate number for the same project
	_, err = db.ExecContext(ctx,
		`INSERT INTO revision_cycles (id, project_id, number, status, started_at) VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		"c2", "p1", 1, "editando")
	require.Error(t, err)
	require.True(t, isUniqueViolation(err))

	// Unknown project
	_, err = db.ExecContext(ctx,
		`INSERT INTO revision_cycles (id, project_id, number, status, started_at) VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		"c3", "missing", 1, "editando")
	require.Error(t, err)
	require.True(t, isForeignKeyViolation(err))

	// Unknown status
	_, err = db.ExecContext(ctx,
		`INSERT INTO revision_cycles (id, project_id, number, status, started_at) VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		"c4", "p1", 2, "listo")
	require.Error(t, err)
}
