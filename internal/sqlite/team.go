package sqlite

import (
	"context"
	"fmt"

	"github.com/rpggio/postflow/internal/domain/team"
)

var _ team.Repository = (*TeamRepository)(nil)

// TeamRepository implements team.Repository for SQLite
type TeamRepository struct {
	db *DB
}

// NewTeamRepository creates a new TeamRepository
func NewTeamRepository(db *DB) *TeamRepository {
	return &TeamRepository{db: db}
}

// Create inserts a team member
func (r *TeamRepository) Create(ctx context.Context, m *team.Member) error {
	query := `
		INSERT INTO team_members (id, name, role, capacity_per_week_hrs, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := r.db.ExecContext(ctx, query, m.ID, m.Name, m.Role, m.CapacityPerWeekHrs, m.CreatedAt); err != nil {
		return fmt.Errorf("failed to create team member: %w", err)
	}
	return nil
}

// List returns the roster ordered by name
func (r *TeamRepository) List(ctx context.Context) ([]team.Member, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, role, capacity_per_week_hrs, created_at
		FROM team_members
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list team: %w", err)
	}
	defer rows.Close()

	members := []team.Member{}
	for rows.Next() {
		var m team.Member
		if err := rows.Scan(&m.ID, &m.Name, &m.Role, &m.CapacityPerWeekHrs, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}
		members = append(members, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team rows: %w", err)
	}
	return members, nil
}

// Delete removes a team member
func (r *TeamRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM team_members WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete team member: %w", err)
	}
	return requireAffected(result)
}
