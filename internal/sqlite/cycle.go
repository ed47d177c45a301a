package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rpggio/postflow/internal/domain/cycle"
	"github.com/rpggio/postflow/internal/repository"
)

var _ cycle.Repository = (*CycleRepository)(nil)

// CycleRepository implements cycle.Repository for SQLite
type CycleRepository struct {
	db *DB
}

// NewCycleRepository creates a new CycleRepository
func NewCycleRepository(db *DB) *CycleRepository {
	return &CycleRepository{db: db}
}

const cycleColumns = `id, project_id, number, status, started_at, sent_at, client_returned_at, notes`

// Create inserts a cycle. A duplicate (project, number) pair is a conflict.
func (r *CycleRepository) Create(ctx context.Context, c *cycle.Cycle) error {
	query := `
		INSERT INTO revision_cycles (` + cycleColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.ProjectID,
		c.Number,
		c.Status,
		c.StartedAt,
		nullTime(c.SentAt),
		nullTime(c.ClientReturnedAt),
		c.Notes,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to create cycle: %w", err)
	}
	return nil
}

// Get retrieves a cycle belonging to a project
func (r *CycleRepository) Get(ctx context.Context, projectID, id string) (*cycle.Cycle, error) {
	query := `SELECT ` + cycleColumns + ` FROM revision_cycles WHERE id = ? AND project_id = ?`
	c, err := scanCycle(r.db.QueryRowContext(ctx, query, id, projectID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cycle: %w", err)
	}
	return c, nil
}

// ListByProject returns a project's cycles ordered by number
func (r *CycleRepository) ListByProject(ctx context.Context, projectID string) ([]cycle.Cycle, error) {
	query := `SELECT ` + cycleColumns + ` FROM revision_cycles WHERE project_id = ? ORDER BY number ASC`
	return r.list(ctx, query, projectID)
}

// ListAll returns every cycle ordered by project and number
func (r *CycleRepository) ListAll(ctx context.Context) ([]cycle.Cycle, error) {
	query := `SELECT ` + cycleColumns + ` FROM revision_cycles ORDER BY project_id ASC, number ASC`
	return r.list(ctx, query)
}

func (r *CycleRepository) list(ctx context.Context, query string, args ...any) ([]cycle.Cycle, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list cycles: %w", err)
	}
	defer rows.Close()

	cycles := []cycle.Cycle{}
	for rows.Next() {
		c, err := scanCycle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cycle: %w", err)
		}
		cycles = append(cycles, *c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cycle rows: %w", err)
	}
	return cycles, nil
}

// Update stores a cycle's status, timestamps and notes
func (r *CycleRepository) Update(ctx context.Context, c *cycle.Cycle) error {
	query := `
		UPDATE revision_cycles
		SET status = ?, sent_at = ?, client_returned_at = ?, notes = ?
		WHERE id = ? AND project_id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		c.Status,
		nullTime(c.SentAt),
		nullTime(c.ClientReturnedAt),
		c.Notes,
		c.ID,
		c.ProjectID,
	)
	if err != nil {
		return fmt.Errorf("failed to update cycle: %w", err)
	}
	return requireAffected(result)
}

// DeleteByProject removes every cycle of a project
func (r *CycleRepository) DeleteByProject(ctx context.Context, projectID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM revision_cycles WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("failed to delete cycles: %w", err)
	}
	return nil
}

func scanCycle(row rowScanner) (*cycle.Cycle, error) {
	var c cycle.Cycle
	var sentAt, returnedAt sql.NullTime
	err := row.Scan(
		&c.ID,
		&c.ProjectID,
		&c.Number,
		&c.Status,
		&c.StartedAt,
		&sentAt,
		&returnedAt,
		&c.Notes,
	)
	if err != nil {
		return nil, err
	}
	if sentAt.Valid {
		c.SentAt = &sentAt.Time
	}
	if returnedAt.Valid {
		c.ClientReturnedAt = &returnedAt.Time
	}
	return &c, nil
}
