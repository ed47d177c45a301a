package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rpggio/postflow/internal/domain/retainer"
	"github.com/rpggio/postflow/internal/repository"
)

var _ retainer.Repository = (*RetainerRepository)(nil)

// RetainerRepository implements retainer.Repository for SQLite
type RetainerRepository struct {
	db *DB
}

// NewRetainerRepository creates a new RetainerRepository
func NewRetainerRepository(db *DB) *RetainerRepository {
	return &RetainerRepository{db: db}
}

const retainerColumns = `id, client, monthly, projects_per_month, tag, active, created_at`

// Create inserts a retainer
func (r *RetainerRepository) Create(ctx context.Context, ret *retainer.Retainer) error {
	query := `INSERT INTO retainers (` + retainerColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		ret.ID,
		ret.Client,
		ret.Monthly,
		ret.ProjectsPerMonth,
		ret.Tag,
		ret.Active,
		ret.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create retainer: %w", err)
	}
	return nil
}

// Get retrieves a retainer by ID
func (r *RetainerRepository) Get(ctx context.Context, id string) (*retainer.Retainer, error) {
	query := `SELECT ` + retainerColumns + ` FROM retainers WHERE id = ?`
	ret, err := scanRetainer(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get retainer: %w", err)
	}
	return ret, nil
}

// List returns retainers ordered by client
func (r *RetainerRepository) List(ctx context.Context, activeOnly bool) ([]retainer.Retainer, error) {
	query := `SELECT ` + retainerColumns + ` FROM retainers`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY client ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list retainers: %w", err)
	}
	defer rows.Close()

	retainers := []retainer.Retainer{}
	for rows.Next() {
		ret, err := scanRetainer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan retainer: %w", err)
		}
		retainers = append(retainers, *ret)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating retainer rows: %w", err)
	}
	return retainers, nil
}

// Update stores a retainer's fields
func (r *RetainerRepository) Update(ctx context.Context, ret *retainer.Retainer) error {
	query := `
		UPDATE retainers
		SET client = ?, monthly = ?, projects_per_month = ?, tag = ?, active = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		ret.Client,
		ret.Monthly,
		ret.ProjectsPerMonth,
		ret.Tag,
		ret.Active,
		ret.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update retainer: %w", err)
	}
	return requireAffected(result)
}

// Delete removes a retainer
func (r *RetainerRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM retainers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete retainer: %w", err)
	}
	return requireAffected(result)
}

func scanRetainer(row rowScanner) (*retainer.Retainer, error) {
	var ret retainer.Retainer
	err := row.Scan(
		&ret.ID,
		&ret.Client,
		&ret.Monthly,
		&ret.ProjectsPerMonth,
		&ret.Tag,
		&ret.Active,
		&ret.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ret, nil
}
