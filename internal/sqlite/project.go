package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rpggio/postflow/internal/domain/project"
	"github.com/rpggio/postflow/internal/repository"
)

var _ project.Repository = (*ProjectRepository)(nil)

// ProjectRepository implements project.Repository for SQLite
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `
	id, name, client, tag, manager, managers, stage, status,
	start_date, deadline, recording_date, income, properties,
	current_cycle, created_at, updated_at`

// Create creates a new project
func (r *ProjectRepository) Create(ctx context.Context, proj *project.Project) error {
	managers, properties, err := encodeProjectJSON(proj)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO projects (` + projectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		proj.ID,
		proj.Name,
		proj.Client,
		proj.Tag,
		proj.Manager,
		managers,
		proj.Stage,
		proj.Status,
		proj.StartDate,
		proj.Deadline,
		proj.RecordingDate,
		proj.Income,
		properties,
		proj.CurrentCycle,
		proj.CreatedAt,
		proj.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// Get retrieves a project by ID
func (r *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`

	proj, err := scanProject(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return proj, nil
}

// List returns projects ordered by deadline, then name.
func (r *ProjectRepository) List(ctx context.Context, opts project.ListOptions) ([]project.Project, error) {
	var where []string
	var args []any
	if opts.Status != nil {
		where = append(where, "status = ?")
		args = append(args, *opts.Status)
	}
	if opts.Stage != nil {
		where = append(where, "stage = ?")
		args = append(args, *opts.Stage)
	}
	if opts.Client != "" {
		where = append(where, "client = ? COLLATE NOCASE")
		args = append(args, opts.Client)
	}
	if opts.Manager != "" {
		where = append(where, `(manager = ? COLLATE NOCASE OR EXISTS (
			SELECT 1 FROM json_each(projects.managers) WHERE value = ? COLLATE NOCASE))`)
		args = append(args, opts.Manager, opts.Manager)
	}

	query := `SELECT ` + projectColumns + ` FROM projects`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY deadline = '', deadline ASC, name ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []project.Project{}
	for rows.Next() {
		proj, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *proj)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}

	return projects, nil
}

// Update replaces a project's stored fields. The last write wins.
func (r *ProjectRepository) Update(ctx context.Context, proj *project.Project) error {
	managers, properties, err := encodeProjectJSON(proj)
	if err != nil {
		return err
	}

	query := `
		UPDATE projects
		SET name = ?, client = ?, tag = ?, manager = ?, managers = ?, stage = ?, status = ?,
			start_date = ?, deadline = ?, recording_date = ?, income = ?, properties = ?,
			updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		proj.Name,
		proj.Client,
		proj.Tag,
		proj.Manager,
		managers,
		proj.Stage,
		proj.Status,
		proj.StartDate,
		proj.Deadline,
		proj.RecordingDate,
		proj.Income,
		properties,
		proj.UpdatedAt,
		proj.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	return requireAffected(result)
}

// SetCurrentCycle stores the project's current cycle number.
func (r *ProjectRepository) SetCurrentCycle(ctx context.Context, id string, number int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE projects SET current_cycle = ? WHERE id = ?`, number, id)
	if err != nil {
		return fmt.Errorf("failed to set current cycle: %w", err)
	}
	return requireAffected(result)
}

// Delete removes a project together with its cycles and history.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return requireAffected(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*project.Project, error) {
	var proj project.Project
	var managers, properties string
	err := row.Scan(
		&proj.ID,
		&proj.Name,
		&proj.Client,
		&proj.Tag,
		&proj.Manager,
		&managers,
		&proj.Stage,
		&proj.Status,
		&proj.StartDate,
		&proj.Deadline,
		&proj.RecordingDate,
		&proj.Income,
		&properties,
		&proj.CurrentCycle,
		&proj.CreatedAt,
		&proj.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if managers != "" {
		if err := json.Unmarshal([]byte(managers), &proj.Managers); err != nil {
			return nil, fmt.Errorf("decoding managers: %w", err)
		}
	}
	if properties != "" {
		if err := json.Unmarshal([]byte(properties), &proj.Properties); err != nil {
			return nil, fmt.Errorf("decoding properties: %w", err)
		}
	}
	if len(proj.Properties) == 0 {
		proj.Properties = nil
	}
	if len(proj.Managers) == 0 {
		proj.Managers = nil
	}
	return &proj, nil
}

func encodeProjectJSON(proj *project.Project) (string, string, error) {
	managers := proj.Managers
	if managers == nil {
		managers = []string{}
	}
	m, err := json.Marshal(managers)
	if err != nil {
		return "", "", fmt.Errorf("encoding managers: %w", err)
	}
	props := proj.Properties
	if props == nil {
		props = map[string]any{}
	}
	p, err := json.Marshal(props)
	if err != nil {
		return "", "", fmt.Errorf("encoding properties: %w", err)
	}
	return string(m), string(p), nil
}

func requireAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
