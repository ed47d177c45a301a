package sqlite

import (
	"context"
	"fmt"

	"github.com/rpggio/postflow/internal/domain/cycle"
	"github.com/rpggio/postflow/internal/repository"
)

var _ cycle.HistoryRepository = (*HistoryRepository)(nil)

// HistoryRepository implements cycle.HistoryRepository for SQLite
type HistoryRepository struct {
	db *DB
}

// NewHistoryRepository creates a new HistoryRepository
func NewHistoryRepository(db *DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Append inserts a transition event and sets its ID.
func (r *HistoryRepository) Append(ctx context.Context, event *cycle.HistoryEvent) error {
	query := `
		INSERT INTO revision_history (cycle_id, from_status, to_status, occurred_at, notes)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		event.CycleID,
		event.FromStatus,
		event.ToStatus,
		event.OccurredAt,
		event.Notes,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to append history event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get history event id: %w", err)
	}
	event.ID = id
	return nil
}

// ListByProject returns a project's events oldest first
func (r *HistoryRepository) ListByProject(ctx context.Context, projectID string) ([]cycle.HistoryEvent, error) {
	query := `
		SELECT h.id, h.cycle_id, h.from_status, h.to_status, h.occurred_at, h.notes
		FROM revision_history h
		JOIN revision_cycles c ON c.id = h.cycle_id
		WHERE c.project_id = ?
		ORDER BY h.occurred_at ASC, h.id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	events := []cycle.HistoryEvent{}
	for rows.Next() {
		var e cycle.HistoryEvent
		if err := rows.Scan(&e.ID, &e.CycleID, &e.FromStatus, &e.ToStatus, &e.OccurredAt, &e.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan history event: %w", err)
		}
		events = append(events, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history rows: %w", err)
	}
	return events, nil
}

// DeleteByProject removes every event of a project's cycles
func (r *HistoryRepository) DeleteByProject(ctx context.Context, projectID string) error {
	query := `
		DELETE FROM revision_history
		WHERE cycle_id IN (SELECT id FROM revision_cycles WHERE project_id = ?)
	`
	if _, err := r.db.ExecContext(ctx, query, projectID); err != nil {
		return fmt.Errorf("failed to delete history: %w", err)
	}
	return nil
}
