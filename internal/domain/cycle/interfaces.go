package cycle

import (
	"context"

	"github.com/rpggio/postflow/internal/domain/project"
)

// Repository provides persistence for revision cycles.
type Repository interface {
	Create(ctx context.Context, c *Cycle) error
	Get(ctx context.Context, projectID, id string) (*Cycle, error)
	ListByProject(ctx context.Context, projectID string) ([]Cycle, error)
	ListAll(ctx context.Context) ([]Cycle, error)
	Update(ctx context.Context, c *Cycle) error
	DeleteByProject(ctx context.Context, projectID string) error
}

// HistoryRepository appends and reads transition events.
type HistoryRepository interface {
	Append(ctx context.Context, event *HistoryEvent) error
	ListByProject(ctx context.Context, projectID string) ([]HistoryEvent, error)
	DeleteByProject(ctx context.Context, projectID string) error
}

// ProjectService is the slice of project operations the cycle workflow drives.
type ProjectService interface {
	Get(ctx context.Context, id string) (*project.Project, error)
	SetCurrentCycle(ctx context.Context, id string, number int) error
	Complete(ctx context.Context, id string) (*project.Project, error)
}
