package retainer

import "context"

// Repository provides persistence for retainers.
type Repository interface {
	Create(ctx context.Context, r *Retainer) error
	Get(ctx context.Context, id string) (*Retainer, error)
	List(ctx context.Context, activeOnly bool) ([]Retainer, error)
	Update(ctx context.Context, r *Retainer) error
	Delete(ctx context.Context, id string) error
}
