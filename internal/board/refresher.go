package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rpggio/postflow/internal/domain/project"
	"github.com/rpggio/postflow/internal/domain/retainer"
)

// DefaultInterval is how often the board reloads projects.
const DefaultInterval = 10 * time.Second

// ErrRefreshInFlight indicates a reload is already running.
var ErrRefreshInFlight = errors.New("refresh already in flight")

// ProjectLister lists projects.
type ProjectLister interface {
	List(ctx context.Context, opts project.ListOptions) ([]project.Project, error)
}

// RetainerLister lists retainers.
type RetainerLister interface {
	List(ctx context.Context, activeOnly bool) ([]retainer.Retainer, error)
}

// Refresher periodically reloads the store from the services.
type Refresher struct {
	store     *Store
	projects  ProjectLister
	retainers RetainerLister
	interval  time.Duration
	logger    *slog.Logger

	inFlight atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRefresher creates a refresher. A non-positive interval uses DefaultInterval.
func NewRefresher(store *Store, projects ProjectLister, retainers RetainerLister, interval time.Duration, logger *slog.Logger) *Refresher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Refresher{
		store:     store,
		projects:  projects,
		retainers: retainers,
		interval:  interval,
		logger:    logger,
	}
}

// Start launches the reload loop. Calling Start twice is a no-op.
func (r *Refresher) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	go r.run(ctx, r.done)
}

// Stop cancels the loop and any reload in progress, then waits for it to exit.
func (r *Refresher) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (r *Refresher) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Refresher) tick(ctx context.Context) {
	err := r.Refresh(ctx)
	if err == nil || errors.Is(err, ErrRefreshInFlight) || ctx.Err() != nil {
		return
	}
	if r.logger != nil {
		r.logger.Warn("board refresh failed", "error", err)
	}
}

// Refresh reloads projects and retainers once. Only one reload runs at a
// time; a reload that finishes after a newer change is discarded by the store.
func (r *Refresher) Refresh(ctx context.Context) error {
	if !r.inFlight.CompareAndSwap(false, true) {
		return ErrRefreshInFlight
	}
	defer r.inFlight.Store(false)

	gen := r.store.Begin()
	projects, err := r.projects.List(ctx, project.ListOptions{})
	if err != nil {
		return fmt.Errorf("loading projects: %w", err)
	}
	retainers, err := r.retainers.List(ctx, false)
	if err != nil {
		return fmt.Errorf("loading retainers: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.store.Dispatch(RetainersLoaded{Retainers: retainers})
	state := r.store.Dispatch(ProjectsLoaded{Generation: gen, Projects: projects, At: time.Now().UTC()})
	if r.logger != nil && state.Generation == gen {
		r.logger.Debug("board refreshed", "projects", len(projects), "generation", gen)
	}
	return nil
}
