package cycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/postflow/internal/domain/project"
	"github.com/rpggio/postflow/internal/repository"
)

// Service runs the revision cycle workflow.
type Service struct {
	cycles   Repository
	history  HistoryRepository
	projects ProjectService
	logger   *slog.Logger
}

// NewService creates a new cycle service.
func NewService(cycles Repository, history HistoryRepository, projects ProjectService, logger *slog.Logger) *Service {
	return &Service{
		cycles:   cycles,
		history:  history,
		projects: projects,
		logger:   logger,
	}
}

// CreateRequest describes a cycle creation request.
type CreateRequest struct {
	Number int    `json:"number"`
	Status Status `json:"status,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

// ApproveRequest describes an approval.
type ApproveRequest struct {
	Finalize bool   `json:"finalize"`
	Notes    string `json:"notes,omitempty"`
}

// ApproveResult holds the approved cycle and whatever followed it.
type ApproveResult struct {
	Cycle   *Cycle           `json:"cycle"`
	Next    *Cycle           `json:"next,omitempty"`
	Project *project.Project `json:"project,omitempty"`
}

// CreateCycle opens a cycle with the given number. It fails when the number is
// already taken for the project.
func (s *Service) CreateCycle(ctx context.Context, projectID string, req CreateRequest) (*Cycle, error) {
	if strings.TrimSpace(projectID) == "" || req.Number <= 0 {
		return nil, ErrInvalidInput
	}
	status := req.Status
	if status == "" {
		status = StatusEditing
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	proj, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	existing, err := s.cycles.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("loading cycles: %w", err)
	}
	for _, c := range existing {
		if c.Number == req.Number {
			return nil, ErrCycleExists
		}
	}

	c := &Cycle{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Number:    req.Number,
		Status:    status,
		StartedAt: time.Now().UTC(),
		Notes:     req.Notes,
	}
	if err := s.cycles.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrCycleExists
		}
		return nil, fmt.Errorf("creating cycle: %w", err)
	}

	if c.Number >= proj.CurrentCycle {
		if err := s.projects.SetCurrentCycle(ctx, projectID, c.Number); err != nil {
			return nil, fmt.Errorf("setting current cycle: %w", err)
		}
	}

	s.info("cycle created", "project_id", projectID, "cycle_id", c.ID, "number", c.Number)
	return c, nil
}

// EnsureCurrent returns the project's current cycle, creating cycle #1 when
// the project has none yet.
func (s *Service) EnsureCurrent(ctx context.Context, projectID string) (*Cycle, error) {
	proj, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	cycles, err := s.cycles.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("loading cycles: %w", err)
	}
	if current := Current(cycles, proj.CurrentCycle); current != nil {
		return current, nil
	}
	return s.CreateCycle(ctx, projectID, CreateRequest{Number: 1, Status: StatusEditing})
}

// MoveToStep advances a cycle to the next status and appends a history event.
func (s *Service) MoveToStep(ctx context.Context, projectID, cycleID string, next Status, notes string) (*Cycle, error) {
	current, err := s.load(ctx, projectID, cycleID)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(current.Status, next); err != nil {
		return nil, fmt.Errorf("%w: %s -> %s", err, current.Status, next)
	}

	now := time.Now().UTC()
	updated := *current
	updated.Status = next
	switch next {
	case StatusSent:
		updated.SentAt = &now
	case StatusCorrecting:
		if updated.ClientReturnedAt == nil {
			updated.ClientReturnedAt = &now
		}
	case StatusApproved:
		if updated.ClientReturnedAt == nil {
			updated.ClientReturnedAt = &now
		}
	}
	if notes != "" {
		updated.Notes = notes
	}

	if err := s.cycles.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCycleNotFound
		}
		return nil, fmt.Errorf("updating cycle: %w", err)
	}

	if err := s.appendHistory(ctx, &updated, current.Status, now, notes); err != nil {
		return &updated, err
	}
	return &updated, nil
}

// MarkApproved closes a cycle as approved. With Finalize the project is
// delivered; otherwise the next cycle is opened in editando. A history
// failure does not stop the flow; it is returned with the full result.
func (s *Service) MarkApproved(ctx context.Context, projectID, cycleID string, req ApproveRequest) (*ApproveResult, error) {
	current, err := s.load(ctx, projectID, cycleID)
	if err != nil {
		return nil, err
	}
	if !approvable[current.Status] {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, StatusApproved)
	}

	now := time.Now().UTC()
	updated := *current
	updated.Status = StatusApproved
	if updated.ClientReturnedAt == nil {
		updated.ClientReturnedAt = &now
	}
	if req.Notes != "" {
		updated.Notes = req.Notes
	}

	if err := s.cycles.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCycleNotFound
		}
		return nil, fmt.Errorf("approving cycle: %w", err)
	}
	historyErr := s.appendHistory(ctx, &updated, current.Status, now, req.Notes)

	result := &ApproveResult{Cycle: &updated}
	if req.Finalize {
		proj, err := s.projects.Complete(ctx, projectID)
		if err != nil {
			return result, errors.Join(fmt.Errorf("completing project: %w", err), historyErr)
		}
		result.Project = proj
		s.info("project delivered", "project_id", projectID, "cycle", updated.Number)
		return result, historyErr
	}

	next, err := s.CreateCycle(ctx, projectID, CreateRequest{Number: updated.Number + 1, Status: StatusEditing})
	if err != nil {
		return result, errors.Join(err, historyErr)
	}
	result.Next = next
	return result, historyErr
}

// ResetCycle wipes the project's cycles and history and recreates cycle #1.
func (s *Service) ResetCycle(ctx context.Context, projectID string) (*Cycle, error) {
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return nil, err
	}
	if err := s.history.DeleteByProject(ctx, projectID); err != nil {
		return nil, fmt.Errorf("clearing history: %w", err)
	}
	if err := s.cycles.DeleteByProject(ctx, projectID); err != nil {
		return nil, fmt.Errorf("clearing cycles: %w", err)
	}
	if err := s.projects.SetCurrentCycle(ctx, projectID, 0); err != nil {
		return nil, fmt.Errorf("resetting current cycle: %w", err)
	}
	s.warn("cycles reset", "project_id", projectID)
	return s.CreateCycle(ctx, projectID, CreateRequest{Number: 1, Status: StatusEditing})
}

// Board returns every cycle and history event of a project, creating the
// first cycle if needed.
func (s *Service) Board(ctx context.Context, projectID string) (*Board, error) {
	current, err := s.EnsureCurrent(ctx, projectID)
	if err != nil {
		return nil, err
	}
	cycles, err := s.cycles.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("loading cycles: %w", err)
	}
	history, err := s.history.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	if history == nil {
		history = []HistoryEvent{}
	}
	return &Board{
		ProjectID: projectID,
		Current:   current,
		Cycles:    cycles,
		History:   history,
	}, nil
}

// ByProject returns every stored cycle grouped by project, ordered by number.
func (s *Service) ByProject(ctx context.Context) (map[string][]Cycle, error) {
	all, err := s.cycles.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing cycles: %w", err)
	}
	grouped := make(map[string][]Cycle)
	for _, c := range all {
		grouped[c.ProjectID] = append(grouped[c.ProjectID], c)
	}
	for id := range grouped {
		sortByNumber(grouped[id])
	}
	return grouped, nil
}

// Current picks the cycle matching the project's counter, else the latest one.
func Current(cycles []Cycle, counter int) *Cycle {
	if len(cycles) == 0 {
		return nil
	}
	var latest *Cycle
	for i := range cycles {
		c := &cycles[i]
		if counter > 0 && c.Number == counter {
			found := *c
			return &found
		}
		if latest == nil || c.Number > latest.Number {
			latest = c
		}
	}
	found := *latest
	return &found
}

func (s *Service) load(ctx context.Context, projectID, cycleID string) (*Cycle, error) {
	if strings.TrimSpace(projectID) == "" || strings.TrimSpace(cycleID) == "" {
		return nil, ErrInvalidInput
	}
	c, err := s.cycles.Get(ctx, projectID, cycleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCycleNotFound
		}
		return nil, fmt.Errorf("loading cycle: %w", err)
	}
	return c, nil
}

func (s *Service) appendHistory(ctx context.Context, c *Cycle, from Status, at time.Time, notes string) error {
	event := &HistoryEvent{
		CycleID:    c.ID,
		FromStatus: from,
		ToStatus:   c.Status,
		OccurredAt: at,
		Notes:      notes,
	}
	if err := s.history.Append(ctx, event); err != nil {
		if s.logger != nil {
			s.logger.Error("history event not recorded", "cycle_id", c.ID, "from", from, "to", c.Status, "error", err)
		}
		return fmt.Errorf("%w: %v", ErrHistoryNotRecorded, err)
	}
	s.info("cycle moved", "project_id", c.ProjectID, "cycle_id", c.ID, "from", from, "to", c.Status)
	return nil
}

func sortByNumber(cycles []Cycle) {
	sort.Slice(cycles, func(i, j int) bool { return cycles[i].Number < cycles[j].Number })
}

func (s *Service) info(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *Service) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
