package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/postflow/internal/repository"
)

// Service handles project operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new project service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateRequest defines project creation inputs.
type CreateRequest struct {
	ID            string         `json:"id,omitempty"`
	Name          string         `json:"name"`
	Client        string         `json:"client"`
	Tag           string         `json:"tag,omitempty"`
	Manager       string         `json:"manager,omitempty"`
	Managers      []string       `json:"managers,omitempty"`
	Stage         Stage          `json:"stage,omitempty"`
	Status        Status         `json:"status,omitempty"`
	StartDate     string         `json:"startDate,omitempty"`
	Deadline      string         `json:"deadline,omitempty"`
	RecordingDate string         `json:"recordingDate,omitempty"`
	Income        float64        `json:"income,omitempty"`
	Properties    map[string]any `json:"properties,omitempty"`
}

// Create validates and stores a new project.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Project, error) {
	id := req.ID
	if strings.TrimSpace(id) == "" {
		id = uuid.NewString()
	}
	stage := req.Stage
	if stage == "" {
		stage = StageRecording
	}
	status := req.Status
	if status == "" {
		status = StatusPending
	}

	now := time.Now().UTC()
	proj := &Project{
		ID:            id,
		Name:          strings.TrimSpace(req.Name),
		Client:        strings.TrimSpace(req.Client),
		Tag:           strings.TrimSpace(req.Tag),
		Manager:       strings.TrimSpace(req.Manager),
		Managers:      req.Managers,
		Stage:         stage,
		Status:        status,
		StartDate:     req.StartDate,
		Deadline:      req.Deadline,
		RecordingDate: req.RecordingDate,
		Income:        req.Income,
		Properties:    req.Properties,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := Validate(proj); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, proj); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: project %s already exists", ErrInvalidInput, id)
		}
		return nil, fmt.Errorf("creating project: %w", err)
	}
	s.log("project created", "project_id", proj.ID, "client", proj.Client)
	return proj, nil
}

// Get fetches a project by ID.
func (s *Service) Get(ctx context.Context, id string) (*Project, error) {
	proj, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	return proj, nil
}

// List returns projects matching the options.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]Project, error) {
	projects, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return projects, nil
}

// Update replaces every editable field of an existing project.
func (s *Service) Update(ctx context.Context, id string, req CreateRequest) (*Project, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updated := *current
	updated.Name = strings.TrimSpace(req.Name)
	updated.Client = strings.TrimSpace(req.Client)
	updated.Tag = strings.TrimSpace(req.Tag)
	updated.Manager = strings.TrimSpace(req.Manager)
	updated.Managers = req.Managers
	if req.Stage != "" {
		updated.Stage = req.Stage
	}
	if req.Status != "" {
		updated.Status = req.Status
	}
	updated.StartDate = req.StartDate
	updated.Deadline = req.Deadline
	updated.RecordingDate = req.RecordingDate
	updated.Income = req.Income
	updated.Properties = req.Properties
	return s.save(ctx, &updated)
}

// Patch applies a partial update.
func (s *Service) Patch(ctx context.Context, id string, patch Patch) (*Project, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updated := patch.Apply(*current)
	return s.save(ctx, &updated)
}

// Complete marks a project delivered.
func (s *Service) Complete(ctx context.Context, id string) (*Project, error) {
	status := StatusCompleted
	stage := StageDelivered
	completedAt := time.Now().UTC().Format(DateLayout)
	return s.Patch(ctx, id, Patch{
		Status:     &status,
		Stage:      &stage,
		Properties: map[string]any{"completedAt": completedAt},
	})
}

// SetCurrentCycle records which revision cycle is current for the project.
func (s *Service) SetCurrentCycle(ctx context.Context, id string, number int) error {
	if err := s.repo.SetCurrentCycle(ctx, id, number); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("setting current cycle: %w", err)
	}
	return nil
}

// Delete removes a project permanently.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("deleting project: %w", err)
	}
	s.log("project deleted", "project_id", id)
	return nil
}

func (s *Service) save(ctx context.Context, proj *Project) (*Project, error) {
	if err := Validate(proj); err != nil {
		return nil, err
	}
	proj.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, proj); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("updating project: %w", err)
	}
	return proj, nil
}

func (s *Service) log(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}
