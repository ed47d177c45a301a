package retainer

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

// Service handles retainer operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new retainer service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateRequest defines retainer creation inputs.
type CreateRequest struct {
	Client           string  `json:"client"`
	Monthly          float64 `json:"monthly"`
	ProjectsPerMonth int     `json:"proyectosMensuales"`
	Tag              string  `json:"tag,omitempty"`
	Active           *bool   `json:"active,omitempty"`
}

// Create stores a new retainer. Retainers are active unless stated otherwise.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Retainer, error) {
	if strings.TrimSpace(req.Client) == "" || req.Monthly < 0 || req.ProjectsPerMonth < 0 {
		return nil, ErrInvalidInput
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	r := &Retainer{
		ID:               uuid.NewString(),
		Client:           strings.TrimSpace(req.Client),
		Monthly:          req.Monthly,
		ProjectsPerMonth: req.ProjectsPerMonth,
		Tag:              strings.ToLower(strings.TrimSpace(req.Tag)),
		Active:           active,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("creating retainer: %w", err)
	}
	return r, nil
}

// List returns retainers, optionally only the active ones.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]Retainer, error) {
	list, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("listing retainers: %w", err)
	}
	return list, nil
}

// Update replaces a retainer's terms.
func (s *Service) Update(ctx context.Context, id string, req CreateRequest) (*Retainer, error) {
	if strings.TrimSpace(req.Client) == "" || req.Monthly < 0 || req.ProjectsPerMonth < 0 {
		return nil, ErrInvalidInput
	}
	r, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	r.Client = strings.TrimSpace(req.Client)
	r.Monthly = req.Monthly
	r.ProjectsPerMonth = req.ProjectsPerMonth
	r.Tag = strings.ToLower(strings.TrimSpace(req.Tag))
	if req.Active != nil {
		r.Active = *req.Active
	}
	return s.save(ctx, r)
}

// SetActive toggles whether a retainer counts toward monthly quotas.
func (s *Service) SetActive(ctx context.Context, id string, active bool) (*Retainer, error) {
	r, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	r.Active = active
	return s.save(ctx, r)
}

func (s *Service) get(ctx context.Context, id string) (*Retainer, error) {
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRetainerNotFound
		}
		return nil, fmt.Errorf("getting retainer: %w", err)
	}
	return r, nil
}

func (s *Service) save(ctx context.Context, r *Retainer) (*Retainer, error) {
	if err := s.repo.Update(ctx, r); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRetainerNotFound
		}
		return nil, fmt.Errorf("updating retainer: %w", err)
	}
	if s.logger != nil {
		s.logger.Info("retainer updated", "retainer_id", r.ID, "active", r.Active)
	}
	return r, nil
}

// Delete removes a retainer.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRetainerNotFound
		}
		return fmt.Errorf("deleting retainer: %w", err)
	}
	return nil
}
