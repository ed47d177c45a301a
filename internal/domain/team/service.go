package team

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

var (
	// ErrMemberNotFound indicates the team member doesn't exist.
	ErrMemberNotFound = errors.New("team member not found")
	// ErrInvalidInput indicates invalid team member input.
	ErrInvalidInput = errors.New("invalid team member input")
)

// Repository provides persistence for team members.
type Repository interface {
	Create(ctx context.Context, m *Member) error
	List(ctx context.Context) ([]Member, error)
	Delete(ctx context.Context, id string) error
}

// Service handles team roster operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new team service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateRequest defines team member inputs.
type CreateRequest struct {
	Name               string  `json:"name"`
	Role               string  `json:"role,omitempty"`
	CapacityPerWeekHrs float64 `json:"capacityPerWeekHrs"`
}

// Create adds a member to the roster.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Member, error) {
	if strings.TrimSpace(req.Name) == "" || req.CapacityPerWeekHrs < 0 {
		return nil, ErrInvalidInput
	}
	m := &Member{
		ID:                 uuid.NewString(),
		Name:               strings.TrimSpace(req.Name),
		Role:               strings.TrimSpace(req.Role),
		CapacityPerWeekHrs: req.CapacityPerWeekHrs,
		CreatedAt:          time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("creating team member: %w", err)
	}
	return m, nil
}

// List returns the roster.
func (s *Service) List(ctx context.Context) ([]Member, error) {
	members, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing team: %w", err)
	}
	return members, nil
}

// Delete removes a member.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("deleting team member: %w", err)
	}
	return nil
}
