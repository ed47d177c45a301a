package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/postflow/internal/domain/cycle"
	"github.com/rpggio/postflow/internal/domain/project"
	"github.com/rpggio/postflow/internal/planner"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) CodeValue() string {
	return e.Code
}

func (e *APIError) MessageValue() string {
	return e.Message
}

func (e *APIError) DetailsValue() any {
	return e.Details
}

func (e *APIError) RecoveryHintValue() string {
	return e.RecoveryHint
}

// MapError maps domain errors to MCP error codes. Unknown errors map to nil.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, project.ErrProjectNotFound):
		return &APIError{Code: "PROJECT_NOT_FOUND", Message: "project not found", RecoveryHint: "Call list_projects for valid IDs"}
	case errors.Is(err, cycle.ErrCycleNotFound):
		return &APIError{Code: "CYCLE_NOT_FOUND", Message: "revision cycle not found", RecoveryHint: "Call get_cycle_board for the project"}
	case errors.Is(err, cycle.ErrInvalidTransition):
		return &APIError{Code: "INVALID_TRANSITION", Message: err.Error(), RecoveryHint: "Check next_steps on the cycle board"}
	case errors.Is(err, cycle.ErrCycleExists):
		return &APIError{Code: "CYCLE_EXISTS", Message: "cycle number already used"}
	case errors.Is(err, cycle.ErrHistoryNotRecorded):
		return &APIError{Code: "HISTORY_NOT_RECORDED", Message: err.Error(), RecoveryHint: "The move was saved; retry is not needed"}
	case errors.Is(err, project.ErrInvalidInput), errors.Is(err, cycle.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	case errors.Is(err, planner.ErrNotApplicable):
		return &APIError{Code: "NOT_APPLICABLE", Message: "action carries no project update"}
	case errors.Is(err, planner.ErrModelUnavailable):
		return &APIError{Code: "MODEL_UNAVAILABLE", Message: "planner model unavailable", RecoveryHint: "Set GOOGLE_GENAI_API_KEY"}
	default:
		return nil
	}
}

// toolError returns the mapped APIError when there is one, err otherwise.
func toolError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
