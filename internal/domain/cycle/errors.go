package cycle

import "errors"

var (
	// ErrCycleNotFound indicates the cycle doesn't exist for the project.
	ErrCycleNotFound = errors.New("cycle not found")
	// ErrCycleExists indicates a cycle with the same number already exists.
	ErrCycleExists = errors.New("cycle number already exists for project")
	// ErrInvalidTransition indicates an illegal status change.
	ErrInvalidTransition = errors.New("invalid cycle status transition")
	// ErrHistoryNotRecorded indicates the cycle changed but its history event failed to persist.
	ErrHistoryNotRecorded = errors.New("cycle updated but history event not recorded")
	// ErrInvalidInput indicates invalid cycle input.
	ErrInvalidInput = errors.New("invalid cycle input")
)
