package retainer

import "errors"

var (
	// ErrRetainerNotFound indicates the retainer doesn't exist.
	ErrRetainerNotFound = errors.New("retainer not found")
	// ErrInvalidInput indicates invalid retainer input.
	ErrInvalidInput = errors.New("invalid retainer input")
)
