package nn

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrDimensionMismatch   = errors.New("dimension mismatch")
	ErrInvalidDimensions   = errors.New("layer sizes must be positive")
	ErrInvalidLearningRate = errors.New("learning rate must be positive and finite")
	ErrNilSnapshot         = errors.New("snapshot is nil")
	ErrNonFinite           = errors.New("parameter is not a finite number")
)

// ValidationError describes a snapshot that does not match its declared shape.
type ValidationError struct {
	Field   string // Offending field (e.g. "weightsIH[3]")
	Details string // What was expected versus what was found
	Err     error  // ErrDimensionMismatch or ErrNonFinite
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid snapshot: %s: %s", e.Field, e.Details)
}

// Unwrap returns the sentinel classifying the failure.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

func mismatch(what string, got, want int) error {
	return fmt.Errorf("%w: %s has length %d, want %d", ErrDimensionMismatch, what, got, want)
}
