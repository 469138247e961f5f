package serialization

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrNoModel        = errors.New("no trained model found")
	ErrConfigMismatch = errors.New("config does not match model dimensions")
)

// DocumentError reports a snapshot document that could not be decoded or validated.
type DocumentError struct {
	Path string // File that failed
	Err  error  // Underlying decode or validation error
}

// Error implements the error interface.
func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *DocumentError) Unwrap() error {
	return e.Err
}
