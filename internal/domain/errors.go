package domain

import (
	"errors"
	"fmt"
)

// Sentinel conditions surfaced across the service boundary.
var (
	// ErrModelNotLoaded distinguishes "service unavailable" from bad
	// input: no artifact has been loaded yet.
	ErrModelNotLoaded = errors.New("model not loaded")

	// ErrTrainingInProgress rejects a second concurrent training job.
	ErrTrainingInProgress = errors.New("training already in progress")
)

// ValidationError reports rejected input text with a specific reason.
// Always recoverable, never fatal to the process.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// NewValidationError builds a reason-carrying validation failure.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// TrainingError reports a failed training run with its cause. A failed
// run never evicts a previously loaded artifact.
type TrainingError struct {
	Reason string
	Err    error
}

func (e *TrainingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("training failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("training failed: %s", e.Reason)
}

func (e *TrainingError) Unwrap() error {
	return e.Err
}

// NewTrainingError builds a cause-carrying training failure.
func NewTrainingError(reason string, err error) *TrainingError {
	return &TrainingError{Reason: reason, Err: err}
}

// SerializationError reports a corrupt or version-mismatched artifact.
// Loading refuses to serve partial state.
type SerializationError struct {
	Reason string
	Err    error
}

func (e *SerializationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("artifact serialization: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("artifact serialization: %s", e.Reason)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}
