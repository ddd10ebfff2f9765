package progression

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrActivityNotFound = fmt.Errorf("activity %w", ErrNotFound)
	ErrFactNotFound     = fmt.Errorf("fact %w", ErrNotFound)

	// ErrVersionConflict is returned by a store when the aggregate version moved
	// between read and conditional write.
	ErrVersionConflict = errors.New("progress version conflict")
	// ErrFactAlreadyApplied is returned by a store when the fact was already reflected
	// in the aggregate. Callers treat it as success.
	ErrFactAlreadyApplied = errors.New("fact already applied")
	// ErrFactAbandoned is returned by a store when the fact was given up on.
	ErrFactAbandoned = errors.New("fact abandoned")
	// ErrAlreadyLogged is returned when a unique key already holds the activity or fact.
	ErrAlreadyLogged = errors.New("already logged")
)

// ValidationError is returned for malformed input. Nothing is persisted when it occurs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func newValidationError(field, reasonFormat string, args ...any) *ValidationError {
	return &ValidationError{
		Field:  field,
		Reason: fmt.Sprintf(reasonFormat, args...),
	}
}

// StorageError wraps a failure of the storage collaborator (unavailable, timed out).
// It never means "no data".
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %s", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the caller may simply resubmit.
func (e *StorageError) Retryable() bool {
	return !errors.Is(e.Err, context.Canceled)
}

// ConflictError is returned when compare-and-set kept losing the race.
type ConflictError struct {
	UserID   string
	Attempts int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("progress of user %s still conflicting after %d attempts", e.UserID, e.Attempts)
}

func (e *ConflictError) Unwrap() error {
	return ErrVersionConflict
}

// PartialApplyError means the fact is durably logged but not yet reflected in the
// user's progress. The reconciler will finish the job.
type PartialApplyError struct {
	FactID     string
	ActivityID string
	Err        error
}

func (e *PartialApplyError) Error() string {
	return fmt.Sprintf("fact %s logged but not applied: %s", e.FactID, e.Err)
}

func (e *PartialApplyError) Unwrap() error {
	return e.Err
}

// storageErr wraps err as a StorageError unless it is one of the engine's own errors.
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		se *StorageError
		ve *ValidationError
	)
	if errors.As(err, &se) ||
		errors.As(err, &ve) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrVersionConflict) ||
		errors.Is(err, ErrFactAlreadyApplied) ||
		errors.Is(err, ErrFactAbandoned) ||
		errors.Is(err, ErrAlreadyLogged) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
