package engine

import (
	"errors"
	"fmt"

	"github.com/nhle/taskly/internal/store"
)

// Sentinels for errors.Is checks against the typed errors below.
var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("not found")
	ErrPersistence = errors.New("persistence failure")
)

// ValidationError reports bad input. It is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports a referenced task or subtask that does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// PersistenceError wraps a storage failure. The caller decides whether
// to retry.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// storeErr classifies an error returned by the store. Engine-typed
// errors pass through so nested transactions keep their meaning.
func storeErr(op, entity, id string, err error) error {
	var (
		ve *ValidationError
		nf *NotFoundError
		pe *PersistenceError
	)
	switch {
	case errors.As(err, &ve), errors.As(err, &nf), errors.As(err, &pe):
		return err
	case errors.Is(err, store.ErrNotFound):
		return &NotFoundError{Entity: entity, ID: id}
	default:
		return &PersistenceError{Op: op, Err: err}
	}
}
