// Package apperr defines the error taxonomy surfaced by the interaction
// pipeline. Every error carries a stable machine-readable code; HTTP mapping
// happens at the API edge only.
package apperr

import (
	"errors"
	"fmt"
)

// ValidationError reports bad caller input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Code() string { return "validation_error" }

// Validation returns a ValidationError with the given message.
func Validation(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a missing entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Code() string { return "not_found" }

// NotFound returns a NotFoundError for the given entity and id.
func NotFound(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// GenerationKind classifies generation backend failures.
type GenerationKind string

const (
	GenerationTimeout         GenerationKind = "timeout"
	GenerationProviderError   GenerationKind = "provider_error"
	GenerationInvalidResponse GenerationKind = "invalid_response"
)

// GenerationError reports a generation backend failure. Never fabricated into
// a reply; surfaced to the caller after local retry is exhausted.
type GenerationError struct {
	Kind GenerationKind
	Err  error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation failed (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("generation failed (%s)", e.Kind)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func (e *GenerationError) Code() string { return "generation_" + string(e.Kind) }

// Generation wraps err as a GenerationError of the given kind.
func Generation(kind GenerationKind, err error) *GenerationError {
	return &GenerationError{Kind: kind, Err: err}
}

// PersistenceKind classifies failures of the atomic per-turn write.
type PersistenceKind string

const (
	PersistenceConflict PersistenceKind = "conflict"
	PersistenceWrite    PersistenceKind = "write"
)

// PersistenceError reports a failed atomic unit. Nothing was committed, so the
// whole interaction is safe to retry.
type PersistenceError struct {
	Kind PersistenceKind
	Err  error
}

func (e *PersistenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("persistence failed (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("persistence failed (%s)", e.Kind)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Code() string { return "persistence_" + string(e.Kind) }

// Persistence wraps err as a PersistenceError of the given kind.
func Persistence(kind PersistenceKind, err error) *PersistenceError {
	return &PersistenceError{Kind: kind, Err: err}
}

// IsConflict reports whether err is a stale-version persistence conflict.
func IsConflict(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe) && pe.Kind == PersistenceConflict
}
