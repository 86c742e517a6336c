// Package shared contains common domain types, errors, and events
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation    = errors.New("validation error")
	ErrInvalidID     = errors.New("invalid ID")
	ErrInvalidInput  = errors.New("invalid input")
	ErrEmptyValue    = errors.New("value cannot be empty")
	ErrNegativeValue = errors.New("value cannot be negative")

	// Concurrency errors. A constraint violation means this unit of work lost a
	// commit-time race; the caller may retry the whole unit of work once.
	ErrConstraintViolation = errors.New("storage constraint violation")

	// ErrInvariantViolation means derived state diverged from its source of
	// truth (e.g. a snapshot no longer matches its ledger). Reported for
	// diagnostics, never silently auto-corrected.
	ErrInvariantViolation = errors.New("invariant violation")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "quiz", "streak", "xp"
	Op      string // Operation that failed, e.g., "Create", "Grant"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Quiz domain errors
var (
	ErrQuizNotFound       = NewDomainError("quiz", "Find", ErrNotFound, "no quiz questions for this daily read")
	ErrAnswerEmpty        = NewDomainError("quiz", "Validate", ErrEmptyValue, "answer text cannot be empty")
	ErrQuestionSeqInvalid = NewDomainError("quiz", "Validate", ErrInvalidInput, "question sequence must be positive")
)

// Reading domain errors
var (
	ErrDailyReadNotFound = NewDomainError("reading", "Find", ErrNotFound, "daily read not found")
	ErrReportNotFound    = NewDomainError("reading", "Find", ErrNotFound, "reading report not found")
	ErrInvalidPageCount  = NewDomainError("reading", "Validate", ErrNegativeValue, "page count cannot be negative")
	ErrCategoryEmpty     = NewDomainError("reading", "Validate", ErrEmptyValue, "category name cannot be empty")
)

// Streak domain errors
var (
	ErrStreakLogExists = NewDomainError("streak", "Create", ErrAlreadyExists, "streak already logged for this date")
)

// XP domain errors
var (
	ErrExpEventExists   = NewDomainError("xp", "Grant", ErrAlreadyExists, "exp already granted for this source")
	ErrSnapshotNotFound = NewDomainError("xp", "FindSnapshot", ErrNotFound, "exp snapshot not found")
	ErrSnapshotDiverged = NewDomainError("xp", "Reconcile", ErrInvariantViolation, "snapshot total diverged from ledger sum")
	ErrInvalidExpAmount = NewDomainError("xp", "Validate", ErrNegativeValue, "exp amount cannot be negative")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
// In the event cascade this is the idempotence signal: the operation
// becomes a no-op rather than a failure.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsConstraintViolation checks if the error is a lost commit-time race.
func IsConstraintViolation(err error) bool {
	return errors.Is(err, ErrConstraintViolation)
}

// IsInvariantViolation checks if the error reports diverged derived state.
func IsInvariantViolation(err error) bool {
	return errors.Is(err, ErrInvariantViolation)
}
