package crudo

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for common operations.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("crudo: record not found")

	// ErrStale is returned when an update or delete targets a record
	// that vanished between being read and being written.
	ErrStale = errors.New("crudo: stale record")
)

// NotFoundError represents a failed lookup of a single record.
type NotFoundError struct {
	schema string
	id     any // Optional: the ID that was searched for
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if e.id != nil {
		return fmt.Sprintf("crudo: %s not found (id=%v)", e.schema, e.id)
	}
	return fmt.Sprintf("crudo: %s not found", e.schema)
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(notFoundErr, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Schema returns the schema (entity) name the lookup was performed on.
func (e *NotFoundError) Schema() string {
	return e.schema
}

// ID returns the ID that was searched for, if available.
func (e *NotFoundError) ID() any {
	return e.id
}

// NewNotFoundError returns a new NotFoundError for the given schema name.
func NewNotFoundError(schema string) *NotFoundError {
	return &NotFoundError{schema: schema}
}

// NewNotFoundErrorWithID returns a new NotFoundError with the ID that was
// searched for.
func NewNotFoundErrorWithID(schema string, id any) *NotFoundError {
	return &NotFoundError{schema: schema, id: id}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// StaleError represents a write that targeted a vanished record.
// It is distinguishable from NotFoundError so callers can react to
// lost updates differently from failed reads.
type StaleError struct {
	schema string
	id     any
}

// Error returns the error string.
func (e *StaleError) Error() string {
	if e.id != nil {
		return fmt.Sprintf("crudo: stale %s (id=%v)", e.schema, e.id)
	}
	return fmt.Sprintf("crudo: stale %s", e.schema)
}

// Is reports whether the target error matches StaleError.
func (e *StaleError) Is(err error) bool {
	return err == ErrStale
}

// Schema returns the schema (entity) name the write was performed on.
func (e *StaleError) Schema() string {
	return e.schema
}

// ID returns the ID the write targeted, if available.
func (e *StaleError) ID() any {
	return e.id
}

// NewStaleError returns a new StaleError for the given schema name and ID.
func NewStaleError(schema string, id any) *StaleError {
	return &StaleError{schema: schema, id: id}
}

// IsStale returns true if the error is a StaleError.
func IsStale(err error) bool {
	if err == nil {
		return false
	}
	var e *StaleError
	return errors.As(err, &e) || errors.Is(err, ErrStale)
}

// ConstraintError represents a database constraint violation that could
// not be translated into a field-level validation error.
type ConstraintError struct {
	msg  string
	wrap error
}

// Error returns the error string.
func (e ConstraintError) Error() string {
	return fmt.Sprintf("crudo: constraint failed: %s", e.msg)
}

// Unwrap returns the underlying error.
func (e ConstraintError) Unwrap() error {
	return e.wrap
}

// NewConstraintError returns a new ConstraintError with the given message.
func NewConstraintError(msg string, wrap error) error {
	return ConstraintError{msg: msg, wrap: wrap}
}

// IsConstraintError returns true if the error is a ConstraintError.
func IsConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var e ConstraintError
	return errors.As(err, &e)
}

// ValidationError represents a validation failure for a single field.
type ValidationError struct {
	Name string // Field or schema name
	Err  error  // Underlying validation error
}

// Error returns the error string.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("crudo: validation failed for %q: %s", e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError returns a new ValidationError for the given field.
func NewValidationError(name string, err error) *ValidationError {
	return &ValidationError{Name: name, Err: err}
}

// IsValidationError returns true if the error is a ValidationError.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var e *ValidationError
	return errors.As(err, &e)
}
