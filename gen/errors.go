// Package gen is the code-generation front-end. It turns explicit schema
// descriptors into per-entity CRUD and resolver source files, wiring the
// generated functions to the query, crud and errfmt packages.
package gen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure cases.
var (
	// ErrInvalidSchema indicates a schema definition error.
	ErrInvalidSchema = errors.New("crudo: invalid schema")
	// ErrMissingConfig indicates a configuration error.
	ErrMissingConfig = errors.New("crudo: missing configuration")
	// ErrGenerationFailed indicates a code generation failure.
	ErrGenerationFailed = errors.New("crudo: code generation failed")
)

// SchemaError represents a schema definition error.
type SchemaError struct {
	Schema  string // Schema name
	Field   string // Field name (if applicable)
	Message string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("crudo: schema error")
	if e.Schema != "" {
		b.WriteString(" on ")
		b.WriteString(e.Schema)
	}
	if e.Field != "" {
		b.WriteString(" field ")
		b.WriteString(e.Field)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is reports whether the target matches the invalid-schema sentinel.
func (e *SchemaError) Is(err error) bool {
	return err == ErrInvalidSchema
}

// NewSchemaError returns a new SchemaError.
func NewSchemaError(schema, field, message string) *SchemaError {
	return &SchemaError{Schema: schema, Field: field, Message: message}
}

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Name    string // Configuration field name
	Value   any    // Offending value
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("crudo: config %s=%v: %s", e.Name, e.Value, e.Message)
	}
	return fmt.Sprintf("crudo: config %s: %s", e.Name, e.Message)
}

// Is reports whether the target matches the missing-config sentinel.
func (e *ConfigError) Is(err error) bool {
	return err == ErrMissingConfig
}

// NewConfigError returns a new ConfigError.
func NewConfigError(name string, value any, message string) *ConfigError {
	return &ConfigError{Name: name, Value: value, Message: message}
}
