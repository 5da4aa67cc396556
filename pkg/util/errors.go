// Package util provides logging, validation helpers, and the error types shared by
// the reconciliation engine.
package util

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the engine's error taxonomy
var (
	ErrParse     = errors.New("parse error")
	ErrSchema    = errors.New("schema violation")
	ErrConflict  = errors.New("conflicting options")
	ErrMode      = errors.New("unsupported mode")
	ErrNotFound  = errors.New("not found")
	ErrReconcile = errors.New("reconcile failed")
)

// ParseError reports a running-config line that could not be matched to any
// known token of the feature's schema.
type ParseError struct {
	Feature string
	Line    int // 1-based line number in the parsed text, 0 if unknown
	Text    string
	Reason  string
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("%s: cannot parse", e.Feature)
	if e.Line > 0 {
		msg += fmt.Sprintf(" line %d", e.Line)
	}
	if e.Text != "" {
		msg += fmt.Sprintf(" %q", e.Text)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return ErrParse
}

// NewParseError creates a parse error
func NewParseError(feature string, line int, text, reason string) *ParseError {
	return &ParseError{
		Feature: feature,
		Line:    line,
		Text:    text,
		Reason:  reason,
	}
}

// SchemaError reports a desired document that violates structural constraints
// (wrong type, bad cardinality, value out of range).
type SchemaError struct {
	Path   string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Path == "" {
		return "schema: " + e.Reason
	}
	return fmt.Sprintf("schema: %s: %s", e.Path, e.Reason)
}

func (e *SchemaError) Unwrap() error {
	return ErrSchema
}

// NewSchemaError creates a schema error for the given path
func NewSchemaError(path, format string, args ...interface{}) *SchemaError {
	return &SchemaError{
		Path:   path,
		Reason: fmt.Sprintf(format, args...),
	}
}

// ConflictError reports mutually exclusive options that are both set.
type ConflictError struct {
	Path    string
	Options []string
	Reason  string
}

func (e *ConflictError) Error() string {
	msg := fmt.Sprintf("conflict at %s", e.Path)
	if len(e.Options) > 0 {
		msg += ": " + strings.Join(e.Options, " vs ")
	}
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// NewConflictError creates a conflict error
func NewConflictError(path, reason string, options ...string) *ConflictError {
	return &ConflictError{
		Path:    path,
		Options: options,
		Reason:  reason,
	}
}

// ModeError reports a reconciliation mode the feature does not support.
type ModeError struct {
	Feature string
	Mode    string
}

func (e *ModeError) Error() string {
	if e.Feature == "" {
		return fmt.Sprintf("unsupported mode %q", e.Mode)
	}
	return fmt.Sprintf("mode %q is not supported by %s", e.Mode, e.Feature)
}

func (e *ModeError) Unwrap() error {
	return ErrMode
}

// NewModeError creates a mode error
func NewModeError(feature, mode string) *ModeError {
	return &ModeError{Feature: feature, Mode: mode}
}

// ValidationError collects several schema or conflict errors found in one pass.
type ValidationError struct {
	Errors []error
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d validation errors:\n  - %s", len(e.Errors), strings.Join(msgs, "\n  - "))
}

// Unwrap exposes every collected error to errors.Is and errors.As.
func (e *ValidationError) Unwrap() []error {
	return e.Errors
}

// ValidationBuilder helps accumulate validation errors
type ValidationBuilder struct {
	errors []error
}

// Schema records a schema error at path if condition is false
func (v *ValidationBuilder) Schema(condition bool, path, format string, args ...interface{}) *ValidationBuilder {
	if !condition {
		v.errors = append(v.errors, NewSchemaError(path, format, args...))
	}
	return v
}

// Conflict records a conflict error at path if both options are set
func (v *ValidationBuilder) Conflict(a, b bool, path, optA, optB string) *ValidationBuilder {
	if a && b {
		v.errors = append(v.errors, NewConflictError(path, "mutually exclusive", optA, optB))
	}
	return v
}

// AddError adds an error unconditionally; nil is ignored
func (v *ValidationBuilder) AddError(err error) *ValidationBuilder {
	if err == nil {
		return v
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		v.errors = append(v.errors, ve.Errors...)
		return v
	}
	v.errors = append(v.errors, err)
	return v
}

// HasErrors returns true if there are validation errors
func (v *ValidationBuilder) HasErrors() bool {
	return len(v.errors) > 0
}

// Build returns the validation error or nil if no errors
func (v *ValidationBuilder) Build() error {
	if len(v.errors) == 0 {
		return nil
	}
	return &ValidationError{Errors: v.errors}
}

// ReconcileError wraps any failure of a reconcile run. No partial command list
// accompanies it.
type ReconcileError struct {
	Feature string
	Mode    string
	Err     error
}

func (e *ReconcileError) Error() string {
	return fmt.Sprintf("reconcile %s (%s): %v", e.Feature, e.Mode, e.Err)
}

// Unwrap exposes both the generic sentinel and the underlying cause.
func (e *ReconcileError) Unwrap() []error {
	return []error{ErrReconcile, e.Err}
}

// NewReconcileError wraps err; it returns nil when err is nil
func NewReconcileError(feature, mode string, err error) error {
	if err == nil {
		return nil
	}
	return &ReconcileError{Feature: feature, Mode: mode, Err: err}
}
