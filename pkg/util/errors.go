// Package util provides logging helpers and common error types.
package util

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for route programming failures
var (
	ErrValidationFailed    = errors.New("validation failed")
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrBackendUnavailable  = errors.New("dataplane backend unavailable")
	ErrInterfaceNotFound   = errors.New("interface not found")
	ErrPathService         = errors.New("path service request failed")
	ErrNoSegmentIdentifier = errors.New("no SRv6 uSID received from API")
	ErrInvalidSegmentID    = errors.New("invalid SRv6 uSID")
)

// PathServiceError carries the HTTP status and body of a failed
// path computation request.
type PathServiceError struct {
	Status int
	Body   string
}

func (e *PathServiceError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.Status, e.Body)
}

func (e *PathServiceError) Unwrap() error {
	return ErrPathService
}

// ValidationError represents one or more validation failures
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "validation failed: " + e.Errors[0]
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// NewValidationError creates a validation error from messages
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Errors: messages}
}

// ValidationBuilder helps accumulate validation errors
type ValidationBuilder struct {
	errors []string
}

// Add adds an error message if condition is false
func (v *ValidationBuilder) Add(condition bool, message string) *ValidationBuilder {
	if !condition {
		v.errors = append(v.errors, message)
	}
	return v
}

// AddErrorf adds a formatted error message
func (v *ValidationBuilder) AddErrorf(format string, args ...interface{}) *ValidationBuilder {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
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
