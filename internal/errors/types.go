// Package errors classifies breakdown failures for retry decisions, Temporal
// error typing and HTTP status mapping.
package errors

import (
	"fmt"
)

// ErrorType categorizes breakdown failures.
type ErrorType string

const (
	// ErrorTypeConfiguration indicates a missing or unusable aggregation rule,
	// an unknown feature, or an invalid scale.
	ErrorTypeConfiguration ErrorType = "ConfigurationError"

	// ErrorTypeInsufficientCardinality indicates all-zero totals with fewer
	// shares than units to distribute.
	ErrorTypeInsufficientCardinality ErrorType = "InsufficientCardinality"

	// ErrorTypeScaleTooSmall indicates more leftover units than shares.
	ErrorTypeScaleTooSmall ErrorType = "ScaleTooSmall"

	// ErrorTypeNumericOverflow indicates totals beyond the int64 range.
	ErrorTypeNumericOverflow ErrorType = "NumericOverflow"

	// ErrorTypeValidation indicates malformed input rows, shares or requests.
	ErrorTypeValidation ErrorType = "Validation"

	// ErrorTypeInvariant indicates an apportionment that broke the exact-sum invariant.
	ErrorTypeInvariant ErrorType = "InvariantViolated"

	// ErrorTypeUnknown indicates an unclassified error.
	ErrorTypeUnknown ErrorType = "Unknown"
)

// WorkflowError carries a classified failure together with its cause.
type WorkflowError struct {
	Type      ErrorType      `json:"type"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
	Cause     error          `json:"-"`
}

// Error returns the message prefixed with the error type.
func (e *WorkflowError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As compatibility.
func (e *WorkflowError) Unwrap() error {
	return e.Cause
}

// ShouldRetry returns the explicit retry recommendation.
func (e *WorkflowError) ShouldRetry() bool {
	return e.Retryable
}
