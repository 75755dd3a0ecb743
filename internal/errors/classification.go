package errors

import (
	"errors"
	"net/http"

	"go.temporal.io/sdk/temporal"

	"github.com/ahrav/go-breakdown/internal/domain"
)

// Classify maps an error onto the breakdown error taxonomy.
// Breakdowns are pure computations, so no classified failure is retryable:
// running them again reproduces the same error.
func Classify(err error) *WorkflowError {
	if err == nil {
		return nil
	}

	var wfErr *WorkflowError
	if errors.As(err, &wfErr) {
		return wfErr
	}

	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		return &WorkflowError{
			Type:      ErrorType(appErr.Type()),
			Message:   appErr.Error(),
			Retryable: !appErr.NonRetryable(),
			Cause:     err,
		}
	}

	return &WorkflowError{
		Type:    typeOf(err),
		Message: err.Error(),
		Cause:   err,
	}
}

func typeOf(err error) ErrorType {
	switch {
	case errors.Is(err, domain.ErrConfiguration), errors.Is(err, domain.ErrInvalidScale):
		return ErrorTypeConfiguration
	case errors.Is(err, domain.ErrInsufficientCardinality):
		return ErrorTypeInsufficientCardinality
	case errors.Is(err, domain.ErrScaleTooSmall):
		return ErrorTypeScaleTooSmall
	case errors.Is(err, domain.ErrNumericOverflow):
		return ErrorTypeNumericOverflow
	case errors.Is(err, domain.ErrInvariantViolated):
		return ErrorTypeInvariant
	case errors.Is(err, domain.ErrInvalidShare),
		errors.Is(err, domain.ErrInvalidRow),
		errors.Is(err, domain.ErrInvalidRequest):
		return ErrorTypeValidation
	default:
		return ErrorTypeUnknown
	}
}

// ToApplicationError wraps err as a non-retryable Temporal application error
// whose type is the classified ErrorType. tag names the failing operation.
func ToApplicationError(tag string, err error) error {
	if err == nil {
		return nil
	}
	classified := Classify(err)
	return temporal.NewNonRetryableApplicationError(
		tag+": "+err.Error(),
		string(classified.Type),
		err,
	)
}

// HTTPStatus returns the response status for a classified failure.
func HTTPStatus(err error) int {
	switch Classify(err).Type {
	case ErrorTypeConfiguration, ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeInsufficientCardinality, ErrorTypeScaleTooSmall, ErrorTypeNumericOverflow:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
