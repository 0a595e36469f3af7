// Package services provides standardized error types for service layer operations.
package services

import (
	"errors"
	"fmt"

	"github.com/dukex/area/pkg/areaapi"
	"github.com/dukex/area/pkg/catalog"
	"github.com/dukex/area/pkg/graph"
	"github.com/dukex/area/pkg/persistence"
	"github.com/dukex/area/pkg/serializer"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	// Validation Errors (400 Bad Request).
	ErrInvalidRequest      = errors.New("invalid request")
	ErrInvalidStepKind     = errors.New("invalid step kind")
	ErrInvalidDirection    = errors.New("invalid direction")
	ErrInvalidFocus        = errors.New("focused field does not exist on the step")
	ErrVariableNotVisible  = errors.New("variable is not visible from the focused step")
	ErrUnknownAction       = catalog.ErrUnknownAction
	ErrSelfConnection      = graph.ErrSelfConnection
	ErrValidationFailed    = errors.New("area cannot be saved")
	ErrActionNotApplicable = errors.New("only trigger and action steps have a service")

	// Not Found Errors (404 Not Found).
	ErrSessionNotFound = persistence.ErrSessionNotFound
	ErrStepNotFound    = graph.ErrStepNotFound
	ErrAreaNotFound    = areaapi.ErrAreaNotFound

	// Upstream Errors (502 Bad Gateway).
	ErrUpstream = errors.New("area api request failed")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidStepKind) ||
		errors.Is(err, ErrInvalidDirection) ||
		errors.Is(err, ErrInvalidFocus) ||
		errors.Is(err, ErrVariableNotVisible) ||
		errors.Is(err, ErrUnknownAction) ||
		errors.Is(err, ErrSelfConnection) ||
		errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrActionNotApplicable) ||
		serializer.IsValidationError(err)
}

// IsNotFoundError checks if an error should return HTTP 404.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrStepNotFound) ||
		errors.Is(err, ErrAreaNotFound)
}

// IsUpstreamError checks if an error comes from a failed Area API call and should return HTTP 502.
func IsUpstreamError(err error) bool {
	return errors.Is(err, ErrUpstream)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// upstreamError marks err as an Area API failure while keeping it inspectable.
func upstreamError(op string, err error) error {
	return &ServiceError{Op: op, Code: "UPSTREAM_ERROR", Err: fmt.Errorf("%w: %w", ErrUpstream, err)}
}
