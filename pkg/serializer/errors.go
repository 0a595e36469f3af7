package serializer

import (
	"errors"
	"fmt"
)

var (
	ErrMissingTrigger    = errors.New("missing trigger")
	ErrMultipleTriggers  = errors.New("more than one trigger")
	ErrMissingService    = errors.New("service is required")
	ErrMissingAction     = errors.New("action is required")
	ErrMissingField      = errors.New("field is required")
	ErrInvalidOperator   = errors.New("unknown operator")
	ErrInvalidDuration   = errors.New("duration must be a positive integer")
	ErrInvalidUnit       = errors.New("unknown delay unit")
	ErrUnknownConnection = errors.New("connection to a step that does not exist")
	ErrUnknownStepType   = errors.New("unknown step type")
)

// StepError locates a problem on one field of one step.
type StepError struct {
	StepID string
	Field  string
	Err    error
}

func (e *StepError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("step %s: %v", e.StepID, e.Err)
	}

	return fmt.Sprintf("step %s: %s: %v", e.StepID, e.Field, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err comes from a graph that cannot be saved as is, as opposed to a
// failure while talking to the outside world.
func IsValidationError(err error) bool {
	var stepErr *StepError

	return errors.Is(err, ErrMissingTrigger) || errors.Is(err, ErrMultipleTriggers) || errors.As(err, &stepErr)
}

// Steps returns the ids of the steps named by err, in order and without duplicates.
func Steps(err error) []string {
	var (
		ids  []string
		seen = map[string]bool{}
	)

	var walk func(error)
	walk = func(err error) {
		if err == nil {
			return
		}

		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, inner := range joined.Unwrap() {
				walk(inner)
			}

			return
		}

		if stepErr, ok := err.(*StepError); ok {
			if stepErr.StepID != "" && !seen[stepErr.StepID] {
				seen[stepErr.StepID] = true
				ids = append(ids, stepErr.StepID)
			}

			return
		}

		walk(errors.Unwrap(err))
	}

	walk(err)

	return ids
}
