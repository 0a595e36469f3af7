package services_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dukex/area/pkg/persistence"
	"github.com/dukex/area/pkg/serializer"
	"github.com/dukex/area/pkg/services"
	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		validation bool
		notFound   bool
		upstream   bool
	}{
		{
			name:       "validation error",
			err:        services.NewValidationError("AddStep", "INVALID_STEP_KIND", "bad kind", services.ErrInvalidStepKind),
			validation: true,
		},
		{
			name:       "serializer step error",
			err:        &serializer.StepError{StepID: "d", Field: "duration", Err: serializer.ErrInvalidDuration},
			validation: true,
		},
		{
			name:     "missing session",
			err:      persistence.NewSessionError("SessionByID", "s-1", persistence.ErrSessionNotFound),
			notFound: true,
		},
		{
			name:     "wrapped step not found",
			err:      fmt.Errorf("patch: %w", services.ErrStepNotFound),
			notFound: true,
		},
		{
			name:     "upstream",
			err:      fmt.Errorf("%w: timeout", services.ErrUpstream),
			upstream: true,
		},
		{
			name: "anything else",
			err:  errors.New("disk full"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.validation, services.IsValidationError(tt.err))
			assert.Equal(t, tt.notFound, services.IsNotFoundError(tt.err))
			assert.Equal(t, tt.upstream, services.IsUpstreamError(tt.err))
		})
	}
}

func TestServiceError(t *testing.T) {
	t.Parallel()

	err := services.NewValidationError("MoveStep", "INVALID_DIRECTION", "invalid direction 'left'", services.ErrInvalidDirection)

	assert.Equal(t, "MoveStep: invalid direction 'left'", err.Error())
	assert.ErrorIs(t, err, services.ErrInvalidDirection)

	bare := &services.ServiceError{Op: "Save", Err: services.ErrValidationFailed}
	assert.Equal(t, "Save: area cannot be saved", bare.Error())
}
