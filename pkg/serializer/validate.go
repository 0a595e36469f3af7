package serializer

import (
	"errors"
	"slices"
	"strings"

	"github.com/dukex/area/pkg/models"
)

// ParamsValidator checks the params of a trigger or action against its field schema.
type ParamsValidator interface {
	ValidateParams(kind models.StepKind, serviceID, actionID string, params map[string]any) error
}

// Validate reports every reason g cannot be saved, joined into a single error. The trigger check comes
// first. Params are only checked when params is not nil.
func Validate(g *models.Graph, params ParamsValidator) error {
	var errs []error

	if g == nil {
		return ErrMissingTrigger
	}

	triggers := g.Triggers()

	switch {
	case len(triggers) == 0:
		errs = append(errs, ErrMissingTrigger)
	case len(triggers) > 1:
		for _, extra := range triggers[1:] {
			errs = append(errs, &StepError{StepID: extra.ID, Field: "step_type", Err: ErrMultipleTriggers})
		}
	}

	for _, step := range g.Ordered() {
		errs = append(errs, validateStep(g, step, params)...)
	}

	return errors.Join(errs...)
}

func validateStep(g *models.Graph, step *models.Step, params ParamsValidator) []error {
	var errs []error

	fail := func(field string, err error) {
		errs = append(errs, &StepError{StepID: step.ID, Field: field, Err: err})
	}

	for _, target := range step.Connections {
		if target == step.ID || !g.Has(target) {
			fail(models.ConfigKeyConnections, ErrUnknownConnection)
		}
	}

	switch config := step.Config.(type) {
	case *models.TriggerConfig:
		validateService(step.Kind(), &config.ServiceConfig, params, fail)
	case *models.ActionConfig:
		validateService(step.Kind(), &config.ServiceConfig, params, fail)
	case *models.ConditionConfig:
		switch config.ConditionType {
		case models.ConditionTypeExpression:
			if strings.TrimSpace(config.Expression) == "" {
				fail("expression", ErrMissingField)
			}
		case models.ConditionTypeSimple:
			if strings.TrimSpace(config.Field) == "" {
				fail("field", ErrMissingField)
			}

			if !slices.Contains(models.ConditionOperators, config.Operator) {
				fail("operator", ErrInvalidOperator)
			}
		default:
			fail("condition_type", ErrMissingField)
		}
	case *models.DelayConfig:
		if config.Duration <= 0 {
			fail(models.ConfigKeyDuration, ErrInvalidDuration)
		}

		if !slices.Contains(models.DelayUnits, config.Unit) {
			fail(models.ConfigKeyUnit, ErrInvalidUnit)
		}
	default:
		fail("step_type", ErrUnknownStepType)
	}

	return errs
}

func validateService(kind models.StepKind, config *models.ServiceConfig, params ParamsValidator, fail func(string, error)) {
	if config.ServiceID == "" {
		fail("service_id", ErrMissingService)

		return
	}

	if config.ActionID == "" {
		fail("action_id", ErrMissingAction)

		return
	}

	if params == nil {
		return
	}

	if err := params.ValidateParams(kind, config.ServiceID, config.ActionID, config.Params); err != nil {
		fail(models.ConfigKeyParams, err)
	}
}
