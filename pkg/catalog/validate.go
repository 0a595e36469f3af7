package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dukex/area/pkg/models"
	"github.com/robfig/cron/v3"
	"github.com/xeipuuv/gojsonschema"
)

var (
	// ErrUnknownAction is returned when a service/action pair is not in the catalog.
	ErrUnknownAction = errors.New("unknown service action")

	// ErrInvalidParams is returned when params do not satisfy the action field schema.
	ErrInvalidParams = errors.New("invalid params")
)

// ParamsError lists every problem found in the params of one action.
type ParamsError struct {
	ServiceID string
	ActionID  string
	Problems  []string
}

func (e *ParamsError) Error() string {
	return fmt.Sprintf("%s.%s: %s", e.ServiceID, e.ActionID, strings.Join(e.Problems, "; "))
}

func (e *ParamsError) Unwrap() error {
	return ErrInvalidParams
}

// Schema builds the JSON schema of the params of an action. Params hold strings or numbers, and a
// templated string such as "{{weather.temperature}}" is a valid value for a number field.
func Schema(action *models.ActionDefinition) *models.JSONSchema {
	minLength := 1
	schema := &models.JSONSchema{
		Type:                 "object",
		Title:                action.Name,
		Description:          action.Description,
		Properties:           make(map[string]*models.Property, len(action.Fields)),
		AdditionalProperties: true,
	}

	for _, field := range action.Fields {
		property := &models.Property{
			Type:        []string{"string", "number"},
			Description: field.Label,
		}

		if field.Required {
			property.MinLength = &minLength
			schema.Required = append(schema.Required, field.Param)
		}

		schema.Properties[field.Param] = property
	}

	return schema
}

// ValidateParams checks params against the field schema of the given trigger or action.
func (c *Catalog) ValidateParams(kind models.StepKind, serviceID, actionID string, params map[string]any) error {
	action, ok := c.Action(kind, serviceID, actionID)
	if !ok {
		return fmt.Errorf("%w: %s %s.%s", ErrUnknownAction, kind, serviceID, actionID)
	}

	if params == nil {
		params = map[string]any{}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(Schema(action)),
		gojsonschema.NewGoLoader(params),
	)
	if err != nil {
		return fmt.Errorf("failed to validate params of %s.%s: %w", serviceID, actionID, err)
	}

	var problems []string

	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}

	for _, field := range action.Fields {
		if field.Type != models.FieldTypeCron {
			continue
		}

		if problem := checkSchedule(field, params[field.Param]); problem != "" {
			problems = append(problems, problem)
		}
	}

	if len(problems) > 0 {
		return &ParamsError{ServiceID: serviceID, ActionID: actionID, Problems: problems}
	}

	return nil
}

// checkSchedule parses cron fields unless they are empty or templated.
func checkSchedule(field models.FieldSchema, value any) string {
	spec, ok := value.(string)
	if !ok || spec == "" || strings.Contains(spec, "{{") {
		return ""
	}

	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Sprintf("%s: invalid cron schedule %q: %v", field.Param, spec, err)
	}

	return ""
}
