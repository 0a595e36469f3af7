// Package serializer flattens a graph into the ordered step list of the Area API, and rebuilds a graph from
// that list when an existing area is edited.
package serializer

import (
	"fmt"
	"slices"

	"github.com/dukex/area/pkg/models"
)

// Serialize converts g into the body of the create and update calls. Steps are sorted by order. The
// trigger is required and must be unique; nothing else is checked here, see Validate.
func Serialize(g *models.Graph) (*models.AreaRequest, error) {
	if g == nil {
		return nil, ErrMissingTrigger
	}

	triggers := g.Triggers()

	switch {
	case len(triggers) == 0:
		return nil, ErrMissingTrigger
	case len(triggers) > 1:
		return nil, &StepError{StepID: triggers[1].ID, Field: "step_type", Err: ErrMultipleTriggers}
	}

	trigger, _ := triggers[0].Service()

	request := &models.AreaRequest{
		TriggerService: trigger.ServiceID,
		TriggerAction:  trigger.ActionID,
		Steps:          make([]models.StepPayload, 0, len(g.Steps)),
	}

	for _, step := range g.Ordered() {
		payload := Step(step)

		if step.IsAction() && request.ReactionService == nil {
			request.ReactionService = payload.Service
			request.ReactionAction = payload.Action
		}

		request.Steps = append(request.Steps, payload)
	}

	return request, nil
}

// Step converts a single step into its backend shape.
func Step(step *models.Step) models.StepPayload {
	connections := slices.Clone(step.Connections)
	if connections == nil {
		connections = []string{}
	}

	payload := models.StepPayload{
		StepType: step.Kind(),
		Order:    step.Order,
		Config: map[string]any{
			models.ConfigKeyID:          step.ID,
			models.ConfigKeyLabel:       step.Label,
			models.ConfigKeyDescription: step.Description,
			models.ConfigKeyConnections: connections,
			models.ConfigKeyTargets:     slices.Clone(connections),
			models.ConfigKeyPosition:    map[string]any{"x": step.Position.X, "y": step.Position.Y},
		},
	}

	switch config := step.Config.(type) {
	case *models.TriggerConfig:
		serviceFields(&payload, &config.ServiceConfig)
	case *models.ActionConfig:
		serviceFields(&payload, &config.ServiceConfig)
	case *models.ConditionConfig:
		payload.Config[models.ConfigKeyConditionType] = string(config.ConditionType)
		payload.Config[models.ConfigKeyConditionValue] = conditionValue(config)
	case *models.DelayConfig:
		payload.Config[models.ConfigKeyDuration] = config.Duration
		payload.Config[models.ConfigKeyUnit] = string(config.Unit)
	}

	return payload
}

func serviceFields(payload *models.StepPayload, config *models.ServiceConfig) {
	service := config.ServiceID
	action := config.ActionID

	payload.Service = &service
	payload.Action = &action

	params := make(map[string]any, len(config.Params))
	for k, v := range config.Params {
		params[k] = v
	}

	payload.Config[models.ConfigKeyParams] = params
}

// conditionValue is the expression string for expression conditions and a field/operator/value object for
// simple ones.
func conditionValue(config *models.ConditionConfig) any {
	if config.ConditionType == models.ConditionTypeExpression {
		return config.Expression
	}

	return map[string]any{
		"field":    config.Field,
		"operator": config.Operator,
		"value":    config.Value,
	}
}

// Preview renders the request for display. Unlike Serialize it never fails: a graph without a trigger
// yields empty trigger fields.
func Preview(g *models.Graph) *models.AreaRequest {
	request, err := Serialize(g)
	if err == nil {
		return request
	}

	request = &models.AreaRequest{Steps: make([]models.StepPayload, 0)}
	if g == nil {
		return request
	}

	for _, step := range g.Ordered() {
		request.Steps = append(request.Steps, Step(step))
	}

	if triggers := g.Triggers(); len(triggers) > 0 {
		svc, _ := triggers[0].Service()
		request.TriggerService = svc.ServiceID
		request.TriggerAction = svc.ActionID
	}

	return request
}

func stepID(kind models.StepKind, index int) string {
	return fmt.Sprintf("%s-%d", kind, index)
}
