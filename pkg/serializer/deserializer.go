package serializer

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/dukex/area/pkg/graph"
	"github.com/dukex/area/pkg/models"
)

// Deserialize rebuilds a graph from the steps returned by the Area API. Step ids come from config.id and
// are synthesized from the step type and index when absent or duplicated. Connections are read from
// config.targets, falling back to config.connections; those pointing at unknown steps are dropped.
func Deserialize(payloads []models.StepPayload) (*models.Graph, error) {
	g := &models.Graph{Steps: make([]*models.Step, 0, len(payloads))}

	// explicit ids are claimed by their first step before any id is synthesized
	owner := make(map[string]int, len(payloads))
	for i, payload := range payloads {
		id := stringValue(payload.Config[models.ConfigKeyID])
		if _, claimed := owner[id]; id != "" && !claimed {
			owner[id] = i
		}
	}

	used := make(map[string]bool, len(payloads))
	for id := range owner {
		used[id] = true
	}

	for i, payload := range payloads {
		if !payload.StepType.IsValid() {
			return nil, &StepError{StepID: stepID(payload.StepType, i), Field: "step_type", Err: ErrUnknownStepType}
		}

		id := stringValue(payload.Config[models.ConfigKeyID])
		if first, ok := owner[id]; id == "" || !ok || first != i {
			id = uniqueID(payload.StepType, i, used)
			used[id] = true
		}

		step, err := decodeStep(id, payload)
		if err != nil {
			return nil, err
		}

		g.Steps = append(g.Steps, step)
	}

	graph.Renumber(g)
	graph.Prune(g)

	return g, nil
}

// DeserializeArea rebuilds the graph of an area.
func DeserializeArea(area *models.AreaResponse) (*models.Graph, error) {
	if area == nil {
		return models.NewGraph(), nil
	}

	return Deserialize(area.Steps)
}

func uniqueID(kind models.StepKind, index int, used map[string]bool) string {
	id := stepID(kind, index)

	for n := 1; used[id]; n++ {
		id = fmt.Sprintf("%s-%d-%d", kind, index, n)
	}

	return id
}

func decodeStep(id string, payload models.StepPayload) (*models.Step, error) {
	step := models.NewStep(id, payload.StepType)
	step.Order = payload.Order
	step.Label = stringValue(payload.Config[models.ConfigKeyLabel])
	step.Description = stringValue(payload.Config[models.ConfigKeyDescription])
	step.Position = position(payload.Config[models.ConfigKeyPosition])

	targets, ok := payload.Config[models.ConfigKeyTargets]
	if !ok {
		targets = payload.Config[models.ConfigKeyConnections]
	}

	step.Connections = uniqueStrings(targets)

	switch config := step.Config.(type) {
	case *models.TriggerConfig:
		decodeService(&config.ServiceConfig, payload)
	case *models.ActionConfig:
		decodeService(&config.ServiceConfig, payload)
	case *models.ConditionConfig:
		decodeCondition(config, payload.Config)
	case *models.DelayConfig:
		if raw, exists := payload.Config[models.ConfigKeyDuration]; exists {
			duration, ok := intValue(raw)
			if !ok {
				return nil, &StepError{StepID: id, Field: models.ConfigKeyDuration, Err: ErrInvalidDuration}
			}

			config.Duration = duration
		}

		if unit := stringValue(payload.Config[models.ConfigKeyUnit]); unit != "" {
			config.Unit = models.DelayUnit(unit)
		}
	}

	return step, nil
}

func decodeService(config *models.ServiceConfig, payload models.StepPayload) {
	if payload.Service != nil {
		config.ServiceID = *payload.Service
	}

	if payload.Action != nil {
		config.ActionID = *payload.Action
	}

	if params, ok := payload.Config[models.ConfigKeyParams].(map[string]any); ok {
		for k, v := range params {
			config.Params[k] = v
		}
	}
}

func decodeCondition(config *models.ConditionConfig, raw map[string]any) {
	value := raw[models.ConfigKeyConditionValue]

	switch models.ConditionType(stringValue(raw[models.ConfigKeyConditionType])) {
	case models.ConditionTypeExpression:
		config.ConditionType = models.ConditionTypeExpression
	case models.ConditionTypeSimple:
		config.ConditionType = models.ConditionTypeSimple
	default:
		if _, isString := value.(string); isString {
			config.ConditionType = models.ConditionTypeExpression
		}
	}

	switch v := value.(type) {
	case string:
		config.Expression = v
	case map[string]any:
		config.Field = stringValue(v["field"])
		config.Operator = stringValue(v["operator"])
		config.Value = stringValue(v["value"])
	}
}

func stringValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprint(s)
	}
}

func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}

		return int(n), true
	case json.Number:
		i, err := n.Int64()

		return int(i), err == nil
	case string:
		i, err := strconv.Atoi(n)

		return i, err == nil
	default:
		return 0, false
	}
}

func floatValue(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()

		return f
	default:
		return 0
	}
}

func position(v any) models.Position {
	m, ok := v.(map[string]any)
	if !ok {
		return models.Position{}
	}

	return models.Position{X: floatValue(m["x"]), Y: floatValue(m["y"])}
}

func uniqueStrings(v any) []string {
	out := []string{}
	seen := map[string]bool{}

	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	switch list := v.(type) {
	case []string:
		for _, s := range list {
			add(s)
		}
	case []any:
		for _, item := range list {
			add(stringValue(item))
		}
	}

	return out
}
