// Package token splices variable placeholders into the focused text field of a step.
package token

import (
	"fmt"

	"github.com/dukex/area/pkg/graph"
	"github.com/dukex/area/pkg/models"
)

// Fields resolves a field key of a step to the part of the step it edits.
type Fields interface {
	Field(step *models.Step, key string) (models.FieldSchema, bool)
}

// Insert writes the placeholder of variableID over the focused selection and returns the focus with the
// caret moved just past the inserted token. It is a no-op returning false when nothing holds focus or the
// focus no longer points at an editable field of an existing step.
func Insert(g *models.Graph, fields Fields, focus *models.Focus, variableID string) (*models.Focus, bool) {
	if focus == nil || focus.StepID == "" || focus.FieldKey == "" || variableID == "" {
		return focus, false
	}

	step, ok := g.Step(focus.StepID)
	if !ok {
		return focus, false
	}

	field, ok := fields.Field(step, focus.FieldKey)
	if !ok {
		return focus, false
	}

	current, ok := Value(step, field)
	if !ok {
		return focus, false
	}

	token := models.Placeholder(variableID)
	value, caret := Splice(current, focus.Start, focus.End, token)

	if !graph.PatchStep(g, step.ID, patchFor(field, value)) {
		return focus, false
	}

	return &models.Focus{StepID: focus.StepID, FieldKey: focus.FieldKey, Start: caret, End: caret}, true
}

// Splice replaces the rune range [start, end) of value with token. Offsets are clamped to the value and
// swapped when reversed. It returns the new value and the caret offset just past the token.
func Splice(value string, start, end int, token string) (string, int) {
	runes := []rune(value)

	start = clamp(start, 0, len(runes))
	end = clamp(end, 0, len(runes))

	if end < start {
		start, end = end, start
	}

	out := make([]rune, 0, len(runes)+len(token))
	out = append(out, runes[:start]...)
	out = append(out, []rune(token)...)
	out = append(out, runes[end:]...)

	return string(out), start + len([]rune(token))
}

// Value returns the current text of the step part a field edits.
func Value(step *models.Step, field models.FieldSchema) (string, bool) {
	switch field.Target {
	case models.FieldTargetLabel:
		return step.Label, true
	case models.FieldTargetDescription:
		return step.Description, true
	case models.FieldTargetParam:
		svc, ok := step.Service()
		if !ok {
			return "", false
		}

		value, exists := svc.Params[field.Param]
		if !exists || value == nil {
			return "", true
		}

		if s, isString := value.(string); isString {
			return s, true
		}

		return fmt.Sprint(value), true
	case models.FieldTargetCondition:
		condition, ok := step.Condition()
		if !ok {
			return "", false
		}

		switch field.Param {
		case "field":
			return condition.Field, true
		case "value":
			return condition.Value, true
		case "expression":
			return condition.Expression, true
		}
	}

	return "", false
}

func patchFor(field models.FieldSchema, value string) graph.Patch {
	var patch graph.Patch

	switch field.Target {
	case models.FieldTargetLabel:
		patch.Label = &value
	case models.FieldTargetDescription:
		patch.Description = &value
	case models.FieldTargetParam:
		patch.Params = map[string]any{field.Param: value}
	case models.FieldTargetCondition:
		switch field.Param {
		case "field":
			patch.Field = &value
		case "value":
			patch.Value = &value
		case "expression":
			patch.Expression = &value
		}
	}

	return patch
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}
