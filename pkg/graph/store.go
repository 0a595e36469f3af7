// Package graph provides the editing operations of the automation graph. Every function works on a
// passed-in graph and mutates it in place; none of them keeps state of its own.
package graph

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/dukex/area/pkg/models"
	"github.com/google/uuid"
)

var (
	// ErrStepNotFound is returned when an operation references an id that is not in the graph.
	ErrStepNotFound = errors.New("step not found")

	// ErrSelfConnection is returned when a step is connected to itself.
	ErrSelfConnection = errors.New("a step cannot be connected to itself")
)

// Direction is the way a step moves in the ordered list.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// IDGenerator produces ids for new steps.
type IDGenerator func(kind models.StepKind) string

// DefaultIDGenerator prefixes a random uuid with the step kind.
func DefaultIDGenerator(kind models.StepKind) string {
	return string(kind) + "-" + uuid.New().String()
}

// AddStep appends a new step of the given kind with default configuration, order equal to the current
// step count and no connections.
func AddStep(g *models.Graph, kind models.StepKind) *models.Step {
	return AddStepWithID(g, kind, DefaultIDGenerator)
}

// AddStepWithID is AddStep with a custom id generator.
func AddStepWithID(g *models.Graph, kind models.StepKind, generate IDGenerator) *models.Step {
	step := models.NewStep(generate(kind), kind)
	step.Order = len(g.Steps)
	step.Label = defaultLabel(kind, countKind(g, kind)+1)

	g.Steps = append(g.Steps, step)

	return step
}

// Patch is a partial update of a step. Nil fields are left untouched. Fields that do not belong to the
// step's kind are ignored, so the kind of a step never changes through a patch.
type Patch struct {
	Label       *string          `json:"label,omitempty"`
	Description *string          `json:"description,omitempty"`
	Position    *models.Position `json:"position,omitempty"`

	// Trigger and action steps.
	ServiceID *string        `json:"service_id,omitempty"`
	ActionID  *string        `json:"action_id,omitempty"`
	Params    map[string]any `json:"params,omitempty"`

	// Condition steps.
	ConditionType *models.ConditionType `json:"condition_type,omitempty"`
	Field         *string               `json:"field,omitempty"`
	Operator      *string               `json:"operator,omitempty"`
	Value         *string               `json:"value,omitempty"`
	Expression    *string               `json:"expression,omitempty"`

	// Delay steps.
	Duration *int              `json:"duration,omitempty"`
	Unit     *models.DelayUnit `json:"unit,omitempty"`
}

// PatchStep shallow-merges patch into the step with the given id. It is a no-op returning false when the
// id is unknown.
//
// Changing the service of a trigger or action clears its action and params, since params are action
// specific. An action id given in the same patch is applied after the reset.
func PatchStep(g *models.Graph, id string, patch Patch) bool {
	step, ok := g.Step(id)
	if !ok {
		return false
	}

	if patch.Label != nil {
		step.Label = *patch.Label
	}

	if patch.Description != nil {
		step.Description = *patch.Description
	}

	if patch.Position != nil {
		step.Position = *patch.Position
	}

	switch config := step.Config.(type) {
	case *models.TriggerConfig:
		patchService(&config.ServiceConfig, patch)
	case *models.ActionConfig:
		patchService(&config.ServiceConfig, patch)
	case *models.ConditionConfig:
		patchCondition(config, patch)
	case *models.DelayConfig:
		patchDelay(config, patch)
	}

	return true
}

func patchService(config *models.ServiceConfig, patch Patch) {
	if patch.ServiceID != nil && *patch.ServiceID != config.ServiceID {
		config.ServiceID = *patch.ServiceID
		config.ActionID = ""
		config.Params = map[string]any{}
	}

	if patch.ActionID != nil && *patch.ActionID != config.ActionID {
		config.ActionID = *patch.ActionID
		config.Params = map[string]any{}
	}

	if config.Params == nil {
		config.Params = map[string]any{}
	}

	for key, value := range patch.Params {
		if value == nil {
			delete(config.Params, key)

			continue
		}

		config.Params[key] = value
	}
}

func patchCondition(config *models.ConditionConfig, patch Patch) {
	if patch.ConditionType != nil {
		config.ConditionType = *patch.ConditionType
	}

	if patch.Field != nil {
		config.Field = *patch.Field
	}

	if patch.Operator != nil {
		config.Operator = *patch.Operator
	}

	if patch.Value != nil {
		config.Value = *patch.Value
	}

	if patch.Expression != nil {
		config.Expression = *patch.Expression
	}
}

func patchDelay(config *models.DelayConfig, patch Patch) {
	if patch.Duration != nil {
		config.Duration = *patch.Duration
	}

	if patch.Unit != nil {
		config.Unit = *patch.Unit
	}
}

// DeleteStep removes the step, strips its id from every other step's connections and renumbers the
// remaining steps densely, preserving their relative order.
func DeleteStep(g *models.Graph, id string) bool {
	index := slices.IndexFunc(g.Steps, func(s *models.Step) bool { return s.ID == id })
	if index < 0 {
		return false
	}

	g.Steps = slices.Delete(g.Steps, index, index+1)

	for _, step := range g.Steps {
		step.Connections = slices.DeleteFunc(step.Connections, func(target string) bool {
			return target == id
		})
	}

	Renumber(g)

	return true
}

// MoveStep swaps the order of a step with its neighbour in the given direction. Moving the first step up or
// the last step down is a no-op.
func MoveStep(g *models.Graph, id string, direction Direction) bool {
	Renumber(g)

	index := slices.IndexFunc(g.Steps, func(s *models.Step) bool { return s.ID == id })
	if index < 0 {
		return false
	}

	var neighbour int

	switch direction {
	case DirectionUp:
		neighbour = index - 1
	case DirectionDown:
		neighbour = index + 1
	default:
		return false
	}

	if neighbour < 0 || neighbour >= len(g.Steps) {
		return false
	}

	g.Steps[index], g.Steps[neighbour] = g.Steps[neighbour], g.Steps[index]
	g.Steps[index].Order = index
	g.Steps[neighbour].Order = neighbour

	return true
}

// Connect adds targetID to the connections of sourceID. Connecting twice leaves the set unchanged.
func Connect(g *models.Graph, sourceID, targetID string) error {
	if sourceID == targetID {
		return fmt.Errorf("connect %s: %w", sourceID, ErrSelfConnection)
	}

	source, ok := g.Step(sourceID)
	if !ok {
		return fmt.Errorf("connect source %s: %w", sourceID, ErrStepNotFound)
	}

	if !g.Has(targetID) {
		return fmt.Errorf("connect target %s: %w", targetID, ErrStepNotFound)
	}

	if !source.ConnectsTo(targetID) {
		source.Connections = append(source.Connections, targetID)
	}

	return nil
}

// Disconnect removes targetID from the connections of sourceID.
func Disconnect(g *models.Graph, sourceID, targetID string) error {
	source, ok := g.Step(sourceID)
	if !ok {
		return fmt.Errorf("disconnect source %s: %w", sourceID, ErrStepNotFound)
	}

	source.Connections = slices.DeleteFunc(source.Connections, func(target string) bool {
		return target == targetID
	})

	return nil
}

// Renumber sorts the steps by their current order and rewrites orders as the dense range [0, n).
func Renumber(g *models.Graph) {
	slices.SortStableFunc(g.Steps, func(a, b *models.Step) int {
		return a.Order - b.Order
	})

	for i, step := range g.Steps {
		step.Order = i
	}
}

// Prune drops connections that reference steps missing from the graph.
func Prune(g *models.Graph) {
	for _, step := range g.Steps {
		step.Connections = slices.DeleteFunc(step.Connections, func(target string) bool {
			return target == step.ID || !g.Has(target)
		})
	}
}

func countKind(g *models.Graph, kind models.StepKind) int {
	count := 0

	for _, step := range g.Steps {
		if step.Kind() == kind {
			count++
		}
	}

	return count
}

// IsDefaultLabel reports whether label is blank or one of the labels AddStep gives to steps of kind.
func IsDefaultLabel(kind models.StepKind, label string) bool {
	if label == "" {
		return true
	}

	rest, ok := strings.CutPrefix(label, labelPrefix(kind)+" ")
	if !ok {
		return false
	}

	n, err := strconv.Atoi(rest)

	return err == nil && n > 0
}

func defaultLabel(kind models.StepKind, n int) string {
	return fmt.Sprintf("%s %d", labelPrefix(kind), n)
}

func labelPrefix(kind models.StepKind) string {
	switch kind {
	case models.StepKindTrigger:
		return "Trigger"
	case models.StepKindCondition:
		return "Condition"
	case models.StepKindDelay:
		return "Delay"
	default:
		return "Action"
	}
}
