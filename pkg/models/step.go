// Package models defines the core domain models for the visual automation builder
package models

import (
	"encoding/json"
	"fmt"
	"slices"
)

// StepKind discriminates the step variants.
type StepKind string

const (
	StepKindTrigger   StepKind = "trigger"   // Starts the area (gmail new email, timer, webhook...)
	StepKindAction    StepKind = "action"    // Reaction executed by a connected service
	StepKindCondition StepKind = "condition" // Gate evaluated by the backend
	StepKindDelay     StepKind = "delay"     // Pause before the next step
)

// StepKinds lists every known kind in display order.
var StepKinds = []StepKind{StepKindTrigger, StepKindAction, StepKindCondition, StepKindDelay}

// IsValid reports whether k is one of the known kinds.
func (k StepKind) IsValid() bool {
	return slices.Contains(StepKinds, k)
}

// ConditionType selects how a condition step is expressed.
type ConditionType string

const (
	ConditionTypeSimple     ConditionType = "simple"
	ConditionTypeExpression ConditionType = "expression"
)

// Operators accepted by simple conditions.
var ConditionOperators = []string{"eq", "ne", "gt", "lt", "gte", "lte", "contains", "startswith", "endswith"}

// DelayUnit is the time unit of a delay step.
type DelayUnit string

const (
	DelayUnitSeconds DelayUnit = "seconds"
	DelayUnitMinutes DelayUnit = "minutes"
	DelayUnitHours   DelayUnit = "hours"
	DelayUnitDays    DelayUnit = "days"
)

// DelayUnits lists the accepted delay units.
var DelayUnits = []DelayUnit{DelayUnitSeconds, DelayUnitMinutes, DelayUnitHours, DelayUnitDays}

// StepConfig is the kind-specific payload of a step. The set of implementations is closed.
type StepConfig interface {
	Kind() StepKind
	stepConfig()
}

// ServiceConfig is shared by trigger and action steps.
type ServiceConfig struct {
	ServiceID string         `json:"service_id"`
	ActionID  string         `json:"action_id"`
	Params    map[string]any `json:"params"`
}

// TriggerConfig configures a trigger step.
type TriggerConfig struct {
	ServiceConfig
}

// ActionConfig configures an action step.
type ActionConfig struct {
	ServiceConfig
}

// ConditionConfig configures a condition step. Field, Operator and Value are used when
// ConditionType is simple, Expression when it is expression.
type ConditionConfig struct {
	ConditionType ConditionType `json:"condition_type"`
	Field         string        `json:"field"`
	Operator      string        `json:"operator"`
	Value         string        `json:"value"`
	Expression    string        `json:"expression"`
}

// DelayConfig configures a delay step.
type DelayConfig struct {
	Duration int       `json:"duration"`
	Unit     DelayUnit `json:"unit"`
}

func (*TriggerConfig) Kind() StepKind   { return StepKindTrigger }
func (*ActionConfig) Kind() StepKind    { return StepKindAction }
func (*ConditionConfig) Kind() StepKind { return StepKindCondition }
func (*DelayConfig) Kind() StepKind     { return StepKindDelay }

func (*TriggerConfig) stepConfig()   {}
func (*ActionConfig) stepConfig()    {}
func (*ConditionConfig) stepConfig() {}
func (*DelayConfig) stepConfig()     {}

// Position is the layout coordinate of a step on the visual canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Step is a single node of the automation graph.
type Step struct {
	ID          string     `json:"id"`
	Label       string     `json:"label"`
	Description string     `json:"description"`
	Order       int        `json:"order"`
	Connections []string   `json:"connections"` // Target step ids, set semantics
	Position    Position   `json:"position"`
	Config      StepConfig `json:"-"`
}

// NewStep builds a step of the given kind with a blank but serializable configuration.
func NewStep(id string, kind StepKind) *Step {
	return &Step{
		ID:          id,
		Connections: []string{},
		Config:      DefaultConfig(kind),
	}
}

// DefaultConfig returns the safe default configuration for kind. Unknown kinds fall back to an action.
func DefaultConfig(kind StepKind) StepConfig {
	switch kind {
	case StepKindTrigger:
		return &TriggerConfig{ServiceConfig{Params: map[string]any{}}}
	case StepKindCondition:
		return &ConditionConfig{ConditionType: ConditionTypeSimple}
	case StepKindDelay:
		return &DelayConfig{Duration: 1, Unit: DelayUnitSeconds}
	default:
		return &ActionConfig{ServiceConfig{Params: map[string]any{}}}
	}
}

// Kind returns the discriminator of the step.
func (s *Step) Kind() StepKind {
	if s.Config == nil {
		return ""
	}

	return s.Config.Kind()
}

// Helper methods for kind checking.
func (s *Step) IsTrigger() bool {
	return s.Kind() == StepKindTrigger
}

func (s *Step) IsAction() bool {
	return s.Kind() == StepKindAction
}

func (s *Step) IsCondition() bool {
	return s.Kind() == StepKindCondition
}

func (s *Step) IsDelay() bool {
	return s.Kind() == StepKindDelay
}

// Service returns the service configuration of trigger and action steps.
func (s *Step) Service() (*ServiceConfig, bool) {
	switch c := s.Config.(type) {
	case *TriggerConfig:
		return &c.ServiceConfig, true
	case *ActionConfig:
		return &c.ServiceConfig, true
	default:
		return nil, false
	}
}

// Condition returns the condition configuration of condition steps.
func (s *Step) Condition() (*ConditionConfig, bool) {
	c, ok := s.Config.(*ConditionConfig)

	return c, ok
}

// Delay returns the delay configuration of delay steps.
func (s *Step) Delay() (*DelayConfig, bool) {
	c, ok := s.Config.(*DelayConfig)

	return c, ok
}

// ConnectsTo reports whether targetID is in the step's connections.
func (s *Step) ConnectsTo(targetID string) bool {
	return slices.Contains(s.Connections, targetID)
}

// Clone returns a deep copy of the step.
func (s *Step) Clone() *Step {
	cp := *s
	cp.Connections = slices.Clone(s.Connections)

	switch c := s.Config.(type) {
	case *TriggerConfig:
		cfg := *c
		cfg.Params = cloneParams(c.Params)
		cp.Config = &cfg
	case *ActionConfig:
		cfg := *c
		cfg.Params = cloneParams(c.Params)
		cp.Config = &cfg
	case *ConditionConfig:
		cfg := *c
		cp.Config = &cfg
	case *DelayConfig:
		cfg := *c
		cp.Config = &cfg
	}

	return &cp
}

func cloneParams(params map[string]any) map[string]any {
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = v
	}

	return out
}

type stepJSON struct {
	ID          string          `json:"id"`
	Type        StepKind        `json:"type"`
	Label       string          `json:"label"`
	Description string          `json:"description"`
	Order       int             `json:"order"`
	Connections []string        `json:"connections"`
	Position    Position        `json:"position"`
	Config      json.RawMessage `json:"config"`
}

// MarshalJSON encodes the step with its discriminator next to the kind-specific config.
func (s Step) MarshalJSON() ([]byte, error) {
	config, err := json.Marshal(s.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config of step %s: %w", s.ID, err)
	}

	connections := s.Connections
	if connections == nil {
		connections = []string{}
	}

	return json.Marshal(stepJSON{
		ID:          s.ID,
		Type:        s.Kind(),
		Label:       s.Label,
		Description: s.Description,
		Order:       s.Order,
		Connections: connections,
		Position:    s.Position,
		Config:      config,
	})
}

// UnmarshalJSON decodes a step, picking the config variant from the type field.
func (s *Step) UnmarshalJSON(data []byte) error {
	var raw stepJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if !raw.Type.IsValid() {
		return fmt.Errorf("unknown step type %q", raw.Type)
	}

	config := DefaultConfig(raw.Type)
	if len(raw.Config) > 0 && string(raw.Config) != "null" {
		if err := json.Unmarshal(raw.Config, config); err != nil {
			return fmt.Errorf("failed to unmarshal %s config of step %s: %w", raw.Type, raw.ID, err)
		}
	}

	if svc, ok := serviceOf(config); ok && svc.Params == nil {
		svc.Params = map[string]any{}
	}

	*s = Step{
		ID:          raw.ID,
		Label:       raw.Label,
		Description: raw.Description,
		Order:       raw.Order,
		Connections: raw.Connections,
		Position:    raw.Position,
		Config:      config,
	}

	if s.Connections == nil {
		s.Connections = []string{}
	}

	return nil
}

func serviceOf(config StepConfig) (*ServiceConfig, bool) {
	step := Step{Config: config}

	return step.Service()
}
