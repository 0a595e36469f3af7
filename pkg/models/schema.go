package models

// FieldType is the input kind of a configurable field.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeNumber   FieldType = "number"
	FieldTypeEmail    FieldType = "email"
	FieldTypeURL      FieldType = "url"
	FieldTypeCron     FieldType = "cron"
)

// FieldTarget tells which part of a step a field writes into.
type FieldTarget string

const (
	FieldTargetLabel       FieldTarget = "label"
	FieldTargetDescription FieldTarget = "description"
	FieldTargetParam       FieldTarget = "param"
	FieldTargetCondition   FieldTarget = "condition"
)

// FieldSchema maps a UI field to the step configuration key it edits.
type FieldSchema struct {
	Key         string      `json:"key"                   yaml:"key"`
	Target      FieldTarget `json:"target"                yaml:"target"`
	Param       string      `json:"param,omitempty"       yaml:"param"` // Param or condition attribute name
	Label       string      `json:"label"                 yaml:"label"`
	Type        FieldType   `json:"type"                  yaml:"type"`
	Required    bool        `json:"required"              yaml:"required"`
	Placeholder string      `json:"placeholder,omitempty" yaml:"placeholder"`
}

// ActionDefinition describes a trigger or action offered by a service.
type ActionDefinition struct {
	Key         string        `json:"key"         yaml:"key"`
	Kind        StepKind      `json:"kind"        yaml:"kind"`
	Name        string        `json:"name"        yaml:"name"`
	Description string        `json:"description" yaml:"description"`
	Fields      []FieldSchema `json:"fields"      yaml:"fields"`
}

// ServiceDefinition describes a service, the variables it exposes once it fires, and its triggers and actions.
type ServiceDefinition struct {
	Slug      string             `json:"slug"`
	Name      string             `json:"name"`
	Variables []Variable         `json:"variables"`
	Actions   []ActionDefinition `json:"actions"`   // Triggers
	Reactions []ActionDefinition `json:"reactions"` // Actions
}

// JSONSchema represents a JSON Schema used for params validation.
type JSONSchema struct {
	Type                 string               `json:"type"`
	Properties           map[string]*Property `json:"properties,omitempty"`
	Required             []string             `json:"required,omitempty"`
	Title                string               `json:"title,omitempty"`
	Description          string               `json:"description,omitempty"`
	AdditionalProperties bool                 `json:"additionalProperties"`
}

// Property represents a JSON Schema property.
type Property struct {
	Type        []string `json:"type,omitempty"`
	Description string   `json:"description,omitempty"`
	MinLength   *int     `json:"minLength,omitempty"`
}
