package models

// Wire format shared with the external Area API (POST /areas/with-steps, PUT /areas/{id}/with-steps,
// GET /areas/{id}).

// Config keys of a serialized step.
const (
	ConfigKeyID             = "id"
	ConfigKeyLabel          = "label"
	ConfigKeyDescription    = "description"
	ConfigKeyConnections    = "connections"
	ConfigKeyTargets        = "targets"
	ConfigKeyParams         = "params"
	ConfigKeyConditionType  = "conditionType"
	ConfigKeyConditionValue = "conditionValue"
	ConfigKeyDuration       = "duration"
	ConfigKeyUnit           = "unit"
	ConfigKeyPosition       = "position"
)

// StepPayload is a single step in the backend shape.
type StepPayload struct {
	StepType StepKind       `json:"step_type"`
	Order    int            `json:"order"`
	Service  *string        `json:"service"`
	Action   *string        `json:"action"`
	Config   map[string]any `json:"config"`
}

// AreaRequest is the body of the create and update calls.
type AreaRequest struct {
	Name            string        `json:"name,omitempty"`
	Description     string        `json:"description,omitempty"`
	TriggerService  string        `json:"trigger_service"`
	TriggerAction   string        `json:"trigger_action"`
	ReactionService *string       `json:"reaction_service"`
	ReactionAction  *string       `json:"reaction_action"`
	Steps           []StepPayload `json:"steps"`
}

// AreaResponse is the area returned by the backend.
type AreaResponse struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Description     string        `json:"description"`
	Enabled         bool          `json:"enabled"`
	TriggerService  string        `json:"trigger_service"`
	TriggerAction   string        `json:"trigger_action"`
	ReactionService *string       `json:"reaction_service"`
	ReactionAction  *string       `json:"reaction_action"`
	Steps           []StepPayload `json:"steps"`
}
