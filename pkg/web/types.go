// Package web provides HTTP request and response types for the builder API.
package web

import "github.com/dukex/area/pkg/models"

// CreateSessionRequest represents the request body for starting a blank session.
type CreateSessionRequest struct {
	Name        string `json:"name"        validate:"required,min=1,max=120"`
	Description string `json:"description" validate:"max=1000"`
	Owner       string `json:"owner"`
}

// LoadAreaRequest represents the optional request body for editing an existing area.
type LoadAreaRequest struct {
	Owner string `json:"owner"`
}

// AddStepRequest represents the request body for appending a step.
type AddStepRequest struct {
	Kind string `json:"kind" validate:"required,oneof=trigger action condition delay"`
}

// MoveStepRequest represents the request body for reordering a step.
type MoveStepRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
}

// SelectActionRequest represents the request body for picking the service and action of a step.
type SelectActionRequest struct {
	ServiceID string `json:"service_id" validate:"required"`
	ActionID  string `json:"action_id"  validate:"required"`
}

// ConnectionRequest represents a connection between two steps.
type ConnectionRequest struct {
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required,nefield=Source"`
}

// FocusRequest represents the focused field of the editor. An empty step id clears the focus.
type FocusRequest struct {
	StepID   string `json:"step_id"`
	FieldKey string `json:"field_key" validate:"required_with=StepID"`
	Start    int    `json:"start"     validate:"min=0"`
	End      int    `json:"end"       validate:"min=0"`
}

// Focus converts the request into the session focus, or nil when it clears the focus.
func (r FocusRequest) Focus() *models.Focus {
	if r.StepID == "" {
		return nil
	}

	return &models.Focus{StepID: r.StepID, FieldKey: r.FieldKey, Start: r.Start, End: r.End}
}

// InsertVariableRequest represents the request body for inserting a variable at the focus.
type InsertVariableRequest struct {
	VariableID string `json:"variable_id" validate:"required"`
}

// MoveStepResponse is returned after a reorder; Moved is false when the step was already at the edge.
type MoveStepResponse struct {
	Moved   bool            `json:"moved"`
	Session *models.Session `json:"session"`
}

// StepVariablesResponse lists what the editor can insert into a step and where.
type StepVariablesResponse struct {
	StepID    string               `json:"step_id"`
	Variables []models.Variable    `json:"variables"`
	Fields    []models.FieldSchema `json:"fields"`
}
