package models

import "time"

// Focus identifies the text field currently holding input focus and its selection, in rune offsets.
type Focus struct {
	StepID   string `json:"step_id"`
	FieldKey string `json:"field_key"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
}

// Session is the state of one builder screen: the graph being edited and the focused field.
type Session struct {
	ID          string    `json:"id"`
	AreaID      string    `json:"area_id,omitempty"` // Set when editing an existing area
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Graph       *Graph    `json:"graph"`
	Focus       *Focus    `json:"focus,omitempty"`
	Owner       string    `json:"owner,omitempty"`
	Revision    int64     `json:"revision"` // Incremented by every edit
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
