package models

import "strings"

// ValueType is the type of value a variable resolves to at execution time.
type ValueType string

const (
	ValueTypeText    ValueType = "text"
	ValueTypeNumber  ValueType = "number"
	ValueTypeBoolean ValueType = "boolean"
)

// CategoryGlobal groups the variables that are visible from every step.
const CategoryGlobal = "global"

// Variable is an entry of the variable catalog. ID is "service.field" for service variables and the bare
// name for globals.
type Variable struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	ValueType   ValueType `json:"value_type"`
}

// Token returns the placeholder inserted into step fields for this variable.
func (v Variable) Token() string {
	return Placeholder(v.ID)
}

// Placeholder wraps a variable id into the templating syntax understood by the backend.
func Placeholder(variableID string) string {
	return "{{" + variableID + "}}"
}

// VariableID joins a service id and a field name into a variable id.
func VariableID(serviceID, field string) string {
	return serviceID + "." + field
}

// SplitVariableID splits "service.field" into its parts. Globals have no service part.
func SplitVariableID(id string) (string, string, bool) {
	service, field, ok := strings.Cut(id, ".")
	if !ok {
		return "", id, false
	}

	return service, field, true
}
