package catalog

import "github.com/dukex/area/pkg/models"

// Field keys shared by every step kind.
const (
	FieldLabel       = "label"
	FieldDescription = "description"

	FieldConditionField      = "condition_field"
	FieldConditionValue      = "condition_value"
	FieldConditionExpression = "condition_expression"
)

var reservedKeys = map[string]bool{
	FieldLabel:               true,
	FieldDescription:         true,
	FieldConditionField:      true,
	FieldConditionValue:      true,
	FieldConditionExpression: true,
}

var commonFields = []models.FieldSchema{
	{Key: FieldLabel, Target: models.FieldTargetLabel, Label: "Name", Type: models.FieldTypeText},
	{Key: FieldDescription, Target: models.FieldTargetDescription, Label: "Description", Type: models.FieldTypeTextarea},
}

var conditionFields = []models.FieldSchema{
	{Key: FieldConditionField, Target: models.FieldTargetCondition, Param: "field", Label: "Field", Type: models.FieldTypeText},
	{Key: FieldConditionValue, Target: models.FieldTargetCondition, Param: "value", Label: "Value", Type: models.FieldTypeText},
	{
		Key:    FieldConditionExpression,
		Target: models.FieldTargetCondition,
		Param:  "expression",
		Label:  "Expression",
		Type:   models.FieldTypeTextarea,
	},
}

// Fields returns the editable text fields of a step: the common ones, then the kind or action specific
// ones. Trigger and action steps without a known service and action only expose the common fields.
func (c *Catalog) Fields(step *models.Step) []models.FieldSchema {
	fields := make([]models.FieldSchema, 0, len(commonFields)+4)
	fields = append(fields, commonFields...)

	switch {
	case step.IsCondition():
		fields = append(fields, conditionFields...)
	case step.IsTrigger(), step.IsAction():
		svc, _ := step.Service()
		if action, ok := c.Action(step.Kind(), svc.ServiceID, svc.ActionID); ok {
			fields = append(fields, action.Fields...)
		}
	}

	return fields
}

// Field looks a field of a step up by key.
func (c *Catalog) Field(step *models.Step, key string) (models.FieldSchema, bool) {
	for _, field := range c.Fields(step) {
		if field.Key == key {
			return field, true
		}
	}

	return models.FieldSchema{}, false
}
