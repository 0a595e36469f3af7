// Package template inspects the {{variable}} placeholders written into step fields.
package template

import (
	"regexp"

	"github.com/dukex/area/pkg/models"
	"github.com/dukex/area/pkg/propagation"
	"github.com/dukex/area/pkg/token"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+(?:\.[A-Za-z0-9_]+)?)\s*\}\}`)

// Catalog provides the variables and editable fields of steps.
type Catalog interface {
	propagation.Catalog
	Fields(step *models.Step) []models.FieldSchema
}

// Reference is a placeholder found in a step field.
type Reference struct {
	StepID     string `json:"step_id"`
	FieldKey   string `json:"field_key"`
	VariableID string `json:"variable_id"`
}

// Placeholders returns the variable ids referenced in s, in order of appearance.
func Placeholders(s string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil
	}

	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m[1])
	}

	return ids
}

// Unresolved lists the placeholders that reference a variable not visible from their step, which happens
// once the step that provided it is deleted, disconnected or reconfigured.
func Unresolved(g *models.Graph, catalog Catalog) []Reference {
	if g == nil {
		return nil
	}

	var refs []Reference

	for _, step := range g.Ordered() {
		visible := map[string]bool{}
		for _, v := range propagation.Available(g, step.ID, catalog) {
			visible[v.ID] = true
		}

		for _, field := range catalog.Fields(step) {
			value, ok := token.Value(step, field)
			if !ok {
				continue
			}

			for _, id := range Placeholders(value) {
				if !visible[id] {
					refs = append(refs, Reference{StepID: step.ID, FieldKey: field.Key, VariableID: id})
				}
			}
		}
	}

	return refs
}
