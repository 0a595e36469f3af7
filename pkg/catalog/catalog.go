// Package catalog provides the static table of services: the variables each service exposes once it fires,
// and the field schema of each of its triggers and actions.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/dukex/area/pkg/models"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultDocument []byte

// builtinGlobals are visible from every step whatever the loaded document declares. A document may only
// reword their descriptions.
var builtinGlobals = []models.Variable{
	{ID: "now", Name: "now", Description: "Date and time at which the area runs", Category: models.CategoryGlobal, ValueType: models.ValueTypeText},
	{ID: "user_id", Name: "user_id", Description: "Identifier of the area owner", Category: models.CategoryGlobal, ValueType: models.ValueTypeText},
	{ID: "area_id", Name: "area_id", Description: "Identifier of the running area", Category: models.CategoryGlobal, ValueType: models.ValueTypeText},
}

type variableDocument struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Type        models.ValueType `yaml:"type"`
}

type serviceDocument struct {
	Slug      string                    `yaml:"slug"`
	Name      string                    `yaml:"name"`
	Variables []variableDocument        `yaml:"variables"`
	Triggers  []models.ActionDefinition `yaml:"triggers"`
	Actions   []models.ActionDefinition `yaml:"actions"`
}

type document struct {
	Globals  []variableDocument `yaml:"globals"`
	Services []serviceDocument  `yaml:"services"`
}

// Catalog is an immutable, indexed view of the service table.
type Catalog struct {
	globals  []models.Variable
	services []*models.ServiceDefinition
	bySlug   map[string]*models.ServiceDefinition
}

var loadDefault = sync.OnceValues(func() (*Catalog, error) {
	return Load(defaultDocument)
})

// Default returns the catalog embedded in the binary.
func Default() *Catalog {
	catalog, err := loadDefault()
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}

	return catalog
}

// Load parses a catalog document. JSON documents are accepted too.
func Load(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	catalog := &Catalog{
		globals:  make([]models.Variable, 0, len(builtinGlobals)+len(doc.Globals)),
		services: make([]*models.ServiceDefinition, 0, len(doc.Services)),
		bySlug:   make(map[string]*models.ServiceDefinition, len(doc.Services)),
	}

	catalog.globals = append(catalog.globals, builtinGlobals...)

	for _, global := range doc.Globals {
		if global.Name == "" {
			return nil, errors.New("global variable has no name")
		}

		i := slices.IndexFunc(catalog.globals, func(v models.Variable) bool { return v.ID == global.Name })
		if i >= 0 && i < len(builtinGlobals) {
			if global.Description != "" {
				catalog.globals[i].Description = global.Description
			}

			continue
		}

		if i >= 0 {
			return nil, fmt.Errorf("global variable %s is declared twice", global.Name)
		}

		catalog.globals = append(catalog.globals, models.Variable{
			ID:          global.Name,
			Name:        global.Name,
			Description: global.Description,
			Category:    models.CategoryGlobal,
			ValueType:   valueType(global.Type),
		})
	}

	for _, svc := range doc.Services {
		if svc.Slug == "" {
			return nil, fmt.Errorf("service %q has no slug", svc.Name)
		}

		if _, exists := catalog.bySlug[svc.Slug]; exists {
			return nil, fmt.Errorf("service %s is declared twice", svc.Slug)
		}

		definition, err := buildService(svc)
		if err != nil {
			return nil, err
		}

		catalog.services = append(catalog.services, definition)
		catalog.bySlug[svc.Slug] = definition
	}

	return catalog, nil
}

func buildService(doc serviceDocument) (*models.ServiceDefinition, error) {
	definition := &models.ServiceDefinition{
		Slug:      doc.Slug,
		Name:      doc.Name,
		Variables: make([]models.Variable, 0, len(doc.Variables)),
		Actions:   make([]models.ActionDefinition, 0, len(doc.Triggers)),
		Reactions: make([]models.ActionDefinition, 0, len(doc.Actions)),
	}

	for _, v := range doc.Variables {
		definition.Variables = append(definition.Variables, models.Variable{
			ID:          models.VariableID(doc.Slug, v.Name),
			Name:        v.Name,
			Description: v.Description,
			Category:    doc.Name,
			ValueType:   valueType(v.Type),
		})
	}

	for _, trigger := range doc.Triggers {
		trigger.Kind = models.StepKindTrigger
		if err := checkFields(doc.Slug, trigger); err != nil {
			return nil, err
		}

		definition.Actions = append(definition.Actions, trigger)
	}

	for _, action := range doc.Actions {
		action.Kind = models.StepKindAction
		if err := checkFields(doc.Slug, action); err != nil {
			return nil, err
		}

		definition.Reactions = append(definition.Reactions, action)
	}

	return definition, nil
}

// checkFields rejects duplicate field keys or params within one action and fills defaults.
func checkFields(slug string, action models.ActionDefinition) error {
	keys := make(map[string]bool, len(action.Fields))
	params := make(map[string]bool, len(action.Fields))

	for i := range action.Fields {
		field := &action.Fields[i]

		if field.Key == "" || field.Param == "" {
			return fmt.Errorf("field %d of %s.%s needs a key and a param", i, slug, action.Key)
		}

		if keys[field.Key] || params[field.Param] {
			return fmt.Errorf("field %s of %s.%s is declared twice", field.Key, slug, action.Key)
		}

		if reservedKeys[field.Key] {
			return fmt.Errorf("field key %s of %s.%s is reserved", field.Key, slug, action.Key)
		}

		keys[field.Key] = true
		params[field.Param] = true

		field.Target = models.FieldTargetParam
		if field.Type == "" {
			field.Type = models.FieldTypeText
		}
	}

	return nil
}

func valueType(t models.ValueType) models.ValueType {
	switch t {
	case models.ValueTypeNumber, models.ValueTypeBoolean:
		return t
	default:
		return models.ValueTypeText
	}
}

// Globals returns the variables visible from every step.
func (c *Catalog) Globals() []models.Variable {
	return slices.Clone(c.globals)
}

// Variables returns the variables exposed by a service, or nil when the service is unknown.
func (c *Catalog) Variables(serviceID string) []models.Variable {
	svc, ok := c.bySlug[serviceID]
	if !ok {
		return nil
	}

	return slices.Clone(svc.Variables)
}

// Services returns every service in declaration order.
func (c *Catalog) Services() []*models.ServiceDefinition {
	return slices.Clone(c.services)
}

// Service returns a service by slug.
func (c *Catalog) Service(slug string) (*models.ServiceDefinition, bool) {
	svc, ok := c.bySlug[slug]

	return svc, ok
}

// Action returns the trigger or action definition of a service for the given step kind.
func (c *Catalog) Action(kind models.StepKind, serviceID, actionID string) (*models.ActionDefinition, bool) {
	svc, ok := c.bySlug[serviceID]
	if !ok {
		return nil, false
	}

	list := svc.Reactions
	if kind == models.StepKindTrigger {
		list = svc.Actions
	}

	for i := range list {
		if list[i].Key == actionID {
			return &list[i], true
		}
	}

	return nil, false
}
