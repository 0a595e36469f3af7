// Package propagation computes which variables a step may reference: the globals plus the output
// variables of every trigger or action that can run before it, following connections backward.
package propagation

import "github.com/dukex/area/pkg/models"

// Catalog is the subset of the variable catalog the engine needs.
type Catalog interface {
	Globals() []models.Variable
	Variables(serviceID string) []models.Variable
}

// Available returns the variables visible from the step targetID: globals first, then the variables of
// upstream triggers and actions in visitation order, without duplicates.
//
// It never fails. An unknown target, a disconnected step or a cyclic graph only yields fewer variables.
func Available(g *models.Graph, targetID string, catalog Catalog) []models.Variable {
	seen := make(map[string]bool)
	result := make([]models.Variable, 0)

	add := func(vars []models.Variable) {
		for _, v := range vars {
			if seen[v.ID] {
				continue
			}

			seen[v.ID] = true
			result = append(result, v)
		}
	}

	add(catalog.Globals())

	for _, step := range Upstream(g, targetID) {
		svc, ok := step.Service()
		if !ok || svc.ServiceID == "" {
			continue
		}

		add(catalog.Variables(svc.ServiceID))
	}

	return result
}

// Upstream returns the steps that can reach targetID through connections, nearest first, excluding the
// target itself. A visited set stops the walk on cycles.
func Upstream(g *models.Graph, targetID string) []*models.Step {
	if g == nil {
		return nil
	}

	incoming := make(map[string][]*models.Step, len(g.Steps))

	for _, step := range g.Steps {
		for _, target := range step.Connections {
			incoming[target] = append(incoming[target], step)
		}
	}

	visited := map[string]bool{targetID: true}
	queue := []string{targetID}

	var upstream []*models.Step

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, source := range incoming[current] {
			if visited[source.ID] {
				continue
			}

			visited[source.ID] = true
			upstream = append(upstream, source)
			queue = append(queue, source.ID)
		}
	}

	return upstream
}
