package models

import "slices"

// Graph is the in-memory automation being built: steps kept sorted by Order, with connections
// carried by each step.
type Graph struct {
	Steps []*Step `json:"steps"`
}

// Edge is a directed connection between two steps.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{Steps: []*Step{}}
}

// Step returns the step with the given id.
func (g *Graph) Step(id string) (*Step, bool) {
	if g == nil {
		return nil, false
	}

	for _, step := range g.Steps {
		if step.ID == id {
			return step, true
		}
	}

	return nil, false
}

// Has reports whether a step with the given id exists.
func (g *Graph) Has(id string) bool {
	_, ok := g.Step(id)

	return ok
}

// Edges derives the edge list from step connections, in step order then connection order.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0)

	if g == nil {
		return edges
	}

	for _, step := range g.Steps {
		for _, target := range step.Connections {
			edges = append(edges, Edge{Source: step.ID, Target: target})
		}
	}

	return edges
}

// Triggers returns every trigger step of the graph.
func (g *Graph) Triggers() []*Step {
	var triggers []*Step

	for _, step := range g.Steps {
		if step.IsTrigger() {
			triggers = append(triggers, step)
		}
	}

	return triggers
}

// Ordered returns the steps sorted by Order without modifying the graph.
func (g *Graph) Ordered() []*Step {
	steps := slices.Clone(g.Steps)
	slices.SortStableFunc(steps, func(a, b *Step) int {
		return a.Order - b.Order
	})

	return steps
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	cp := &Graph{Steps: make([]*Step, 0, len(g.Steps))}
	for _, step := range g.Steps {
		cp.Steps = append(cp.Steps, step.Clone())
	}

	return cp
}
