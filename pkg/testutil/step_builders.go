// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"time"

	"github.com/dukex/area/pkg/models"
	"github.com/google/uuid"
)

// CreateTestStep creates a step of the given kind with default values that can be overridden.
func CreateTestStep(kind models.StepKind, overrides ...func(*models.Step)) *models.Step {
	step := models.NewStep(string(kind)+"-"+uuid.New().String(), kind)
	step.Label = "Test Step"

	for _, override := range overrides {
		override(step)
	}

	return step
}

// WithID sets the step id.
func WithID(id string) func(*models.Step) {
	return func(s *models.Step) {
		s.ID = id
	}
}

// WithLabel sets the step label.
func WithLabel(label string) func(*models.Step) {
	return func(s *models.Step) {
		s.Label = label
	}
}

// WithService configures the service, action and params of a trigger or action step.
func WithService(serviceID, actionID string, params map[string]any) func(*models.Step) {
	return func(s *models.Step) {
		svc, ok := s.Service()
		if !ok {
			return
		}

		svc.ServiceID = serviceID
		svc.ActionID = actionID

		for k, v := range params {
			svc.Params[k] = v
		}
	}
}

// WithConnections sets the target step ids.
func WithConnections(targets ...string) func(*models.Step) {
	return func(s *models.Step) {
		s.Connections = append([]string{}, targets...)
	}
}

// CreateTestGraph wraps steps into a graph, numbering them in the given order.
func CreateTestGraph(steps ...*models.Step) *models.Graph {
	g := &models.Graph{Steps: make([]*models.Step, 0, len(steps))}

	for i, step := range steps {
		step.Order = i
		g.Steps = append(g.Steps, step)
	}

	return g
}

// CreateSavableGraph returns a cron trigger connected to a fully configured gmail action, which passes
// save validation.
func CreateSavableGraph() *models.Graph {
	return CreateTestGraph(
		CreateTestStep(models.StepKindTrigger,
			WithID("trigger-1"),
			WithLabel("Every weekday"),
			WithService("timer", "cron", map[string]any{"schedule": "0 9 * * 1-5"}),
			WithConnections("action-1"),
		),
		CreateTestStep(models.StepKindAction,
			WithID("action-1"),
			WithLabel("Send report"),
			WithService("gmail", "send_email", map[string]any{
				"to":      "team@example.com",
				"subject": "Daily report {{now}}",
				"body":    "See attached",
			}),
		),
	)
}

// CreateTestSession creates a session holding g with default values that can be overridden.
func CreateTestSession(g *models.Graph, overrides ...func(*models.Session)) *models.Session {
	now := time.Now().UTC()

	session := &models.Session{
		ID:        uuid.New().String(),
		Name:      "Test Area",
		Graph:     g,
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, override := range overrides {
		override(session)
	}

	return session
}
