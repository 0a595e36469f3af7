package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/dukex/area/pkg/catalog"
	"github.com/dukex/area/pkg/graph"
	"github.com/dukex/area/pkg/models"
	"github.com/dukex/area/pkg/otelhelper"
	"github.com/dukex/area/pkg/persistence"
	"github.com/dukex/area/pkg/propagation"
	"github.com/dukex/area/pkg/serializer"
	"github.com/dukex/area/pkg/template"
	"github.com/dukex/area/pkg/token"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// AreaClient is the subset of the Area API the builder talks to.
type AreaClient interface {
	CreateArea(ctx context.Context, request *models.AreaRequest) (*models.AreaResponse, error)
	UpdateArea(ctx context.Context, id string, request *models.AreaRequest) (*models.AreaResponse, error)
	GetArea(ctx context.Context, id string) (*models.AreaResponse, error)
	ConnectedServices(ctx context.Context) ([]string, error)
}

// Builder holds the editing sessions of the automation builder. Every mutation loads the session,
// applies a graph operation and stores the session back; mutations of one session are serialized.
type Builder struct {
	persistence persistence.Persistence
	catalog     *catalog.Catalog
	areas       AreaClient
	logger      *slog.Logger
	tracer      trace.Tracer
	stepIDs     graph.IDGenerator

	edits *lockTable // held while a session is read, changed and stored
	saves *lockTable // held for the whole of a save, network call included
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithTracer sets the tracer used for save and load spans.
func WithTracer(tracer trace.Tracer) BuilderOption {
	return func(b *Builder) {
		b.tracer = tracer
	}
}

// WithStepIDs sets the id generator of new steps.
func WithStepIDs(generate graph.IDGenerator) BuilderOption {
	return func(b *Builder) {
		b.stepIDs = generate
	}
}

// NewBuilder creates a new builder service.
func NewBuilder(
	persistence persistence.Persistence,
	catalog *catalog.Catalog,
	areas AreaClient,
	logger *slog.Logger,
	opts ...BuilderOption,
) *Builder {
	b := &Builder{
		persistence: persistence,
		catalog:     catalog,
		areas:       areas,
		logger:      logger.With("module", "builder"),
		tracer:      otelhelper.Tracer("area-builder"),
		stepIDs:     graph.DefaultIDGenerator,
		edits:       newLockTable(),
		saves:       newLockTable(),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// HealthCheck checks the health of the persistence layer.
func (b *Builder) HealthCheck(ctx context.Context) (string, bool) {
	if b.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := b.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// Catalog returns the service catalog used by the builder.
func (b *Builder) Catalog() *catalog.Catalog {
	return b.catalog
}

// CreateSessionRequest contains the fields of a new blank session.
type CreateSessionRequest struct {
	Name        string
	Description string
	Owner       string
}

// CreateSession starts a session with an empty graph.
func (b *Builder) CreateSession(ctx context.Context, req CreateSessionRequest) (*models.Session, error) {
	session := &models.Session{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Owner:       req.Owner,
		Graph:       models.NewGraph(),
	}

	if err := b.persistence.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	b.logger.InfoContext(ctx, "session created", "session_id", session.ID)

	return session, nil
}

// LoadArea starts a session editing an existing area fetched from the Area API.
func (b *Builder) LoadArea(ctx context.Context, areaID, owner string) (*models.Session, error) {
	ctx, span := otelhelper.StartSpan(ctx, b.tracer, "builder.load_area", attribute.String(otelhelper.AreaIDKey, areaID))
	defer span.End()

	area, err := b.areas.GetArea(ctx, areaID)
	if err != nil {
		otelhelper.SetError(span, err)
		b.logger.WarnContext(ctx, "failed to fetch area", "area_id", areaID, "error", err)

		if errors.Is(err, ErrAreaNotFound) {
			return nil, &ServiceError{Op: "LoadArea", Code: "AREA_NOT_FOUND", Message: "area " + areaID + " not found", Err: err}
		}

		return nil, upstreamError("LoadArea", err)
	}

	g, err := serializer.DeserializeArea(area)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, upstreamError("LoadArea", fmt.Errorf("area %s has unreadable steps: %w", areaID, err))
	}

	session := &models.Session{
		ID:          uuid.New().String(),
		AreaID:      areaID,
		Name:        area.Name,
		Description: area.Description,
		Owner:       owner,
		Graph:       g,
	}

	if err := b.persistence.SaveSession(ctx, session); err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	span.SetAttributes(
		attribute.String(otelhelper.SessionIDKey, session.ID),
		attribute.Int(otelhelper.StepCountKey, len(g.Steps)),
	)
	b.logger.InfoContext(ctx, "area loaded", "session_id", session.ID, "area_id", areaID, "steps", len(g.Steps))

	return session, nil
}

// Session fetches a session by id.
func (b *Builder) Session(ctx context.Context, id string) (*models.Session, error) {
	session, err := b.persistence.SessionByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if session.Graph == nil {
		session.Graph = models.NewGraph()
	}

	return session, nil
}

// DeleteSession discards a session and its unsaved graph.
func (b *Builder) DeleteSession(ctx context.Context, id string) error {
	unlock := b.edits.lock(id)
	defer unlock()

	if _, err := b.persistence.SessionByID(ctx, id); err != nil {
		return err
	}

	if err := b.persistence.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

// AddStep appends a step of the given kind.
func (b *Builder) AddStep(ctx context.Context, sessionID string, kind models.StepKind) (*models.Step, error) {
	if !kind.IsValid() {
		return nil, NewValidationError("AddStep", "INVALID_STEP_KIND", fmt.Sprintf("invalid step kind '%s'", kind), ErrInvalidStepKind)
	}

	var step *models.Step

	_, err := b.update(ctx, sessionID, func(s *models.Session) error {
		step = graph.AddStepWithID(s.Graph, kind, b.stepIDs)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return step, nil
}

// PatchStep merges patch into a step.
func (b *Builder) PatchStep(ctx context.Context, sessionID, stepID string, patch graph.Patch) (*models.Step, error) {
	var step *models.Step

	_, err := b.update(ctx, sessionID, func(s *models.Session) error {
		if !graph.PatchStep(s.Graph, stepID, patch) {
			return stepNotFound("PatchStep", stepID)
		}

		step, _ = s.Graph.Step(stepID)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return step, nil
}

// DeleteStep removes a step and every connection to it.
func (b *Builder) DeleteStep(ctx context.Context, sessionID, stepID string) (*models.Session, error) {
	return b.update(ctx, sessionID, func(s *models.Session) error {
		if !graph.DeleteStep(s.Graph, stepID) {
			return stepNotFound("DeleteStep", stepID)
		}

		return nil
	})
}

// MoveStep moves a step up or down the ordered list. Moving past either end leaves the graph unchanged
// and reports moved as false.
func (b *Builder) MoveStep(ctx context.Context, sessionID, stepID string, direction graph.Direction) (*models.Session, bool, error) {
	if direction != graph.DirectionUp && direction != graph.DirectionDown {
		return nil, false, NewValidationError("MoveStep", "INVALID_DIRECTION", fmt.Sprintf("invalid direction '%s', allowed: up, down", direction), ErrInvalidDirection)
	}

	var moved bool

	session, err := b.update(ctx, sessionID, func(s *models.Session) error {
		if !s.Graph.Has(stepID) {
			return stepNotFound("MoveStep", stepID)
		}

		moved = graph.MoveStep(s.Graph, stepID, direction)

		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return session, moved, nil
}

// Connect adds a connection from sourceID to targetID.
func (b *Builder) Connect(ctx context.Context, sessionID, sourceID, targetID string) (*models.Session, error) {
	return b.update(ctx, sessionID, func(s *models.Session) error {
		if err := graph.Connect(s.Graph, sourceID, targetID); err != nil {
			if errors.Is(err, graph.ErrSelfConnection) {
				return NewValidationError("Connect", "SELF_CONNECTION", "a step cannot be connected to itself", err)
			}

			return err
		}

		return nil
	})
}

// Disconnect removes the connection from sourceID to targetID.
func (b *Builder) Disconnect(ctx context.Context, sessionID, sourceID, targetID string) (*models.Session, error) {
	return b.update(ctx, sessionID, func(s *models.Session) error {
		return graph.Disconnect(s.Graph, sourceID, targetID)
	})
}

// SelectActionResult is the outcome of picking a service and action for a step.
type SelectActionResult struct {
	Step      *models.Step `json:"step"`
	Connected bool         `json:"connected"`
	Warning   string       `json:"warning,omitempty"`
}

// SelectAction sets the service and action of a trigger or action step. The label and description are
// filled from the catalog while they still hold defaults. The result tells whether the user has connected
// the service; an unconnected service only produces a warning.
func (b *Builder) SelectAction(ctx context.Context, sessionID, stepID, serviceID, actionID string) (*SelectActionResult, error) {
	var step *models.Step

	_, err := b.update(ctx, sessionID, func(s *models.Session) error {
		current, ok := s.Graph.Step(stepID)
		if !ok {
			return stepNotFound("SelectAction", stepID)
		}

		svc, ok := current.Service()
		if !ok {
			return NewValidationError("SelectAction", "NOT_APPLICABLE", fmt.Sprintf("step %s is a %s step", stepID, current.Kind()), ErrActionNotApplicable)
		}

		next, ok := b.catalog.Action(current.Kind(), serviceID, actionID)
		if !ok {
			return NewValidationError(
				"SelectAction",
				"UNKNOWN_ACTION",
				fmt.Sprintf("service %s has no %s '%s'", serviceID, current.Kind(), actionID),
				ErrUnknownAction,
			)
		}

		previous, _ := b.catalog.Action(current.Kind(), svc.ServiceID, svc.ActionID)

		patch := graph.Patch{ServiceID: &serviceID, ActionID: &actionID}

		if graph.IsDefaultLabel(current.Kind(), current.Label) || (previous != nil && current.Label == previous.Name) {
			patch.Label = &next.Name
		}

		if current.Description == "" || (previous != nil && current.Description == previous.Description) {
			patch.Description = &next.Description
		}

		graph.PatchStep(s.Graph, stepID, patch)
		step = current

		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &SelectActionResult{Step: step, Connected: true}

	connected, err := b.areas.ConnectedServices(ctx)
	if err != nil {
		b.logger.WarnContext(ctx, "failed to fetch connected services", "session_id", sessionID, "error", err)
		result.Connected = false
		result.Warning = "could not check whether " + serviceID + " is connected"

		return result, nil
	}

	if !slices.Contains(connected, serviceID) {
		result.Connected = false
		result.Warning = "service " + serviceID + " is not connected yet; connect it before the area runs"
	}

	return result, nil
}

// Variables returns the variables visible from a step.
func (b *Builder) Variables(ctx context.Context, sessionID, stepID string) ([]models.Variable, error) {
	session, err := b.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !session.Graph.Has(stepID) {
		return nil, stepNotFound("Variables", stepID)
	}

	return propagation.Available(session.Graph, stepID, b.catalog), nil
}

// Fields returns the editable text fields of a step.
func (b *Builder) Fields(ctx context.Context, sessionID, stepID string) ([]models.FieldSchema, error) {
	session, err := b.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	step, ok := session.Graph.Step(stepID)
	if !ok {
		return nil, stepNotFound("Fields", stepID)
	}

	return b.catalog.Fields(step), nil
}

// SetFocus records the focused field and its selection. A nil focus clears it.
func (b *Builder) SetFocus(ctx context.Context, sessionID string, focus *models.Focus) (*models.Session, error) {
	return b.update(ctx, sessionID, func(s *models.Session) error {
		if focus == nil {
			s.Focus = nil

			return nil
		}

		step, ok := s.Graph.Step(focus.StepID)
		if !ok {
			return stepNotFound("SetFocus", focus.StepID)
		}

		if _, ok := b.catalog.Field(step, focus.FieldKey); !ok {
			return NewValidationError(
				"SetFocus",
				"INVALID_FOCUS",
				fmt.Sprintf("step %s has no field '%s'", focus.StepID, focus.FieldKey),
				ErrInvalidFocus,
			)
		}

		f := *focus
		s.Focus = &f

		return nil
	})
}

// InsertResult is the outcome of a token insertion.
type InsertResult struct {
	Inserted bool            `json:"inserted"`
	Focus    *models.Focus   `json:"focus"`
	Session  *models.Session `json:"session"`
}

// InsertVariable writes the placeholder of a variable into the focused field. Without focus nothing is
// written and Inserted is false. The variable must be visible from the focused step.
func (b *Builder) InsertVariable(ctx context.Context, sessionID, variableID string) (*InsertResult, error) {
	result := &InsertResult{}

	session, err := b.update(ctx, sessionID, func(s *models.Session) error {
		if s.Focus == nil {
			return nil
		}

		visible := propagation.Available(s.Graph, s.Focus.StepID, b.catalog)
		if !slices.ContainsFunc(visible, func(v models.Variable) bool { return v.ID == variableID }) {
			return NewValidationError(
				"InsertVariable",
				"VARIABLE_NOT_VISIBLE",
				fmt.Sprintf("variable '%s' is not visible from step %s", variableID, s.Focus.StepID),
				ErrVariableNotVisible,
			)
		}

		s.Focus, result.Inserted = token.Insert(s.Graph, b.catalog, s.Focus, variableID)

		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Focus = session.Focus
	result.Session = session

	return result, nil
}

// UnresolvedVariables lists the placeholders that reference a variable no longer visible from their step.
// Save does not reject them; the editor shows them as warnings.
func (b *Builder) UnresolvedVariables(ctx context.Context, sessionID string) ([]template.Reference, error) {
	session, err := b.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	refs := template.Unresolved(session.Graph, b.catalog)
	if refs == nil {
		refs = []template.Reference{}
	}

	return refs, nil
}

// Preview renders the request Save would send, without validating or sending it.
func (b *Builder) Preview(ctx context.Context, sessionID string) (*models.AreaRequest, error) {
	session, err := b.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	request := serializer.Preview(session.Graph)
	request.Name = session.Name
	request.Description = session.Description

	return request, nil
}

// Save validates the graph, serializes it and creates or updates the area. Nothing is sent when the
// graph is invalid. Edits are not blocked while the Area API call is pending. The session is discarded
// once the area is stored, unless it was edited in the meantime; on failure it is kept untouched so the
// user can retry.
func (b *Builder) Save(ctx context.Context, sessionID string) (*models.AreaResponse, error) {
	ctx, span := otelhelper.StartSpan(ctx, b.tracer, "builder.save", attribute.String(otelhelper.SessionIDKey, sessionID))
	defer span.End()

	unlockSave := b.saves.lock(sessionID)
	defer unlockSave()

	session, request, err := b.snapshot(ctx, sessionID)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	span.SetAttributes(attribute.Int(otelhelper.StepCountKey, len(request.Steps)))

	var area *models.AreaResponse

	if session.AreaID != "" {
		span.SetAttributes(attribute.String(otelhelper.AreaIDKey, session.AreaID))
		area, err = b.areas.UpdateArea(ctx, session.AreaID, request)
	} else {
		area, err = b.areas.CreateArea(ctx, request)
	}

	if err != nil {
		otelhelper.SetError(span, err)
		b.logger.ErrorContext(ctx, "failed to save area", "session_id", sessionID, "area_id", session.AreaID, "error", err)

		return nil, upstreamError("Save", err)
	}

	b.settle(ctx, sessionID, session.Revision, area.ID)
	b.logger.InfoContext(ctx, "area saved", "session_id", sessionID, "area_id", area.ID, "steps", len(request.Steps))

	return area, nil
}

// snapshot validates and serializes the session under its edit lock.
func (b *Builder) snapshot(ctx context.Context, sessionID string) (*models.Session, *models.AreaRequest, error) {
	unlock := b.edits.lock(sessionID)
	defer unlock()

	session, err := b.Session(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	if err := serializer.Validate(session.Graph, b.catalog); err != nil {
		b.logger.InfoContext(ctx, "save rejected", "session_id", sessionID, "steps", serializer.Steps(err), "error", err)

		return nil, nil, NewValidationError("Save", "VALIDATION_FAILED", err.Error(), errors.Join(ErrValidationFailed, err))
	}

	request, err := serializer.Serialize(session.Graph)
	if err != nil {
		return nil, nil, NewValidationError("Save", "VALIDATION_FAILED", err.Error(), errors.Join(ErrValidationFailed, err))
	}

	request.Name = session.Name
	request.Description = session.Description

	return session, request, nil
}

// settle records the stored area on the session, so a retry updates it instead of creating another one,
// then discards the session if it still holds the saved revision.
func (b *Builder) settle(ctx context.Context, sessionID string, revision int64, areaID string) {
	unlock := b.edits.lock(sessionID)
	defer unlock()

	session, err := b.Session(ctx, sessionID)
	if err != nil {
		if !IsNotFoundError(err) {
			b.logger.WarnContext(ctx, "failed to reload saved session", "session_id", sessionID, "error", err)
		}

		return
	}

	if session.AreaID != areaID {
		session.AreaID = areaID
		if err := b.persistence.SaveSession(ctx, session); err != nil {
			b.logger.WarnContext(ctx, "failed to record saved area", "session_id", sessionID, "area_id", areaID, "error", err)
		}
	}

	if session.Revision != revision {
		b.logger.InfoContext(ctx, "session edited during save, keeping it", "session_id", sessionID, "area_id", areaID)

		return
	}

	if err := b.persistence.DeleteSession(ctx, sessionID); err != nil {
		b.logger.WarnContext(ctx, "failed to discard saved session", "session_id", sessionID, "error", err)
	}
}

// update applies fn to the stored session under the session lock and stores the result. The focus is
// dropped when it no longer points at an existing field.
func (b *Builder) update(ctx context.Context, sessionID string, fn func(*models.Session) error) (*models.Session, error) {
	unlock := b.edits.lock(sessionID)
	defer unlock()

	session, err := b.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := fn(session); err != nil {
		return nil, err
	}

	if session.Focus != nil {
		step, ok := session.Graph.Step(session.Focus.StepID)
		if !ok {
			session.Focus = nil
		} else if _, ok := b.catalog.Field(step, session.Focus.FieldKey); !ok {
			session.Focus = nil
		}
	}

	session.Revision++
	session.UpdatedAt = time.Now().UTC()

	if err := b.persistence.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session %s: %w", sessionID, err)
	}

	return session, nil
}

func stepNotFound(op, stepID string) error {
	return &ServiceError{Op: op, Code: "STEP_NOT_FOUND", Message: "step " + stepID + " not found", Err: ErrStepNotFound}
}
