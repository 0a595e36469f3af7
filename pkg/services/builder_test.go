package services_test

import (
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/dukex/area/pkg/areaapi"
	"github.com/dukex/area/pkg/catalog"
	"github.com/dukex/area/pkg/graph"
	"github.com/dukex/area/pkg/mocks"
	"github.com/dukex/area/pkg/models"
	"github.com/dukex/area/pkg/persistence/file"
	"github.com/dukex/area/pkg/serializer"
	"github.com/dukex/area/pkg/services"
	"github.com/dukex/area/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sequentialIDs() graph.IDGenerator {
	n := 0

	return func(kind models.StepKind) string {
		n++

		return fmt.Sprintf("%s-%d", kind, n)
	}
}

func newBuilder(t *testing.T) (*services.Builder, *mocks.MockAreaClient, *file.Persistence) {
	t.Helper()

	store := file.NewPersistence(t.TempDir(), time.Hour)
	areas := &mocks.MockAreaClient{}
	builder := services.NewBuilder(store, catalog.Default(), areas, slog.Default(), services.WithStepIDs(sequentialIDs()))

	return builder, areas, store
}

func storeSession(t *testing.T, store *file.Persistence, g *models.Graph, overrides ...func(*models.Session)) *models.Session {
	t.Helper()

	session := testutil.CreateTestSession(g, overrides...)
	require.NoError(t, store.SaveSession(t.Context(), session))

	return session
}

func TestBuilder_CreateSession(t *testing.T) {
	t.Parallel()

	builder, _, store := newBuilder(t)

	session, err := builder.CreateSession(t.Context(), services.CreateSessionRequest{Name: "  Morning digest ", Owner: "user-1"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "Morning digest", session.Name)
	assert.Empty(t, session.Graph.Steps)

	stored, err := store.SessionByID(t.Context(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, "user-1", stored.Owner)
}

func TestBuilder_SessionNotFound(t *testing.T) {
	t.Parallel()

	builder, _, _ := newBuilder(t)

	_, err := builder.Session(t.Context(), "missing")
	require.Error(t, err)
	assert.True(t, services.IsNotFoundError(err))

	_, err = builder.AddStep(t.Context(), "missing", models.StepKindTrigger)
	assert.True(t, services.IsNotFoundError(err))
}

func TestBuilder_EditGraph(t *testing.T) {
	t.Parallel()

	builder, _, _ := newBuilder(t)
	ctx := t.Context()

	session, err := builder.CreateSession(ctx, services.CreateSessionRequest{Name: "Flow"})
	require.NoError(t, err)

	trigger, err := builder.AddStep(ctx, session.ID, models.StepKindTrigger)
	require.NoError(t, err)
	assert.Equal(t, "trigger-1", trigger.ID)
	assert.Equal(t, "Trigger 1", trigger.Label)

	action, err := builder.AddStep(ctx, session.ID, models.StepKindAction)
	require.NoError(t, err)
	delay, err := builder.AddStep(ctx, session.ID, models.StepKindDelay)
	require.NoError(t, err)
	assert.Equal(t, 2, delay.Order)

	_, err = builder.Connect(ctx, session.ID, trigger.ID, action.ID)
	require.NoError(t, err)
	_, err = builder.Connect(ctx, session.ID, trigger.ID, action.ID)
	require.NoError(t, err)

	label := "Wait a bit"
	patched, err := builder.PatchStep(ctx, session.ID, delay.ID, graph.Patch{Label: &label})
	require.NoError(t, err)
	assert.Equal(t, "Wait a bit", patched.Label)

	current, moved, err := builder.MoveStep(ctx, session.ID, delay.ID, graph.DirectionUp)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, []string{trigger.ID, delay.ID, action.ID}, stepIDs(current.Graph))
	assert.Equal(t, []string{action.ID}, current.Graph.Steps[0].Connections)

	_, moved, err = builder.MoveStep(ctx, session.ID, trigger.ID, graph.DirectionUp)
	require.NoError(t, err)
	assert.False(t, moved)

	current, err = builder.DeleteStep(ctx, session.ID, action.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{trigger.ID, delay.ID}, stepIDs(current.Graph))
	assert.Empty(t, current.Graph.Steps[0].Connections)
	assert.Equal(t, 1, current.Graph.Steps[1].Order)
}

func TestBuilder_EditErrors(t *testing.T) {
	t.Parallel()

	builder, _, store := newBuilder(t)
	ctx := t.Context()
	session := storeSession(t, store, testutil.CreateSavableGraph())

	_, err := builder.AddStep(ctx, session.ID, "loop")
	assert.ErrorIs(t, err, services.ErrInvalidStepKind)
	assert.True(t, services.IsValidationError(err))

	_, err = builder.PatchStep(ctx, session.ID, "missing", graph.Patch{})
	assert.ErrorIs(t, err, services.ErrStepNotFound)
	assert.True(t, services.IsNotFoundError(err))

	_, err = builder.DeleteStep(ctx, session.ID, "missing")
	assert.ErrorIs(t, err, services.ErrStepNotFound)

	_, _, err = builder.MoveStep(ctx, session.ID, "trigger-1", "sideways")
	assert.ErrorIs(t, err, services.ErrInvalidDirection)

	_, err = builder.Connect(ctx, session.ID, "trigger-1", "trigger-1")
	assert.ErrorIs(t, err, services.ErrSelfConnection)
	assert.True(t, services.IsValidationError(err))

	_, err = builder.Connect(ctx, session.ID, "trigger-1", "ghost")
	assert.True(t, services.IsNotFoundError(err))

	stored, err := builder.Session(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"action-1"}, stored.Graph.Steps[0].Connections)
}

func TestBuilder_SelectAction(t *testing.T) {
	t.Parallel()

	builder, areas, _ := newBuilder(t)
	ctx := t.Context()

	session, err := builder.CreateSession(ctx, services.CreateSessionRequest{Name: "Flow"})
	require.NoError(t, err)

	step, err := builder.AddStep(ctx, session.ID, models.StepKindAction)
	require.NoError(t, err)

	areas.On("ConnectedServices", mock.Anything).Return([]string{"gmail"}, nil)

	result, err := builder.SelectAction(ctx, session.ID, step.ID, "github", "create_issue")
	require.NoError(t, err)
	assert.False(t, result.Connected)
	assert.Contains(t, result.Warning, "github")

	create, _ := catalog.Default().Action(models.StepKindAction, "github", "create_issue")
	assert.Equal(t, create.Name, result.Step.Label)
	assert.Equal(t, create.Description, result.Step.Description)

	// defaults follow the selection until the user edits them
	result, err = builder.SelectAction(ctx, session.ID, step.ID, "gmail", "send_email")
	require.NoError(t, err)
	assert.True(t, result.Connected)
	assert.Empty(t, result.Warning)

	send, _ := catalog.Default().Action(models.StepKindAction, "gmail", "send_email")
	assert.Equal(t, send.Name, result.Step.Label)

	custom := "Mail the team"
	_, err = builder.PatchStep(ctx, session.ID, step.ID, graph.Patch{Label: &custom})
	require.NoError(t, err)

	result, err = builder.SelectAction(ctx, session.ID, step.ID, "gmail", "forward_email")
	require.NoError(t, err)
	assert.Equal(t, "Mail the team", result.Step.Label)

	svc, _ := result.Step.Service()
	assert.Equal(t, "gmail", svc.ServiceID)
	assert.Equal(t, "forward_email", svc.ActionID)
}

func TestBuilder_SelectAction_Errors(t *testing.T) {
	t.Parallel()

	builder, areas, store := newBuilder(t)
	ctx := t.Context()

	g := testutil.CreateSavableGraph()
	g.Steps = append(g.Steps, testutil.CreateTestStep(models.StepKindDelay, testutil.WithID("delay-1")))
	g.Steps[2].Order = 2
	session := storeSession(t, store, g)

	_, err := builder.SelectAction(ctx, session.ID, "trigger-1", "gmail", "send_email")
	assert.ErrorIs(t, err, services.ErrUnknownAction)

	_, err = builder.SelectAction(ctx, session.ID, "delay-1", "gmail", "send_email")
	assert.ErrorIs(t, err, services.ErrActionNotApplicable)

	_, err = builder.SelectAction(ctx, session.ID, "missing", "gmail", "send_email")
	assert.ErrorIs(t, err, services.ErrStepNotFound)

	areas.AssertNotCalled(t, "ConnectedServices", mock.Anything)
}

func TestBuilder_SelectAction_ConnectionCheckFails(t *testing.T) {
	t.Parallel()

	builder, areas, store := newBuilder(t)
	session := storeSession(t, store, testutil.CreateSavableGraph())

	areas.On("ConnectedServices", mock.Anything).Return(nil, errors.New("timeout"))

	result, err := builder.SelectAction(t.Context(), session.ID, "action-1", "slack", "post_message")
	require.NoError(t, err)
	assert.False(t, result.Connected)
	assert.NotEmpty(t, result.Warning)
}

func TestBuilder_Variables(t *testing.T) {
	t.Parallel()

	builder, _, store := newBuilder(t)
	session := storeSession(t, store, testutil.CreateSavableGraph())

	vars, err := builder.Variables(t.Context(), session.ID, "action-1")
	require.NoError(t, err)

	ids := variableIDs(vars)
	assert.Equal(t, []string{"now", "user_id", "area_id"}, ids[:3])
	assert.Contains(t, ids, "timer.triggered_at")
	assert.NotContains(t, ids, "gmail.sender")

	_, err = builder.Variables(t.Context(), session.ID, "missing")
	assert.ErrorIs(t, err, services.ErrStepNotFound)
}

func TestBuilder_FocusAndInsert(t *testing.T) {
	t.Parallel()

	builder, _, store := newBuilder(t)
	ctx := t.Context()
	session := storeSession(t, store, testutil.CreateSavableGraph())

	// nothing focused
	result, err := builder.InsertVariable(ctx, session.ID, "now")
	require.NoError(t, err)
	assert.False(t, result.Inserted)

	_, err = builder.SetFocus(ctx, session.ID, &models.Focus{StepID: "action-1", FieldKey: "body", Start: 4, End: 12})
	require.NoError(t, err)

	result, err = builder.InsertVariable(ctx, session.ID, "timer.triggered_at")
	require.NoError(t, err)
	require.True(t, result.Inserted)
	assert.Equal(t, 4+len("{{timer.triggered_at}}"), result.Focus.Start)

	step, _ := result.Session.Graph.Step("action-1")
	svc, _ := step.Service()
	assert.Equal(t, "See {{timer.triggered_at}}", svc.Params["body"])

	// the trigger output is not visible from the trigger itself
	_, err = builder.SetFocus(ctx, session.ID, &models.Focus{StepID: "trigger-1", FieldKey: "label"})
	require.NoError(t, err)

	_, err = builder.InsertVariable(ctx, session.ID, "timer.triggered_at")
	assert.ErrorIs(t, err, services.ErrVariableNotVisible)
}

func TestBuilder_SetFocus_Errors(t *testing.T) {
	t.Parallel()

	builder, _, store := newBuilder(t)
	session := storeSession(t, store, testutil.CreateSavableGraph())

	_, err := builder.SetFocus(t.Context(), session.ID, &models.Focus{StepID: "action-1", FieldKey: "github_issue_title"})
	assert.ErrorIs(t, err, services.ErrInvalidFocus)

	_, err = builder.SetFocus(t.Context(), session.ID, &models.Focus{StepID: "missing", FieldKey: "label"})
	assert.ErrorIs(t, err, services.ErrStepNotFound)

	current, err := builder.SetFocus(t.Context(), session.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, current.Focus)
}

func TestBuilder_FocusDroppedWithStep(t *testing.T) {
	t.Parallel()

	builder, _, store := newBuilder(t)
	ctx := t.Context()
	session := storeSession(t, store, testutil.CreateSavableGraph())

	_, err := builder.SetFocus(ctx, session.ID, &models.Focus{StepID: "action-1", FieldKey: "subject"})
	require.NoError(t, err)

	current, err := builder.DeleteStep(ctx, session.ID, "action-1")
	require.NoError(t, err)
	assert.Nil(t, current.Focus)
}

func TestBuilder_Save_Create(t *testing.T) {
	t.Parallel()

	builder, areas, store := newBuilder(t)
	session := storeSession(t, store, testutil.CreateSavableGraph(), func(s *models.Session) {
		s.Name = "Daily report"
	})

	areas.On("CreateArea", mock.Anything, mock.MatchedBy(func(req *models.AreaRequest) bool {
		return req.Name == "Daily report" &&
			req.TriggerService == "timer" &&
			req.TriggerAction == "cron" &&
			req.ReactionService != nil && *req.ReactionService == "gmail" &&
			len(req.Steps) == 2
	})).Return(&models.AreaResponse{ID: "area-1", Name: "Daily report"}, nil)

	area, err := builder.Save(t.Context(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, "area-1", area.ID)
	areas.AssertExpectations(t)

	_, err = builder.Session(t.Context(), session.ID)
	assert.True(t, services.IsNotFoundError(err))
}

func TestBuilder_Save_UpdatesLoadedArea(t *testing.T) {
	t.Parallel()

	builder, areas, store := newBuilder(t)
	session := storeSession(t, store, testutil.CreateSavableGraph(), func(s *models.Session) {
		s.AreaID = "area-9"
	})

	areas.On("UpdateArea", mock.Anything, "area-9", mock.Anything).Return(&models.AreaResponse{ID: "area-9"}, nil)

	area, err := builder.Save(t.Context(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, "area-9", area.ID)
	areas.AssertNotCalled(t, "CreateArea", mock.Anything, mock.Anything)
}

func TestBuilder_Save_MissingTriggerNeverCallsAPI(t *testing.T) {
	t.Parallel()

	builder, areas, store := newBuilder(t)
	g := testutil.CreateTestGraph(
		testutil.CreateTestStep(models.StepKindAction, testutil.WithID("a"),
			testutil.WithService("drive", "create_folder", map[string]any{"name": "Reports"})),
		testutil.CreateTestStep(models.StepKindDelay, testutil.WithID("d")),
	)
	session := storeSession(t, store, g)

	_, err := builder.Save(t.Context(), session.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, serializer.ErrMissingTrigger)
	assert.ErrorIs(t, err, services.ErrValidationFailed)
	assert.True(t, services.IsValidationError(err))
	assert.Contains(t, err.Error(), "missing trigger")

	areas.AssertNotCalled(t, "CreateArea", mock.Anything, mock.Anything)
	areas.AssertNotCalled(t, "UpdateArea", mock.Anything, mock.Anything, mock.Anything)

	// the graph stays editable and unchanged
	stored, err := builder.Session(t.Context(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, g, stored.Graph)
}

func TestBuilder_Save_InvalidStepNamesIt(t *testing.T) {
	t.Parallel()

	builder, areas, store := newBuilder(t)
	g := testutil.CreateSavableGraph()
	svc, _ := g.Steps[1].Service()
	delete(svc.Params, "to")
	session := storeSession(t, store, g)

	_, err := builder.Save(t.Context(), session.ID)
	require.Error(t, err)
	assert.True(t, services.IsValidationError(err))
	assert.Equal(t, []string{"action-1"}, serializer.Steps(err))
	areas.AssertNotCalled(t, "CreateArea", mock.Anything, mock.Anything)
}

func TestBuilder_Save_UpstreamFailureKeepsSession(t *testing.T) {
	t.Parallel()

	builder, areas, store := newBuilder(t)
	session := storeSession(t, store, testutil.CreateSavableGraph())

	areas.On("CreateArea", mock.Anything, mock.Anything).
		Return(nil, &areaapi.StatusError{Op: "CreateArea", StatusCode: 500, Body: "boom"})

	_, err := builder.Save(t.Context(), session.ID)
	require.Error(t, err)
	assert.True(t, services.IsUpstreamError(err))
	assert.False(t, services.IsValidationError(err))
	assert.ErrorIs(t, err, areaapi.ErrUnexpectedStatus)

	stored, err := builder.Session(t.Context(), session.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Graph.Steps, 2)
}

func TestBuilder_LoadArea(t *testing.T) {
	t.Parallel()

	builder, areas, _ := newBuilder(t)

	request, err := serializer.Serialize(testutil.CreateSavableGraph())
	require.NoError(t, err)

	areas.On("GetArea", mock.Anything, "area-5").Return(&models.AreaResponse{
		ID:          "area-5",
		Name:        "Daily report",
		Description: "Weekdays at nine",
		Steps:       request.Steps,
	}, nil)

	session, err := builder.LoadArea(t.Context(), "area-5", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "area-5", session.AreaID)
	assert.Equal(t, "Daily report", session.Name)
	assert.Equal(t, testutil.CreateSavableGraph(), session.Graph)

	stored, err := builder.Session(t.Context(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.Graph, stored.Graph)
}

func TestBuilder_LoadArea_Errors(t *testing.T) {
	t.Parallel()

	builder, areas, _ := newBuilder(t)

	areas.On("GetArea", mock.Anything, "missing").
		Return(nil, &areaapi.StatusError{Op: "GetArea", StatusCode: 404})
	areas.On("GetArea", mock.Anything, "broken").
		Return(nil, errors.New("connection refused"))

	_, err := builder.LoadArea(t.Context(), "missing", "")
	assert.True(t, services.IsNotFoundError(err))
	assert.False(t, services.IsUpstreamError(err))

	_, err = builder.LoadArea(t.Context(), "broken", "")
	assert.True(t, services.IsUpstreamError(err))
}

func TestBuilder_UnresolvedVariables(t *testing.T) {
	t.Parallel()

	builder, _, store := newBuilder(t)
	ctx := t.Context()
	session := storeSession(t, store, testutil.CreateSavableGraph())

	refs, err := builder.UnresolvedVariables(ctx, session.ID)
	require.NoError(t, err)
	assert.Empty(t, refs)

	body := "Fired at {{timer.triggered_at}}"
	_, err = builder.PatchStep(ctx, session.ID, "action-1", graph.Patch{Params: map[string]any{"body": body}})
	require.NoError(t, err)

	_, err = builder.Disconnect(ctx, session.ID, "trigger-1", "action-1")
	require.NoError(t, err)

	refs, err = builder.UnresolvedVariables(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "action-1", refs[0].StepID)
	assert.Equal(t, "body", refs[0].FieldKey)
	assert.Equal(t, "timer.triggered_at", refs[0].VariableID)
}

func TestBuilder_Preview(t *testing.T) {
	t.Parallel()

	builder, areas, store := newBuilder(t)
	session := storeSession(t, store, testutil.CreateSavableGraph(), func(s *models.Session) {
		s.Name = "Preview me"
	})

	request, err := builder.Preview(t.Context(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, "Preview me", request.Name)
	assert.Equal(t, "timer", request.TriggerService)
	assert.Len(t, request.Steps, 2)

	areas.AssertNotCalled(t, "CreateArea", mock.Anything, mock.Anything)
}

func TestBuilder_DeleteSession(t *testing.T) {
	t.Parallel()

	builder, _, store := newBuilder(t)
	session := storeSession(t, store, testutil.CreateSavableGraph())

	require.NoError(t, builder.DeleteSession(t.Context(), session.ID))

	err := builder.DeleteSession(t.Context(), session.ID)
	assert.True(t, services.IsNotFoundError(err))
}

func TestBuilder_HealthCheck(t *testing.T) {
	t.Parallel()

	persistence := &mocks.MockPersistence{}
	persistence.On("HealthCheck", mock.Anything).Return(errors.New("disk gone")).Once()
	persistence.On("HealthCheck", mock.Anything).Return(nil).Once()

	builder := services.NewBuilder(persistence, catalog.Default(), &mocks.MockAreaClient{}, slog.Default())

	message, ok := builder.HealthCheck(t.Context())
	assert.False(t, ok)
	assert.Contains(t, message, "disk gone")

	_, ok = builder.HealthCheck(t.Context())
	assert.True(t, ok)
}

func TestBuilder_ConcurrentEditsAreSerialized(t *testing.T) {
	t.Parallel()

	builder, _, _ := newBuilder(t)
	ctx := t.Context()

	session, err := builder.CreateSession(ctx, services.CreateSessionRequest{Name: "Busy"})
	require.NoError(t, err)

	const n = 10

	done := make(chan error, n)

	for range n {
		go func() {
			_, err := builder.AddStep(ctx, session.ID, models.StepKindAction)
			done <- err
		}()
	}

	for range n {
		require.NoError(t, <-done)
	}

	stored, err := builder.Session(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, stored.Graph.Steps, n)

	for i, step := range stored.Graph.Steps {
		assert.Equal(t, i, step.Order)
	}
}

func TestBuilder_SaveDoesNotBlockEdits(t *testing.T) {
	t.Parallel()

	builder, areas, store := newBuilder(t)
	ctx := t.Context()
	session := storeSession(t, store, testutil.CreateSavableGraph())

	started := make(chan struct{})
	release := make(chan struct{})

	areas.On("CreateArea", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(&models.AreaResponse{ID: "area-1"}, nil).Once()

	saved := make(chan error, 1)

	go func() {
		_, err := builder.Save(ctx, session.ID)
		saved <- err
	}()

	<-started

	edited := make(chan error, 1)

	go func() {
		_, err := builder.AddStep(ctx, session.ID, models.StepKindDelay)
		edited <- err
	}()

	select {
	case err := <-edited:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("AddStep waited for the pending save")
	}

	close(release)
	require.NoError(t, <-saved)

	stored, err := builder.Session(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "area-1", stored.AreaID)
	assert.Len(t, stored.Graph.Steps, 3)
}

func TestBuilder_Save_RetryAfterDiscardFailureUpdates(t *testing.T) {
	t.Parallel()

	session := testutil.CreateTestSession(testutil.CreateSavableGraph())

	persistence := &mocks.MockPersistence{}
	persistence.On("SessionByID", mock.Anything, session.ID).Return(session, nil)
	persistence.On("SaveSession", mock.Anything, mock.MatchedBy(func(s *models.Session) bool {
		return s.AreaID == "area-1"
	})).Return(nil).Once()
	persistence.On("DeleteSession", mock.Anything, session.ID).Return(errors.New("disk full"))

	areas := &mocks.MockAreaClient{}
	areas.On("CreateArea", mock.Anything, mock.Anything).Return(&models.AreaResponse{ID: "area-1"}, nil).Once()
	areas.On("UpdateArea", mock.Anything, "area-1", mock.Anything).Return(&models.AreaResponse{ID: "area-1"}, nil).Once()

	builder := services.NewBuilder(persistence, catalog.Default(), areas, slog.Default())

	for range 2 {
		area, err := builder.Save(t.Context(), session.ID)
		require.NoError(t, err)
		assert.Equal(t, "area-1", area.ID)
	}

	areas.AssertNumberOfCalls(t, "CreateArea", 1)
	areas.AssertExpectations(t)
	persistence.AssertExpectations(t)
}

func TestBuilder_LocksAreReleased(t *testing.T) {
	t.Parallel()

	builder, areas, store := newBuilder(t)
	ctx := t.Context()

	for i := range 100 {
		_, err := builder.AddStep(ctx, fmt.Sprintf("missing-%d", i), models.StepKindAction)
		require.Error(t, err)
	}

	assert.Zero(t, builder.HeldLocks())

	session := storeSession(t, store, testutil.CreateSavableGraph())
	areas.On("CreateArea", mock.Anything, mock.Anything).Return(&models.AreaResponse{ID: "area-1"}, nil)

	_, err := builder.Save(ctx, session.ID)
	require.NoError(t, err)

	assert.Zero(t, builder.HeldLocks())
}

func stepIDs(g *models.Graph) []string {
	ids := make([]string, 0, len(g.Steps))
	for _, step := range g.Steps {
		ids = append(ids, step.ID)
	}

	return ids
}

func variableIDs(vars []models.Variable) []string {
	ids := make([]string, 0, len(vars))
	for _, v := range vars {
		ids = append(ids, v.ID)
	}

	return ids
}
