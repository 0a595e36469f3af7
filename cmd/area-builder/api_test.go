package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dukex/area/pkg/catalog"
	"github.com/dukex/area/pkg/mocks"
	"github.com/dukex/area/pkg/models"
	"github.com/dukex/area/pkg/persistence/file"
	"github.com/dukex/area/pkg/services"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T) (*fiber.App, *mocks.MockAreaClient) {
	t.Helper()

	persistence := file.NewPersistence(t.TempDir(), time.Hour)
	areas := &mocks.MockAreaClient{}

	app := NewAPI(
		slog.Default(),
		services.NewBuilder(persistence, catalog.Default(), areas, slog.Default()),
	)

	return app.App(), areas
}

func send(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewBuffer(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, data
}

func TestAPI_RootEndpoint(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, body := send(t, app, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Area Builder API", string(body))
}

func TestAPI_HealthCheck(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, body := send(t, app, http.MethodGet, "/livez", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
}

// A user builds "every weekday at nine, email the team" from scratch and saves it.
func TestAPI_BuildAndSave(t *testing.T) {
	app, areas := setupTestApp(t)

	resp, body := send(t, app, http.MethodPost, "/sessions", map[string]string{"name": "Weekday mail"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var session models.Session
	require.NoError(t, json.Unmarshal(body, &session))

	base := "/sessions/" + session.ID

	addStep := func(kind string) models.Step {
		resp, body := send(t, app, http.MethodPost, base+"/steps", map[string]string{"kind": kind})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var step models.Step
		require.NoError(t, json.Unmarshal(body, &step))

		return step
	}

	trigger := addStep("trigger")
	action := addStep("action")

	// saving too early names the missing pieces without calling the Area API
	resp, _ = send(t, app, http.MethodPost, base+"/save", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	areas.On("ConnectedServices", mock.Anything).Return([]string{"timer", "gmail"}, nil)

	resp, _ = send(t, app, http.MethodPost, base+"/steps/"+trigger.ID+"/select", map[string]string{"service_id": "timer", "action_id": "cron"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = send(t, app, http.MethodPost, base+"/steps/"+action.ID+"/select", map[string]string{"service_id": "gmail", "action_id": "send_email"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = send(t, app, http.MethodPatch, base+"/steps/"+trigger.ID, map[string]any{"params": map[string]any{"schedule": "0 9 * * 1-5"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = send(t, app, http.MethodPatch, base+"/steps/"+action.ID, map[string]any{
		"params": map[string]any{"to": "team@example.com", "subject": "Good morning ", "body": "Sent by the builder"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = send(t, app, http.MethodPost, base+"/connections", map[string]string{"source": trigger.ID, "target": action.ID})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = send(t, app, http.MethodPut, base+"/focus", map[string]any{"step_id": action.ID, "field_key": "subject", "start": 13, "end": 13})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = send(t, app, http.MethodPost, base+"/insert", map[string]string{"variable_id": "timer.date"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sent *models.AreaRequest

	areas.On("CreateArea", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(*models.AreaRequest) }).
		Return(&models.AreaResponse{ID: "area-42", Name: "Weekday mail"}, nil)

	resp, body = send(t, app, http.MethodPost, base+"/save", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	require.NotNil(t, sent)
	assert.Equal(t, "Weekday mail", sent.Name)
	assert.Equal(t, "timer", sent.TriggerService)
	assert.Equal(t, "cron", sent.TriggerAction)
	require.Len(t, sent.Steps, 2)

	params, ok := sent.Steps[1].Config[models.ConfigKeyParams].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Good morning {{timer.date}}", params["subject"])
	assert.Equal(t, []string{action.ID}, sent.Steps[0].Config[models.ConfigKeyConnections])
}

func TestLoadCatalog(t *testing.T) {
	c, err := loadCatalog("")
	require.NoError(t, err)
	assert.Same(t, catalog.Default(), c)

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
globals:
  - {name: now, description: Now, type: text}
services:
  - slug: echo
    name: Echo
    actions:
      - key: ping
        name: Ping
        description: Fires on ping
`), 0o600))

	c, err = loadCatalog(path)
	require.NoError(t, err)

	_, ok := c.Service("echo")
	assert.True(t, ok)

	_, err = loadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
