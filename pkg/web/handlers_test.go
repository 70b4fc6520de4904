package web

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/masarflow/masar/pkg/images"
	"github.com/masarflow/masar/pkg/models"
	"github.com/masarflow/masar/pkg/persistence/file"
	"github.com/masarflow/masar/pkg/services"
	"github.com/masarflow/masar/pkg/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	persistence := file.NewPersistence(t.TempDir())

	settingsService := settings.NewService(persistence.SettingsRepository(), logger)
	workflowService := services.NewWorkflow(persistence, nil, logger)
	searcherFor := func(models.ImageProvider, string) images.Searcher { return nil }
	generationService := services.NewGeneration(settingsService, workflowService, searcherFor, nil, logger)

	handlers := NewAPIHandlers(workflowService, generationService, settingsService,
		validator.New(validator.WithRequiredStructEnabled()))

	app := fiber.New()

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Post("/generate", handlers.GenerateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Patch("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)
	w.Post("/:id/steps/:stepId/checklist/:itemId", handlers.ToggleChecklistItem)

	s := app.Group("/settings")
	s.Get("/", handlers.GetSettings)
	s.Patch("/", handlers.UpdateSettings)
	s.Get("/models", handlers.GetModels)
	s.Post("/models", handlers.CreateModel)
	s.Patch("/models/:id", handlers.UpdateModel)
	s.Delete("/models/:id", handlers.DeleteModel)
	s.Post("/models/:id/default", handlers.SetDefaultModel)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body any) *http.Response {
	t.Helper()

	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()

	defer resp.Body.Close()

	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()

	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return string(data)
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any

	decodeBody(t, resp, &body)
	assert.Equal(t, "healthy", body["status"])
}

func TestWorkflowLifecycle(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/workflows", CreateWorkflowRequest{
		Title:       "Weekend trip to Petra",
		Description: "Two days, on a budget",
		Steps: []StepPayload{
			{Title: "Book the bus", Type: "text", Content: "JETT leaves at 6:30"},
			{Title: "Treasury viewpoint", Type: "gps", Content: "30.3285,35.4444"},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Workflow

	decodeBody(t, resp, &created)
	require.NotZero(t, created.ID)
	require.Len(t, created.Steps, 2)
	assert.NotEmpty(t, created.Steps[0].ID)

	resp = doJSON(t, app, http.MethodGet, "/workflows/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list struct {
		Workflows []*models.Workflow `json:"workflows"`
		Count     int                `json:"count"`
	}

	decodeBody(t, resp, &list)
	assert.Equal(t, 1, list.Count)

	resp = doJSON(t, app, http.MethodGet, "/workflows/1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var fetched models.Workflow

	decodeBody(t, resp, &fetched)
	assert.Equal(t, "Weekend trip to Petra", fetched.Title)

	newTitle := "Weekend trip to Wadi Rum"

	resp = doJSON(t, app, http.MethodPatch, "/workflows/1", UpdateWorkflowRequest{Title: &newTitle})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated models.Workflow

	decodeBody(t, resp, &updated)
	assert.Equal(t, newTitle, updated.Title)
	assert.Equal(t, "Two days, on a budget", updated.Description)
	assert.Len(t, updated.Steps, 2)

	resp = doJSON(t, app, http.MethodDelete, "/workflows/1", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/workflows/1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetWorkflow_InvalidID(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/workflows/not-a-number", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateWorkflow_Validation(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/workflows", CreateWorkflowRequest{Title: "ab"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/workflows", CreateWorkflowRequest{
		Title: "Valid title",
		Steps: []StepPayload{{Title: "Step", Type: "hologram"}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetWorkflows_InvalidPrivateFilter(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/workflows/?private=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGenerateWorkflow_Validation(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/workflows/generate", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// The built-in default model ships without an API key, so a valid
	// request still cannot run.
	resp = doJSON(t, app, http.MethodPost, "/workflows/generate", GenerateWorkflowRequest{
		Prompt: "how to make cold brew coffee",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "no API key")

	resp = doJSON(t, app, http.MethodPost, "/workflows/generate", GenerateWorkflowRequest{
		Prompt:  "how to make cold brew coffee",
		ModelID: "nonexistent-model",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "no AI model configured")
}

func TestToggleChecklistItem(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/workflows", CreateWorkflowRequest{
		Title: "Packing list",
		Steps: []StepPayload{
			{
				ID:    "step-1",
				Title: "Essentials",
				Type:  "checklist",
				ChecklistItems: []ChecklistItemPayload{
					{ID: "chk-1", Label: "Passport"},
					{ID: "chk-2", Label: "Charger"},
				},
			},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/workflows/1/steps/step-1/checklist/chk-2",
		ToggleChecklistRequest{Checked: true})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var toggled models.Workflow

	decodeBody(t, resp, &toggled)
	require.Len(t, toggled.Steps, 1)
	assert.False(t, toggled.Steps[0].ChecklistItems[0].Checked)
	assert.True(t, toggled.Steps[0].ChecklistItems[1].Checked)

	resp = doJSON(t, app, http.MethodPost, "/workflows/1/steps/step-1/checklist/chk-9",
		ToggleChecklistRequest{Checked: true})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/workflows/9/steps/step-1/checklist/chk-1",
		ToggleChecklistRequest{Checked: true})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSettingsEndpoints(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/settings/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var current SettingsResponse

	decodeBody(t, resp, &current)
	assert.Equal(t, "ar", current.Language)
	assert.Equal(t, "unsplash", current.ImageProvider)
	assert.False(t, current.ImageProviderConfigured)
	assert.Len(t, current.AIModels, 4, "built-in models are pre-registered")

	language := "en"
	provider := "pexels"

	resp = doJSON(t, app, http.MethodPatch, "/settings/", UpdateSettingsRequest{
		Language:            &language,
		ImageProvider:       &provider,
		ImageProviderAPIKey: "pexels-secret",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := readBody(t, resp)
	assert.NotContains(t, body, "pexels-secret")

	require.NoError(t, json.Unmarshal([]byte(body), &current))
	assert.Equal(t, "en", current.Language)
	assert.Equal(t, "pexels", current.ImageProvider)
	assert.True(t, current.ImageProviderConfigured)

	bad := "daguerreotype"

	resp = doJSON(t, app, http.MethodPatch, "/settings/", UpdateSettingsRequest{ImageProvider: &bad})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestModelEndpoints(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/settings/models", ModelRequest{
		Name:      "Gemini Flash",
		Provider:  "gemini",
		ModelName: "gemini-2.5-flash",
		APIKey:    "gemini-secret",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := readBody(t, resp)
	assert.NotContains(t, body, "gemini-secret")

	var created ModelResponse

	require.NoError(t, json.Unmarshal([]byte(body), &created))
	assert.True(t, created.Configured)
	assert.False(t, created.IsDefault, "the built-in default keeps its place")
	require.NotEmpty(t, created.ID)

	resp = doJSON(t, app, http.MethodPost, "/settings/models", ModelRequest{
		Name:      "Claude",
		Provider:  "anthropic",
		ModelName: "claude-sonnet-4",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var second ModelResponse

	decodeBody(t, resp, &second)
	assert.False(t, second.IsDefault)
	assert.False(t, second.Configured)

	resp = doJSON(t, app, http.MethodGet, "/settings/models", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listing struct {
		Models  []ModelResponse `json:"models"`
		Default string          `json:"default"`
	}

	decodeBody(t, resp, &listing)
	assert.Len(t, listing.Models, 6, "four built-ins plus the two added")
	assert.Equal(t, "gemini-default", listing.Default)

	resp = doJSON(t, app, http.MethodPost, "/settings/models/"+second.ID+"/default", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var afterDefault SettingsResponse

	decodeBody(t, resp, &afterDefault)
	assert.Equal(t, second.ID, afterDefault.DefaultAIModel)

	resp = doJSON(t, app, http.MethodPost, "/settings/models/nope/default", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	newName := "Gemini Pro"
	newModelName := "gemini-2.5-pro"

	resp = doJSON(t, app, http.MethodPatch, "/settings/models/"+created.ID, UpdateModelRequest{
		Name:      &newName,
		ModelName: &newModelName,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var renamed ModelResponse

	decodeBody(t, resp, &renamed)
	assert.Equal(t, "Gemini Pro", renamed.Name)
	assert.Equal(t, "gemini", renamed.Provider, "absent fields keep stored values")
	assert.True(t, renamed.Configured, "absent API key keeps the stored one")

	// A key-only body is a complete, valid update.
	claudeKey := "sk-ant-test"

	resp = doJSON(t, app, http.MethodPatch, "/settings/models/"+second.ID, UpdateModelRequest{
		APIKey: &claudeKey,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var keyed ModelResponse

	decodeBody(t, resp, &keyed)
	assert.True(t, keyed.Configured)
	assert.Equal(t, "Claude", keyed.Name)
	assert.Equal(t, "claude-sonnet-4", keyed.ModelName)

	resp = doJSON(t, app, http.MethodPatch, "/settings/models/nope", UpdateModelRequest{Name: &newName})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, app, http.MethodDelete, "/settings/models/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, app, http.MethodDelete, "/settings/models/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProblemResponseShape(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/workflows/123", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var problem map[string]any

	decodeBody(t, resp, &problem)
	assert.Equal(t, "not_found", problem["type"])
	assert.True(t, strings.HasPrefix(problem["instance"].(string), "/workflows/"))
}
