// Package web provides HTTP handlers and REST API endpoints for the guide
// library, AI generation, and settings.
package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/masarflow/masar/pkg/generation"
	"github.com/masarflow/masar/pkg/models"
	"github.com/masarflow/masar/pkg/services"
	"github.com/masarflow/masar/pkg/settings"
)

type APIHandlers struct {
	workflowService   *services.Workflow
	generationService *services.Generation
	settingsService   *settings.Service
	validator         *validator.Validate
}

func NewAPIHandlers(
	workflowService *services.Workflow,
	generationService *services.Generation,
	settingsService *settings.Service,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		workflowService:   workflowService,
		generationService: generationService,
		settingsService:   settingsService,
		validator:         validator,
	}
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.workflowService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Masar API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		message = "Masar API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	req := services.ListWorkflowsRequest{Search: c.Query("search")}

	if privateStr := c.Query("private"); privateStr != "" {
		isPrivate, err := strconv.ParseBool(privateStr)
		if err != nil {
			return badRequest(c, "Invalid 'private' query parameter")
		}

		req.IsPrivate = &isPrivate
	}

	workflows, err := h.workflowService.List(c.Context(), req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflows": workflows,
		"count":     len(workflows),
	})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id, err := workflowID(c)
	if err != nil {
		return badRequest(c, "Invalid workflow ID")
	}

	workflow, err := h.workflowService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req CreateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	workflow := &models.Workflow{
		Title:       req.Title,
		Description: req.Description,
		IsPrivate:   req.IsPrivate,
		Steps:       stepsToModels(req.Steps),
	}

	created, err := h.workflowService.Create(c.Context(), workflow)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	id, err := workflowID(c)
	if err != nil {
		return badRequest(c, "Invalid workflow ID")
	}

	var req UpdateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.workflowService.Update(c.Context(), id, services.WorkflowUpdate{
		Title:       req.Title,
		Description: req.Description,
		IsPrivate:   req.IsPrivate,
		Steps:       stepsToModels(req.Steps),
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	id, err := workflowID(c)
	if err != nil {
		return badRequest(c, "Invalid workflow ID")
	}

	err = h.workflowService.Delete(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) GenerateWorkflow(c fiber.Ctx) error {
	var req GenerateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	options := generation.DefaultOptions()
	if req.UseSearch != nil {
		options.UseSearch = *req.UseSearch
	}

	if req.IncludeMedia != nil {
		options.IncludeMedia = *req.IncludeMedia
	}

	workflow, err := h.generationService.Generate(c.Context(), services.GenerateRequest{
		Prompt:    req.Prompt,
		ModelID:   req.ModelID,
		Language:  models.Language(req.Language),
		Options:   options,
		Save:      req.Save,
		IsPrivate: req.IsPrivate,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	status := fiber.StatusOK
	if req.Save {
		status = fiber.StatusCreated
	}

	return c.Status(status).JSON(workflow)
}

func (h *APIHandlers) ToggleChecklistItem(c fiber.Ctx) error {
	id, err := workflowID(c)
	if err != nil {
		return badRequest(c, "Invalid workflow ID")
	}

	stepID := c.Params("stepId")
	itemID := c.Params("itemId")

	var req ToggleChecklistRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	workflow, err := h.workflowService.ToggleChecklistItem(c.Context(), id, stepID, itemID, req.Checked)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) GetSettings(c fiber.Ctx) error {
	appSettings, err := h.settingsService.Get(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(TransformSettingsResponse(appSettings))
}

func (h *APIHandlers) UpdateSettings(c fiber.Ctx) error {
	var req UpdateSettingsRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	appSettings, err := h.settingsService.Get(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	if req.Language != nil {
		appSettings, err = h.settingsService.SetLanguage(c.Context(), models.Language(*req.Language))
		if err != nil {
			return handleServiceError(c, err)
		}
	}

	if req.ImageProvider != nil || req.ImageProviderAPIKey != "" {
		provider := appSettings.ImageProvider
		if req.ImageProvider != nil {
			provider = models.ImageProvider(*req.ImageProvider)
		}

		appSettings, err = h.settingsService.SetImageProvider(c.Context(), provider, req.ImageProviderAPIKey)
		if err != nil {
			return handleServiceError(c, err)
		}
	}

	return c.JSON(TransformSettingsResponse(appSettings))
}

func (h *APIHandlers) GetModels(c fiber.Ctx) error {
	appSettings, err := h.settingsService.Get(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	aiModels := make([]ModelResponse, 0, len(appSettings.AIModels))
	for _, model := range appSettings.AIModels {
		aiModels = append(aiModels, TransformModelResponse(model))
	}

	return c.JSON(fiber.Map{
		"models":  aiModels,
		"default": appSettings.DefaultAIModel,
	})
}

func (h *APIHandlers) CreateModel(c fiber.Ctx) error {
	var req ModelRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	added, err := h.settingsService.AddAIModel(c.Context(), req.ToModel())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(TransformModelResponse(added))
}

func (h *APIHandlers) UpdateModel(c fiber.Ctx) error {
	id := c.Params("id")

	var req UpdateModelRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.settingsService.UpdateAIModel(c.Context(), id, req.ToUpdate())
	if err != nil {
		return handleServiceError(c, err)
	}

	if updated == nil {
		return notFound(c, "Model not found")
	}

	return c.JSON(TransformModelResponse(updated))
}

func (h *APIHandlers) DeleteModel(c fiber.Ctx) error {
	deleted, err := h.settingsService.DeleteAIModel(c.Context(), c.Params("id"))
	if err != nil {
		return internalError(c, err)
	}

	if !deleted {
		return notFound(c, "Model not found")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) SetDefaultModel(c fiber.Ctx) error {
	ok, err := h.settingsService.SetDefaultAIModel(c.Context(), c.Params("id"))
	if err != nil {
		return internalError(c, err)
	}

	if !ok {
		return notFound(c, "Model not found")
	}

	appSettings, err := h.settingsService.Get(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(TransformSettingsResponse(appSettings))
}

func workflowID(c fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}
