// Package web provides HTTP request and response types for the guide API.
package web

import (
	"time"

	"github.com/google/uuid"
	"github.com/masarflow/masar/pkg/models"
	"github.com/masarflow/masar/pkg/settings"
)

// CreateWorkflowRequest represents the request body for creating a new
// workflow from the builder.
type CreateWorkflowRequest struct {
	Title       string        `json:"title"       validate:"required,min=3"`
	Description string        `json:"description"`
	IsPrivate   bool          `json:"is_private"`
	Steps       []StepPayload `json:"steps"       validate:"dive"`
}

// UpdateWorkflowRequest represents the request body for updating an existing
// workflow. All fields are optional to support partial updates; a non-nil
// Steps replaces the whole sequence.
type UpdateWorkflowRequest struct {
	Title       *string       `json:"title,omitempty"       validate:"omitempty,min=3"`
	Description *string       `json:"description,omitempty"`
	IsPrivate   *bool         `json:"is_private,omitempty"`
	Steps       []StepPayload `json:"steps,omitempty"       validate:"omitempty,dive"`
}

// StepPayload is one step in a create or update body. Missing ids are
// assigned server side.
type StepPayload struct {
	ID             string                 `json:"id"`
	Title          string                 `json:"title"           validate:"required"`
	Type           string                 `json:"type"            validate:"required,oneof=text media gps checklist"`
	Content        string                 `json:"content"`
	ChecklistItems []ChecklistItemPayload `json:"checklist_items" validate:"dive"`
	Completed      bool                   `json:"completed"`
}

// ChecklistItemPayload is one checklist entry in a step payload.
type ChecklistItemPayload struct {
	ID      string `json:"id"`
	Label   string `json:"label" validate:"required"`
	Checked bool   `json:"checked"`
}

// ToModel converts the payload into a model step, assigning ids where the
// client left them out.
func (p StepPayload) ToModel() *models.Step {
	step := &models.Step{
		ID:        p.ID,
		Title:     p.Title,
		Type:      models.StepType(p.Type),
		Content:   p.Content,
		Completed: p.Completed,
	}

	if step.ID == "" {
		step.ID = uuid.New().String()
	}

	if p.ChecklistItems != nil {
		step.ChecklistItems = make([]*models.ChecklistItem, 0, len(p.ChecklistItems))

		for _, item := range p.ChecklistItems {
			id := item.ID
			if id == "" {
				id = "chk-" + uuid.New().String()
			}

			step.ChecklistItems = append(step.ChecklistItems, &models.ChecklistItem{
				ID:      id,
				Label:   item.Label,
				Checked: item.Checked,
			})
		}
	}

	return step
}

func stepsToModels(payloads []StepPayload) []*models.Step {
	if payloads == nil {
		return nil
	}

	steps := make([]*models.Step, 0, len(payloads))
	for _, payload := range payloads {
		steps = append(steps, payload.ToModel())
	}

	return steps
}

// GenerateWorkflowRequest represents the request body for AI generation.
type GenerateWorkflowRequest struct {
	Prompt       string `json:"prompt"        validate:"required"`
	Language     string `json:"language"      validate:"omitempty,oneof=en ar"`
	ModelID      string `json:"model_id"`
	UseSearch    *bool  `json:"use_search"`
	IncludeMedia *bool  `json:"include_media"`
	Save         bool   `json:"save"`
	IsPrivate    bool   `json:"is_private"`
}

// ToggleChecklistRequest represents the request body for a checklist tick.
type ToggleChecklistRequest struct {
	Checked bool `json:"checked"`
}

// UpdateSettingsRequest represents the request body for app preference
// changes. Absent fields are left untouched.
type UpdateSettingsRequest struct {
	Language            *string `json:"language,omitempty"       validate:"omitempty,oneof=en ar"`
	ImageProvider       *string `json:"image_provider,omitempty" validate:"omitempty,oneof=unsplash pexels dall-e none"`
	ImageProviderAPIKey string  `json:"image_provider_api_key,omitempty"`
}

// ModelRequest represents the request body for registering or updating an AI
// model configuration.
type ModelRequest struct {
	Name            string `json:"name"             validate:"required"`
	Provider        string `json:"provider"         validate:"required,oneof=gemini openai anthropic deepseek custom"`
	ModelName       string `json:"model_name"       validate:"required"`
	APIKey          string `json:"api_key"`
	IsDefault       bool   `json:"is_default"`
	ImageGeneration bool   `json:"image_generation"`
}

// ToModel converts the request into a model entry. The API key is carried
// through; responses never echo it back.
func (r ModelRequest) ToModel() *models.AIModel {
	return &models.AIModel{
		Name:            r.Name,
		Provider:        models.AIProvider(r.Provider),
		ModelName:       r.ModelName,
		APIKey:          r.APIKey,
		IsDefault:       r.IsDefault,
		ImageGeneration: r.ImageGeneration,
	}
}

// UpdateModelRequest represents the request body for a partial model update.
// Absent fields keep the stored values; an empty api_key keeps the stored key.
type UpdateModelRequest struct {
	Name            *string `json:"name,omitempty"             validate:"omitempty,min=1"`
	Provider        *string `json:"provider,omitempty"         validate:"omitempty,oneof=gemini openai anthropic deepseek custom"`
	ModelName       *string `json:"model_name,omitempty"       validate:"omitempty,min=1"`
	APIKey          *string `json:"api_key,omitempty"`
	IsDefault       *bool   `json:"is_default,omitempty"`
	ImageGeneration *bool   `json:"image_generation,omitempty"`
}

// ToUpdate converts the request into a partial model update.
func (r UpdateModelRequest) ToUpdate() settings.ModelUpdate {
	update := settings.ModelUpdate{
		Name:            r.Name,
		ModelName:       r.ModelName,
		APIKey:          r.APIKey,
		IsDefault:       r.IsDefault,
		ImageGeneration: r.ImageGeneration,
	}

	if r.Provider != nil {
		provider := models.AIProvider(*r.Provider)
		update.Provider = &provider
	}

	return update
}

// ModelResponse represents a registered model with its API key redacted to a
// configured flag.
type ModelResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Provider        string    `json:"provider"`
	ModelName       string    `json:"model_name"`
	IsDefault       bool      `json:"is_default"`
	ImageGeneration bool      `json:"image_generation"`
	Configured      bool      `json:"configured"`
	CreatedAt       time.Time `json:"created_at"`
}

// TransformModelResponse redacts a model entry for API responses.
func TransformModelResponse(model *models.AIModel) ModelResponse {
	return ModelResponse{
		ID:              model.ID,
		Name:            model.Name,
		Provider:        string(model.Provider),
		ModelName:       model.ModelName,
		IsDefault:       model.IsDefault,
		ImageGeneration: model.ImageGeneration,
		Configured:      model.Configured(),
		CreatedAt:       model.CreatedAt,
	}
}

// SettingsResponse represents the settings record with all credentials
// reduced to configured flags.
type SettingsResponse struct {
	AIModels                []ModelResponse `json:"ai_models"`
	DefaultAIModel          string          `json:"default_ai_model"`
	ImageProvider           string          `json:"image_provider"`
	ImageProviderConfigured bool            `json:"image_provider_configured"`
	Language                string          `json:"language"`
	UpdatedAt               time.Time       `json:"updated_at"`
}

// TransformSettingsResponse redacts the settings record for API responses.
func TransformSettingsResponse(settings *models.AppSettings) SettingsResponse {
	aiModels := make([]ModelResponse, 0, len(settings.AIModels))
	for _, model := range settings.AIModels {
		aiModels = append(aiModels, TransformModelResponse(model))
	}

	return SettingsResponse{
		AIModels:                aiModels,
		DefaultAIModel:          settings.DefaultAIModel,
		ImageProvider:           string(settings.ImageProvider),
		ImageProviderConfigured: settings.ImageProviderAPIKey != "",
		Language:                string(settings.Language),
		UpdatedAt:               settings.UpdatedAt,
	}
}
