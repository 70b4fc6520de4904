// Package settings manages the singleton application configuration: the AI
// model registry, the image search provider, and the UI language. Reads fall
// back to built-in defaults so the app works before anything is persisted.
package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/masarflow/masar/pkg/models"
	"github.com/masarflow/masar/pkg/persistence"
)

var (
	// ErrInvalidModel is returned when a model configuration fails validation.
	ErrInvalidModel = errors.New("invalid model configuration")

	// ErrInvalidImageProvider is returned for an unknown image provider name.
	ErrInvalidImageProvider = errors.New("invalid image provider")

	// ErrInvalidLanguage is returned for an unsupported language code.
	ErrInvalidLanguage = errors.New("invalid language")
)

// Service owns all settings mutations. Every write goes through a
// read-modify-save cycle against the whole record, so the single-default
// invariant of the model registry is re-established on each mutation.
type Service struct {
	repo      persistence.SettingsRepository
	logger    *slog.Logger
	validator *validator.Validate
}

// NewService creates a settings service backed by the given repository.
func NewService(repo persistence.SettingsRepository, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		logger:    logger,
		validator: validator.New(),
	}
}

// Initialize seeds the built-in defaults when no settings record exists yet.
// An already persisted record, valid or corrupt, is left untouched.
func (s *Service) Initialize(ctx context.Context) error {
	_, err := s.repo.Get(ctx)
	if err == nil {
		return nil
	}

	if persistence.IsSettingsNotFound(err) {
		err = s.repo.Save(ctx, models.DefaultSettings())
		if err != nil {
			return fmt.Errorf("failed to seed default settings: %w", err)
		}

		s.logger.InfoContext(ctx, "seeded default settings")

		return nil
	}

	if persistence.IsSettingsCorrupt(err) {
		s.logger.WarnContext(ctx, "stored settings are unreadable, keeping record", "error", err)

		return nil
	}

	return fmt.Errorf("failed to read settings: %w", err)
}

// Get returns the current settings. When the record is missing or unreadable
// it returns the built-in defaults without persisting them, so a transient
// read problem never clobbers stored API keys.
func (s *Service) Get(ctx context.Context) (*models.AppSettings, error) {
	stored, err := s.repo.Get(ctx)
	if err != nil {
		if persistence.IsSettingsNotFound(err) {
			return models.DefaultSettings(), nil
		}

		if persistence.IsSettingsCorrupt(err) {
			s.logger.WarnContext(ctx, "stored settings are unreadable, using defaults", "error", err)

			return models.DefaultSettings(), nil
		}

		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	return stored, nil
}

// AddAIModel registers a new model configuration and returns it with its
// assigned id. The new model becomes the default when it asks to be, or when
// the registry has no default yet.
func (s *Service) AddAIModel(ctx context.Context, model *models.AIModel) (*models.AIModel, error) {
	model.ID = newModelID(model.Provider)
	model.CreatedAt = time.Now().UTC()

	err := s.validator.Struct(model)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}

	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	makeDefault := model.IsDefault || settings.DefaultAIModel == ""

	model.IsDefault = false
	settings.AIModels = append(settings.AIModels, model)

	if makeDefault {
		applyDefault(settings, model.ID)
	}

	err = s.repo.Save(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}

	return model, nil
}

// ModelUpdate carries a partial change to a registered model. Nil fields keep
// the stored values.
type ModelUpdate struct {
	Name            *string
	Provider        *models.AIProvider
	ModelName       *string
	APIKey          *string
	IsDefault       *bool
	ImageGeneration *bool
}

// UpdateAIModel merges the set fields of the update into a registered model.
// The id and creation time are preserved. Returns (nil, nil) when no model
// with the given id exists. Promoting a model to default demotes the previous
// default; the default flag cannot be cleared here, only moved via
// SetDefaultAIModel. An empty api key keeps the stored one, so clients that
// redact keys can echo records back safely.
func (s *Service) UpdateAIModel(ctx context.Context, id string, update ModelUpdate) (*models.AIModel, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	model := settings.ModelByID(id)
	if model == nil {
		return nil, nil
	}

	if update.Name != nil {
		model.Name = *update.Name
	}

	if update.Provider != nil {
		model.Provider = *update.Provider
	}

	if update.ModelName != nil {
		model.ModelName = *update.ModelName
	}

	if update.ImageGeneration != nil {
		model.ImageGeneration = *update.ImageGeneration
	}

	if update.APIKey != nil && *update.APIKey != "" {
		model.APIKey = *update.APIKey
	}

	err = s.validator.Struct(model)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}

	if update.IsDefault != nil && *update.IsDefault {
		applyDefault(settings, id)
	}

	err = s.repo.Save(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}

	return model, nil
}

// DeleteAIModel removes a model from the registry. When the default model is
// deleted the first remaining model becomes the default; an emptied registry
// clears the default reference. Returns false when the id is unknown.
func (s *Service) DeleteAIModel(ctx context.Context, id string) (bool, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return false, err
	}

	remaining := make([]*models.AIModel, 0, len(settings.AIModels))
	found := false

	for _, model := range settings.AIModels {
		if model.ID == id {
			found = true

			continue
		}

		remaining = append(remaining, model)
	}

	if !found {
		return false, nil
	}

	settings.AIModels = remaining

	if settings.DefaultAIModel == id {
		if len(remaining) > 0 {
			applyDefault(settings, remaining[0].ID)
		} else {
			settings.DefaultAIModel = ""
		}
	}

	err = s.repo.Save(ctx, settings)
	if err != nil {
		return false, fmt.Errorf("failed to save settings: %w", err)
	}

	return true, nil
}

// SetDefaultAIModel marks the given model as the generation default. Returns
// false when the id is unknown; the stored default is left unchanged then.
func (s *Service) SetDefaultAIModel(ctx context.Context, id string) (bool, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return false, err
	}

	if settings.ModelByID(id) == nil {
		return false, nil
	}

	applyDefault(settings, id)

	err = s.repo.Save(ctx, settings)
	if err != nil {
		return false, fmt.Errorf("failed to save settings: %w", err)
	}

	return true, nil
}

// SetImageProvider switches the image search provider. An empty apiKey keeps
// the stored key, so switching back to a provider does not lose credentials.
func (s *Service) SetImageProvider(ctx context.Context, provider models.ImageProvider, apiKey string) (*models.AppSettings, error) {
	switch provider {
	case models.ImageProviderUnsplash, models.ImageProviderPexels, models.ImageProviderDallE, models.ImageProviderNone:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidImageProvider, provider)
	}

	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	settings.ImageProvider = provider

	if apiKey != "" {
		settings.ImageProviderAPIKey = apiKey
	}

	err = s.repo.Save(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}

	return settings, nil
}

// SetLanguage switches the output language for generated guides.
func (s *Service) SetLanguage(ctx context.Context, language models.Language) (*models.AppSettings, error) {
	switch language {
	case models.LanguageEnglish, models.LanguageArabic:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidLanguage, language)
	}

	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	settings.Language = language

	err = s.repo.Save(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}

	return settings, nil
}

// Reset discards all stored configuration and persists the built-in defaults.
func (s *Service) Reset(ctx context.Context) (*models.AppSettings, error) {
	settings := models.DefaultSettings()

	err := s.repo.Save(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}

	return settings, nil
}

// DefaultModel resolves the model used for generation when none is named.
func (s *Service) DefaultModel(ctx context.Context) (*models.AIModel, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	return settings.DefaultModel(), nil
}

// ModelByID resolves one registered model, or nil when unknown.
func (s *Service) ModelByID(ctx context.Context, id string) (*models.AIModel, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	return settings.ModelByID(id), nil
}

// applyDefault points the registry default at id and re-syncs the per-model
// flags so exactly one model carries IsDefault.
func applyDefault(settings *models.AppSettings, id string) {
	settings.DefaultAIModel = id

	for _, model := range settings.AIModels {
		model.IsDefault = model.ID == id
	}
}

func newModelID(provider models.AIProvider) string {
	return fmt.Sprintf("%s-%d", provider, time.Now().UnixMilli())
}
