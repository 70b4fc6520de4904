package models

import "time"

// ImageProvider identifies the image search service used for media resolution.
type ImageProvider string

const (
	ImageProviderUnsplash ImageProvider = "unsplash"
	ImageProviderPexels   ImageProvider = "pexels"
	ImageProviderDallE    ImageProvider = "dall-e"
	ImageProviderNone     ImageProvider = "none"
)

// Language selects the output language for generated guides.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageArabic  Language = "ar"
)

// AppSettings is the single persisted configuration record: the AI model
// registry plus app preferences. Every mutation rewrites the whole record.
type AppSettings struct {
	AIModels            []*AIModel    `json:"ai_models"                        validate:"dive"`
	DefaultAIModel      string        `json:"default_ai_model"`
	ImageProvider       ImageProvider `json:"image_provider"                   validate:"required,oneof=unsplash pexels dall-e none"`
	ImageProviderAPIKey string        `json:"image_provider_api_key,omitempty"`
	Language            Language      `json:"language"                         validate:"required,oneof=en ar"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

// ModelByID returns the registered model with the given id, or nil.
func (s *AppSettings) ModelByID(id string) *AIModel {
	for _, model := range s.AIModels {
		if model.ID == id {
			return model
		}
	}

	return nil
}

// DefaultModel returns the model referenced by DefaultAIModel, or nil when the
// reference is empty or does not resolve.
func (s *AppSettings) DefaultModel() *AIModel {
	if s.DefaultAIModel == "" {
		return nil
	}

	return s.ModelByID(s.DefaultAIModel)
}

// DefaultSettings returns the built-in configuration used when no record has
// been persisted yet: four pre-registered models with empty API keys, Gemini
// as the default, Unsplash image search, Arabic UI language.
func DefaultSettings() *AppSettings {
	now := time.Now().UTC()

	return &AppSettings{
		AIModels: []*AIModel{
			{
				ID:        "gemini-default",
				Name:      "Google Gemini 2.0 Flash",
				Provider:  ProviderGemini,
				ModelName: "gemini-2.0-flash",
				IsDefault: true,
				CreatedAt: now,
			},
			{
				ID:              "openai-default",
				Name:            "OpenAI GPT-4o",
				Provider:        ProviderOpenAI,
				ModelName:       "gpt-4o",
				ImageGeneration: true,
				CreatedAt:       now,
			},
			{
				ID:        "claude-default",
				Name:      "Anthropic Claude 3.5 Sonnet",
				Provider:  ProviderAnthropic,
				ModelName: "claude-3-5-sonnet-20241022",
				CreatedAt: now,
			},
			{
				ID:        "deepseek-default",
				Name:      "DeepSeek V3",
				Provider:  ProviderDeepSeek,
				ModelName: "deepseek-chat",
				CreatedAt: now,
			},
		},
		DefaultAIModel: "gemini-default",
		ImageProvider:  ImageProviderUnsplash,
		Language:       LanguageArabic,
		UpdatedAt:      now,
	}
}
