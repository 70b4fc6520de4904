package models

import "time"

// AIProvider identifies which LLM service a model configuration talks to.
type AIProvider string

const (
	ProviderGemini    AIProvider = "gemini"
	ProviderOpenAI    AIProvider = "openai"
	ProviderAnthropic AIProvider = "anthropic"
	ProviderDeepSeek  AIProvider = "deepseek"
	ProviderCustom    AIProvider = "custom"
)

// AIModel is one registered model configuration. At most one entry in the
// registry is the default at a time; the settings service enforces that, not
// the entity itself.
type AIModel struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"       validate:"required"`
	Provider        AIProvider `json:"provider"   validate:"required,oneof=gemini openai anthropic deepseek custom"`
	ModelName       string     `json:"model_name" validate:"required"`
	APIKey          string     `json:"api_key"`
	IsDefault       bool       `json:"is_default"`
	ImageGeneration bool       `json:"image_generation"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Configured reports whether the model has an API key and can be used for
// generation. Seed entries ship with empty keys.
func (m *AIModel) Configured() bool {
	return m.APIKey != ""
}
