package generation

import (
	"fmt"
	"log/slog"

	"github.com/masarflow/masar/pkg/models"
)

// ForModel returns the generator matching the model's provider. Custom and
// unknown providers have no implementation.
func ForModel(model *models.AIModel, logger *slog.Logger) (Generator, error) {
	switch model.Provider {
	case models.ProviderGemini:
		return NewGeminiGenerator(model, logger), nil
	case models.ProviderOpenAI:
		return NewOpenAIGenerator(model, logger), nil
	case models.ProviderAnthropic:
		return NewAnthropicGenerator(model, logger), nil
	case models.ProviderDeepSeek:
		return NewDeepSeekGenerator(model, logger), nil
	default:
		return nil, NewGenerationError(model.Provider, fmt.Errorf("%w: %q", ErrUnsupportedProvider, model.Provider))
	}
}
