package generation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/masarflow/masar/pkg/models"
	openai "github.com/sashabaranov/go-openai"
)

const deepseekBaseURL = "https://api.deepseek.com/v1"

// OpenAIGenerator drives OpenAI's chat completion API. DeepSeek exposes the
// same API surface, so the one generator serves both providers with a
// different base URL.
type OpenAIGenerator struct {
	provider models.AIProvider
	model    *models.AIModel
	baseURL  string
	logger   *slog.Logger
}

// NewOpenAIGenerator creates a generator for an OpenAI model configuration.
func NewOpenAIGenerator(model *models.AIModel, logger *slog.Logger) *OpenAIGenerator {
	return &OpenAIGenerator{
		provider: models.ProviderOpenAI,
		model:    model,
		logger:   logger,
	}
}

// NewDeepSeekGenerator creates a generator for a DeepSeek model configuration.
func NewDeepSeekGenerator(model *models.AIModel, logger *slog.Logger) *OpenAIGenerator {
	return &OpenAIGenerator{
		provider: models.ProviderDeepSeek,
		model:    model,
		baseURL:  deepseekBaseURL,
		logger:   logger,
	}
}

func (g *OpenAIGenerator) Provider() models.AIProvider {
	return g.provider
}

func (g *OpenAIGenerator) Generate(ctx context.Context, req Request) (*Result, error) {
	if !g.model.Configured() {
		return nil, NewGenerationError(g.provider, ErrMissingAPIKey)
	}

	config := openai.DefaultConfig(g.model.APIKey)
	if g.baseURL != "" {
		config.BaseURL = g.baseURL
	}

	client := openai.NewClientWithConfig(config)

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model.ModelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(req)},
		},
		Temperature: 0.7,
		MaxTokens:   2000,
	})
	if err != nil {
		return nil, NewGenerationError(g.provider, fmt.Errorf("chat completion failed: %w", err))
	}

	if len(resp.Choices) == 0 {
		return nil, NewGenerationError(g.provider, ErrEmptyResponse)
	}

	result, err := parseResult(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, NewGenerationError(g.provider, err)
	}

	return result, nil
}
