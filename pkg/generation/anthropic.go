package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/masarflow/masar/pkg/models"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	anthropicAPIVersion     = "2023-06-01"
	anthropicMaxTokens      = 2000
)

// AnthropicGenerator calls the Anthropic Messages API.
type AnthropicGenerator struct {
	httpClient *http.Client
	baseURL    string
	model      *models.AIModel
	logger     *slog.Logger
}

// NewAnthropicGenerator creates a generator for an Anthropic model
// configuration.
func NewAnthropicGenerator(model *models.AIModel, logger *slog.Logger) *AnthropicGenerator {
	return &AnthropicGenerator{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		baseURL:    defaultAnthropicBaseURL,
		model:      model,
		logger:     logger,
	}
}

func (g *AnthropicGenerator) Provider() models.AIProvider {
	return models.ProviderAnthropic
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (g *AnthropicGenerator) Generate(ctx context.Context, req Request) (*Result, error) {
	if !g.model.Configured() {
		return nil, NewGenerationError(models.ProviderAnthropic, ErrMissingAPIKey)
	}

	payload, err := json.Marshal(anthropicRequest{
		Model:     g.model.ModelName,
		MaxTokens: anthropicMaxTokens,
		System:    systemInstruction,
		Messages:  []anthropicMessage{{Role: "user", Content: buildPrompt(req)}},
	})
	if err != nil {
		return nil, NewGenerationError(models.ProviderAnthropic, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, NewGenerationError(models.ProviderAnthropic, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", g.model.APIKey)
	httpReq.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, NewGenerationError(models.ProviderAnthropic, fmt.Errorf("request failed: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewGenerationError(models.ProviderAnthropic, fmt.Errorf("failed to read response: %w", err))
	}

	var decoded anthropicResponse

	if resp.StatusCode != http.StatusOK {
		// The error decode is best effort; the body may be an HTML error page.
		if json.Unmarshal(data, &decoded) == nil && decoded.Error != nil {
			return nil, NewGenerationError(models.ProviderAnthropic,
				fmt.Errorf("unexpected status %d: %s", resp.StatusCode, decoded.Error.Message))
		}

		return nil, NewGenerationError(models.ProviderAnthropic, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	err = json.Unmarshal(data, &decoded)
	if err != nil {
		return nil, NewGenerationError(models.ProviderAnthropic, fmt.Errorf("%w: %w", ErrMalformedResponse, err))
	}

	if decoded.Error != nil {
		return nil, NewGenerationError(models.ProviderAnthropic, fmt.Errorf("api error: %s", decoded.Error.Message))
	}

	if len(decoded.Content) == 0 {
		return nil, NewGenerationError(models.ProviderAnthropic, ErrEmptyResponse)
	}

	result, err := parseResult(decoded.Content[0].Text)
	if err != nil {
		return nil, NewGenerationError(models.ProviderAnthropic, err)
	}

	return result, nil
}
