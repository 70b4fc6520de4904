package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/masarflow/masar/pkg/models"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// GeminiGenerator calls the Google Generative Language REST API. It is the
// only provider that supports search grounding, enabled through the
// google_search tool when the request asks for it.
type GeminiGenerator struct {
	httpClient *http.Client
	baseURL    string
	model      *models.AIModel
	logger     *slog.Logger
}

// NewGeminiGenerator creates a generator for a Gemini model configuration.
func NewGeminiGenerator(model *models.AIModel, logger *slog.Logger) *GeminiGenerator {
	return &GeminiGenerator{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		baseURL:    defaultGeminiBaseURL,
		model:      model,
		logger:     logger,
	}
}

func (g *GeminiGenerator) Provider() models.AIProvider {
	return models.ProviderGemini
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
	Tools             []geminiTool    `json:"tools,omitempty"`
}

type geminiTool struct {
	GoogleSearch struct{} `json:"google_search"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (*Result, error) {
	if !g.model.Configured() {
		return nil, NewGenerationError(models.ProviderGemini, ErrMissingAPIKey)
	}

	body := geminiRequest{
		Contents:          []geminiContent{{Parts: []geminiPart{{Text: buildPrompt(req)}}}},
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: systemInstruction}}},
	}

	if req.Options.UseSearch {
		body.Tools = []geminiTool{{}}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, NewGenerationError(models.ProviderGemini, err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		g.baseURL, url.PathEscape(g.model.ModelName), url.QueryEscape(g.model.APIKey))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, NewGenerationError(models.ProviderGemini, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, NewGenerationError(models.ProviderGemini, fmt.Errorf("request failed: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewGenerationError(models.ProviderGemini, fmt.Errorf("failed to read response: %w", err))
	}

	var decoded geminiResponse

	if resp.StatusCode != http.StatusOK {
		// The error decode is best effort; the body may be an HTML error page.
		if json.Unmarshal(data, &decoded) == nil && decoded.Error != nil {
			return nil, NewGenerationError(models.ProviderGemini,
				fmt.Errorf("unexpected status %d: %s", resp.StatusCode, decoded.Error.Message))
		}

		return nil, NewGenerationError(models.ProviderGemini, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	err = json.Unmarshal(data, &decoded)
	if err != nil {
		return nil, NewGenerationError(models.ProviderGemini, fmt.Errorf("%w: %w", ErrMalformedResponse, err))
	}

	if decoded.Error != nil {
		return nil, NewGenerationError(models.ProviderGemini, fmt.Errorf("api error: %s", decoded.Error.Message))
	}

	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return nil, NewGenerationError(models.ProviderGemini, ErrEmptyResponse)
	}

	result, err := parseResult(decoded.Candidates[0].Content.Parts[0].Text)
	if err != nil {
		return nil, NewGenerationError(models.ProviderGemini, err)
	}

	return result, nil
}
