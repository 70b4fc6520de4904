package generation

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/masarflow/masar/pkg/images"
	"github.com/masarflow/masar/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

const validReply = `{"title": "Guide", "description": "D", "steps": [{"title": "Step one", "type": "text", "content": "Do it"}]}`

func TestGeminiGenerator_Generate(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var body geminiRequest

		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Contents, 1)
		assert.Contains(t, body.Contents[0].Parts[0].Text, "workflow guide")
		require.NotNil(t, body.SystemInstruction)
		assert.Len(t, body.Tools, 1, "search grounding requested")

		fenced := "```json\n" + validReply + "\n```"
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":` + mustQuote(fenced) + `}]}}]}`))
	}))
	defer server.Close()

	generator := NewGeminiGenerator(&models.AIModel{
		Provider:  models.ProviderGemini,
		ModelName: "gemini-2.0-flash",
		APIKey:    "test-key",
	}, testLogger())
	generator.baseURL = server.URL

	result, err := generator.Generate(context.Background(), Request{
		Prompt:   "Bake a cake",
		Language: models.LanguageEnglish,
		Options:  DefaultOptions(),
	})
	require.NoError(t, err)
	assert.Equal(t, "Guide", result.Title)
	require.Len(t, result.Steps, 1)
	assert.NotEmpty(t, result.Steps[0].ID)
}

func TestGeminiGenerator_NoSearchToolWhenDisabled(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body geminiRequest

		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Empty(t, body.Tools)

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":` + mustQuote(validReply) + `}]}}]}`))
	}))
	defer server.Close()

	generator := NewGeminiGenerator(&models.AIModel{ModelName: "gemini-2.0-flash", APIKey: "k"}, testLogger())
	generator.baseURL = server.URL

	_, err := generator.Generate(context.Background(), Request{Prompt: "p", Language: models.LanguageEnglish})
	require.NoError(t, err)
}

func TestGeminiGenerator_APIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"API key not valid"}}`))
	}))
	defer server.Close()

	generator := NewGeminiGenerator(&models.AIModel{ModelName: "gemini-2.0-flash", APIKey: "bad"}, testLogger())
	generator.baseURL = server.URL

	_, err := generator.Generate(context.Background(), Request{Prompt: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key not valid")

	var genErr *GenerationError

	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, models.ProviderGemini, genErr.Provider)
}

func TestGenerators_NonJSONErrorBody(t *testing.T) {
	t.Parallel()

	// Gateways in front of the providers answer with HTML error pages; those
	// must surface as status errors, not as malformed model output.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("<html><body>503 Service Unavailable</body></html>"))
	}))
	defer server.Close()

	configured := &models.AIModel{ModelName: "m", APIKey: "k"}

	gemini := NewGeminiGenerator(configured, testLogger())
	gemini.baseURL = server.URL

	anthropic := NewAnthropicGenerator(configured, testLogger())
	anthropic.baseURL = server.URL

	for _, generator := range []Generator{gemini, anthropic} {
		_, err := generator.Generate(context.Background(), Request{Prompt: "p"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected status 503")
		assert.False(t, IsMalformedResponse(err))
	}
}

func TestGenerators_MissingKeySkipsNetwork(t *testing.T) {
	t.Parallel()

	// A server that fails the test if anything reaches it.
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("unexpected network call with missing api key")
	}))
	defer server.Close()

	unconfigured := &models.AIModel{ModelName: "m"}

	gemini := NewGeminiGenerator(unconfigured, testLogger())
	gemini.baseURL = server.URL

	anthropic := NewAnthropicGenerator(unconfigured, testLogger())
	anthropic.baseURL = server.URL

	for _, generator := range []Generator{gemini, anthropic, NewOpenAIGenerator(unconfigured, testLogger())} {
		_, err := generator.Generate(context.Background(), Request{Prompt: "p"})
		require.ErrorIs(t, err, ErrMissingAPIKey)
		assert.True(t, IsConfigurationError(err))
	}
}

func TestAnthropicGenerator_Generate(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant-test", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var body anthropicRequest

		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "claude-3-5-sonnet-20241022", body.Model)
		assert.Equal(t, 2000, body.MaxTokens)
		require.Len(t, body.Messages, 1)
		assert.Equal(t, "user", body.Messages[0].Role)

		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":` + mustQuote(validReply) + `}]}`))
	}))
	defer server.Close()

	generator := NewAnthropicGenerator(&models.AIModel{
		ModelName: "claude-3-5-sonnet-20241022",
		APIKey:    "sk-ant-test",
	}, testLogger())
	generator.baseURL = server.URL

	result, err := generator.Generate(context.Background(), Request{Prompt: "p", Language: models.LanguageEnglish})
	require.NoError(t, err)
	assert.Equal(t, "Guide", result.Title)
}

func TestForModel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		provider models.AIProvider
		wantErr  bool
	}{
		{models.ProviderGemini, false},
		{models.ProviderOpenAI, false},
		{models.ProviderAnthropic, false},
		{models.ProviderDeepSeek, false},
		{models.ProviderCustom, true},
		{"mystery", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			t.Parallel()

			generator, err := ForModel(&models.AIModel{Provider: tt.provider}, testLogger())
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnsupportedProvider)
				assert.True(t, IsConfigurationError(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.provider, generator.Provider())
		})
	}
}

type stubSearcher struct {
	results map[string]string
	err     error
	queries []string
}

func (s *stubSearcher) Search(_ context.Context, query string) (string, error) {
	s.queries = append(s.queries, query)

	if s.err != nil {
		return "", s.err
	}

	imageURL, ok := s.results[query]
	if !ok {
		return "", images.ErrNoResults
	}

	return imageURL, nil
}

func TestResolveMedia(t *testing.T) {
	t.Parallel()

	searcher := &stubSearcher{results: map[string]string{
		"engine oil check": "https://images.example/oil.jpg",
		"Fallback title":   "https://images.example/fallback.jpg",
	}}

	steps := []*models.Step{
		{Type: models.StepTypeText, Content: "keep me"},
		{Type: models.StepTypeMedia, Content: "engine oil check"},
		{Type: models.StepTypeMedia, Title: "Fallback title", Content: ""},
		{Type: models.StepTypeMedia, Content: "no match"},
	}

	ResolveMedia(context.Background(), searcher, testLogger(), steps)

	assert.Equal(t, "keep me", steps[0].Content)
	assert.Equal(t, "https://images.example/oil.jpg", steps[1].Content)
	assert.Equal(t, "https://images.example/fallback.jpg", steps[2].Content, "empty content falls back to title")
	assert.Equal(t, "no match", steps[3].Content, "misses keep the keyword")
	assert.Equal(t, []string{"engine oil check", "Fallback title", "no match"}, searcher.queries)
}

func TestResolveMedia_NilSearcherAndErrors(t *testing.T) {
	t.Parallel()

	steps := []*models.Step{{Type: models.StepTypeMedia, Content: "keyword"}}

	ResolveMedia(context.Background(), nil, testLogger(), steps)
	assert.Equal(t, "keyword", steps[0].Content)

	failing := &stubSearcher{err: errors.New("provider down")}

	ResolveMedia(context.Background(), failing, testLogger(), steps)
	assert.Equal(t, "keyword", steps[0].Content)
}

func mustQuote(s string) string {
	data, err := json.Marshal(s)
	if err != nil {
		panic(err)
	}

	return string(data)
}
