package generation

import (
	"testing"

	"github.com/masarflow/masar/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fencedPayload = "```json\n" + `{
	"title": "Bake a cake",
	"description": "From scratch",
	"steps": [
		{"title": "Gather ingredients", "type": "checklist", "content": "",
			"checklistItems": [
				{"label": "Flour", "checked": true},
				{"label": "Eggs", "checked": false}
			]},
		{"title": "Preheat oven", "type": "text", "content": "180C"},
		{"title": "Decoration reference", "type": "media", "content": "chocolate cake decoration"}
	]
}` + "\n```"

func TestParseResult_StripsFencesAndNormalizes(t *testing.T) {
	t.Parallel()

	result, err := parseResult(fencedPayload)
	require.NoError(t, err)

	assert.Equal(t, "Bake a cake", result.Title)
	assert.Equal(t, "From scratch", result.Description)
	require.Len(t, result.Steps, 3)

	checklist := result.Steps[0]
	assert.NotEmpty(t, checklist.ID)
	assert.Equal(t, models.StepTypeChecklist, checklist.Type)
	require.Len(t, checklist.ChecklistItems, 2)
	assert.Contains(t, checklist.ChecklistItems[0].ID, "chk-")
	assert.False(t, checklist.ChecklistItems[0].Checked, "model-set checked state is discarded")
	assert.False(t, checklist.Completed)

	text := result.Steps[1]
	assert.Equal(t, models.StepTypeText, text.Type)
	assert.Nil(t, text.ChecklistItems, "only checklist steps carry a checklist")

	// Step ids are unique.
	assert.NotEqual(t, result.Steps[0].ID, result.Steps[1].ID)
}

func TestParseResult_PlainJSON(t *testing.T) {
	t.Parallel()

	result, err := parseResult(`{"title": "T", "steps": [{"title": "S", "type": "text"}]}`)
	require.NoError(t, err)
	assert.Equal(t, "T", result.Title)
	require.Len(t, result.Steps, 1)
}

func TestParseResult_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"empty", "", ErrEmptyResponse},
		{"only fences", "```json\n```", ErrEmptyResponse},
		{"not json", "I cannot help with that.", ErrMalformedResponse},
		{"missing title", `{"steps": [{"title": "S", "type": "text"}]}`, ErrMalformedResponse},
		{"no steps", `{"title": "T", "steps": []}`, ErrMalformedResponse},
		{"bad step type", `{"title": "T", "steps": [{"title": "S", "type": "video"}]}`, ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := parseResult(tt.raw)
			require.ErrorIs(t, err, tt.want)
			assert.True(t, IsMalformedResponse(err))
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	prompt := buildPrompt(Request{
		Prompt:   "Tour of Cairo Tower",
		Language: models.LanguageArabic,
		Options:  DefaultOptions(),
	})
	assert.Contains(t, prompt, `"Tour of Cairo Tower"`)
	assert.Contains(t, prompt, "Output values MUST be in Arabic.")
	assert.Contains(t, prompt, "SHORT keyword")
	assert.Contains(t, prompt, "'0,0'")

	noMedia := buildPrompt(Request{
		Prompt:   "Bake a cake",
		Language: models.LanguageEnglish,
		Options:  Options{IncludeMedia: false},
	})
	assert.Contains(t, noMedia, "Output values MUST be in English.")
	assert.Contains(t, noMedia, "Do not use 'media' type.")
	assert.NotContains(t, noMedia, "SHORT keyword")
}
