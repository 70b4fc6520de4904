package generation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/masarflow/masar/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

// Providers wrap their JSON in markdown fences often enough that stripping
// them unconditionally is cheaper than asking them not to.
var codeFenceRe = regexp.MustCompile("```json\n?|\n?```")

const resultSchema = `{
	"type": "object",
	"required": ["title", "steps"],
	"properties": {
		"title": {"type": "string", "minLength": 1},
		"description": {"type": "string"},
		"steps": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["title", "type"],
				"properties": {
					"title": {"type": "string", "minLength": 1},
					"type": {"enum": ["text", "media", "gps", "checklist"]},
					"content": {"type": "string"},
					"checklistItems": {
						"type": "array",
						"items": {
							"type": "object",
							"required": ["label"],
							"properties": {
								"label": {"type": "string"},
								"checked": {"type": "boolean"}
							}
						}
					}
				}
			}
		}
	}
}`

var resultSchemaLoader = gojsonschema.NewStringLoader(resultSchema)

type wirePayload struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Steps       []wireStep `json:"steps"`
}

type wireStep struct {
	Title          string     `json:"title"`
	Type           string     `json:"type"`
	Content        string     `json:"content"`
	ChecklistItems []wireItem `json:"checklistItems"`
}

type wireItem struct {
	Label   string `json:"label"`
	Checked bool   `json:"checked"`
}

// parseResult turns a raw provider reply into a normalized Result: code
// fences stripped, shape validated, ids assigned, checklist state zeroed.
func parseResult(raw string) (*Result, error) {
	cleaned := strings.TrimSpace(codeFenceRe.ReplaceAllString(raw, ""))
	if cleaned == "" {
		return nil, ErrEmptyResponse
	}

	validation, err := gojsonschema.Validate(resultSchemaLoader, gojsonschema.NewStringLoader(cleaned))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	if !validation.Valid() {
		details := make([]string, 0, len(validation.Errors()))
		for _, desc := range validation.Errors() {
			details = append(details, desc.String())
		}

		return nil, fmt.Errorf("%w: %s", ErrMalformedResponse, strings.Join(details, "; "))
	}

	var payload wirePayload

	err = json.Unmarshal([]byte(cleaned), &payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	steps := make([]*models.Step, 0, len(payload.Steps))

	for _, raw := range payload.Steps {
		step := &models.Step{
			ID:      uuid.New().String(),
			Title:   raw.Title,
			Type:    models.StepType(raw.Type),
			Content: raw.Content,
		}

		if step.Type == models.StepTypeChecklist {
			step.ChecklistItems = make([]*models.ChecklistItem, 0, len(raw.ChecklistItems))

			// Generated guides always start unchecked, whatever the model says.
			for _, item := range raw.ChecklistItems {
				step.ChecklistItems = append(step.ChecklistItems, &models.ChecklistItem{
					ID:    "chk-" + uuid.New().String(),
					Label: item.Label,
				})
			}
		}

		steps = append(steps, step)
	}

	return &Result{
		Title:       payload.Title,
		Description: payload.Description,
		Steps:       steps,
	}, nil
}
