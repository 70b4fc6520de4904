package generation

import (
	"fmt"
	"strings"

	"github.com/masarflow/masar/pkg/models"
)

const systemInstruction = "You are an expert workflow architect. You prioritize accuracy and real-world applicability."

const jsonStructure = `{
  "title": "string",
  "description": "string",
  "steps": [
    {
      "title": "string",
      "type": "text" | "media" | "gps" | "checklist",
      "content": "string",
      "checklistItems": [{"label": "string", "checked": false}]
    }
  ]
}`

const mediaAllowedRule = "For steps that could benefit from visual reference, use 'media' type. " +
	"In the 'content' field, provide a SHORT keyword or phrase describing what image would be helpful " +
	"(e.g., 'chocolate cake decoration', 'engine oil check', 'solar panel installation'). " +
	"This keyword will be used to fetch a real image."

const mediaForbiddenRule = "Do not use 'media' type."

// buildPrompt renders the user prompt sent to every provider: the task, the
// output language, the step type rules, and the required JSON shape.
func buildPrompt(req Request) string {
	mediaRule := mediaForbiddenRule
	if req.Options.IncludeMedia {
		mediaRule = mediaAllowedRule
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Task: Create a detailed step-by-step workflow guide for: %q.\n\n", req.Prompt)
	b.WriteString(languageInstruction(req.Language) + "\n\n")
	b.WriteString("RULES FOR STEP TYPES:\n")
	b.WriteString("1. **GPS**: ONLY use 'gps' type if the user explicitly asks for a location-specific guide " +
		"(e.g., \"Tour of Cairo Tower\", \"Directions to Central Park\"). If it is a generic task " +
		"(e.g., \"How to bake a cake\", \"Car maintenance\"), DO NOT use 'gps'. " +
		"Use '0,0' for coordinates if exact location is unknown but required.\n")
	b.WriteString("2. **MEDIA**: " + mediaRule + "\n")
	b.WriteString("3. **CHECKLIST**: Use 'checklist' for steps that require verifying multiple items.\n")
	b.WriteString("4. **TEXT**: Use 'text' for general instructions.\n\n")
	b.WriteString("OUTPUT FORMAT:\n")
	b.WriteString("You MUST return a valid JSON object matching this structure exactly. " +
		"Do not include markdown formatting or extra text.\n")
	b.WriteString(jsonStructure)

	return b.String()
}

func languageInstruction(language models.Language) string {
	if language == models.LanguageArabic {
		return "Output values MUST be in Arabic."
	}

	return "Output values MUST be in English."
}
