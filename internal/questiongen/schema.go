package questiongen

import "github.com/abhisek/bookwise/internal/llm"

// QuestionsSchema defines the JSON schema for LLM question generation
// responses.
var QuestionsSchema = &llm.Schema{
	Name:        "book-questions",
	Description: "A batch of practice questions about one idea from a book",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question_text": map[string]any{
							"type":        "string",
							"description": "The question prompt shown to the reader",
						},
						"question_type": map[string]any{
							"type":        "string",
							"enum":        []any{"single_answer", "multi_answer", "open_response"},
							"description": "How the reader answers",
						},
						"options": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "string",
							},
							"description": "Exactly 4 options for choice questions. Empty array for open_response.",
						},
						"correct_indices": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "integer",
							},
							"description": "Indices of the correct options. One for single_answer, two or three for multi_answer, empty for open_response.",
						},
						"facet": map[string]any{
							"type": "string",
							"enum": []any{
								"recall", "summarize", "application", "comparison",
								"analysis", "critique", "synthesis", "transfer",
							},
							"description": "The facet this question probes",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "A brief model answer or rationale shown after the reader responds",
						},
					},
					"required":             []any{"question_text", "question_type", "options", "correct_indices", "facet", "explanation"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}
