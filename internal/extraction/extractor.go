// Package extraction turns a book title into the ordered list of atomic
// ideas the learning engine drills. The order establishes lesson
// numbering: lesson N introduces the Nth idea.
package extraction

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abhisek/bookwise/internal/llm"
)

// IdeaStub is one extracted idea, before it becomes a stored record.
type IdeaStub struct {
	Title   string
	Summary string
}

// Extractor produces a book's ordered idea list.
type Extractor interface {
	// ExtractIdeas returns the book's ideas in reading order.
	ExtractIdeas(ctx context.Context, bookTitle string) ([]IdeaStub, error)
}

const systemPrompt = `You are a reading coach distilling non-fiction books into their atomic ideas.

Rules:
- List the book's core ideas in the order the book develops them.
- Each idea must be atomic: one claim or concept a reader could explain in a paragraph.
- Aim for 8 to 20 ideas depending on the book's density; never pad.
- Titles are short noun phrases. Summaries are one or two sentences stating the idea itself, not what the chapter is about.
- Only include ideas actually argued in the book. If you do not know the book well enough, return an empty list.`

// IdeasSchema defines the JSON schema for extraction responses.
var IdeasSchema = &llm.Schema{
	Name:        "book-ideas",
	Description: "The ordered list of atomic ideas in a non-fiction book",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"ideas": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title": map[string]any{
							"type":        "string",
							"description": "Short noun phrase naming the idea",
						},
						"summary": map[string]any{
							"type":        "string",
							"description": "One or two sentences stating the idea",
						},
					},
					"required":             []any{"title", "summary"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"ideas"},
		"additionalProperties": false,
	},
}

// LLMExtractor implements Extractor using the LLM provider.
type LLMExtractor struct {
	provider  llm.Provider
	maxTokens int
}

// NewLLMExtractor creates an extractor over the given provider.
func NewLLMExtractor(provider llm.Provider) *LLMExtractor {
	return &LLMExtractor{provider: provider, maxTokens: 4096}
}

type ideasOutput struct {
	Ideas []struct {
		Title   string `json:"title"`
		Summary string `json:"summary"`
	} `json:"ideas"`
}

// ExtractIdeas asks the model for the book's ordered idea list.
func (e *LLMExtractor) ExtractIdeas(ctx context.Context, bookTitle string) ([]IdeaStub, error) {
	ctx = llm.WithPurpose(ctx, "idea-extraction")

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: fmt.Sprintf("Book: %s", bookTitle)},
		},
		Schema:    IdeasSchema,
		MaxTokens: e.maxTokens,
	}

	resp, err := e.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM extraction failed: %w", err)
	}

	var raw ideasOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}
	if len(raw.Ideas) == 0 {
		return nil, fmt.Errorf("no ideas extracted for %q", bookTitle)
	}

	stubs := make([]IdeaStub, 0, len(raw.Ideas))
	for _, idea := range raw.Ideas {
		if idea.Title == "" {
			return nil, fmt.Errorf("extracted idea with empty title for %q", bookTitle)
		}
		stubs = append(stubs, IdeaStub{Title: idea.Title, Summary: idea.Summary})
	}
	return stubs, nil
}
