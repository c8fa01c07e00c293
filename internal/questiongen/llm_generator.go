package questiongen

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abhisek/bookwise/internal/llm"
	"github.com/abhisek/bookwise/internal/taxonomy"
)

// LLMGenerator implements Generator using the LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
}

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg}
}

// questionOutput is one raw LLM question before validation.
type questionOutput struct {
	QuestionText   string   `json:"question_text"`
	QuestionType   string   `json:"question_type"`
	Options        []string `json:"options"`
	CorrectIndices []int    `json:"correct_indices"`
	Facet          string   `json:"facet"`
	Explanation    string   `json:"explanation"`
}

type batchOutput struct {
	Questions []questionOutput `json:"questions"`
}

// Generate produces input.Count questions for the given context.
func (g *LLMGenerator) Generate(ctx context.Context, input GenerateInput) ([]*Question, error) {
	ctx = llm.WithPurpose(ctx, "question-gen")

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(input, g.config)},
		},
		Schema:      QuestionsSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	var raw batchOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}
	if len(raw.Questions) < input.Count {
		return nil, fmt.Errorf("LLM returned %d questions, want %d", len(raw.Questions), input.Count)
	}

	questions := make([]*Question, 0, input.Count)
	for _, rq := range raw.Questions[:input.Count] {
		facet := input.Facet
		if !input.HasFacet {
			parsed, err := taxonomy.ParseFacet(rq.Facet)
			if err != nil {
				return nil, fmt.Errorf("LLM returned %w", err)
			}
			facet = parsed
		}

		q := &Question{
			Text:           rq.QuestionText,
			QuestionType:   taxonomy.QuestionType(rq.QuestionType),
			Options:        rq.Options,
			CorrectIndices: rq.CorrectIndices,
			Explanation:    rq.Explanation,
			Facet:          facet,
			Difficulty:     input.Difficulty,
		}

		// Run validators in order.
		for _, v := range g.config.Validators {
			if verr := v.Validate(q, input); verr != nil {
				return nil, verr
			}
		}
		questions = append(questions, q)
	}
	return questions, nil
}
