// Package questiongen turns an idea plus a question spec into question
// content via the LLM provider, with a validator chain and a synthetic
// fallback so sessions can always proceed.
package questiongen

import "context"

// Generator produces practice questions for book ideas.
type Generator interface {
	// Generate produces input.Count questions for the given context.
	// All configured validators run on each question before returning.
	Generate(ctx context.Context, input GenerateInput) ([]*Question, error)
}
