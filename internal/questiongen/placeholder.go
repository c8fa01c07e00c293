package questiongen

import (
	"context"
	"fmt"

	"github.com/abhisek/bookwise/internal/taxonomy"
)

// Placeholder is a Generator that fabricates minimal questions with no
// LLM call. Used as the last-resort fallback when generation keeps
// failing, so a session can always proceed.
type Placeholder struct{}

// Generate returns input.Count synthetic questions.
func (Placeholder) Generate(_ context.Context, input GenerateInput) ([]*Question, error) {
	qt := input.QuestionType
	if qt == "" {
		qt = taxonomy.TypeOpenResponse
	}
	facet := input.Facet
	if !input.HasFacet {
		facet = taxonomy.FacetSummarize
	}

	questions := make([]*Question, 0, input.Count)
	for i := 0; i < input.Count; i++ {
		q := &Question{
			QuestionType: qt,
			Facet:        facet,
			Difficulty:   input.Difficulty,
			Explanation:  fmt.Sprintf("Revisit the idea %q and answer in your own words.", input.IdeaTitle),
		}
		switch qt {
		case taxonomy.TypeOpenResponse:
			q.Text = fmt.Sprintf("Explain the idea %q from %q in your own words.", input.IdeaTitle, input.BookTitle)
		default:
			q.Text = fmt.Sprintf("Which statement best describes the idea %q?", input.IdeaTitle)
			q.Options = []string{
				fmt.Sprintf("The core claim of %q as the book presents it", input.IdeaTitle),
				"A common misreading of the idea",
				"An unrelated idea from another chapter",
				"The opposite of what the book argues",
			}
			q.CorrectIndices = []int{0}
			if qt == taxonomy.TypeMultiAnswer {
				q.CorrectIndices = []int{0, 1}
			}
		}
		questions = append(questions, q)
	}
	return questions, nil
}
