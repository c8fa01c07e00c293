package questiongen

import "github.com/abhisek/bookwise/internal/taxonomy"

// Question is generated question content ready for a session.
type Question struct {
	// Text is the question prompt displayed to the learner.
	Text string

	// QuestionType indicates how the learner answers.
	QuestionType taxonomy.QuestionType

	// Options is populated only for choice questions. Contains exactly
	// 4 options.
	Options []string

	// CorrectIndices are the indices of the correct options. Exactly one
	// for single_answer, two or more for multi_answer, empty for
	// open_response.
	CorrectIndices []int

	// Explanation is a brief model answer or rationale shown after the
	// learner responds. Always present.
	Explanation string

	// Facet is the facet this question probes.
	Facet taxonomy.Facet

	// Difficulty is the requested difficulty.
	Difficulty taxonomy.Difficulty
}

// ConceptKey returns the facet+difficulty key the question tests.
func (q *Question) ConceptKey() string {
	return taxonomy.ConceptKey(q.Facet, q.Difficulty)
}

// GenerateInput holds all context needed to generate questions for one
// idea and category.
type GenerateInput struct {
	// IdeaTitle and IdeaSummary describe the target idea.
	IdeaTitle   string
	IdeaSummary string

	// BookTitle gives the idea its source context.
	BookTitle string

	// Count is how many questions to produce.
	Count int

	// Facet is the facet to probe, when the caller wants a specific one.
	// HasFacet distinguishes "probe this facet" from "spread across
	// facets".
	Facet    taxonomy.Facet
	HasFacet bool

	// Difficulty is the requested difficulty.
	Difficulty taxonomy.Difficulty

	// QuestionType pins the answer format when set (curveballs and
	// corrections); empty lets the model choose per facet.
	QuestionType taxonomy.QuestionType

	// SeedText is an optional previously missed question to riff on.
	SeedText string

	// PriorQuestions contains the text of questions already asked for
	// this idea, for deduplication in the prompt.
	PriorQuestions []string
}
