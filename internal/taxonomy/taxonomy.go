package taxonomy

import (
	"fmt"
	"strings"
)

// Facet is one of the 8 fixed ways of testing understanding of an idea.
// The numeric value is the facet's order: higher values demand deeper
// processing and are preferred for mastery-gate questions.
type Facet int

const (
	FacetRecall Facet = iota
	FacetSummarize
	FacetApplication
	FacetComparison
	FacetAnalysis
	FacetCritique
	FacetSynthesis
	FacetTransfer
)

// FacetCount is the size of the facet taxonomy. Coverage percentage is
// always computed against this denominator.
const FacetCount = 8

// AllFacets returns the facets in ascending order.
func AllFacets() []Facet {
	return []Facet{
		FacetRecall, FacetSummarize, FacetApplication, FacetComparison,
		FacetAnalysis, FacetCritique, FacetSynthesis, FacetTransfer,
	}
}

// HighestFacet is the top of the taxonomy, used for the "prove it cold"
// curveball when an idea was covered without a single mistake.
const HighestFacet = FacetTransfer

var facetNames = map[Facet]string{
	FacetRecall:      "recall",
	FacetSummarize:   "summarize",
	FacetApplication: "application",
	FacetComparison:  "comparison",
	FacetAnalysis:    "analysis",
	FacetCritique:    "critique",
	FacetSynthesis:   "synthesis",
	FacetTransfer:    "transfer",
}

func (f Facet) String() string {
	if name, ok := facetNames[f]; ok {
		return name
	}
	return fmt.Sprintf("facet(%d)", int(f))
}

// Valid reports whether f is a member of the taxonomy.
func (f Facet) Valid() bool {
	return f >= FacetRecall && f <= FacetTransfer
}

// IsHighOrder reports whether f is one of the two highest-order facets.
// High-order facets get open-response curveballs; the rest get choice
// questions.
func (f Facet) IsHighOrder() bool {
	return f == FacetSynthesis || f == FacetTransfer
}

// ParseFacet resolves a facet name back to its tag.
func ParseFacet(name string) (Facet, error) {
	for f, n := range facetNames {
		if n == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown facet %q", name)
}

// QuestionType describes how the learner answers a question.
type QuestionType string

const (
	TypeSingleAnswer QuestionType = "single_answer"
	TypeMultiAnswer  QuestionType = "multi_answer"
	TypeOpenResponse QuestionType = "open_response"
)

// IsChoice reports whether the type belongs to the single/multi-answer
// selection pool (as opposed to open-response).
func (t QuestionType) IsChoice() bool {
	return t == TypeSingleAnswer || t == TypeMultiAnswer
}

// Valid reports whether t is one of the three known question types.
func (t QuestionType) Valid() bool {
	switch t {
	case TypeSingleAnswer, TypeMultiAnswer, TypeOpenResponse:
		return true
	}
	return false
}

// Difficulty is the requested difficulty for a generated question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ConceptKey identifies a specific facet+difficulty combination tested
// for an idea. Missed-facet records and queue items are deduplicated on
// this key.
func ConceptKey(f Facet, d Difficulty) string {
	return f.String() + ":" + string(d)
}

// FacetFromConceptKey recovers the facet tag from a concept key.
func FacetFromConceptKey(key string) (Facet, error) {
	name, _, ok := strings.Cut(key, ":")
	if !ok {
		return 0, fmt.Errorf("malformed concept key %q", key)
	}
	return ParseFacet(name)
}
