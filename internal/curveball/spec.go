package curveball

import (
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/bookwise/internal/store"
	"github.com/abhisek/bookwise/internal/taxonomy"
)

// Spec describes the curveball question to emit for an idea: which
// facet to probe, how the learner answers, and the seed text handed to
// question generation.
type Spec struct {
	Facet        taxonomy.Facet
	QuestionType taxonomy.QuestionType
	SeedText     string
}

// minSeedLen is the shortest missed-question text considered a usable
// generation seed.
const minSeedLen = 20

var fillerSeeds = map[string]bool{
	"all of the above":  true,
	"none of the above": true,
	"true":              true,
	"false":             true,
}

// BuildSpec picks the curveball question spec for a fully covered idea.
//
// An idea covered without a single mistake gets the highest-order facet
// as an open-response question. Otherwise the facet comes from the
// missed record with the most retries, and the question type is
// open-response only for high-order facets.
func BuildSpec(cov *store.IdeaCoverage, ideaTitle string) Spec {
	if cov.MistakeCount == 0 {
		return Spec{
			Facet:        taxonomy.HighestFacet,
			QuestionType: taxonomy.TypeOpenResponse,
			SeedText:     placeholderSeed(ideaTitle),
		}
	}

	facet := hardestMissedFacet(cov)
	qt := taxonomy.TypeSingleAnswer
	if facet.IsHighOrder() {
		qt = taxonomy.TypeOpenResponse
	}

	seed := latestSeedForFacet(cov, facet)
	if !substantialSeed(seed) {
		seed = placeholderSeed(ideaTitle)
	}
	return Spec{Facet: facet, QuestionType: qt, SeedText: seed}
}

// hardestMissedFacet returns the facet of the missed record with the
// highest retry count. Ties go to the earliest miss.
func hardestMissedFacet(cov *store.IdeaCoverage) taxonomy.Facet {
	var best *store.MissedFacetRecord
	for i := range cov.MissedQuestions {
		rec := &cov.MissedQuestions[i]
		if best == nil || rec.RetryCount > best.RetryCount ||
			(rec.RetryCount == best.RetryCount && rec.FirstMissedAt.Before(best.FirstMissedAt)) {
			best = rec
		}
	}
	if best == nil {
		return taxonomy.HighestFacet
	}
	facet, err := taxonomy.FacetFromConceptKey(best.ConceptKey)
	if err != nil {
		return taxonomy.HighestFacet
	}
	return facet
}

// latestSeedForFacet returns the most recently missed question text for
// the facet, or "" when none exists.
func latestSeedForFacet(cov *store.IdeaCoverage, facet taxonomy.Facet) string {
	var text string
	var at time.Time
	for i := range cov.MissedQuestions {
		rec := &cov.MissedQuestions[i]
		f, err := taxonomy.FacetFromConceptKey(rec.ConceptKey)
		if err != nil || f != facet {
			continue
		}
		if rec.OriginalQuestionText != "" && (text == "" || rec.FirstMissedAt.After(at)) {
			text = rec.OriginalQuestionText
			at = rec.FirstMissedAt
		}
	}
	return text
}

func substantialSeed(text string) bool {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < minSeedLen {
		return false
	}
	return !fillerSeeds[strings.ToLower(trimmed)]
}

func placeholderSeed(ideaTitle string) string {
	return fmt.Sprintf("Test deep understanding of %q with an unexpected angle.", ideaTitle)
}
