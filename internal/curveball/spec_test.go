package curveball

import (
	"testing"
	"time"

	"github.com/abhisek/bookwise/internal/store"
	"github.com/abhisek/bookwise/internal/taxonomy"
)

func TestBuildSpec_ZeroMistakes(t *testing.T) {
	cov := &store.IdeaCoverage{IsFullyCovered: true}

	spec := BuildSpec(cov, "Leverage points")
	if spec.Facet != taxonomy.HighestFacet {
		t.Errorf("facet = %s, want %s", spec.Facet, taxonomy.HighestFacet)
	}
	if spec.QuestionType != taxonomy.TypeOpenResponse {
		t.Errorf("type = %s, want open response", spec.QuestionType)
	}
	if spec.SeedText == "" {
		t.Error("seed text empty")
	}
}

func TestBuildSpec_HighestRetryWins(t *testing.T) {
	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	cov := &store.IdeaCoverage{
		IsFullyCovered: true,
		MistakeCount:   5,
		MissedQuestions: []store.MissedFacetRecord{
			{
				ConceptKey:    taxonomy.ConceptKey(taxonomy.FacetRecall, taxonomy.DifficultyEasy),
				RetryCount:    1,
				FirstMissedAt: base,
			},
			{
				ConceptKey:           taxonomy.ConceptKey(taxonomy.FacetAnalysis, taxonomy.DifficultyHard),
				OriginalQuestionText: "Why does the stock lag behind its inflow when the delay doubles?",
				RetryCount:           3,
				FirstMissedAt:        base.Add(time.Hour),
			},
		},
	}

	spec := BuildSpec(cov, "Stocks and flows")
	if spec.Facet != taxonomy.FacetAnalysis {
		t.Errorf("facet = %s, want analysis", spec.Facet)
	}
	// Analysis is not high-order, so the curveball stays a choice question.
	if spec.QuestionType != taxonomy.TypeSingleAnswer {
		t.Errorf("type = %s, want single answer", spec.QuestionType)
	}
	if spec.SeedText != "Why does the stock lag behind its inflow when the delay doubles?" {
		t.Errorf("seed = %q, want the missed question text", spec.SeedText)
	}
}

func TestBuildSpec_HighOrderFacetGetsOpenResponse(t *testing.T) {
	cov := &store.IdeaCoverage{
		IsFullyCovered: true,
		MistakeCount:   1,
		MissedQuestions: []store.MissedFacetRecord{
			{
				ConceptKey: taxonomy.ConceptKey(taxonomy.FacetSynthesis, taxonomy.DifficultyMedium),
				RetryCount: 1,
			},
		},
	}

	spec := BuildSpec(cov, "Feedback loops")
	if spec.Facet != taxonomy.FacetSynthesis {
		t.Errorf("facet = %s, want synthesis", spec.Facet)
	}
	if spec.QuestionType != taxonomy.TypeOpenResponse {
		t.Errorf("type = %s, want open response", spec.QuestionType)
	}
}

func TestBuildSpec_FlimsySeedFallsBack(t *testing.T) {
	cases := []string{"", "too short", "All of the above", "  none of the above  "}
	for _, seed := range cases {
		cov := &store.IdeaCoverage{
			IsFullyCovered: true,
			MistakeCount:   1,
			MissedQuestions: []store.MissedFacetRecord{
				{
					ConceptKey:           taxonomy.ConceptKey(taxonomy.FacetCritique, taxonomy.DifficultyHard),
					OriginalQuestionText: seed,
					RetryCount:           2,
				},
			},
		}
		spec := BuildSpec(cov, "Leverage points")
		if spec.SeedText == seed {
			t.Errorf("seed %q accepted, want placeholder", seed)
		}
		if spec.SeedText == "" {
			t.Errorf("seed %q produced empty fallback", seed)
		}
	}
}

func TestBuildSpec_LatestMissSeedsSameFacet(t *testing.T) {
	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	cov := &store.IdeaCoverage{
		IsFullyCovered: true,
		MistakeCount:   3,
		MissedQuestions: []store.MissedFacetRecord{
			{
				ConceptKey:           taxonomy.ConceptKey(taxonomy.FacetCritique, taxonomy.DifficultyEasy),
				OriginalQuestionText: "What is the weakest assumption in the author's argument?",
				RetryCount:           2,
				FirstMissedAt:        base,
			},
			{
				ConceptKey:           taxonomy.ConceptKey(taxonomy.FacetCritique, taxonomy.DifficultyHard),
				OriginalQuestionText: "Which counterexample breaks the model the author proposes?",
				RetryCount:           1,
				FirstMissedAt:        base.Add(time.Hour),
			},
		},
	}

	spec := BuildSpec(cov, "Arguments")
	if spec.Facet != taxonomy.FacetCritique {
		t.Fatalf("facet = %s, want critique", spec.Facet)
	}
	if spec.SeedText != "Which counterexample breaks the model the author proposes?" {
		t.Errorf("seed = %q, want the most recent critique miss", spec.SeedText)
	}
}
