package coverage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/bookwise/internal/logger"
	"github.com/abhisek/bookwise/internal/store"
	"github.com/abhisek/bookwise/internal/taxonomy"
)

func testService(t *testing.T, delayDays int) (*Service, *store.Store) {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db")
	st, err := store.Open(dsn, logger.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return NewService(st.CoverageRepo(), delayDays, logger.Nop()), st
}

func TestRecordAttempt_CorrectCoversFacet(t *testing.T) {
	svc, _ := testService(t, 3)
	ctx := context.Background()
	ideaID, bookID := uuid.New(), uuid.New()

	cov, err := svc.RecordAttempt(ctx, ideaID, bookID, Attempt{
		ConceptKey: taxonomy.ConceptKey(taxonomy.FacetRecall, taxonomy.DifficultyEasy),
		Facet:      taxonomy.FacetRecall,
		IsCorrect:  true,
	})
	if err != nil {
		t.Fatalf("RecordAttempt: %v", err)
	}
	if !cov.HasFacet(taxonomy.FacetRecall) {
		t.Error("recall facet not covered after correct answer")
	}
	if cov.TotalSeen != 1 || cov.TotalCorrect != 1 {
		t.Errorf("counters = (%d, %d), want (1, 1)", cov.TotalSeen, cov.TotalCorrect)
	}
	want := 100.0 / float64(taxonomy.FacetCount)
	if cov.CoveragePercentage != want {
		t.Errorf("coverage = %.2f, want %.2f", cov.CoveragePercentage, want)
	}

	// Answering the same facet again does not double-count it.
	cov, err = svc.RecordAttempt(ctx, ideaID, bookID, Attempt{
		ConceptKey: taxonomy.ConceptKey(taxonomy.FacetRecall, taxonomy.DifficultyMedium),
		Facet:      taxonomy.FacetRecall,
		IsCorrect:  true,
	})
	if err != nil {
		t.Fatalf("RecordAttempt: %v", err)
	}
	if len(cov.CoveredFacets) != 1 {
		t.Errorf("covered facets = %d, want 1", len(cov.CoveredFacets))
	}
	if cov.CoveragePercentage != want {
		t.Errorf("coverage after repeat = %.2f, want %.2f", cov.CoveragePercentage, want)
	}
}

func TestRecordAttempt_MissOpensAndBumpsRecord(t *testing.T) {
	svc, _ := testService(t, 3)
	ctx := context.Background()
	ideaID, bookID := uuid.New(), uuid.New()
	key := taxonomy.ConceptKey(taxonomy.FacetAnalysis, taxonomy.DifficultyHard)

	cov, err := svc.RecordAttempt(ctx, ideaID, bookID, Attempt{
		QuestionID:   "q1",
		ConceptKey:   key,
		Facet:        taxonomy.FacetAnalysis,
		IsCorrect:    false,
		QuestionText: "Why does the feedback loop amplify small delays?",
	})
	if err != nil {
		t.Fatalf("RecordAttempt: %v", err)
	}
	if len(cov.MissedQuestions) != 1 {
		t.Fatalf("missed records = %d, want 1", len(cov.MissedQuestions))
	}
	if cov.MissedQuestions[0].RetryCount != 1 {
		t.Errorf("retry count = %d, want 1", cov.MissedQuestions[0].RetryCount)
	}
	if cov.HasFacet(taxonomy.FacetAnalysis) {
		t.Error("missed facet should not count as covered")
	}

	// A second miss on the same concept bumps the same record.
	cov, err = svc.RecordAttempt(ctx, ideaID, bookID, Attempt{
		QuestionID: "q2",
		ConceptKey: key,
		Facet:      taxonomy.FacetAnalysis,
		IsCorrect:  false,
	})
	if err != nil {
		t.Fatalf("RecordAttempt: %v", err)
	}
	if len(cov.MissedQuestions) != 1 {
		t.Fatalf("missed records after second miss = %d, want 1", len(cov.MissedQuestions))
	}
	if cov.MissedQuestions[0].RetryCount != 2 {
		t.Errorf("retry count = %d, want 2", cov.MissedQuestions[0].RetryCount)
	}
	if cov.MistakeCount != 2 {
		t.Errorf("mistake count = %d, want 2", cov.MistakeCount)
	}
}

func TestRecordAttempt_CorrectionClosesRecord(t *testing.T) {
	svc, _ := testService(t, 3)
	ctx := context.Background()
	ideaID, bookID := uuid.New(), uuid.New()
	key := taxonomy.ConceptKey(taxonomy.FacetComparison, taxonomy.DifficultyMedium)

	if _, err := svc.RecordAttempt(ctx, ideaID, bookID, Attempt{
		ConceptKey: key,
		Facet:      taxonomy.FacetComparison,
		IsCorrect:  false,
	}); err != nil {
		t.Fatalf("miss: %v", err)
	}

	cov, err := svc.RecordAttempt(ctx, ideaID, bookID, Attempt{
		ConceptKey: key,
		Facet:      taxonomy.FacetComparison,
		IsCorrect:  true,
	})
	if err != nil {
		t.Fatalf("correction: %v", err)
	}
	if len(cov.MissedQuestions) != 1 {
		t.Fatalf("missed records = %d, want 1", len(cov.MissedQuestions))
	}
	rec := cov.MissedQuestions[0]
	if !rec.IsCorrected || rec.CorrectedAt == nil {
		t.Error("record not marked corrected")
	}
	if cov.MistakesCorrected != 1 {
		t.Errorf("MistakesCorrected = %d, want 1", cov.MistakesCorrected)
	}
	if !cov.HasFacet(taxonomy.FacetComparison) {
		t.Error("facet should be covered after correction")
	}

	// A later miss on the same concept opens a fresh record instead of
	// reopening the corrected one.
	cov, err = svc.RecordAttempt(ctx, ideaID, bookID, Attempt{
		ConceptKey: key,
		Facet:      taxonomy.FacetComparison,
		IsCorrect:  false,
	})
	if err != nil {
		t.Fatalf("re-miss: %v", err)
	}
	if len(cov.MissedQuestions) != 2 {
		t.Fatalf("missed records = %d, want 2", len(cov.MissedQuestions))
	}
}

func TestRecordAttempt_FullCoverageSchedulesCurveball(t *testing.T) {
	svc, st := testService(t, 3)
	fixed := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return fixed })

	ctx := context.Background()
	ideaID, bookID := uuid.New(), uuid.New()

	var cov *store.IdeaCoverage
	var err error
	for _, f := range taxonomy.AllFacets() {
		cov, err = svc.RecordAttempt(ctx, ideaID, bookID, Attempt{
			ConceptKey: taxonomy.ConceptKey(f, taxonomy.DifficultyMedium),
			Facet:      f,
			IsCorrect:  true,
		})
		if err != nil {
			t.Fatalf("RecordAttempt(%s): %v", f, err)
		}
	}

	if !cov.IsFullyCovered {
		t.Fatal("idea not fully covered after all eight facets")
	}
	if cov.CoveredAt == nil || !cov.CoveredAt.Equal(fixed) {
		t.Errorf("CoveredAt = %v, want %v", cov.CoveredAt, fixed)
	}
	wantDue := fixed.AddDate(0, 0, 3)
	if cov.CurveballDueAt == nil || !cov.CurveballDueAt.Equal(wantDue) {
		t.Errorf("CurveballDueAt = %v, want %v", cov.CurveballDueAt, wantDue)
	}

	// Another attempt must not move the curveball or the covered stamp.
	later := fixed.Add(48 * time.Hour)
	svc.WithClock(func() time.Time { return later })
	cov, err = svc.RecordAttempt(ctx, ideaID, bookID, Attempt{
		ConceptKey: taxonomy.ConceptKey(taxonomy.FacetRecall, taxonomy.DifficultyHard),
		Facet:      taxonomy.FacetRecall,
		IsCorrect:  true,
	})
	if err != nil {
		t.Fatalf("RecordAttempt: %v", err)
	}
	if !cov.CoveredAt.Equal(fixed) {
		t.Errorf("CoveredAt moved to %v", cov.CoveredAt)
	}
	if !cov.CurveballDueAt.Equal(wantDue) {
		t.Errorf("CurveballDueAt moved to %v", cov.CurveballDueAt)
	}

	n, err := st.CoverageRepo().CountFullyCovered(ctx, bookID)
	if err != nil {
		t.Fatalf("CountFullyCovered: %v", err)
	}
	if n != 1 {
		t.Errorf("fully covered = %d, want 1", n)
	}
}

func TestBookCoverage(t *testing.T) {
	svc, _ := testService(t, 3)
	ctx := context.Background()
	bookID := uuid.New()

	// One idea fully covered, one untouched, over a four idea book.
	ideaID := uuid.New()
	for _, f := range taxonomy.AllFacets() {
		if _, err := svc.RecordAttempt(ctx, ideaID, bookID, Attempt{
			ConceptKey: taxonomy.ConceptKey(f, taxonomy.DifficultyEasy),
			Facet:      f,
			IsCorrect:  true,
		}); err != nil {
			t.Fatalf("RecordAttempt: %v", err)
		}
	}
	if _, err := svc.GetOrCreate(ctx, uuid.New(), bookID); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	pct, err := svc.BookCoverage(ctx, bookID, 4)
	if err != nil {
		t.Fatalf("BookCoverage: %v", err)
	}
	if pct != 25 {
		t.Errorf("book coverage = %.2f, want 25", pct)
	}

	pct, err = svc.BookCoverage(ctx, bookID, 0)
	if err != nil {
		t.Fatalf("BookCoverage empty: %v", err)
	}
	if pct != 0 {
		t.Errorf("empty book coverage = %.2f, want 0", pct)
	}
}
