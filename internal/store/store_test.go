package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/bookwise/internal/logger"
	"github.com/abhisek/bookwise/internal/taxonomy"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db")
	st, err := Open(dsn, logger.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestCoverageRepo_GetOrCreate_Idempotent(t *testing.T) {
	st := testStore(t)
	repo := st.CoverageRepo()
	ctx := context.Background()

	ideaID, bookID := uuid.New(), uuid.New()

	first, err := repo.GetOrCreate(ctx, ideaID, bookID)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	second, err := repo.GetOrCreate(ctx, ideaID, bookID)
	if err != nil {
		t.Fatalf("GetOrCreate again: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("GetOrCreate created a duplicate: %s vs %s", first.ID, second.ID)
	}
}

func TestCoverageRepo_Mutate_PersistsMissedRecords(t *testing.T) {
	st := testStore(t)
	repo := st.CoverageRepo()
	ctx := context.Background()

	ideaID, bookID := uuid.New(), uuid.New()

	_, err := repo.Mutate(ctx, ideaID, bookID, func(cov *IdeaCoverage) error {
		cov.TotalSeen = 1
		cov.MistakeCount = 1
		cov.MissedQuestions = append(cov.MissedQuestions, MissedFacetRecord{
			ID:                   uuid.New(),
			CoverageID:           cov.ID,
			ConceptKey:           taxonomy.ConceptKey(taxonomy.FacetRecall, taxonomy.DifficultyEasy),
			OriginalQuestionText: "What is the central claim of chapter one?",
			FirstMissedAt:        time.Now(),
			RetryCount:           1,
		})
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}

	reloaded, err := repo.Get(ctx, ideaID, bookID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if reloaded == nil {
		t.Fatal("coverage not found after Mutate")
	}
	if reloaded.TotalSeen != 1 || reloaded.MistakeCount != 1 {
		t.Errorf("counters = (%d, %d), want (1, 1)", reloaded.TotalSeen, reloaded.MistakeCount)
	}
	if len(reloaded.MissedQuestions) != 1 {
		t.Fatalf("missed records = %d, want 1", len(reloaded.MissedQuestions))
	}
	if reloaded.MissedQuestions[0].RetryCount != 1 {
		t.Errorf("retry count = %d, want 1", reloaded.MissedQuestions[0].RetryCount)
	}
}

func TestCoverageRepo_Mutate_UpdatesExistingMissedRecord(t *testing.T) {
	st := testStore(t)
	repo := st.CoverageRepo()
	ctx := context.Background()

	ideaID, bookID := uuid.New(), uuid.New()
	key := taxonomy.ConceptKey(taxonomy.FacetAnalysis, taxonomy.DifficultyHard)

	_, err := repo.Mutate(ctx, ideaID, bookID, func(cov *IdeaCoverage) error {
		cov.MissedQuestions = append(cov.MissedQuestions, MissedFacetRecord{
			ID:            uuid.New(),
			CoverageID:    cov.ID,
			ConceptKey:    key,
			FirstMissedAt: time.Now(),
			RetryCount:    1,
		})
		return nil
	})
	if err != nil {
		t.Fatalf("first Mutate: %v", err)
	}

	_, err = repo.Mutate(ctx, ideaID, bookID, func(cov *IdeaCoverage) error {
		if len(cov.MissedQuestions) != 1 {
			t.Fatalf("loaded missed records = %d, want 1", len(cov.MissedQuestions))
		}
		cov.MissedQuestions[0].RetryCount++
		return nil
	})
	if err != nil {
		t.Fatalf("second Mutate: %v", err)
	}

	reloaded, err := repo.Get(ctx, ideaID, bookID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(reloaded.MissedQuestions) != 1 {
		t.Fatalf("missed records = %d, want 1", len(reloaded.MissedQuestions))
	}
	if reloaded.MissedQuestions[0].RetryCount != 2 {
		t.Errorf("retry count = %d, want 2", reloaded.MissedQuestions[0].RetryCount)
	}
}

func TestQueueRepo_PendingAndCompletion(t *testing.T) {
	st := testStore(t)
	repo := st.QueueRepo()
	ctx := context.Background()

	bookID, ideaID := uuid.New(), uuid.New()
	key := taxonomy.ConceptKey(taxonomy.FacetRecall, taxonomy.DifficultyEasy)

	item := &ReviewQueueItem{
		IdeaID:       ideaID,
		BookID:       bookID,
		QuestionType: taxonomy.TypeSingleAnswer,
		ConceptKey:   key,
	}
	if err := repo.Create(ctx, item); err != nil {
		t.Fatalf("Create: %v", err)
	}

	exists, err := repo.ExistsPending(ctx, ideaID, key)
	if err != nil {
		t.Fatalf("ExistsPending: %v", err)
	}
	if !exists {
		t.Error("ExistsPending = false, want true")
	}

	pending, err := repo.PendingByBook(ctx, bookID)
	if err != nil {
		t.Fatalf("PendingByBook: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending = %d, want 1", len(pending))
	}

	// Marking completed twice is a no-op the second time.
	if err := repo.MarkCompleted(ctx, []uuid.UUID{item.ID}); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	if err := repo.MarkCompleted(ctx, []uuid.UUID{item.ID}); err != nil {
		t.Fatalf("MarkCompleted again: %v", err)
	}

	pending, err = repo.PendingByBook(ctx, bookID)
	if err != nil {
		t.Fatalf("PendingByBook after complete: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending after complete = %d, want 0", len(pending))
	}
}

func TestQueueRepo_PendingCounts(t *testing.T) {
	st := testStore(t)
	repo := st.QueueRepo()
	ctx := context.Background()

	bookID := uuid.New()
	types := []taxonomy.QuestionType{
		taxonomy.TypeSingleAnswer, taxonomy.TypeMultiAnswer, taxonomy.TypeOpenResponse,
	}
	for i, qt := range types {
		err := repo.Create(ctx, &ReviewQueueItem{
			IdeaID:       uuid.New(),
			BookID:       bookID,
			QuestionType: qt,
			ConceptKey:   taxonomy.ConceptKey(taxonomy.AllFacets()[i], taxonomy.DifficultyEasy),
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	mcq, openEnded, err := repo.PendingCounts(ctx, bookID)
	if err != nil {
		t.Fatalf("PendingCounts: %v", err)
	}
	if mcq != 2 || openEnded != 1 {
		t.Errorf("counts = (%d, %d), want (2, 1)", mcq, openEnded)
	}
}

func TestLibraryRepo_IdeaOrdering(t *testing.T) {
	st := testStore(t)
	repo := st.LibraryRepo()
	ctx := context.Background()

	book := &Book{Title: "Thinking in Systems"}
	if err := repo.CreateBook(ctx, book); err != nil {
		t.Fatalf("CreateBook: %v", err)
	}

	ideas := []*Idea{
		{Title: "Stocks and flows"},
		{Title: "Feedback loops"},
		{Title: "Leverage points"},
	}
	if err := repo.ReplaceIdeas(ctx, book.ID, ideas); err != nil {
		t.Fatalf("ReplaceIdeas: %v", err)
	}

	loaded, err := repo.IdeasByBook(ctx, book.ID)
	if err != nil {
		t.Fatalf("IdeasByBook: %v", err)
	}
	if len(loaded) != 3 {
		t.Fatalf("ideas = %d, want 3", len(loaded))
	}
	for i, idea := range loaded {
		if idea.Position != i+1 {
			t.Errorf("position[%d] = %d, want %d", i, idea.Position, i+1)
		}
	}

	second, err := repo.IdeaAt(ctx, book.ID, 2)
	if err != nil {
		t.Fatalf("IdeaAt: %v", err)
	}
	if second == nil || second.Title != "Feedback loops" {
		t.Errorf("IdeaAt(2) = %+v, want Feedback loops", second)
	}

	n, err := repo.CountIdeas(ctx, book.ID)
	if err != nil {
		t.Fatalf("CountIdeas: %v", err)
	}
	if n != 3 {
		t.Errorf("CountIdeas = %d, want 3", n)
	}
}

func TestReviewStateRepo_Upsert(t *testing.T) {
	st := testStore(t)
	repo := st.ReviewStateRepo()
	ctx := context.Background()

	ideaID, bookID := uuid.New(), uuid.New()
	now := time.Now().UTC().Truncate(time.Second)

	state := &IdeaReviewState{
		IdeaID:       ideaID,
		BookID:       bookID,
		Stage:        0,
		NextReviewAt: now.AddDate(0, 0, 1),
		LastReviewAt: now,
	}
	if err := repo.Upsert(ctx, state); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	state.Stage = 1
	state.ConsecutiveHits = 1
	if err := repo.Upsert(ctx, state); err != nil {
		t.Fatalf("Upsert update: %v", err)
	}

	loaded, err := repo.Get(ctx, ideaID, bookID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if loaded == nil {
		t.Fatal("state not found")
	}
	if loaded.Stage != 1 || loaded.ConsecutiveHits != 1 {
		t.Errorf("state = (stage %d, hits %d), want (1, 1)", loaded.Stage, loaded.ConsecutiveHits)
	}

	all, err := repo.ByBook(ctx, bookID)
	if err != nil {
		t.Fatalf("ByBook: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("ByBook = %d states, want 1", len(all))
	}
}
