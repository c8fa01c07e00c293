package spacedrep

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/bookwise/internal/logger"
	"github.com/abhisek/bookwise/internal/store"
)

func testScheduler(t *testing.T) *Scheduler {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db")
	st, err := store.Open(dsn, logger.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return NewScheduler(st.ReviewStateRepo(), logger.Nop())
}

func TestInitIdea_FirstReviewOneDayOut(t *testing.T) {
	s := testScheduler(t)
	ctx := context.Background()
	ideaID, bookID := uuid.New(), uuid.New()
	covered := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	if err := s.InitIdea(ctx, ideaID, bookID, covered); err != nil {
		t.Fatalf("InitIdea: %v", err)
	}

	rs, err := s.State(ctx, ideaID, bookID)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if rs == nil {
		t.Fatal("state not created")
	}
	want := covered.AddDate(0, 0, 1)
	if !rs.NextReviewAt.Equal(want) {
		t.Errorf("NextReviewAt = %v, want %v", rs.NextReviewAt, want)
	}
	if rs.Stage != 0 || rs.Graduated {
		t.Errorf("fresh state = stage %d graduated %v", rs.Stage, rs.Graduated)
	}
}

func TestDueIdeas_MostOverdueFirst(t *testing.T) {
	s := testScheduler(t)
	ctx := context.Background()
	bookID := uuid.New()
	now := time.Date(2026, 6, 10, 10, 0, 0, 0, time.UTC)

	slightly, very, notDue := uuid.New(), uuid.New(), uuid.New()
	if err := s.InitIdea(ctx, slightly, bookID, now.AddDate(0, 0, -2)); err != nil {
		t.Fatalf("InitIdea: %v", err)
	}
	if err := s.InitIdea(ctx, very, bookID, now.AddDate(0, 0, -9)); err != nil {
		t.Fatalf("InitIdea: %v", err)
	}
	if err := s.InitIdea(ctx, notDue, bookID, now); err != nil {
		t.Fatalf("InitIdea: %v", err)
	}

	due, err := s.DueIdeas(ctx, bookID, now)
	if err != nil {
		t.Fatalf("DueIdeas: %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("due = %d, want 2", len(due))
	}
	if due[0].IdeaID != very {
		t.Errorf("due[0] = %s, want the most overdue idea", due[0].IdeaID)
	}
	if due[1].IdeaID != slightly {
		t.Errorf("due[1] = %s, want the slightly overdue idea", due[1].IdeaID)
	}
}

func TestRecordReview_CorrectClimbsStage(t *testing.T) {
	s := testScheduler(t)
	ctx := context.Background()
	ideaID, bookID := uuid.New(), uuid.New()
	start := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	if err := s.InitIdea(ctx, ideaID, bookID, start); err != nil {
		t.Fatalf("InitIdea: %v", err)
	}

	now := start.AddDate(0, 0, 1)
	if err := s.RecordReview(ctx, ideaID, bookID, true, now); err != nil {
		t.Fatalf("RecordReview: %v", err)
	}

	rs, err := s.State(ctx, ideaID, bookID)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if rs.Stage != 1 || rs.ConsecutiveHits != 1 {
		t.Errorf("state = stage %d hits %d, want stage 1 hits 1", rs.Stage, rs.ConsecutiveHits)
	}
	// Stage 1 interval is 3 days.
	want := now.AddDate(0, 0, 3)
	if !rs.NextReviewAt.Equal(want) {
		t.Errorf("NextReviewAt = %v, want %v", rs.NextReviewAt, want)
	}
}

func TestRecordReview_MissResetsStreak(t *testing.T) {
	s := testScheduler(t)
	ctx := context.Background()
	ideaID, bookID := uuid.New(), uuid.New()
	start := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	if err := s.InitIdea(ctx, ideaID, bookID, start); err != nil {
		t.Fatalf("InitIdea: %v", err)
	}
	now := start.AddDate(0, 0, 1)
	if err := s.RecordReview(ctx, ideaID, bookID, true, now); err != nil {
		t.Fatalf("RecordReview: %v", err)
	}
	if err := s.RecordReview(ctx, ideaID, bookID, false, now.AddDate(0, 0, 3)); err != nil {
		t.Fatalf("RecordReview miss: %v", err)
	}

	rs, err := s.State(ctx, ideaID, bookID)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if rs.ConsecutiveHits != 0 {
		t.Errorf("hits = %d, want 0 after a miss", rs.ConsecutiveHits)
	}
	if rs.Stage != 1 {
		t.Errorf("stage = %d, want 1 (a miss does not demote)", rs.Stage)
	}
}

func TestRecordReview_Graduation(t *testing.T) {
	s := testScheduler(t)
	ctx := context.Background()
	ideaID, bookID := uuid.New(), uuid.New()
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	if err := s.InitIdea(ctx, ideaID, bookID, now); err != nil {
		t.Fatalf("InitIdea: %v", err)
	}
	for i := 0; i < GraduationStage; i++ {
		now = now.AddDate(0, 0, 1)
		if err := s.RecordReview(ctx, ideaID, bookID, true, now); err != nil {
			t.Fatalf("RecordReview %d: %v", i, err)
		}
	}

	rs, err := s.State(ctx, ideaID, bookID)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if !rs.Graduated {
		t.Fatalf("not graduated after %d consecutive hits", GraduationStage)
	}
	want := now.AddDate(0, 0, GraduatedIntervalDays)
	if !rs.NextReviewAt.Equal(want) {
		t.Errorf("NextReviewAt = %v, want the %d-day interval", rs.NextReviewAt, GraduatedIntervalDays)
	}
}

func TestRecordReview_UntrackedIdeaIsNoop(t *testing.T) {
	s := testScheduler(t)
	if err := s.RecordReview(context.Background(), uuid.New(), uuid.New(), true, time.Now()); err != nil {
		t.Fatalf("RecordReview untracked: %v", err)
	}
}
