package curveball

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/bookwise/internal/logger"
	"github.com/abhisek/bookwise/internal/store"
	"github.com/abhisek/bookwise/internal/taxonomy"
)

// Scheduler drives the mastery-gate lifecycle. Coverage tracking sets
// the initial due date; the scheduler turns elapsed due dates into
// curveball queue items and folds pass/fail results back into coverage.
type Scheduler struct {
	coverage store.CoverageRepo
	queue    store.QueueRepo
	library  store.LibraryRepo
	log      *logger.Logger

	// delayDays is the reschedule delay after a failed curveball, the
	// same constant coverage uses for the initial schedule.
	delayDays int

	now func() time.Time
}

// NewScheduler creates a mastery-gate scheduler.
func NewScheduler(coverage store.CoverageRepo, queue store.QueueRepo, library store.LibraryRepo, delayDays int, log *logger.Logger) *Scheduler {
	return &Scheduler{
		coverage:  coverage,
		queue:     queue,
		library:   library,
		log:       log.With("service", "curveball"),
		delayDays: delayDays,
		now:       time.Now,
	}
}

// WithClock overrides the scheduler clock. Test hook.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

// StateFor returns the idea's current lifecycle state.
func (s *Scheduler) StateFor(ctx context.Context, ideaID, bookID uuid.UUID) (State, error) {
	cov, err := s.coverage.Get(ctx, ideaID, bookID)
	if err != nil {
		return StateNotEligible, err
	}
	queued, err := s.queue.ExistsPendingCurveball(ctx, ideaID)
	if err != nil {
		return StateNotEligible, err
	}
	return StateOf(cov, queued, s.now()), nil
}

// EnsureQueuedIfDue emits a curveball queue item for every idea in the
// book whose due date has elapsed and that has none pending. Called
// opportunistically before a session is planned. Returns how many items
// were emitted.
func (s *Scheduler) EnsureQueuedIfDue(ctx context.Context, bookID uuid.UUID) (int, error) {
	covs, err := s.coverage.ByBook(ctx, bookID)
	if err != nil {
		return 0, err
	}

	titles, bookTitle, err := s.ideaTitles(ctx, bookID)
	if err != nil {
		return 0, err
	}

	now := s.now()
	emitted := 0
	for _, cov := range covs {
		queued, err := s.queue.ExistsPendingCurveball(ctx, cov.IdeaID)
		if err != nil {
			return emitted, err
		}
		if StateOf(cov, queued, now) != StateDue {
			continue
		}

		spec := BuildSpec(cov, titles[cov.IdeaID])
		item := &store.ReviewQueueItem{
			IdeaID:           cov.IdeaID,
			BookID:           bookID,
			IdeaTitle:        titles[cov.IdeaID],
			BookTitle:        bookTitle,
			QuestionType:     spec.QuestionType,
			ConceptKey:       taxonomy.ConceptKey(spec.Facet, taxonomy.DifficultyHard),
			Difficulty:       taxonomy.DifficultyHard,
			FacetTag:         spec.Facet.String(),
			SeedQuestionText: spec.SeedText,
			IsCurveball:      true,
			AddedAt:          now,
		}
		if err := s.queue.Create(ctx, item); err != nil {
			return emitted, err
		}
		emitted++
		s.log.Info("curveball queued",
			"idea", cov.IdeaID, "facet", spec.Facet.String(), "type", string(spec.QuestionType))
	}
	return emitted, nil
}

// MarkResult records the outcome of a presented curveball. A pass is
// terminal; a fail reschedules the due date delayDays out.
func (s *Scheduler) MarkResult(ctx context.Context, ideaID, bookID uuid.UUID, passed bool) error {
	now := s.now()
	_, err := s.coverage.Mutate(ctx, ideaID, bookID, func(cov *store.IdeaCoverage) error {
		if cov.CurveballPassed {
			return nil
		}
		if passed {
			cov.CurveballPassed = true
			cov.CurveballPassedAt = &now
			cov.CurveballDueAt = nil
		} else {
			due := now.AddDate(0, 0, s.delayDays)
			cov.CurveballDueAt = &due
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("curveball result", "idea", ideaID, "passed", passed)
	return nil
}

// ForceDue moves every unpassed due date for the book into the past so
// the next planning pass queues the curveballs immediately. Dev and
// test operation.
func (s *Scheduler) ForceDue(ctx context.Context, bookID uuid.UUID) (int, error) {
	covs, err := s.coverage.ByBook(ctx, bookID)
	if err != nil {
		return 0, err
	}

	past := s.now().Add(-time.Minute)
	forced := 0
	for _, cov := range covs {
		if !cov.IsFullyCovered || cov.CurveballPassed || cov.CurveballDueAt == nil {
			continue
		}
		_, err := s.coverage.Mutate(ctx, cov.IdeaID, bookID, func(c *store.IdeaCoverage) error {
			if c.CurveballDueAt != nil && !c.CurveballPassed {
				c.CurveballDueAt = &past
			}
			return nil
		})
		if err != nil {
			return forced, err
		}
		forced++
	}
	return forced, nil
}

func (s *Scheduler) ideaTitles(ctx context.Context, bookID uuid.UUID) (map[uuid.UUID]string, string, error) {
	ideas, err := s.library.IdeasByBook(ctx, bookID)
	if err != nil {
		return nil, "", err
	}
	titles := make(map[uuid.UUID]string, len(ideas))
	for _, idea := range ideas {
		titles[idea.ID] = idea.Title
	}

	bookTitle := ""
	if book, err := s.library.BookByID(ctx, bookID); err != nil {
		return nil, "", err
	} else if book != nil {
		bookTitle = book.Title
	}
	return titles, bookTitle, nil
}
