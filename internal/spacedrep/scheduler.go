// Package spacedrep schedules post-mastery reviews on an expanding
// interval ladder. Ideas enter the schedule when they reach full facet
// coverage and climb a stage on every correct review.
package spacedrep

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/bookwise/internal/logger"
	"github.com/abhisek/bookwise/internal/store"
)

// Scheduler manages spaced repetition review scheduling over the
// persisted per-idea review states.
type Scheduler struct {
	repo store.ReviewStateRepo
	log  *logger.Logger
}

// NewScheduler creates a scheduler.
func NewScheduler(repo store.ReviewStateRepo, log *logger.Logger) *Scheduler {
	return &Scheduler{repo: repo, log: log.With("service", "spacedrep")}
}

// InitIdea starts the review schedule for an idea that just reached
// full coverage. The first review lands BaseIntervals[0] days out.
// Calling it again for a tracked idea resets the schedule.
func (s *Scheduler) InitIdea(ctx context.Context, ideaID, bookID uuid.UUID, coveredAt time.Time) error {
	return s.repo.Upsert(ctx, &store.IdeaReviewState{
		IdeaID:       ideaID,
		BookID:       bookID,
		Stage:        0,
		NextReviewAt: coveredAt.AddDate(0, 0, BaseIntervals[0]),
		LastReviewAt: coveredAt,
	})
}

// DueIdeas returns review states due at now, most overdue first. Ties
// break on idea id so the order is stable.
func (s *Scheduler) DueIdeas(ctx context.Context, bookID uuid.UUID, now time.Time) ([]*store.IdeaReviewState, error) {
	states, err := s.repo.ByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	var due []*store.IdeaReviewState
	for _, rs := range states {
		if IsDue(rs, now) {
			due = append(due, rs)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		oi, oj := OverdueDays(due[i], now), OverdueDays(due[j], now)
		if oi != oj {
			return oi > oj
		}
		return due[i].IdeaID.String() < due[j].IdeaID.String()
	})
	return due, nil
}

// RecordReview updates the schedule after a review answer. A correct
// answer climbs a stage and pushes the next review out by the new
// interval; a miss resets the hit streak and leaves the idea due.
func (s *Scheduler) RecordReview(ctx context.Context, ideaID, bookID uuid.UUID, correct bool, now time.Time) error {
	rs, err := s.repo.Get(ctx, ideaID, bookID)
	if err != nil {
		return err
	}
	if rs == nil {
		s.log.Warn("review recorded for untracked idea", "idea", ideaID)
		return nil
	}

	rs.LastReviewAt = now
	if correct {
		rs.ConsecutiveHits++
		if !rs.Graduated {
			rs.Stage++
			if rs.ConsecutiveHits >= GraduationStage {
				rs.Graduated = true
			}
		}
		rs.NextReviewAt = now.AddDate(0, 0, CurrentIntervalDays(rs))
	} else {
		rs.ConsecutiveHits = 0
	}
	return s.repo.Upsert(ctx, rs)
}

// State returns the review state for an idea, or nil if not tracked.
func (s *Scheduler) State(ctx context.Context, ideaID, bookID uuid.UUID) (*store.IdeaReviewState, error) {
	return s.repo.Get(ctx, ideaID, bookID)
}

// States returns all review states for a book, for stats display.
func (s *Scheduler) States(ctx context.Context, bookID uuid.UUID) ([]*store.IdeaReviewState, error) {
	return s.repo.ByBook(ctx, bookID)
}
