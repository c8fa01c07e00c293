package coverage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/bookwise/internal/logger"
	"github.com/abhisek/bookwise/internal/store"
	"github.com/abhisek/bookwise/internal/taxonomy"
)

// Attempt is the outcome of one answered question, as reported by a
// practice session.
type Attempt struct {
	// QuestionID identifies the originating question, when known. Used
	// to match missed-facet records whose concept key has since changed
	// difficulty.
	QuestionID string

	ConceptKey   string
	Facet        taxonomy.Facet
	IsCorrect    bool
	QuestionText string
}

// Service is the coverage tracker: it folds session results into
// per-idea facet coverage and derives completion state.
type Service struct {
	repo store.CoverageRepo
	log  *logger.Logger

	// delayDays is the curveball delay scheduled when an idea first
	// reaches full coverage.
	delayDays int

	now func() time.Time
}

// NewService creates a coverage tracker. delayDays controls when the
// mastery-gate curveball comes due after full coverage.
func NewService(repo store.CoverageRepo, delayDays int, log *logger.Logger) *Service {
	return &Service{
		repo:      repo,
		log:       log.With("service", "coverage"),
		delayDays: delayDays,
		now:       time.Now,
	}
}

// WithClock overrides the service clock. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// GetOrCreate returns the coverage record for (ideaID, bookID), creating
// an empty one on first contact. Idempotent.
func (s *Service) GetOrCreate(ctx context.Context, ideaID, bookID uuid.UUID) (*store.IdeaCoverage, error) {
	return s.repo.GetOrCreate(ctx, ideaID, bookID)
}

// RecordAttempt applies one answered question to the idea's coverage
// record. The whole update runs in a transaction scoped to the record,
// so counters can never be partially applied.
func (s *Service) RecordAttempt(ctx context.Context, ideaID, bookID uuid.UUID, att Attempt) (*store.IdeaCoverage, error) {
	now := s.now()

	cov, err := s.repo.Mutate(ctx, ideaID, bookID, func(cov *store.IdeaCoverage) error {
		s.apply(cov, att, now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if cov.IsFullyCovered && cov.CoveredAt != nil && cov.CoveredAt.Equal(now) {
		s.log.Info("idea fully covered",
			"idea", ideaID, "book", bookID, "curveball_due", cov.CurveballDueAt)
	}
	return cov, nil
}

func (s *Service) apply(cov *store.IdeaCoverage, att Attempt, now time.Time) {
	if cov.FirstAttemptAt == nil {
		cov.FirstAttemptAt = &now
	}
	cov.LastAttemptAt = &now
	cov.TotalSeen++

	if att.IsCorrect {
		cov.TotalCorrect++
		if !cov.HasFacet(att.Facet) {
			cov.CoveredFacets = append(cov.CoveredFacets, att.Facet.String())
		}
		s.correctMatchingMiss(cov, att, now)
	} else {
		cov.MistakeCount++
		s.recordMiss(cov, att, now)
	}

	wasFullyCovered := cov.IsFullyCovered
	Recompute(cov)

	// First full-coverage transition: stamp CoveredAt once and schedule
	// the curveball unless one is already scheduled or passed.
	if cov.IsFullyCovered && !wasFullyCovered && cov.CoveredAt == nil {
		cov.CoveredAt = &now
		if cov.CurveballDueAt == nil && !cov.CurveballPassed {
			due := now.AddDate(0, 0, s.delayDays)
			cov.CurveballDueAt = &due
		}
	}
}

// correctMatchingMiss closes the first open missed-facet record that
// matches the attempt's concept key or originating question.
func (s *Service) correctMatchingMiss(cov *store.IdeaCoverage, att Attempt, now time.Time) {
	for i := range cov.MissedQuestions {
		rec := &cov.MissedQuestions[i]
		if rec.IsCorrected {
			continue
		}
		if rec.ConceptKey == att.ConceptKey ||
			(att.QuestionID != "" && rec.QuestionID == att.QuestionID) {
			rec.IsCorrected = true
			rec.CorrectedAt = &now
			cov.MistakesCorrected++
			return
		}
	}
}

// recordMiss increments the retry count of an open record for the same
// concept, or opens a fresh one. Corrected records are closed for good:
// missing the same concept again starts a new record rather than
// reopening the old one.
func (s *Service) recordMiss(cov *store.IdeaCoverage, att Attempt, now time.Time) {
	for i := range cov.MissedQuestions {
		rec := &cov.MissedQuestions[i]
		if rec.ConceptKey == att.ConceptKey && !rec.IsCorrected {
			rec.RetryCount++
			return
		}
	}
	cov.MissedQuestions = append(cov.MissedQuestions, store.MissedFacetRecord{
		ID:                   uuid.New(),
		CoverageID:           cov.ID,
		QuestionID:           att.QuestionID,
		ConceptKey:           att.ConceptKey,
		OriginalQuestionText: att.QuestionText,
		FirstMissedAt:        now,
		RetryCount:           1,
	})
}

// BookCoverage returns the percentage of the book's ideas with full
// facet coverage. Partial coverage of other ideas does not count.
func (s *Service) BookCoverage(ctx context.Context, bookID uuid.UUID, totalIdeas int) (float64, error) {
	if totalIdeas <= 0 {
		return 0, nil
	}
	covered, err := s.repo.CountFullyCovered(ctx, bookID)
	if err != nil {
		return 0, err
	}
	return float64(covered) / float64(totalIdeas) * 100, nil
}
