// Package reviewqueue maintains the backlog of missed concepts awaiting
// a correction question and selects the bounded daily slice of it.
package reviewqueue

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/bookwise/internal/logger"
	"github.com/abhisek/bookwise/internal/store"
	"github.com/abhisek/bookwise/internal/taxonomy"
)

// Daily selection caps. They bound review load per session no matter how
// many mistakes have accumulated.
const (
	MaxDailyChoice    = 3
	MaxDailyOpenEnded = 1
)

// IncorrectResponse describes one wrong answer from a session, resolved
// back to its originating question.
type IncorrectResponse struct {
	ConceptKey   string
	Facet        taxonomy.Facet
	Difficulty   taxonomy.Difficulty
	QuestionType taxonomy.QuestionType
	QuestionText string
}

// Service is the review queue over QueueRepo.
type Service struct {
	repo store.QueueRepo
	log  *logger.Logger
	now  func() time.Time
}

// NewService creates a review queue service.
func NewService(repo store.QueueRepo, log *logger.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With("service", "reviewqueue"),
		now:  time.Now,
	}
}

// WithClock overrides the service clock. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// EnqueueMistakes creates one queue item per incorrect response, unless
// a pending non-curveball item for the same (idea, concept) already
// exists under any question type. At most one pending non-curveball
// item per concept per idea at any time. Returns the number actually
// enqueued.
func (s *Service) EnqueueMistakes(ctx context.Context, ideaID, bookID uuid.UUID, ideaTitle, bookTitle string, responses []IncorrectResponse) (int, error) {
	enqueued := 0
	for _, resp := range responses {
		exists, err := s.repo.ExistsPending(ctx, ideaID, resp.ConceptKey)
		if err != nil {
			return enqueued, err
		}
		if exists {
			s.log.Debug("skipping duplicate pending concept",
				"idea", ideaID, "concept", resp.ConceptKey)
			continue
		}

		item := &store.ReviewQueueItem{
			IdeaID:           ideaID,
			BookID:           bookID,
			IdeaTitle:        ideaTitle,
			BookTitle:        bookTitle,
			QuestionType:     resp.QuestionType,
			ConceptKey:       resp.ConceptKey,
			Difficulty:       resp.Difficulty,
			FacetTag:         resp.Facet.String(),
			SeedQuestionText: resp.QuestionText,
			AddedAt:          s.now(),
		}
		if err := s.repo.Create(ctx, item); err != nil {
			return enqueued, err
		}
		enqueued++
	}
	return enqueued, nil
}

// DailySelection is the slice of the backlog picked for one session.
type DailySelection struct {
	// Choice holds single and multi-answer items, at most MaxDailyChoice.
	Choice []*store.ReviewQueueItem

	// OpenEnded holds open-response items, at most MaxDailyOpenEnded.
	OpenEnded []*store.ReviewQueueItem
}

// Items returns the selection as one flat slice, choice items first.
func (sel DailySelection) Items() []*store.ReviewQueueItem {
	out := make([]*store.ReviewQueueItem, 0, len(sel.Choice)+len(sel.OpenEnded))
	out = append(out, sel.Choice...)
	out = append(out, sel.OpenEnded...)
	return out
}

// DailyReviewItems selects today's review slice for a book. A pending
// curveball, if any, is always taken first and reserves a slot in its
// type bucket; ordinary items fill the remaining capacity oldest first,
// never repeating an (idea, concept) pair.
func (s *Service) DailyReviewItems(ctx context.Context, bookID uuid.UUID) (DailySelection, error) {
	pending, err := s.repo.PendingByBook(ctx, bookID)
	if err != nil {
		return DailySelection{}, err
	}

	var sel DailySelection
	seen := map[ideaConcept]bool{}

	// At most one curveball per selection, oldest first.
	rest := pending
	for i, item := range pending {
		if !item.IsCurveball {
			continue
		}
		if item.QuestionType.IsChoice() {
			sel.Choice = append(sel.Choice, item)
		} else {
			sel.OpenEnded = append(sel.OpenEnded, item)
		}
		seen[ideaConcept{item.IdeaID, item.ConceptKey}] = true
		rest = append(append([]*store.ReviewQueueItem{}, pending[:i]...), pending[i+1:]...)
		break
	}

	for _, item := range rest {
		if item.IsCurveball {
			continue
		}
		key := ideaConcept{item.IdeaID, item.ConceptKey}
		if seen[key] {
			continue
		}
		if item.QuestionType.IsChoice() {
			if len(sel.Choice) >= MaxDailyChoice {
				continue
			}
			sel.Choice = append(sel.Choice, item)
		} else {
			if len(sel.OpenEnded) >= MaxDailyOpenEnded {
				continue
			}
			sel.OpenEnded = append(sel.OpenEnded, item)
		}
		seen[key] = true
	}

	s.log.Debug("daily review selection",
		"book", bookID, "choice", len(sel.Choice), "open_ended", len(sel.OpenEnded))
	return sel, nil
}

type ideaConcept struct {
	ideaID     uuid.UUID
	conceptKey string
}

// MarkCompleted flips the given items to completed. Idempotent; items
// are kept for history, never deleted.
func (s *Service) MarkCompleted(ctx context.Context, items []*store.ReviewQueueItem) error {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return s.repo.MarkCompleted(ctx, ids)
}

// Statistics is the pending backlog size split by question pool.
type Statistics struct {
	PendingChoice    int64
	PendingOpenEnded int64
}

// QueueStatistics returns pending counts for display.
func (s *Service) QueueStatistics(ctx context.Context, bookID uuid.UUID) (Statistics, error) {
	mcq, openEnded, err := s.repo.PendingCounts(ctx, bookID)
	if err != nil {
		return Statistics{}, err
	}
	return Statistics{PendingChoice: mcq, PendingOpenEnded: openEnded}, nil
}
