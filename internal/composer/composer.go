// Package composer builds the question plan for one lesson from the
// coverage, review queue, and mastery-gate signals.
package composer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/bookwise/internal/curveball"
	"github.com/abhisek/bookwise/internal/logger"
	"github.com/abhisek/bookwise/internal/questiongen"
	"github.com/abhisek/bookwise/internal/reviewqueue"
	"github.com/abhisek/bookwise/internal/spacedrep"
	"github.com/abhisek/bookwise/internal/store"
	"github.com/abhisek/bookwise/internal/taxonomy"
)

// Config bounds the composer's own candidate selection. These limits
// are separate from the review queue's daily caps.
type Config struct {
	// MaxReviewIdeas caps how many due review ideas one lesson pulls in.
	MaxReviewIdeas int

	// MaxCorrectionConcepts caps how many queued correction concepts
	// one lesson pulls in.
	MaxCorrectionConcepts int

	// GenerateAttempts bounds retries per generation call before the
	// placeholder fallback.
	GenerateAttempts int
}

// DefaultConfig returns the standard composer limits.
func DefaultConfig() Config {
	return Config{
		MaxReviewIdeas:        2,
		MaxCorrectionConcepts: 2,
		GenerateAttempts:      3,
	}
}

// Composer assembles lesson plans.
type Composer struct {
	library   store.LibraryRepo
	queue     *reviewqueue.Service
	gate      *curveball.Scheduler
	spaced    *spacedrep.Scheduler
	generator questiongen.Generator
	fallback  questiongen.Generator
	cfg       Config
	log       *logger.Logger
	now       func() time.Time
}

// New creates a Composer.
func New(library store.LibraryRepo, queue *reviewqueue.Service, gate *curveball.Scheduler, spaced *spacedrep.Scheduler, generator questiongen.Generator, cfg Config, log *logger.Logger) *Composer {
	return &Composer{
		library:   library,
		queue:     queue,
		gate:      gate,
		spaced:    spaced,
		generator: generator,
		fallback:  questiongen.Placeholder{},
		cfg:       cfg,
		log:       log.With("service", "composer"),
		now:       time.Now,
	}
}

// WithClock overrides the composer clock. Test hook.
func (c *Composer) WithClock(now func() time.Time) *Composer {
	c.now = now
	return c
}

// BuildPlan composes the lesson for the 1-indexed lesson number.
// Lessons map 1:1 to ideas in book order: lesson N introduces the Nth
// idea. Candidate-selection failures degrade to the safe default mix
// rather than blocking the session; only a missing idea is fatal.
func (c *Composer) BuildPlan(ctx context.Context, bookID uuid.UUID, lessonNumber int) (*Plan, error) {
	if lessonNumber < 1 {
		return nil, fmt.Errorf("lesson number must be >= 1, got %d", lessonNumber)
	}

	idea, err := c.library.IdeaAt(ctx, bookID, lessonNumber)
	if err != nil {
		return nil, err
	}
	if idea == nil {
		return nil, fmt.Errorf("book has no idea at position %d", lessonNumber)
	}
	book, err := c.library.BookByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	bookTitle := ""
	if book != nil {
		bookTitle = book.Title
	}

	// Queue any curveballs that came due since the last session.
	if _, err := c.gate.EnsureQueuedIfDue(ctx, bookID); err != nil {
		c.log.Error("curveball scheduling failed", "book", bookID, "error", err)
	}

	corrections := c.correctionCandidates(ctx, bookID)
	reviews := c.reviewCandidates(ctx, bookID)

	mix := MixFor(lessonNumber, len(reviews) > 0, len(corrections) > 0)
	plan := &Plan{LessonNumber: lessonNumber, Idea: idea, Mix: mix}

	c.fillNew(ctx, plan, idea, bookTitle)
	c.fillReviews(ctx, plan, reviews, bookTitle)
	c.fillCorrections(ctx, plan, corrections, bookTitle)

	c.log.Info("lesson composed",
		"book", bookID, "lesson", lessonNumber,
		"new", mix.New, "review", mix.Review, "correction", mix.Correction,
		"fallback", plan.Fallback)
	return plan, nil
}

// correctionCandidates returns up to MaxCorrectionConcepts pending
// items. A selected curveball is moved to the front so no truncation
// here or in fillCorrections can drop it behind ordinary corrections.
// Failures degrade to none.
func (c *Composer) correctionCandidates(ctx context.Context, bookID uuid.UUID) []*store.ReviewQueueItem {
	sel, err := c.queue.DailyReviewItems(ctx, bookID)
	if err != nil {
		c.log.Error("review queue query failed", "book", bookID, "error", err)
		return nil
	}

	all := sel.Items()
	items := make([]*store.ReviewQueueItem, 0, len(all))
	for _, item := range all {
		if item.IsCurveball {
			items = append(items, item)
		}
	}
	for _, item := range all {
		if !item.IsCurveball {
			items = append(items, item)
		}
	}
	if len(items) > c.cfg.MaxCorrectionConcepts {
		items = items[:c.cfg.MaxCorrectionConcepts]
	}
	return items
}

// reviewCandidates returns up to MaxReviewIdeas due ideas, most overdue
// first. Failures degrade to none.
func (c *Composer) reviewCandidates(ctx context.Context, bookID uuid.UUID) []*store.IdeaReviewState {
	due, err := c.spaced.DueIdeas(ctx, bookID, c.now())
	if err != nil {
		c.log.Error("spaced review query failed", "book", bookID, "error", err)
		return nil
	}
	if len(due) > c.cfg.MaxReviewIdeas {
		due = due[:c.cfg.MaxReviewIdeas]
	}
	return due
}

func (c *Composer) fillNew(ctx context.Context, plan *Plan, idea *store.Idea, bookTitle string) {
	if plan.Mix.New == 0 {
		return
	}
	questions, fellBack := c.generate(ctx, questiongen.GenerateInput{
		IdeaTitle:   idea.Title,
		IdeaSummary: idea.Summary,
		BookTitle:   bookTitle,
		Count:       plan.Mix.New,
		Difficulty:  taxonomy.DifficultyMedium,
	})
	plan.NewQuestions = questions
	plan.Fallback = plan.Fallback || fellBack
}

func (c *Composer) fillReviews(ctx context.Context, plan *Plan, states []*store.IdeaReviewState, bookTitle string) {
	if plan.Mix.Review == 0 || len(states) == 0 {
		return
	}
	titles := c.ideaIndex(ctx, states)

	// Spread the review count across the due ideas round-robin.
	for i := 0; i < plan.Mix.Review; i++ {
		state := states[i%len(states)]
		idea := titles[state.IdeaID]
		if idea == nil {
			continue
		}
		questions, fellBack := c.generate(ctx, questiongen.GenerateInput{
			IdeaTitle:   idea.Title,
			IdeaSummary: idea.Summary,
			BookTitle:   bookTitle,
			Count:       1,
			Difficulty:  taxonomy.DifficultyMedium,
		})
		plan.Fallback = plan.Fallback || fellBack
		if len(questions) > 0 {
			plan.Reviews = append(plan.Reviews, ReviewSlot{Idea: idea, Question: questions[0]})
		}
	}
}

func (c *Composer) fillCorrections(ctx context.Context, plan *Plan, items []*store.ReviewQueueItem, bookTitle string) {
	if plan.Mix.Correction == 0 {
		return
	}
	count := plan.Mix.Correction
	if count > len(items) {
		count = len(items)
	}
	for _, item := range items[:count] {
		input := questiongen.GenerateInput{
			IdeaTitle:    item.IdeaTitle,
			BookTitle:    bookTitle,
			Count:        1,
			Difficulty:   item.Difficulty,
			QuestionType: item.QuestionType,
			SeedText:     item.SeedQuestionText,
		}
		if facet, err := taxonomy.ParseFacet(item.FacetTag); err == nil {
			input.Facet = facet
			input.HasFacet = true
		}
		questions, fellBack := c.generate(ctx, input)
		plan.Fallback = plan.Fallback || fellBack
		if len(questions) > 0 {
			plan.Corrections = append(plan.Corrections, CorrectionSlot{Item: item, Question: questions[0]})
		}
	}
}

// generate runs the generator with bounded retries, then falls back to
// placeholder questions so the lesson can always proceed.
func (c *Composer) generate(ctx context.Context, input questiongen.GenerateInput) ([]*questiongen.Question, bool) {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.GenerateAttempts; attempt++ {
		questions, err := c.generator.Generate(ctx, input)
		if err == nil {
			return questions, false
		}
		lastErr = err
		c.log.Warn("question generation failed",
			"idea", input.IdeaTitle, "attempt", attempt, "error", err)
	}

	c.log.Error("question generation exhausted, using placeholders",
		"idea", input.IdeaTitle, "error", lastErr)
	questions, err := c.fallback.Generate(ctx, input)
	if err != nil {
		// Placeholder never fails in practice.
		return nil, true
	}
	return questions, true
}

// ideaIndex loads the book's ideas keyed by id for review slots.
func (c *Composer) ideaIndex(ctx context.Context, states []*store.IdeaReviewState) map[uuid.UUID]*store.Idea {
	index := map[uuid.UUID]*store.Idea{}
	if len(states) == 0 {
		return index
	}
	ideas, err := c.library.IdeasByBook(ctx, states[0].BookID)
	if err != nil {
		c.log.Error("idea lookup failed", "book", states[0].BookID, "error", err)
		return index
	}
	for _, idea := range ideas {
		index[idea.ID] = idea
	}
	return index
}
