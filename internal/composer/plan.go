package composer

import (
	"github.com/abhisek/bookwise/internal/questiongen"
	"github.com/abhisek/bookwise/internal/store"
)

// Category is the reason a question is in the lesson.
type Category string

const (
	CategoryNew        Category = "new"
	CategoryReview     Category = "review"
	CategoryCorrection Category = "correction"
)

// Mix is the per-category question counts for one lesson.
type Mix struct {
	New        int
	Review     int
	Correction int
}

// Total returns the lesson's overall question count.
func (m Mix) Total() int { return m.New + m.Review + m.Correction }

// DefaultMix is the safe fallback: a lesson can always run as pure
// introduction.
func DefaultMix() Mix { return Mix{New: 8} }

// MixFor decides the question mix from the lesson number and what
// material exists. Lesson 1 is pure introduction. Lessons 2 and 3 admit
// corrections but deliberately hold back spaced review until the
// learner has a base of covered ideas. From lesson 4 on, both mix in.
func MixFor(lessonNumber int, hasReview, hasCorrection bool) Mix {
	switch {
	case lessonNumber <= 1:
		return Mix{New: 8}
	case lessonNumber <= 3:
		if hasCorrection {
			return Mix{New: 6, Correction: 2}
		}
		return Mix{New: 8}
	default:
		switch {
		case hasReview && hasCorrection:
			return Mix{New: 5, Review: 2, Correction: 1}
		case hasReview:
			return Mix{New: 6, Review: 2}
		case hasCorrection:
			return Mix{New: 6, Correction: 2}
		default:
			return Mix{New: 8}
		}
	}
}

// ReviewSlot is one spaced-review question in the plan.
type ReviewSlot struct {
	Idea     *store.Idea
	Question *questiongen.Question
}

// CorrectionSlot is one correction question in the plan, tied to the
// queue item it answers. The caller marks the item completed once the
// question is actually presented.
type CorrectionSlot struct {
	Item     *store.ReviewQueueItem
	Question *questiongen.Question
}

// Plan is a composed lesson, ready to present.
type Plan struct {
	LessonNumber int

	// Idea is the new idea this lesson introduces.
	Idea *store.Idea

	Mix Mix

	NewQuestions []*questiongen.Question
	Reviews      []ReviewSlot
	Corrections  []CorrectionSlot

	// Fallback reports that generation degraded to placeholder
	// questions somewhere in the plan.
	Fallback bool
}
