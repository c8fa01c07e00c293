package spacedrep

import (
	"time"

	"github.com/abhisek/bookwise/internal/store"
)

// IsDue reports whether the idea is due for review (at or past the
// scheduled date).
func IsDue(rs *store.IdeaReviewState, now time.Time) bool {
	return !now.Before(rs.NextReviewAt)
}

// OverdueDays returns how many days past due the idea is. Returns 0 if
// not yet due.
func OverdueDays(rs *store.IdeaReviewState, now time.Time) float64 {
	if now.Before(rs.NextReviewAt) {
		return 0
	}
	return now.Sub(rs.NextReviewAt).Hours() / 24.0
}

// CurrentIntervalDays returns the idea's current interval in days.
func CurrentIntervalDays(rs *store.IdeaReviewState) int {
	if rs.Graduated {
		return GraduatedIntervalDays
	}
	if rs.Stage >= len(BaseIntervals) {
		return BaseIntervals[len(BaseIntervals)-1]
	}
	return BaseIntervals[rs.Stage]
}

// DaysUntilReview returns the number of days until the next review.
// Returns 0 if already due.
func DaysUntilReview(rs *store.IdeaReviewState, now time.Time) int {
	if IsDue(rs, now) {
		return 0
	}
	return int(rs.NextReviewAt.Sub(now).Hours()/24.0) + 1
}

// ReviewStatus describes an idea's review status for display.
type ReviewStatus string

const (
	ReviewNotDue    ReviewStatus = "not_due"
	ReviewDue       ReviewStatus = "due"
	ReviewOverdue   ReviewStatus = "overdue"
	ReviewGraduated ReviewStatus = "graduated"
)

// Status returns the review status for display. An idea is overdue once
// it exceeds half its current interval past the due date.
func Status(rs *store.IdeaReviewState, now time.Time) ReviewStatus {
	if rs.Graduated && !IsDue(rs, now) {
		return ReviewGraduated
	}
	if IsDue(rs, now) {
		grace := float64(CurrentIntervalDays(rs)) * 0.5 * 24.0
		threshold := rs.NextReviewAt.Add(time.Duration(grace * float64(time.Hour)))
		if now.After(threshold) {
			return ReviewOverdue
		}
		return ReviewDue
	}
	if rs.Graduated {
		return ReviewGraduated
	}
	return ReviewNotDue
}
