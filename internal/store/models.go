package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/bookwise/internal/taxonomy"
)

// Book is a book the learner is studying. Ideas hang off it in reading
// order.
type Book struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title     string    `gorm:"not null"`
	Author    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Idea is the atomic unit of content extracted from a book. Position is
// 1-indexed and determines the lesson number (lesson N introduces the
// Nth idea).
type Idea struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Book     *Book     `gorm:"constraint:OnDelete:CASCADE;foreignKey:BookID;references:ID"`
	Position int       `gorm:"not null"`
	Title    string    `gorm:"not null"`
	Summary  string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IdeaCoverage tracks which conceptual facets of an idea have been
// demonstrated. One record per (IdeaID, BookID) pair; callers go through
// CoverageRepo.GetOrCreate and must not create duplicates.
//
// CoveragePercentage, IsFullyCovered, and CurrentAccuracy are derived
// from the other fields and recomputed on every mutation; they are
// persisted only so queries can filter on them.
type IdeaCoverage struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	IdeaID uuid.UUID `gorm:"type:uuid;not null;index:idx_coverage_idea_book"`
	BookID uuid.UUID `gorm:"type:uuid;not null;index:idx_coverage_idea_book;index"`

	TotalSeen         int
	TotalCorrect      int
	MistakeCount      int
	MistakesCorrected int

	// CoveredFacets holds facet tag names answered correctly at least
	// once. Membership-only; it never shrinks.
	CoveredFacets []string `gorm:"serializer:json"`

	CoveragePercentage float64
	IsFullyCovered     bool `gorm:"index"`
	CurrentAccuracy    float64

	FirstAttemptAt *time.Time
	LastAttemptAt  *time.Time
	CoveredAt      *time.Time

	CurveballDueAt    *time.Time
	CurveballPassed   bool
	CurveballPassedAt *time.Time

	// MissedQuestions is owned exclusively by the coverage record and
	// cascades on delete.
	MissedQuestions []MissedFacetRecord `gorm:"constraint:OnDelete:CASCADE;foreignKey:CoverageID;references:ID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasFacet reports whether the facet tag is already covered.
func (c *IdeaCoverage) HasFacet(f taxonomy.Facet) bool {
	for _, name := range c.CoveredFacets {
		if name == f.String() {
			return true
		}
	}
	return false
}

// MissedFacetRecord is created the first time a concept key is missed
// for an idea and closed the first time that concept (or its originating
// question) is answered correctly. A concept missed again after
// correction gets a fresh record; corrected records are never reopened.
type MissedFacetRecord struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	CoverageID uuid.UUID `gorm:"type:uuid;not null;index"`

	QuestionID           string `gorm:"index"`
	ConceptKey           string `gorm:"not null;index"`
	OriginalQuestionText string

	FirstMissedAt time.Time
	RetryCount    int
	IsCorrected   bool
	CorrectedAt   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReviewQueueItem is a pending correction (or curveball) awaiting a
// session slot. Items reference their idea/book by identifier only and
// are never deleted; completion just flips IsCompleted.
type ReviewQueueItem struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	IdeaID uuid.UUID `gorm:"type:uuid;not null;index"`
	BookID uuid.UUID `gorm:"type:uuid;not null;index"`

	IdeaTitle string
	BookTitle string

	QuestionType taxonomy.QuestionType `gorm:"not null"`
	ConceptKey   string                `gorm:"not null"`
	Difficulty   taxonomy.Difficulty
	FacetTag     string

	SeedQuestionText string
	IsCurveball      bool

	AddedAt     time.Time `gorm:"index"`
	IsCompleted bool      `gorm:"index"`
	CompletedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IdeaReviewState is the spaced-repetition schedule for a fully covered
// idea: which interval stage it is on and when it is next due.
type IdeaReviewState struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	IdeaID uuid.UUID `gorm:"type:uuid;not null;index:idx_review_idea_book"`
	BookID uuid.UUID `gorm:"type:uuid;not null;index:idx_review_idea_book;index"`

	Stage           int
	ConsecutiveHits int
	Graduated       bool
	NextReviewAt    time.Time
	LastReviewAt    time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// LLMRequestLog is an audit row for a single LLM API call.
type LLMRequestLog struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	CreatedAt    time.Time
}
