package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/abhisek/bookwise/internal/logger"
)

// ReviewStateRepo persists spaced-repetition review schedules.
type ReviewStateRepo interface {
	// Get returns the review state for an idea, or nil if none exists.
	Get(ctx context.Context, ideaID, bookID uuid.UUID) (*IdeaReviewState, error)

	// Upsert creates or replaces the review state for its idea.
	Upsert(ctx context.Context, state *IdeaReviewState) error

	// ByBook returns all review states for a book.
	ByBook(ctx context.Context, bookID uuid.UUID) ([]*IdeaReviewState, error)
}

type reviewStateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewReviewStateRepo creates a ReviewStateRepo.
func NewReviewStateRepo(db *gorm.DB, log *logger.Logger) ReviewStateRepo {
	return &reviewStateRepo{db: db, log: log.With("repo", "reviewstate")}
}

func (r *reviewStateRepo) Get(ctx context.Context, ideaID, bookID uuid.UUID) (*IdeaReviewState, error) {
	var state IdeaReviewState
	err := r.db.WithContext(ctx).
		Where("idea_id = ? AND book_id = ?", ideaID, bookID).
		First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get review state: %w", err)
	}
	return &state, nil
}

func (r *reviewStateRepo) Upsert(ctx context.Context, state *IdeaReviewState) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing IdeaReviewState
		err := tx.Where("idea_id = ? AND book_id = ?", state.IdeaID, state.BookID).
			First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if state.ID == uuid.Nil {
				state.ID = uuid.New()
			}
			if err := tx.Create(state).Error; err != nil {
				return fmt.Errorf("create review state: %w", err)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("load review state: %w", err)
		}
		state.ID = existing.ID
		if err := tx.Save(state).Error; err != nil {
			return fmt.Errorf("save review state: %w", err)
		}
		return nil
	})
}

func (r *reviewStateRepo) ByBook(ctx context.Context, bookID uuid.UUID) ([]*IdeaReviewState, error) {
	var out []*IdeaReviewState
	err := r.db.WithContext(ctx).
		Where("book_id = ?", bookID).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("review states by book: %w", err)
	}
	return out, nil
}
