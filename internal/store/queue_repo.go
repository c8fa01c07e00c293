package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/abhisek/bookwise/internal/logger"
	"github.com/abhisek/bookwise/internal/taxonomy"
)

// QueueRepo manages ReviewQueueItems. Items are append-and-complete:
// nothing is ever deleted.
type QueueRepo interface {
	Create(ctx context.Context, item *ReviewQueueItem) error

	// PendingByBook returns all not-yet-completed items for a book,
	// oldest first.
	PendingByBook(ctx context.Context, bookID uuid.UUID) ([]*ReviewQueueItem, error)

	// ExistsPending reports whether a pending non-curveball item already
	// exists for (ideaID, conceptKey), regardless of question type.
	ExistsPending(ctx context.Context, ideaID uuid.UUID, conceptKey string) (bool, error)

	// ExistsPendingCurveball reports whether a pending curveball item
	// exists for the idea.
	ExistsPendingCurveball(ctx context.Context, ideaID uuid.UUID) (bool, error)

	// MarkCompleted flips IsCompleted for the given item IDs. Idempotent.
	MarkCompleted(ctx context.Context, ids []uuid.UUID) error

	// PendingCounts returns pending item counts split into the
	// single/multi-answer pool and the open-response pool.
	PendingCounts(ctx context.Context, bookID uuid.UUID) (mcq int64, openEnded int64, err error)
}

type queueRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewQueueRepo creates a QueueRepo.
func NewQueueRepo(db *gorm.DB, log *logger.Logger) QueueRepo {
	return &queueRepo{db: db, log: log.With("repo", "queue")}
}

func (r *queueRepo) Create(ctx context.Context, item *ReviewQueueItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now()
	}
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("create queue item: %w", err)
	}
	return nil
}

func (r *queueRepo) PendingByBook(ctx context.Context, bookID uuid.UUID) ([]*ReviewQueueItem, error) {
	var out []*ReviewQueueItem
	err := r.db.WithContext(ctx).
		Where("book_id = ? AND is_completed = ?", bookID, false).
		Order("added_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("pending by book: %w", err)
	}
	return out, nil
}

func (r *queueRepo) ExistsPending(ctx context.Context, ideaID uuid.UUID, conceptKey string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&ReviewQueueItem{}).
		Where("idea_id = ? AND concept_key = ? AND is_completed = ? AND is_curveball = ?",
			ideaID, conceptKey, false, false).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("exists pending: %w", err)
	}
	return n > 0, nil
}

func (r *queueRepo) ExistsPendingCurveball(ctx context.Context, ideaID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&ReviewQueueItem{}).
		Where("idea_id = ? AND is_completed = ? AND is_curveball = ?", ideaID, false, true).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("exists pending curveball: %w", err)
	}
	return n > 0, nil
}

func (r *queueRepo) MarkCompleted(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	now := time.Now()
	err := r.db.WithContext(ctx).
		Model(&ReviewQueueItem{}).
		Where("id IN ? AND is_completed = ?", ids, false).
		Updates(map[string]any{"is_completed": true, "completed_at": now}).Error
	if err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	return nil
}

func (r *queueRepo) PendingCounts(ctx context.Context, bookID uuid.UUID) (int64, int64, error) {
	var mcq, openEnded int64
	base := r.db.WithContext(ctx).
		Model(&ReviewQueueItem{}).
		Where("book_id = ? AND is_completed = ?", bookID, false)

	err := base.Session(&gorm.Session{}).
		Where("question_type IN ?", []taxonomy.QuestionType{taxonomy.TypeSingleAnswer, taxonomy.TypeMultiAnswer}).
		Count(&mcq).Error
	if err != nil {
		return 0, 0, fmt.Errorf("pending mcq count: %w", err)
	}

	err = base.Session(&gorm.Session{}).
		Where("question_type = ?", taxonomy.TypeOpenResponse).
		Count(&openEnded).Error
	if err != nil {
		return 0, 0, fmt.Errorf("pending open-ended count: %w", err)
	}
	return mcq, openEnded, nil
}
