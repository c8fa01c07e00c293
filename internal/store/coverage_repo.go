package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/abhisek/bookwise/internal/logger"
)

// CoverageRepo manages IdeaCoverage records and their owned
// MissedFacetRecords.
type CoverageRepo interface {
	// GetOrCreate returns the coverage record for (ideaID, bookID),
	// creating an empty one if none exists. Idempotent.
	GetOrCreate(ctx context.Context, ideaID, bookID uuid.UUID) (*IdeaCoverage, error)

	// Get returns the coverage record, or nil if none exists.
	Get(ctx context.Context, ideaID, bookID uuid.UUID) (*IdeaCoverage, error)

	// Mutate runs fn against the coverage record inside a transaction
	// scoped to the (ideaID, bookID) entity, then persists the record
	// and its missed-facet records. Two concurrent Mutate calls for the
	// same idea serialize; calls for different ideas are independent.
	Mutate(ctx context.Context, ideaID, bookID uuid.UUID, fn func(cov *IdeaCoverage) error) (*IdeaCoverage, error)

	// ByBook returns all coverage records for a book.
	ByBook(ctx context.Context, bookID uuid.UUID) ([]*IdeaCoverage, error)

	// CountFullyCovered returns how many ideas in the book have full
	// facet coverage.
	CountFullyCovered(ctx context.Context, bookID uuid.UUID) (int64, error)
}

type coverageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewCoverageRepo creates a CoverageRepo.
func NewCoverageRepo(db *gorm.DB, log *logger.Logger) CoverageRepo {
	return &coverageRepo{db: db, log: log.With("repo", "coverage")}
}

func (r *coverageRepo) GetOrCreate(ctx context.Context, ideaID, bookID uuid.UUID) (*IdeaCoverage, error) {
	cov, err := r.Get(ctx, ideaID, bookID)
	if err != nil {
		return nil, err
	}
	if cov != nil {
		return cov, nil
	}

	cov = &IdeaCoverage{
		ID:            uuid.New(),
		IdeaID:        ideaID,
		BookID:        bookID,
		CoveredFacets: []string{},
	}
	if err := r.db.WithContext(ctx).Create(cov).Error; err != nil {
		return nil, fmt.Errorf("create coverage: %w", err)
	}
	return cov, nil
}

func (r *coverageRepo) Get(ctx context.Context, ideaID, bookID uuid.UUID) (*IdeaCoverage, error) {
	var cov IdeaCoverage
	err := r.db.WithContext(ctx).
		Preload("MissedQuestions").
		Where("idea_id = ? AND book_id = ?", ideaID, bookID).
		First(&cov).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get coverage: %w", err)
	}
	return &cov, nil
}

func (r *coverageRepo) Mutate(ctx context.Context, ideaID, bookID uuid.UUID, fn func(cov *IdeaCoverage) error) (*IdeaCoverage, error) {
	var result *IdeaCoverage
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cov IdeaCoverage
		err := tx.Preload("MissedQuestions").
			Where("idea_id = ? AND book_id = ?", ideaID, bookID).
			First(&cov).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			cov = IdeaCoverage{
				ID:            uuid.New(),
				IdeaID:        ideaID,
				BookID:        bookID,
				CoveredFacets: []string{},
			}
			if err := tx.Create(&cov).Error; err != nil {
				return fmt.Errorf("create coverage: %w", err)
			}
		} else if err != nil {
			return fmt.Errorf("load coverage: %w", err)
		}

		if err := fn(&cov); err != nil {
			return err
		}

		// Persist the record and any new or changed missed-facet rows.
		if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(&cov).Error; err != nil {
			return fmt.Errorf("save coverage: %w", err)
		}
		result = &cov
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *coverageRepo) ByBook(ctx context.Context, bookID uuid.UUID) ([]*IdeaCoverage, error) {
	var out []*IdeaCoverage
	err := r.db.WithContext(ctx).
		Preload("MissedQuestions").
		Where("book_id = ?", bookID).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("coverage by book: %w", err)
	}
	return out, nil
}

func (r *coverageRepo) CountFullyCovered(ctx context.Context, bookID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&IdeaCoverage{}).
		Where("book_id = ? AND is_fully_covered = ?", bookID, true).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count fully covered: %w", err)
	}
	return n, nil
}
