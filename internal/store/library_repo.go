package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/abhisek/bookwise/internal/logger"
)

// LibraryRepo manages books and their ordered ideas.
type LibraryRepo interface {
	CreateBook(ctx context.Context, book *Book) error

	// BookByTitle returns the book with the given title, or nil.
	BookByTitle(ctx context.Context, title string) (*Book, error)

	// BookByID returns the book, or nil.
	BookByID(ctx context.Context, id uuid.UUID) (*Book, error)

	// ReplaceIdeas replaces a book's idea list with the given ideas,
	// assigning 1-indexed positions in slice order.
	ReplaceIdeas(ctx context.Context, bookID uuid.UUID, ideas []*Idea) error

	// IdeasByBook returns the book's ideas in reading order.
	IdeasByBook(ctx context.Context, bookID uuid.UUID) ([]*Idea, error)

	// IdeaAt returns the idea at the 1-indexed position, or nil.
	IdeaAt(ctx context.Context, bookID uuid.UUID, position int) (*Idea, error)

	// CountIdeas returns the number of ideas in a book.
	CountIdeas(ctx context.Context, bookID uuid.UUID) (int64, error)
}

type libraryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewLibraryRepo creates a LibraryRepo.
func NewLibraryRepo(db *gorm.DB, log *logger.Logger) LibraryRepo {
	return &libraryRepo{db: db, log: log.With("repo", "library")}
}

func (r *libraryRepo) CreateBook(ctx context.Context, book *Book) error {
	if book.ID == uuid.Nil {
		book.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		return fmt.Errorf("create book: %w", err)
	}
	return nil
}

func (r *libraryRepo) BookByTitle(ctx context.Context, title string) (*Book, error) {
	var book Book
	err := r.db.WithContext(ctx).Where("title = ?", title).First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("book by title: %w", err)
	}
	return &book, nil
}

func (r *libraryRepo) BookByID(ctx context.Context, id uuid.UUID) (*Book, error) {
	var book Book
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("book by id: %w", err)
	}
	return &book, nil
}

func (r *libraryRepo) ReplaceIdeas(ctx context.Context, bookID uuid.UUID, ideas []*Idea) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", bookID).Delete(&Idea{}).Error; err != nil {
			return fmt.Errorf("clear ideas: %w", err)
		}
		for i, idea := range ideas {
			if idea.ID == uuid.Nil {
				idea.ID = uuid.New()
			}
			idea.BookID = bookID
			idea.Position = i + 1
		}
		if len(ideas) == 0 {
			return nil
		}
		if err := tx.Create(&ideas).Error; err != nil {
			return fmt.Errorf("create ideas: %w", err)
		}
		return nil
	})
}

func (r *libraryRepo) IdeasByBook(ctx context.Context, bookID uuid.UUID) ([]*Idea, error) {
	var out []*Idea
	err := r.db.WithContext(ctx).
		Where("book_id = ?", bookID).
		Order("position ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("ideas by book: %w", err)
	}
	return out, nil
}

func (r *libraryRepo) IdeaAt(ctx context.Context, bookID uuid.UUID, position int) (*Idea, error) {
	var idea Idea
	err := r.db.WithContext(ctx).
		Where("book_id = ? AND position = ?", bookID, position).
		First(&idea).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("idea at position: %w", err)
	}
	return &idea, nil
}

func (r *libraryRepo) CountIdeas(ctx context.Context, bookID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&Idea{}).
		Where("book_id = ?", bookID).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count ideas: %w", err)
	}
	return n, nil
}
