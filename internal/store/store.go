package store

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/abhisek/bookwise/internal/logger"
)

// Store holds the gorm handle and hands out repositories.
type Store struct {
	db  *gorm.DB
	log *logger.Logger
}

// Open connects to the SQLite database at dsn, applies recommended
// pragmas, and runs auto-migration.
func Open(dsn string, log *logger.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	return &Store{db: db, log: log}, nil
}

// DB returns the underlying gorm handle for raw queries.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// CoverageRepo returns a CoverageRepo backed by this store.
func (s *Store) CoverageRepo() CoverageRepo {
	return NewCoverageRepo(s.db, s.log)
}

// QueueRepo returns a QueueRepo backed by this store.
func (s *Store) QueueRepo() QueueRepo {
	return NewQueueRepo(s.db, s.log)
}

// ReviewStateRepo returns a ReviewStateRepo backed by this store.
func (s *Store) ReviewStateRepo() ReviewStateRepo {
	return NewReviewStateRepo(s.db, s.log)
}

// LibraryRepo returns a LibraryRepo backed by this store.
func (s *Store) LibraryRepo() LibraryRepo {
	return NewLibraryRepo(s.db, s.log)
}

// LLMLogRepo returns an LLMLogRepo backed by this store.
func (s *Store) LLMLogRepo() LLMLogRepo {
	return NewLLMLogRepo(s.db, s.log)
}

// autoMigrate creates or updates every table the store manages.
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Book{},
		&Idea{},
		&IdeaCoverage{},
		&MissedFacetRecord{},
		&ReviewQueueItem{},
		&IdeaReviewState{},
		&LLMRequestLog{},
	)
}

// applyPragmas configures SQLite for single-user performance.
func applyPragmas(db *gorm.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if err := db.Exec(p).Error; err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. BOOKWISE_DB environment variable
// 2. $XDG_DATA_HOME/bookwise/bookwise.db
// 3. ~/.local/share/bookwise/bookwise.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("BOOKWISE_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "bookwise", "bookwise.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
