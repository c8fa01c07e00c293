package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/bookwise/internal/config"
	"github.com/abhisek/bookwise/internal/logger"
	"github.com/abhisek/bookwise/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "bookwise",
	Short: "Turn books into lasting understanding",
	Long:  "Bookwise — a personal-learning engine that splits a book into atomic ideas, drills each one across eight facets, and decides what you should practice next.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides BOOKWISE_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(answerCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(curveballCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves the configuration for a command invocation.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

// resolveDBPath returns the database path using --db flag (highest
// priority), then config/env, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// openEnv opens the store and logger for a command invocation.
func openEnv(cmd *cobra.Command) (*store.Store, config.Config, *logger.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, config.Config{}, nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, config.Config{}, nil, err
	}
	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, config.Config{}, nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath, log)
	if err != nil {
		return nil, config.Config{}, nil, fmt.Errorf("open database: %w", err)
	}
	return st, cfg, log, nil
}

// lookupBook resolves a book title to its record, failing clearly when
// the book was never ingested.
func lookupBook(cmd *cobra.Command, st *store.Store, title string) (*store.Book, error) {
	book, err := st.LibraryRepo().BookByTitle(cmd.Context(), title)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, fmt.Errorf("book %q not found; run `bookwise ingest %q` first", title, title)
	}
	return book, nil
}
