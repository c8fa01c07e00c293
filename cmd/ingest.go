package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/bookwise/internal/extraction"
	"github.com/abhisek/bookwise/internal/llm"
	"github.com/abhisek/bookwise/internal/store"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <book title>",
	Short: "Extract a book's ideas and add it to the library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := args[0]
		author, _ := cmd.Flags().GetString("author")

		st, _, log, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer st.Close()
		defer log.Sync()

		ctx := cmd.Context()
		library := st.LibraryRepo()

		existing, err := library.BookByTitle(ctx, title)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("book %q already ingested", title)
		}

		provider, err := llm.NewProviderFromEnv(ctx, st.LLMLogRepo(), log)
		if err != nil {
			return fmt.Errorf("LLM provider not configured: %w", err)
		}

		fmt.Printf("Extracting ideas from %q...\n", title)
		stubs, err := extraction.NewLLMExtractor(provider).ExtractIdeas(ctx, title)
		if err != nil {
			return fmt.Errorf("extract ideas: %w", err)
		}

		book := &store.Book{Title: title, Author: author}
		if err := library.CreateBook(ctx, book); err != nil {
			return err
		}
		ideas := make([]*store.Idea, len(stubs))
		for i, stub := range stubs {
			ideas[i] = &store.Idea{Title: stub.Title, Summary: stub.Summary}
		}
		if err := library.ReplaceIdeas(ctx, book.ID, ideas); err != nil {
			return err
		}

		fmt.Printf("Ingested %q with %d ideas:\n", title, len(ideas))
		for i, idea := range ideas {
			fmt.Printf("  %2d. %s\n", i+1, idea.Title)
		}
		return nil
	},
}

func init() {
	ingestCmd.Flags().String("author", "", "Book author")
}
