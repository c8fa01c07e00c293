package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/bookwise/internal/coverage"
	"github.com/abhisek/bookwise/internal/reviewqueue"
	"github.com/abhisek/bookwise/internal/spacedrep"
	"github.com/abhisek/bookwise/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats <book title>",
	Short: "Show coverage, queue, and review statistics for a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, cfg, log, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer st.Close()
		defer log.Sync()

		ctx := cmd.Context()
		book, err := lookupBook(cmd, st, args[0])
		if err != nil {
			return err
		}

		library := st.LibraryRepo()
		ideas, err := library.IdeasByBook(ctx, book.ID)
		if err != nil {
			return err
		}

		tracker := coverage.NewService(st.CoverageRepo(), cfg.Curveball.DelayDays, log)
		bookPct, err := tracker.BookCoverage(ctx, book.ID, len(ideas))
		if err != nil {
			return err
		}

		covs, err := st.CoverageRepo().ByBook(ctx, book.ID)
		if err != nil {
			return err
		}
		covByIdea := map[string]*store.IdeaCoverage{}
		for _, cov := range covs {
			covByIdea[cov.IdeaID.String()] = cov
		}

		sep := strings.Repeat("─", 72)
		fmt.Printf("%s — %d ideas, %.0f%% fully covered\n", book.Title, len(ideas), bookPct)
		fmt.Println(sep)
		fmt.Printf("%3s  %-36s  %8s  %8s  %s\n", "#", "Idea", "Coverage", "Accuracy", "Curveball")
		fmt.Println(sep)
		for _, idea := range ideas {
			cov := covByIdea[idea.ID.String()]
			if cov == nil {
				fmt.Printf("%3d  %-36s  %8s  %8s  %s\n",
					idea.Position, truncate(idea.Title, 36), "-", "-", "-")
				continue
			}
			gate := "-"
			switch {
			case cov.CurveballPassed:
				gate = "passed"
			case cov.CurveballDueAt != nil:
				gate = "due " + cov.CurveballDueAt.Format("2006-01-02")
			}
			fmt.Printf("%3d  %-36s  %7.0f%%  %7.0f%%  %s\n",
				idea.Position, truncate(idea.Title, 36),
				cov.CoveragePercentage, cov.CurrentAccuracy, gate)
		}

		queue := reviewqueue.NewService(st.QueueRepo(), log)
		qstats, err := queue.QueueStatistics(ctx, book.ID)
		if err != nil {
			return err
		}
		fmt.Println(sep)
		fmt.Printf("Review backlog: %d choice, %d open-ended\n",
			qstats.PendingChoice, qstats.PendingOpenEnded)

		spaced := spacedrep.NewScheduler(st.ReviewStateRepo(), log)
		due, err := spaced.DueIdeas(ctx, book.ID, time.Now())
		if err != nil {
			return err
		}
		fmt.Printf("Spaced reviews due: %d\n", len(due))
		return nil
	},
}

// truncate cuts s to max runes, never splitting a multi-byte character.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
