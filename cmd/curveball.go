package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/bookwise/internal/curveball"
	"github.com/abhisek/bookwise/internal/spacedrep"
)

var curveballCmd = &cobra.Command{
	Use:   "curveball",
	Short: "Inspect and drive the mastery gate",
}

var curveballStatusCmd = &cobra.Command{
	Use:   "status <book title>",
	Short: "Show each idea's mastery-gate state",
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

		gate := curveball.NewScheduler(st.CoverageRepo(), st.QueueRepo(), st.LibraryRepo(), cfg.Curveball.DelayDays, log)
		ideas, err := st.LibraryRepo().IdeasByBook(ctx, book.ID)
		if err != nil {
			return err
		}

		for _, idea := range ideas {
			state, err := gate.StateFor(ctx, idea.ID, book.ID)
			if err != nil {
				return err
			}
			fmt.Printf("%2d. %-40s %s\n", idea.Position, idea.Title, state)
		}
		return nil
	},
}

var curveballForceDueCmd = &cobra.Command{
	Use:   "force-due <book title>",
	Short: "Move all scheduled curveball due dates into the past (dev/test)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, cfg, log, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer st.Close()
		defer log.Sync()

		book, err := lookupBook(cmd, st, args[0])
		if err != nil {
			return err
		}

		gate := curveball.NewScheduler(st.CoverageRepo(), st.QueueRepo(), st.LibraryRepo(), cfg.Curveball.DelayDays, log)
		n, err := gate.ForceDue(cmd.Context(), book.ID)
		if err != nil {
			return err
		}
		fmt.Printf("Forced %d curveball(s) due. The next plan will queue them.\n", n)
		return nil
	},
}

var curveballResultCmd = &cobra.Command{
	Use:   "result <book title>",
	Short: "Record a presented curveball's outcome",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		position, _ := cmd.Flags().GetInt("idea")
		passed, _ := cmd.Flags().GetBool("passed")

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
		idea, err := st.LibraryRepo().IdeaAt(ctx, book.ID, position)
		if err != nil {
			return err
		}
		if idea == nil {
			return fmt.Errorf("book has no idea at position %d", position)
		}

		gate := curveball.NewScheduler(st.CoverageRepo(), st.QueueRepo(), st.LibraryRepo(), cfg.Curveball.DelayDays, log)
		if err := gate.MarkResult(ctx, idea.ID, book.ID, passed); err != nil {
			return err
		}

		// The curveball counts as a review touch on the idea's schedule.
		spaced := spacedrep.NewScheduler(st.ReviewStateRepo(), log)
		if err := spaced.RecordReview(ctx, idea.ID, book.ID, passed, time.Now()); err != nil {
			return err
		}

		if passed {
			fmt.Printf("%s: curveball passed. Mastery is durable.\n", idea.Title)
		} else {
			fmt.Printf("%s: curveball failed. Rescheduled %d day(s) out.\n",
				idea.Title, cfg.Curveball.DelayDays)
		}
		return nil
	},
}

func init() {
	curveballResultCmd.Flags().Int("idea", 1, "1-indexed idea position in the book")
	curveballResultCmd.Flags().Bool("passed", false, "Whether the curveball was answered correctly")

	curveballCmd.AddCommand(curveballStatusCmd)
	curveballCmd.AddCommand(curveballForceDueCmd)
	curveballCmd.AddCommand(curveballResultCmd)
}
