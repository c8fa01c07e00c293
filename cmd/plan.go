package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/bookwise/internal/composer"
	"github.com/abhisek/bookwise/internal/curveball"
	"github.com/abhisek/bookwise/internal/llm"
	"github.com/abhisek/bookwise/internal/questiongen"
	"github.com/abhisek/bookwise/internal/reviewqueue"
	"github.com/abhisek/bookwise/internal/spacedrep"
	"github.com/abhisek/bookwise/internal/store"
)

var planCmd = &cobra.Command{
	Use:   "plan <book title>",
	Short: "Compose the next lesson for a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lesson, _ := cmd.Flags().GetInt("lesson")
		markDone, _ := cmd.Flags().GetBool("complete")

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

		var generator questiongen.Generator
		provider, err := llm.NewProviderFromEnv(ctx, st.LLMLogRepo(), log)
		if err != nil {
			fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
			fmt.Fprintln(os.Stderr, "Falling back to placeholder questions.")
			generator = questiongen.Placeholder{}
		} else {
			generator = questiongen.New(provider, questiongen.DefaultConfig())
		}

		queue := reviewqueue.NewService(st.QueueRepo(), log)
		gate := curveball.NewScheduler(st.CoverageRepo(), st.QueueRepo(), st.LibraryRepo(), cfg.Curveball.DelayDays, log)
		spaced := spacedrep.NewScheduler(st.ReviewStateRepo(), log)
		comp := composer.New(st.LibraryRepo(), queue, gate, spaced, generator, composer.Config{
			MaxReviewIdeas:        cfg.Composer.MaxReviewIdeas,
			MaxCorrectionConcepts: cfg.Composer.MaxCorrectionConcepts,
			GenerateAttempts:      cfg.Composer.GenerateAttempts,
		}, log)

		plan, err := comp.BuildPlan(ctx, book.ID, lesson)
		if err != nil {
			return err
		}

		printPlan(plan)

		if markDone && len(plan.Corrections) > 0 {
			items := make([]*store.ReviewQueueItem, 0, len(plan.Corrections))
			for _, slot := range plan.Corrections {
				items = append(items, slot.Item)
			}
			if err := queue.MarkCompleted(ctx, items); err != nil {
				return err
			}
			fmt.Printf("Marked %d correction item(s) completed.\n", len(items))
		}
		return nil
	},
}

func printPlan(plan *composer.Plan) {
	sep := strings.Repeat("─", 64)
	fmt.Printf("Lesson %d — %s\n", plan.LessonNumber, plan.Idea.Title)
	fmt.Printf("Mix: %d new / %d review / %d correction\n",
		plan.Mix.New, plan.Mix.Review, plan.Mix.Correction)
	if plan.Fallback {
		fmt.Println("(some questions are placeholders; generation was unavailable)")
	}

	fmt.Println(sep)
	fmt.Println("NEW")
	for i, q := range plan.NewQuestions {
		printQuestion(i+1, q.Text, q.Options)
	}
	if len(plan.Reviews) > 0 {
		fmt.Println(sep)
		fmt.Println("REVIEW")
		for i, slot := range plan.Reviews {
			fmt.Printf("  (%s)\n", slot.Idea.Title)
			printQuestion(i+1, slot.Question.Text, slot.Question.Options)
		}
	}
	if len(plan.Corrections) > 0 {
		fmt.Println(sep)
		fmt.Println("CORRECTION")
		for i, slot := range plan.Corrections {
			label := slot.Item.ConceptKey
			if slot.Item.IsCurveball {
				label += " [curveball]"
			}
			fmt.Printf("  (%s — %s)\n", slot.Item.IdeaTitle, label)
			printQuestion(i+1, slot.Question.Text, slot.Question.Options)
		}
	}
}

func printQuestion(n int, text string, options []string) {
	fmt.Printf("%3d. %s\n", n, text)
	for i, opt := range options {
		fmt.Printf("       %c) %s\n", 'a'+i, opt)
	}
}

func init() {
	planCmd.Flags().Int("lesson", 1, "1-indexed lesson number (lesson N introduces the Nth idea)")
	planCmd.Flags().Bool("complete", false, "Mark the plan's correction items completed after printing")
}
