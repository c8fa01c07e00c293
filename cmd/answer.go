package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/bookwise/internal/coverage"
	"github.com/abhisek/bookwise/internal/reviewqueue"
	"github.com/abhisek/bookwise/internal/spacedrep"
	"github.com/abhisek/bookwise/internal/taxonomy"
)

var answerCmd = &cobra.Command{
	Use:   "answer <book title>",
	Short: "Record the outcome of an answered question",
	Long: `Record one answered question against an idea's coverage.

Correct answers cover the question's facet; wrong answers queue the
concept for a later correction question. The first time all eight
facets are covered, the idea enters the spaced review schedule and a
curveball is scheduled.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		position, _ := cmd.Flags().GetInt("idea")
		facetName, _ := cmd.Flags().GetString("facet")
		difficultyName, _ := cmd.Flags().GetString("difficulty")
		correct, _ := cmd.Flags().GetBool("correct")
		questionID, _ := cmd.Flags().GetString("question-id")
		questionText, _ := cmd.Flags().GetString("text")
		questionTypeName, _ := cmd.Flags().GetString("type")

		facet, err := taxonomy.ParseFacet(facetName)
		if err != nil {
			return err
		}
		difficulty := taxonomy.Difficulty(difficultyName)
		questionType := taxonomy.QuestionType(questionTypeName)
		if !questionType.Valid() {
			return fmt.Errorf("unknown question type %q", questionTypeName)
		}

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

		tracker := coverage.NewService(st.CoverageRepo(), cfg.Curveball.DelayDays, log)
		conceptKey := taxonomy.ConceptKey(facet, difficulty)

		// The pre-read decides whether full coverage is a transition. A
		// wrong answer here could re-init the review schedule, so store
		// errors are fatal.
		wasCovered := false
		prior, err := st.CoverageRepo().Get(ctx, idea.ID, book.ID)
		if err != nil {
			return err
		}
		if prior != nil {
			wasCovered = prior.IsFullyCovered
		}

		cov, err := tracker.RecordAttempt(ctx, idea.ID, book.ID, coverage.Attempt{
			QuestionID:   questionID,
			ConceptKey:   conceptKey,
			Facet:        facet,
			IsCorrect:    correct,
			QuestionText: questionText,
		})
		if err != nil {
			return err
		}

		if !correct {
			queue := reviewqueue.NewService(st.QueueRepo(), log)
			_, err := queue.EnqueueMistakes(ctx, idea.ID, book.ID, idea.Title, book.Title,
				[]reviewqueue.IncorrectResponse{{
					ConceptKey:   conceptKey,
					Facet:        facet,
					Difficulty:   difficulty,
					QuestionType: questionType,
					QuestionText: questionText,
				}})
			if err != nil {
				return err
			}
		}

		// First full-coverage transition enters the review schedule.
		if cov.IsFullyCovered && !wasCovered && cov.CoveredAt != nil {
			spaced := spacedrep.NewScheduler(st.ReviewStateRepo(), log)
			if err := spaced.InitIdea(ctx, idea.ID, book.ID, *cov.CoveredAt); err != nil {
				return err
			}
		}

		fmt.Printf("%s — %.0f%% covered, accuracy %.0f%%\n",
			idea.Title, cov.CoveragePercentage, cov.CurrentAccuracy)
		if cov.IsFullyCovered && !wasCovered {
			fmt.Printf("Fully covered. Curveball due %s.\n",
				cov.CurveballDueAt.Format("2006-01-02"))
		}
		return nil
	},
}

func init() {
	answerCmd.Flags().Int("idea", 1, "1-indexed idea position in the book")
	answerCmd.Flags().String("facet", "", "Facet the question probed (recall, summarize, ...)")
	answerCmd.Flags().String("difficulty", "medium", "Question difficulty (easy, medium, hard)")
	answerCmd.Flags().String("type", "single_answer", "Question type (single_answer, multi_answer, open_response)")
	answerCmd.Flags().Bool("correct", false, "Whether the answer was correct")
	answerCmd.Flags().String("question-id", "", "Identifier of the originating question")
	answerCmd.Flags().String("text", "", "The question text (used to seed corrections)")
	_ = answerCmd.MarkFlagRequired("facet")
}
