package questiongen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a reading coach creating practice questions about ideas from non-fiction books.

Rules:
- Generate the requested number of questions for the given idea, facet, and difficulty.
- Each question must be answerable from understanding the idea itself; never require trivia about the book or author.
- Facets name what the question probes: recall, summarize, application, comparison, analysis, critique, synthesis, transfer.
- Choose "single_answer" or "multi_answer" format for questions with clear discrete answers (the reader picks from 4 options).
- Choose "open_response" for questions that need explanation in the reader's own words.
- For choice questions, provide exactly 4 options. Distractors should reflect plausible misunderstandings, not random statements.
- single_answer has exactly one correct option; multi_answer has two or three.
- Always include a brief model answer or rationale in the explanation field.
- When a seed question is given, test the same concept from a different angle; never repeat the seed verbatim.
- Do not repeat any question from the "already asked" list.`

// buildUserMessage constructs the user message from GenerateInput and
// Config limits.
func buildUserMessage(input GenerateInput, cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Book: %s\n", input.BookTitle)
	fmt.Fprintf(&b, "Idea: %s\n", input.IdeaTitle)
	if input.IdeaSummary != "" {
		fmt.Fprintf(&b, "Summary: %s\n", input.IdeaSummary)
	}
	fmt.Fprintf(&b, "Questions wanted: %d\n", input.Count)
	fmt.Fprintf(&b, "Difficulty: %s\n", input.Difficulty)
	if input.HasFacet {
		fmt.Fprintf(&b, "Facet: %s\n", input.Facet)
	} else {
		b.WriteString("Facet: spread across the taxonomy\n")
	}
	if input.QuestionType != "" {
		fmt.Fprintf(&b, "Required format: %s\n", input.QuestionType)
	}
	if input.SeedText != "" {
		fmt.Fprintf(&b, "\nSeed question (test the same concept differently):\n%s\n", input.SeedText)
	}

	b.WriteString("\nAlready asked for this idea:\n")
	b.WriteString(buildDedup(input.PriorQuestions, cfg.MaxPriorQuestions))

	return b.String()
}

// buildDedup formats prior questions for the prompt, respecting the max
// limit. Returns "None" if there are no prior questions.
func buildDedup(priorQuestions []string, max int) string {
	if len(priorQuestions) == 0 {
		return "None"
	}

	// Keep only the most recent N questions.
	if max > 0 && len(priorQuestions) > max {
		priorQuestions = priorQuestions[len(priorQuestions)-max:]
	}

	var b strings.Builder
	for i, q := range priorQuestions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return strings.TrimRight(b.String(), "\n")
}
