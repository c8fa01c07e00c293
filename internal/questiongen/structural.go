package questiongen

import "github.com/abhisek/bookwise/internal/taxonomy"

// StructuralValidator checks that required fields are present, within
// length limits, and consistent with the question type.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *Question, _ GenerateInput) *ValidationError {
	if q.Text == "" {
		return v.fail("question text is empty")
	}
	if len(q.Text) > 500 {
		return v.fail("question text exceeds 500 characters")
	}
	if q.Explanation == "" {
		return v.fail("explanation is empty")
	}
	if len(q.Explanation) > 1000 {
		return v.fail("explanation exceeds 1000 characters")
	}
	if !q.QuestionType.Valid() {
		return v.fail("unknown question type")
	}

	if q.QuestionType == taxonomy.TypeOpenResponse {
		if len(q.Options) != 0 {
			return v.fail("open_response must not carry options")
		}
		return nil
	}

	if len(q.Options) != 4 {
		return v.fail("choice questions need exactly 4 options")
	}
	for _, idx := range q.CorrectIndices {
		if idx < 0 || idx >= len(q.Options) {
			return v.fail("correct index out of range")
		}
	}
	switch q.QuestionType {
	case taxonomy.TypeSingleAnswer:
		if len(q.CorrectIndices) != 1 {
			return v.fail("single_answer needs exactly one correct index")
		}
	case taxonomy.TypeMultiAnswer:
		if len(q.CorrectIndices) < 2 || len(q.CorrectIndices) > 3 {
			return v.fail("multi_answer needs two or three correct indices")
		}
	}
	return nil
}

func (v *StructuralValidator) fail(msg string) *ValidationError {
	return &ValidationError{Validator: v.Name(), Message: msg, Retryable: true}
}
