package quiz

import (
	"sort"
)

// QuestionResult is the per-question outcome in a quiz result.
type QuestionResult struct {
	QuestionSeq int
	Question    string
	UserAnswer  string
	IsCorrect   bool
}

// Result is the aggregated outcome of a user's quiz for one daily read.
type Result struct {
	TotalQuestions int
	CorrectCount   int
	Results        []QuestionResult
}

// Passed reports whether the correct-answer threshold was met.
func (r Result) Passed(minimalCorrect int) bool {
	return r.CorrectCount >= minimalCorrect
}

// LatestAnswers reduces the full answer history to the current answer per
// question: within each question group the row with the highest retry
// sequence wins.
func LatestAnswers(answers []*QuizAnswer) map[int]*QuizAnswer {
	latest := make(map[int]*QuizAnswer, len(answers))
	for _, a := range answers {
		if cur, ok := latest[a.QuestionSeq]; !ok || a.RetrySeq > cur.RetrySeq {
			latest[a.QuestionSeq] = a
		}
	}
	return latest
}

// Aggregate computes the quiz result for the given questions and answer
// history. It is a pure function of its inputs: recomputing it without new
// submissions yields identical output. Questions are reported in ascending
// question sequence; unanswered questions count as incorrect with an empty
// answer.
func Aggregate(questions []*QuizQuestion, answers []*QuizAnswer) Result {
	latest := LatestAnswers(answers)

	sorted := make([]*QuizQuestion, len(questions))
	copy(sorted, questions)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].QuestionSeq < sorted[j].QuestionSeq
	})

	result := Result{
		TotalQuestions: len(sorted),
		Results:        make([]QuestionResult, 0, len(sorted)),
	}

	for _, q := range sorted {
		var userAnswer string
		if a, ok := latest[q.QuestionSeq]; ok {
			userAnswer = a.Answer
		}

		correct := userAnswer != "" && q.IsCorrect(userAnswer)
		if correct {
			result.CorrectCount++
		}

		result.Results = append(result.Results, QuestionResult{
			QuestionSeq: q.QuestionSeq,
			Question:    q.Question,
			UserAnswer:  userAnswer,
			IsCorrect:   correct,
		})
	}

	return result
}
