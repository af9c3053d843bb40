package history

import (
	"math"
	"sort"
)

// Aggregation over an in-memory answer log. Pure functions, no I/O; all of
// them are total — empty input yields empty or zero output, never an error.

// CategoryAccuracy summarizes a category's latest answers. Derived fresh on
// every read, never persisted.
type CategoryAccuracy struct {
	CategoryID   int
	CorrectCount int
	// TotalCount is the number of distinct quizzes with at least one answer.
	TotalCount int
	// Percentage is round-half-up of 100 * CorrectCount / TotalCount,
	// or 0 when TotalCount is 0.
	Percentage int
}

// LatestByQuiz returns the latest answer per quiz. "Latest" is the event
// with the maximum AnsweredAt; the wire format has second resolution, so
// rapid retries can collide — ties are resolved by original list order
// (last in the list wins).
func LatestByQuiz(events []AnswerEvent) map[int]AnswerEvent {
	ordered := make([]AnswerEvent, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].AnsweredAt.Before(ordered[j].AnsweredAt)
	})

	latest := make(map[int]AnswerEvent, len(ordered))
	for _, e := range ordered {
		latest[e.QuizID] = e
	}
	return latest
}

// LatestAnswer returns the latest answer for one quiz, or ok=false if the
// quiz was never answered.
func LatestAnswer(events []AnswerEvent, quizID int) (AnswerEvent, bool) {
	e, ok := LatestByQuiz(events)[quizID]
	return e, ok
}

// HistoryForQuiz returns every answer for the quiz in storage order.
// Callers that need recency must sort explicitly.
func HistoryForQuiz(events []AnswerEvent, quizID int) []AnswerEvent {
	var out []AnswerEvent
	for _, e := range events {
		if e.QuizID == quizID {
			out = append(out, e)
		}
	}
	return out
}

// AccuracyForCategory computes the category's accuracy from latest answers
// only. A quiz answered wrong then later right counts as correct.
func AccuracyForCategory(events []AnswerEvent, categoryID int) CategoryAccuracy {
	latest := LatestByQuiz(filterCategory(events, categoryID))

	acc := CategoryAccuracy{CategoryID: categoryID, TotalCount: len(latest)}
	for _, e := range latest {
		if e.IsCorrect {
			acc.CorrectCount++
		}
	}
	if acc.TotalCount > 0 {
		acc.Percentage = int(math.Round(100 * float64(acc.CorrectCount) / float64(acc.TotalCount)))
	}
	return acc
}

// WrongQuizIDs returns the quizzes in the category whose latest answer is
// incorrect, sorted ascending. A quiz answered incorrectly then later
// correctly is excluded; a quiz never answered is absent.
func WrongQuizIDs(events []AnswerEvent, categoryID int) []int {
	latest := LatestByQuiz(filterCategory(events, categoryID))

	var ids []int
	for id, e := range latest {
		if !e.IsCorrect {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

func filterCategory(events []AnswerEvent, categoryID int) []AnswerEvent {
	var out []AnswerEvent
	for _, e := range events {
		if e.CategoryID == categoryID {
			out = append(out, e)
		}
	}
	return out
}
