package play

import (
	"github.com/idw-coder/quizterm/internal/api"
)

// quizzesReadyMsg is sent when the quiz set has been fetched.
type quizzesReadyMsg struct {
	Quizzes []api.QuizWithChoices
	Err     error
}

// answerRecordedMsg is sent after an answer has been written to history.
type answerRecordedMsg struct{}
