package play

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/idw-coder/quizterm/internal/api"
	"github.com/idw-coder/quizterm/internal/history"
)

// memLocal is an in-memory local store for driving the history service.
type memLocal struct {
	answers []history.StoredAnswer
}

func (m *memLocal) Load(context.Context) []history.StoredAnswer { return m.answers }
func (m *memLocal) Save(_ context.Context, a []history.StoredAnswer) error {
	m.answers = a
	return nil
}
func (m *memLocal) Clear(context.Context) error {
	m.answers = nil
	return nil
}

type noRemote struct{}

func (noRemote) FetchAll(context.Context) ([]history.AnswerEvent, error) { return nil, nil }
func (noRemote) Append(context.Context, history.AnswerEvent) error       { return nil }
func (noRemote) BulkAppend(context.Context, []history.AnswerEvent) (int, error) {
	return 0, nil
}
func (noRemote) Clear(context.Context) error { return nil }

func newTestService(t *testing.T, local *memLocal) *history.Service {
	t.Helper()
	svc := history.NewService(history.NewReconciler(local, noRemote{}))
	if err := svc.OnAuthChange(context.Background(), false); err != nil {
		t.Fatalf("select local source: %v", err)
	}
	return svc
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func testQuizzes() []api.QuizWithChoices {
	return []api.QuizWithChoices{
		{
			Quiz: api.Quiz{ID: 1, CategoryID: 7, Question: "Capital of France?"},
			Choices: []api.Choice{
				{ID: 1, QuizID: 1, Text: "Paris", IsCorrect: true},
				{ID: 2, QuizID: 1, Text: "Lyon"},
			},
		},
		{
			Quiz: api.Quiz{ID: 2, CategoryID: 7, Question: "Capital of Spain?"},
			Choices: []api.Choice{
				{ID: 3, QuizID: 2, Text: "Barcelona"},
				{ID: 4, QuizID: 2, Text: "Madrid", IsCorrect: true},
			},
		},
	}
}

// ready drives the screen through its load message.
func ready(t *testing.T, s *PlayScreen) {
	t.Helper()
	msg := s.Init()()
	if _, ok := msg.(quizzesReadyMsg); !ok {
		t.Fatalf("expected quizzesReadyMsg, got %T", msg)
	}
	s.Update(msg)
}

// answer submits the currently selected choice and runs the record command.
func answer(t *testing.T, s *PlayScreen) {
	t.Helper()
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected a record command after submit")
	}
	cmd()
}

func TestRunRecordsAnswers(t *testing.T) {
	local := &memLocal{}
	svc := newTestService(t, local)
	s := NewFixed(svc, "Geography", testQuizzes())
	ready(t, s)

	// First quiz: first choice (Paris) is correct.
	answer(t, s)
	if !s.showingFeedback {
		t.Fatal("expected feedback after submit")
	}
	s.Update(keyPress(' ')) // dismiss feedback

	// Second quiz: first choice (Barcelona) is wrong.
	answer(t, s)
	s.Update(keyPress(' '))

	if !s.done {
		t.Fatal("expected run to finish after last quiz")
	}
	if s.correct != 1 {
		t.Errorf("correct = %d, want 1", s.correct)
	}

	if got := len(local.answers); got != 2 {
		t.Fatalf("stored answers = %d, want 2", got)
	}
	if latest, ok := svc.LatestAnswer(1); !ok || !latest.IsCorrect {
		t.Error("quiz 1 should be recorded correct")
	}
	if latest, ok := svc.LatestAnswer(2); !ok || latest.IsCorrect {
		t.Error("quiz 2 should be recorded incorrect")
	}
}

func TestSummaryShowsScore(t *testing.T) {
	svc := newTestService(t, &memLocal{})
	s := NewFixed(svc, "Geography", testQuizzes()[:1])
	ready(t, s)

	answer(t, s)
	s.Update(keyPress(' '))

	view := s.View(100, 30)
	if !strings.Contains(view, "Correct: 1 / 1") {
		t.Errorf("summary should show the score, got:\n%s", view)
	}
}

func TestEmptyQuizSet(t *testing.T) {
	svc := newTestService(t, &memLocal{})
	s := New(svc, "Review", func(context.Context) ([]api.QuizWithChoices, error) {
		return nil, nil
	})
	ready(t, s)

	if !s.done {
		t.Fatal("empty quiz set should finish immediately")
	}
	if !strings.Contains(s.View(100, 30), "Nothing to play") {
		t.Error("empty set should render the empty message")
	}
}

func TestLoaderError(t *testing.T) {
	svc := newTestService(t, &memLocal{})
	s := New(svc, "Random", func(context.Context) ([]api.QuizWithChoices, error) {
		return nil, errors.New("server unreachable")
	})
	ready(t, s)

	if !strings.Contains(s.View(100, 30), "server unreachable") {
		t.Error("loader error should be rendered")
	}

	// Any key backs out of the error state.
	_, cmd := s.Update(keyPress('x'))
	if cmd == nil {
		t.Fatal("expected a pop command from the error state")
	}
}

func TestEscOpensQuitConfirm(t *testing.T) {
	svc := newTestService(t, &memLocal{})
	s := NewFixed(svc, "Geography", testQuizzes())
	ready(t, s)

	s.Update(specialKey(tea.KeyEscape))
	if !s.quitConfirm.IsOpen() {
		t.Fatal("esc should open the quit confirmation")
	}

	// Default answer is No: confirming keeps the run going.
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd != nil {
		t.Error("declining the quit confirm should not pop")
	}
	if s.quitConfirm.IsOpen() {
		t.Error("confirm should close after a decision")
	}
}

func TestChoiceNavigation(t *testing.T) {
	svc := newTestService(t, &memLocal{})
	s := NewFixed(svc, "Geography", testQuizzes())
	ready(t, s)

	s.Update(keyPress('j'))
	answer(t, s) // second choice (Lyon) is wrong
	if s.correct != 0 {
		t.Errorf("correct = %d, want 0", s.correct)
	}
}
