package play

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/idw-coder/quizterm/internal/api"
	"github.com/idw-coder/quizterm/internal/history"
	"github.com/idw-coder/quizterm/internal/router"
	"github.com/idw-coder/quizterm/internal/screen"
	"github.com/idw-coder/quizterm/internal/ui/components"
	"github.com/idw-coder/quizterm/internal/ui/layout"
	"github.com/idw-coder/quizterm/internal/ui/theme"
)

// Loader fetches the quiz set for a run.
type Loader func(ctx context.Context) ([]api.QuizWithChoices, error)

// PlayScreen runs through a set of quizzes one at a time, recording
// every submitted answer in the player's history.
type PlayScreen struct {
	hist      *history.Service
	load      Loader
	title     string
	sessionID string

	quizzes []api.QuizWithChoices
	idx     int
	mc      components.MultiChoice

	showingFeedback bool
	correct         int
	done            bool
	loaded          bool
	errMsg          string

	quitConfirm components.Confirm
}

var _ screen.Screen = (*PlayScreen)(nil)
var _ screen.KeyHintProvider = (*PlayScreen)(nil)

// New creates a PlayScreen that fetches its quiz set via the loader.
func New(hist *history.Service, title string, load Loader) *PlayScreen {
	return &PlayScreen{
		hist:      hist,
		load:      load,
		title:     title,
		sessionID: uuid.New().String(),
	}
}

// NewFixed creates a PlayScreen over an already-fetched quiz set, which
// is how the quiz list starts a run without refetching.
func NewFixed(hist *history.Service, title string, quizzes []api.QuizWithChoices) *PlayScreen {
	return New(hist, title, func(context.Context) ([]api.QuizWithChoices, error) {
		return quizzes, nil
	})
}

// NewRandom creates a PlayScreen over a random draw from the category.
func NewRandom(hist *history.Service, catalog *api.CatalogClient, cat api.Category, count int) *PlayScreen {
	return New(hist, "Random "+cat.CategoryName, func(ctx context.Context) ([]api.QuizWithChoices, error) {
		return catalog.RandomQuizzes(ctx, cat.ID, count, nil)
	})
}

// NewReview creates a PlayScreen that replays the category's quizzes
// whose latest answer was wrong.
func NewReview(hist *history.Service, catalog *api.CatalogClient, cat api.Category) *PlayScreen {
	return New(hist, "Review "+cat.CategoryName, func(ctx context.Context) ([]api.QuizWithChoices, error) {
		ids := hist.WrongQuizIDs(cat.ID)
		if len(ids) == 0 {
			return nil, nil
		}
		return catalog.RandomQuizzes(ctx, cat.ID, len(ids), ids)
	})
}

func (s *PlayScreen) Init() tea.Cmd {
	return func() tea.Msg {
		quizzes, err := s.load(context.Background())
		return quizzesReadyMsg{Quizzes: quizzes, Err: err}
	}
}

func (s *PlayScreen) Title() string {
	return s.title
}

func (s *PlayScreen) KeyHints() []layout.KeyHint {
	if s.quitConfirm.IsOpen() {
		return []layout.KeyHint{
			{Key: "←→", Description: "Choose"},
			{Key: "Enter", Description: "Confirm"},
		}
	}
	if s.done {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Done"},
		}
	}
	if s.showingFeedback {
		return []layout.KeyHint{
			{Key: "any key", Description: "Continue"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Choose"},
		{Key: "Enter", Description: "Answer"},
		{Key: "Esc", Description: "Quit run"},
	}
}

func (s *PlayScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case quizzesReadyMsg:
		return s.handleReady(msg)
	case answerRecordedMsg:
		return s, nil
	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *PlayScreen) handleReady(msg quizzesReadyMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	s.loaded = true
	s.quizzes = msg.Quizzes
	if len(s.quizzes) == 0 {
		s.done = true
		return s, nil
	}

	log.Info().
		Str("session_id", s.sessionID).
		Int("quizzes", len(s.quizzes)).
		Msg("play session start")

	s.setupQuestion()
	return s, nil
}

func (s *PlayScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if s.errMsg != "" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}

	if s.quitConfirm.IsOpen() {
		var cmd tea.Cmd
		s.quitConfirm, cmd = s.quitConfirm.Update(msg)
		return s, cmd
	}

	if s.done {
		switch msg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return s, nil
	}

	if !s.loaded {
		return s, nil
	}

	if s.showingFeedback {
		s.showingFeedback = false
		s.idx++
		if s.idx >= len(s.quizzes) {
			s.finish()
			return s, nil
		}
		s.setupQuestion()
		return s, nil
	}

	if msg.String() == "esc" {
		s.quitConfirm.Open("End this run? Answers so far are kept.", func() tea.Cmd {
			return func() tea.Msg { return router.PopScreenMsg{} }
		})
		return s, nil
	}

	var cmd tea.Cmd
	s.mc, cmd = s.mc.Update(msg)
	if s.mc.Submitted {
		return s.recordAnswer()
	}
	return s, cmd
}

// setupQuestion builds the choice selector for the current quiz.
func (s *PlayScreen) setupQuestion() {
	q := s.quizzes[s.idx]
	options := make([]string, 0, len(q.Choices))
	correctIdx := 0
	for i, c := range q.Choices {
		options = append(options, c.Text)
		if c.IsCorrect {
			correctIdx = i
		}
	}
	s.mc = components.NewMultiChoice(q.Quiz.Question, options, correctIdx)
}

// recordAnswer persists the submitted answer and shows feedback.
func (s *PlayScreen) recordAnswer() (screen.Screen, tea.Cmd) {
	q := s.quizzes[s.idx]
	isCorrect := s.mc.IsCorrect()
	if isCorrect {
		s.correct++
	}
	s.showingFeedback = true

	return s, func() tea.Msg {
		s.hist.AddAnswer(context.Background(), q.Quiz.ID, q.Quiz.CategoryID, isCorrect)
		return answerRecordedMsg{}
	}
}

func (s *PlayScreen) finish() {
	s.done = true
	log.Info().
		Str("session_id", s.sessionID).
		Int("total", len(s.quizzes)).
		Int("correct", s.correct).
		Msg("play session end")
}

func (s *PlayScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.Error).
			Render("Could not load quizzes:\n" + s.errMsg)
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.TextDim).
			Render("Loading quizzes...")
	}
	if s.done {
		return s.renderSummary(width, height)
	}
	if s.quitConfirm.IsOpen() {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, s.quitConfirm.View())
	}

	var b strings.Builder

	progress := fmt.Sprintf("Question %d of %d", s.idx+1, len(s.quizzes))
	b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render(progress))
	b.WriteString("\n\n")
	b.WriteString(s.mc.View())

	if s.showingFeedback {
		b.WriteString("\n")
		if s.mc.IsCorrect() {
			b.WriteString(theme.Correct.Render("Correct!"))
		} else {
			b.WriteString(theme.Incorrect.Render("Not quite."))
		}
	}

	card := theme.Card.Width(min(width-4, 72)).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

func (s *PlayScreen) renderSummary(width, height int) string {
	if len(s.quizzes) == 0 {
		return lipgloss.NewStyle().
			Width(width).Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.TextDim).Italic(true).
			Render("Nothing to play here right now.")
	}

	pct := int(float64(s.correct)/float64(len(s.quizzes))*100 + 0.5)

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("Run complete!"))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Render(
		fmt.Sprintf("Correct: %d / %d", s.correct, len(s.quizzes))))
	b.WriteString("\n\n")
	b.WriteString(components.NewAccuracyBar("Score", pct, 40).View())

	card := theme.Card.Width(min(width-4, 56)).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
