package history

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/idw-coder/quizterm/internal/api"
	hist "github.com/idw-coder/quizterm/internal/history"
	"github.com/idw-coder/quizterm/internal/router"
	"github.com/idw-coder/quizterm/internal/screen"
	"github.com/idw-coder/quizterm/internal/ui/components"
	"github.com/idw-coder/quizterm/internal/ui/layout"
	"github.com/idw-coder/quizterm/internal/ui/theme"
)

const recentLimit = 15

// historyLoadedMsg is sent when the history and category names are ready.
type historyLoadedMsg struct {
	Categories []api.Category
	Err        error
}

// clearedMsg is sent when the clear operation completes.
type clearedMsg struct {
	Err error
}

// HistoryScreen shows per-category accuracy and the most recent answers,
// and clears the whole history behind a confirmation.
type HistoryScreen struct {
	hist    *hist.Service
	catalog *api.CatalogClient

	categories []api.Category
	loaded     bool
	errMsg     string

	confirm components.Confirm
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)
var _ screen.Refresher = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(histSvc *hist.Service, catalog *api.CatalogClient) *HistoryScreen {
	return &HistoryScreen{
		hist:    histSvc,
		catalog: catalog,
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return s.loadCmd()
}

// Refresh reloads the projection when navigation returns here.
func (s *HistoryScreen) Refresh() tea.Cmd {
	return s.loadCmd()
}

func (s *HistoryScreen) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if err := s.hist.Refresh(ctx); err != nil {
			// Projection is empty-with-error; still try to label what we have.
			cats, _ := s.catalog.Categories(ctx)
			return historyLoadedMsg{Categories: cats, Err: err}
		}
		cats, err := s.catalog.Categories(ctx)
		return historyLoadedMsg{Categories: cats, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	if s.confirm.IsOpen() {
		return []layout.KeyHint{
			{Key: "←→", Description: "Choose"},
			{Key: "Enter", Description: "Confirm"},
		}
	}
	return []layout.KeyHint{
		{Key: "C", Description: "Clear history"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		s.loaded = true
		s.categories = msg.Categories
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.errMsg = ""
		}
		return s, nil

	case clearedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		}
		return s, nil

	case tea.KeyMsg:
		if s.confirm.IsOpen() {
			var cmd tea.Cmd
			s.confirm, cmd = s.confirm.Update(msg)
			return s, cmd
		}
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "c":
			s.confirm.Open("Delete your entire quiz history?", func() tea.Cmd {
				return func() tea.Msg {
					return clearedMsg{Err: s.hist.ClearHistory(context.Background())}
				}
			})
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}

	if s.confirm.IsOpen() {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, s.confirm.View())
	}

	var b strings.Builder
	b.WriteString("\n")

	if s.errMsg != "" {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.Error).Render("Error: "+s.errMsg)))
		b.WriteString("\n\n")
	}

	answers := s.hist.Answers()
	if len(answers) == 0 {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).
				Render("No answers yet. Go play something!")))
		return b.String()
	}

	names := make(map[int]string, len(s.categories))
	for _, c := range s.categories {
		names[c.ID] = c.CategoryName
	}

	// Accuracy per category, only for categories that were attempted.
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("Accuracy by category")))
	b.WriteString("\n\n")

	for _, catID := range attemptedCategories(answers) {
		acc := hist.AccuracyForCategory(answers, catID)
		label := names[catID]
		if label == "" {
			label = fmt.Sprintf("Category %d", catID)
		}
		line := components.NewAccuracyBar(fmt.Sprintf("%-20s", label), acc.Percentage, 54).View() +
			lipgloss.NewStyle().Foreground(theme.TextDim).
				Render(fmt.Sprintf("  %d/%d", acc.CorrectCount, acc.TotalCount))
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, line))
		b.WriteString("\n")
	}

	// Recent answers, newest first.
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("Recent answers")))
	b.WriteString("\n\n")

	recent := make([]hist.AnswerEvent, len(answers))
	copy(recent, answers)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].AnsweredAt.After(recent[j].AnsweredAt)
	})
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}

	for _, e := range recent {
		mark := theme.Correct.Render("✓")
		if !e.IsCorrect {
			mark = theme.Incorrect.Render("✗")
		}
		label := names[e.CategoryID]
		if label == "" {
			label = fmt.Sprintf("category %d", e.CategoryID)
		}
		line := fmt.Sprintf("%s  %s  quiz #%d  %s",
			e.AnsweredAt.Local().Format("Jan 02 15:04"), mark, e.QuizID,
			lipgloss.NewStyle().Foreground(theme.TextDim).Render(label))
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.Text).Render(line)))
		b.WriteString("\n")
	}

	return b.String()
}

// attemptedCategories returns the distinct category ids in the log,
// sorted ascending for a stable listing.
func attemptedCategories(answers []hist.AnswerEvent) []int {
	seen := make(map[int]bool)
	var ids []int
	for _, e := range answers {
		if !seen[e.CategoryID] {
			seen[e.CategoryID] = true
			ids = append(ids, e.CategoryID)
		}
	}
	sort.Ints(ids)
	return ids
}
