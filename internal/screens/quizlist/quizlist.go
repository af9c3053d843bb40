package quizlist

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/idw-coder/quizterm/internal/api"
	"github.com/idw-coder/quizterm/internal/history"
	"github.com/idw-coder/quizterm/internal/router"
	"github.com/idw-coder/quizterm/internal/screen"
	"github.com/idw-coder/quizterm/internal/screens/play"
	"github.com/idw-coder/quizterm/internal/ui/components"
	"github.com/idw-coder/quizterm/internal/ui/layout"
	"github.com/idw-coder/quizterm/internal/ui/theme"
)

// quizzesLoadedMsg is sent when a page of quizzes has been fetched.
type quizzesLoadedMsg struct {
	Quizzes []api.QuizWithChoices
	Page    int
	Err     error
}

// tagsLoadedMsg carries the category's tags for the tag filter. A fetch
// failure just leaves the filter unavailable.
type tagsLoadedMsg struct {
	Tags []api.Tag
}

// QuizListScreen lists a category's quizzes with the outcome of each
// quiz's latest answer, and starts play runs over them.
type QuizListScreen struct {
	hist     *history.Service
	catalog  *api.CatalogClient
	category api.Category

	quizzes  []api.QuizWithChoices
	page     int
	keyword  string
	tags     []api.Tag
	tagIdx   int // 0 means no tag filter, else tags[tagIdx-1]
	selected int
	loaded   bool
	errMsg   string

	searching bool
	search    components.TextInput
}

var _ screen.Screen = (*QuizListScreen)(nil)
var _ screen.KeyHintProvider = (*QuizListScreen)(nil)
var _ screen.Refresher = (*QuizListScreen)(nil)

// New creates a QuizListScreen for the category.
func New(hist *history.Service, catalog *api.CatalogClient, category api.Category) *QuizListScreen {
	return &QuizListScreen{
		hist:     hist,
		catalog:  catalog,
		category: category,
		page:     1,
		search:   components.NewTextInput("Search quizzes...", 60),
	}
}

func (s *QuizListScreen) Init() tea.Cmd {
	return tea.Batch(s.loadPage(1), s.loadTags())
}

// Refresh re-reads history so the outcome markers reflect a run that
// just finished deeper in the stack.
func (s *QuizListScreen) Refresh() tea.Cmd {
	return func() tea.Msg {
		_ = s.hist.Refresh(context.Background())
		return nil
	}
}

func (s *QuizListScreen) Title() string {
	return s.category.CategoryName
}

func (s *QuizListScreen) KeyHints() []layout.KeyHint {
	if s.searching {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Search"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	hints := []layout.KeyHint{
		{Key: "Enter", Description: "Play"},
		{Key: "A", Description: "Play all"},
		{Key: "R", Description: "Random 5"},
		{Key: "M", Description: "Review mistakes"},
		{Key: "/", Description: "Search"},
	}
	if len(s.tags) > 0 {
		hints = append(hints, layout.KeyHint{Key: "T", Description: "Tag filter"})
	}
	return append(hints,
		layout.KeyHint{Key: "N/P", Description: "Page"},
		layout.KeyHint{Key: "Esc", Description: "Back"},
	)
}

func (s *QuizListScreen) loadPage(page int) tea.Cmd {
	keyword := s.keyword
	tagID := s.activeTagID()
	return func() tea.Msg {
		quizzes, err := s.catalog.QuizzesByCategory(context.Background(), s.category.ID, api.QuizFilter{
			Page:    page,
			TagID:   tagID,
			Keyword: keyword,
		})
		return quizzesLoadedMsg{Quizzes: quizzes, Page: page, Err: err}
	}
}

func (s *QuizListScreen) loadTags() tea.Cmd {
	return func() tea.Msg {
		tags, err := s.catalog.TagsByCategory(context.Background(), s.category.ID)
		if err != nil {
			return tagsLoadedMsg{}
		}
		return tagsLoadedMsg{Tags: tags}
	}
}

// activeTagID returns the id of the selected tag filter, or 0.
func (s *QuizListScreen) activeTagID() int {
	if s.tagIdx == 0 || s.tagIdx > len(s.tags) {
		return 0
	}
	return s.tags[s.tagIdx-1].ID
}

func (s *QuizListScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case quizzesLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			s.loaded = true
			return s, nil
		}
		// An empty next page means we ran past the end; stay put.
		if len(msg.Quizzes) == 0 && msg.Page > 1 {
			return s, nil
		}
		s.quizzes = msg.Quizzes
		s.page = msg.Page
		s.selected = 0
		s.loaded = true
		s.errMsg = ""
		return s, nil

	case tagsLoadedMsg:
		s.tags = msg.Tags
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.searching {
		var cmd tea.Cmd
		s.search, cmd = s.search.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *QuizListScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if s.searching {
		switch msg.String() {
		case "esc":
			s.searching = false
			return s, nil
		case "enter":
			s.searching = false
			s.keyword = strings.TrimSpace(s.search.Value())
			return s, s.loadPage(1)
		}
		var cmd tea.Cmd
		s.search, cmd = s.search.Update(msg)
		return s, cmd
	}

	switch msg.String() {
	case "esc":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < len(s.quizzes)-1 {
			s.selected++
		}
	case "enter":
		if s.selected < len(s.quizzes) {
			quiz := s.quizzes[s.selected]
			return s, func() tea.Msg {
				return router.PushScreenMsg{
					Screen: play.NewFixed(s.hist, s.category.CategoryName, []api.QuizWithChoices{quiz}),
				}
			}
		}
	case "a":
		if len(s.quizzes) > 0 {
			quizzes := s.quizzes
			return s, func() tea.Msg {
				return router.PushScreenMsg{
					Screen: play.NewFixed(s.hist, s.category.CategoryName, quizzes),
				}
			}
		}
	case "r":
		return s, func() tea.Msg {
			return router.PushScreenMsg{
				Screen: play.NewRandom(s.hist, s.catalog, s.category, 5),
			}
		}
	case "m":
		return s, func() tea.Msg {
			return router.PushScreenMsg{
				Screen: play.NewReview(s.hist, s.catalog, s.category),
			}
		}
	case "/":
		s.searching = true
		s.search = components.NewTextInput("Search quizzes...", 60)
		return s, s.search.Focus()
	case "t":
		if len(s.tags) > 0 {
			s.tagIdx = (s.tagIdx + 1) % (len(s.tags) + 1)
			return s, s.loadPage(1)
		}
	case "n":
		return s, s.loadPage(s.page + 1)
	case "p":
		if s.page > 1 {
			return s, s.loadPage(s.page - 1)
		}
	}
	return s, nil
}

// truncate shortens s to at most max cells, cutting on rune boundaries
// so a multibyte question never ends mid-character.
func truncate(s string, max int) string {
	if max < 2 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

func (s *QuizListScreen) View(width, height int) string {
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading quizzes...")
	}
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render("\n\nError: " + s.errMsg)
	}

	var b strings.Builder
	b.WriteString("\n")

	header := fmt.Sprintf("%s  ·  page %d", s.category.CategoryName, s.page)
	if s.keyword != "" {
		header += fmt.Sprintf("  ·  %q", s.keyword)
	}
	if s.tagIdx > 0 && s.tagIdx <= len(s.tags) {
		header += "  ·  #" + s.tags[s.tagIdx-1].TagName
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(header)))
	b.WriteString("\n\n")

	if s.searching {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.search.View()))
		b.WriteString("\n\n")
	}

	if len(s.quizzes) == 0 {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).
				Render("No quizzes found.")))
		return b.String()
	}

	for i, q := range s.quizzes {
		marker := lipgloss.NewStyle().Foreground(theme.TextDim).Render("·")
		if latest, ok := s.hist.LatestAnswer(q.Quiz.ID); ok {
			if latest.IsCorrect {
				marker = theme.Correct.Render("✓")
			} else {
				marker = theme.Incorrect.Render("✗")
			}
		}

		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		question := truncate(q.Quiz.Question, width-12)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}

		b.WriteString("  " + style.Render(prefix) + marker + " " + style.Render(question) + "\n")
	}

	return b.String()
}
