package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/idw-coder/quizterm/internal/api"
	"github.com/idw-coder/quizterm/internal/auth"
	hist "github.com/idw-coder/quizterm/internal/history"
	"github.com/idw-coder/quizterm/internal/router"
	"github.com/idw-coder/quizterm/internal/screen"
	historyscreen "github.com/idw-coder/quizterm/internal/screens/history"
	"github.com/idw-coder/quizterm/internal/screens/login"
	"github.com/idw-coder/quizterm/internal/screens/quizlist"
	"github.com/idw-coder/quizterm/internal/ui/components"
	"github.com/idw-coder/quizterm/internal/ui/layout"
	"github.com/idw-coder/quizterm/internal/ui/theme"
)

// homeLoadedMsg is sent when categories and history are ready.
type homeLoadedMsg struct {
	Categories []api.Category
	Err        error
}

// HomeScreen is the main category picker. Each category row carries the
// player's current accuracy for it.
type HomeScreen struct {
	hist    *hist.Service
	catalog *api.CatalogClient
	auth    *auth.Manager

	categories []api.Category
	selected   int
	loaded     bool
	errMsg     string

	confirm components.Confirm
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)
var _ screen.Refresher = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(histSvc *hist.Service, catalog *api.CatalogClient, authMgr *auth.Manager) *HomeScreen {
	return &HomeScreen{
		hist:    histSvc,
		catalog: catalog,
		auth:    authMgr,
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.loadCmd()
}

// Refresh reloads accuracy badges after a run or an auth change.
func (h *HomeScreen) Refresh() tea.Cmd {
	return h.loadCmd()
}

func (h *HomeScreen) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		_ = h.hist.Refresh(ctx)
		cats, err := h.catalog.Categories(ctx)
		return homeLoadedMsg{Categories: cats, Err: err}
	}
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	if h.confirm.IsOpen() {
		return []layout.KeyHint{
			{Key: "←→", Description: "Choose"},
			{Key: "Enter", Description: "Confirm"},
		}
	}
	account := "Sign in"
	if h.auth.State() == auth.StateAuthenticated {
		account = "Sign out"
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Open"},
		{Key: "H", Description: "History"},
		{Key: "S", Description: account},
		{Key: "Q", Description: "Quit"},
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case homeLoadedMsg:
		h.loaded = true
		if msg.Err != nil {
			h.errMsg = msg.Err.Error()
			return h, nil
		}
		h.errMsg = ""
		h.categories = msg.Categories
		if h.selected >= len(h.categories) {
			h.selected = 0
		}
		return h, nil

	case tea.KeyMsg:
		return h.handleKey(msg)
	}
	return h, nil
}

func (h *HomeScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if h.confirm.IsOpen() {
		var cmd tea.Cmd
		h.confirm, cmd = h.confirm.Update(msg)
		return h, cmd
	}

	switch msg.String() {
	case "up", "k":
		if h.selected > 0 {
			h.selected--
		}
	case "down", "j":
		if h.selected < len(h.categories)-1 {
			h.selected++
		}
	case "enter":
		if h.selected < len(h.categories) {
			cat := h.categories[h.selected]
			return h, func() tea.Msg {
				return router.PushScreenMsg{Screen: quizlist.New(h.hist, h.catalog, cat)}
			}
		}
	case "h":
		return h, func() tea.Msg {
			return router.PushScreenMsg{Screen: historyscreen.New(h.hist, h.catalog)}
		}
	case "s":
		if h.auth.State() == auth.StateAuthenticated {
			h.confirm.Open("Sign out? Unsynced answers stay on this machine.", func() tea.Cmd {
				return func() tea.Msg {
					// The auth subscription moves the history source back
					// to this machine; the reset re-reads it.
					h.auth.Logout(context.Background())
					return router.ResetMsg{}
				}
			})
			return h, nil
		}
		return h, func() tea.Msg {
			return router.PushScreenMsg{Screen: login.New(h.auth, h.hist)}
		}
	case "q":
		return h, tea.Quit
	}
	return h, nil
}

func (h *HomeScreen) View(width, height int) string {
	if !h.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading categories...")
	}

	if h.confirm.IsOpen() {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, h.confirm.View())
	}

	var b strings.Builder
	b.WriteString("\n")

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("Pick a category")))
	b.WriteString("\n\n")

	if h.errMsg != "" {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.Error).
				Render("Could not reach the server: "+h.errMsg)))
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).
				Render("Your local history is still available under [H].")))
		b.WriteString("\n")
		return b.String()
	}

	if len(h.categories) == 0 {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).
				Render("No categories yet.")))
		return b.String()
	}

	for i, cat := range h.categories {
		prefix := "  "
		nameStyle := lipgloss.NewStyle().Foreground(theme.Text)
		if i == h.selected {
			prefix = "> "
			nameStyle = nameStyle.Foreground(theme.Primary).Bold(true)
		}

		acc := h.hist.CategoryAccuracy(cat.ID)
		var badge string
		if acc.TotalCount == 0 {
			badge = lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render("not attempted")
		} else {
			badge = components.NewAccuracyBar("", acc.Percentage, 26).View() +
				lipgloss.NewStyle().Foreground(theme.TextDim).
					Render(fmt.Sprintf("  %d/%d", acc.CorrectCount, acc.TotalCount))
		}

		line := nameStyle.Render(fmt.Sprintf("%s%-24s", prefix, cat.CategoryName)) + "  " + badge
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, line))
		b.WriteString("\n")
	}

	if h.auth.State() != auth.StateAuthenticated {
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).
				Render("Playing as guest. Press [S] to sign in and keep your history.")))
		b.WriteString("\n")
	}

	return b.String()
}
