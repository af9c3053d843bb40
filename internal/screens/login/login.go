package login

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/idw-coder/quizterm/internal/auth"
	"github.com/idw-coder/quizterm/internal/history"
	"github.com/idw-coder/quizterm/internal/router"
	"github.com/idw-coder/quizterm/internal/screen"
	"github.com/idw-coder/quizterm/internal/ui/components"
	"github.com/idw-coder/quizterm/internal/ui/layout"
	"github.com/idw-coder/quizterm/internal/ui/theme"
)

const (
	fieldName = iota
	fieldEmail
	fieldPassword
)

// authDoneMsg is sent when the login or register request completes. The
// history migration runs inside that request via the auth subscription,
// so by the time this arrives the sync outcome is already known.
type authDoneMsg struct {
	Err error
}

// LoginScreen collects credentials and signs the player in. A successful
// sign-in moves the locally recorded answers to the account before the
// screen returns to its caller.
type LoginScreen struct {
	auth *auth.Manager
	hist *history.Service

	registering bool
	name        components.TextInput
	email       components.TextInput
	password    components.TextInput
	field       int

	submitting bool
	errMsg     string
}

var _ screen.Screen = (*LoginScreen)(nil)
var _ screen.KeyHintProvider = (*LoginScreen)(nil)

// New creates a LoginScreen in sign-in mode.
func New(authMgr *auth.Manager, hist *history.Service) *LoginScreen {
	return &LoginScreen{
		auth:     authMgr,
		hist:     hist,
		name:     components.NewTextInput("Display name", 60),
		email:    components.NewTextInput("you@example.com", 120),
		password: components.NewPasswordInput("Password", 120),
		field:    fieldEmail,
	}
}

func (l *LoginScreen) Init() tea.Cmd {
	return l.email.Focus()
}

func (l *LoginScreen) Title() string {
	if l.registering {
		return "Create Account"
	}
	return "Sign In"
}

func (l *LoginScreen) KeyHints() []layout.KeyHint {
	if l.submitting {
		return nil
	}
	mode := "Create account"
	if l.registering {
		mode = "Sign in instead"
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Submit"},
		{Key: "Tab", Description: "Next field"},
		{Key: "Ctrl+T", Description: mode},
		{Key: "Esc", Description: "Back"},
	}
}

func (l *LoginScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case authDoneMsg:
		l.submitting = false
		if msg.Err != nil {
			l.errMsg = msg.Err.Error()
			l.password.Submit(false)
			return l, nil
		}
		if err := l.hist.SyncError(); err != nil {
			// The account is signed in either way; the unsent answers
			// stay on disk for the next attempt.
			l.errMsg = "history sync failed: " + err.Error()
			return l, nil
		}
		return l, func() tea.Msg { return router.PopScreenMsg{} }

	case tea.KeyMsg:
		return l.handleKey(msg)
	}

	return l.updateFocused(msg)
}

func (l *LoginScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if l.submitting {
		return l, nil
	}

	// An error from a finished attempt: if signed in despite the sync
	// failing, any key returns. Otherwise keep editing.
	if l.errMsg != "" && l.auth.State() == auth.StateAuthenticated {
		return l, func() tea.Msg { return router.PopScreenMsg{} }
	}

	switch msg.String() {
	case "esc":
		return l, func() tea.Msg { return router.PopScreenMsg{} }
	case "ctrl+t":
		l.registering = !l.registering
		l.errMsg = ""
		if l.registering {
			return l, l.setField(fieldName)
		}
		return l, l.setField(fieldEmail)
	case "tab", "down":
		return l, l.setField(l.nextField(1))
	case "shift+tab", "up":
		return l, l.setField(l.nextField(-1))
	case "enter":
		if l.field != fieldPassword {
			return l, l.setField(l.nextField(1))
		}
		return l.submit()
	}

	return l.updateFocused(msg)
}

func (l *LoginScreen) submit() (screen.Screen, tea.Cmd) {
	name := strings.TrimSpace(l.name.Value())
	email := strings.TrimSpace(l.email.Value())
	password := l.password.Value()

	if email == "" || password == "" || (l.registering && name == "") {
		l.errMsg = "fill in every field"
		return l, nil
	}

	l.errMsg = ""
	l.submitting = true
	registering := l.registering
	return l, func() tea.Msg {
		ctx := context.Background()
		if registering {
			return authDoneMsg{Err: l.auth.Register(ctx, name, email, password)}
		}
		return authDoneMsg{Err: l.auth.Login(ctx, email, password)}
	}
}

func (l *LoginScreen) nextField(dir int) int {
	first := fieldEmail
	if l.registering {
		first = fieldName
	}
	f := l.field + dir
	if f < first {
		return fieldPassword
	}
	if f > fieldPassword {
		return first
	}
	return f
}

func (l *LoginScreen) setField(f int) tea.Cmd {
	l.field = f
	l.name.Blur()
	l.email.Blur()
	l.password.Blur()
	switch f {
	case fieldName:
		return l.name.Focus()
	case fieldEmail:
		return l.email.Focus()
	default:
		return l.password.Focus()
	}
}

func (l *LoginScreen) updateFocused(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	switch l.field {
	case fieldName:
		l.name, cmd = l.name.Update(msg)
	case fieldEmail:
		l.email, cmd = l.email.Update(msg)
	default:
		l.password, cmd = l.password.Update(msg)
	}
	return l, cmd
}

func (l *LoginScreen) View(width, height int) string {
	var b strings.Builder

	title := "Sign in to keep your history"
	if l.registering {
		title = "Create your account"
	}
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(title))
	b.WriteString("\n\n")

	label := lipgloss.NewStyle().Foreground(theme.TextDim)
	if l.registering {
		b.WriteString(label.Render("Name") + "\n" + l.name.View() + "\n\n")
	}
	b.WriteString(label.Render("Email") + "\n" + l.email.View() + "\n\n")
	b.WriteString(label.Render("Password") + "\n" + l.password.View() + "\n")

	if l.submitting {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(theme.TextDim).Render("Signing in..."))
	}
	if l.errMsg != "" {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(theme.Error).Render(l.errMsg))
	}

	card := theme.Card.Width(min(width-4, 56)).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
