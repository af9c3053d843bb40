package components

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/idw-coder/quizterm/internal/ui/theme"
)

// Confirm is a yes/no dialog. It holds the pending action itself so the
// owning screen only has to route messages to it while it is open,
// instead of tracking which destructive operation is awaiting approval.
type Confirm struct {
	Message   string
	OnConfirm func() tea.Cmd
	open      bool
	yes       bool
}

// Open shows the dialog with the given message and pending action.
// The "No" button starts focused.
func (c *Confirm) Open(message string, onConfirm func() tea.Cmd) {
	c.Message = message
	c.OnConfirm = onConfirm
	c.open = true
	c.yes = false
}

// Close dismisses the dialog and drops the pending action.
func (c *Confirm) Close() {
	c.open = false
	c.OnConfirm = nil
}

// IsOpen reports whether the dialog is showing. While open, the owning
// screen should route all key messages to Update.
func (c Confirm) IsOpen() bool {
	return c.open
}

// Update handles keyboard input while the dialog is open.
func (c Confirm) Update(msg tea.Msg) (Confirm, tea.Cmd) {
	if !c.open {
		return c, nil
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil
	}

	switch kmsg.String() {
	case "left", "right", "h", "l", "tab":
		c.yes = !c.yes
	case "y":
		c.yes = true
	case "n":
		c.yes = false
	case "esc":
		c.Close()
	case "enter":
		confirmed := c.yes
		action := c.OnConfirm
		c.Close()
		if confirmed && action != nil {
			return c, action()
		}
	}

	return c, nil
}

// View renders the dialog card.
func (c Confirm) View() string {
	if !c.open {
		return ""
	}

	yesLabel := " Yes "
	noLabel := " No "
	var yes, no string
	if c.yes {
		yes = theme.ButtonActive.Render(yesLabel)
		no = theme.ButtonInactive.Render(noLabel)
	} else {
		yes = theme.ButtonInactive.Render(yesLabel)
		no = theme.ButtonActive.Render(noLabel)
	}

	body := lipgloss.NewStyle().Foreground(theme.Text).Render(c.Message) +
		"\n\n" +
		lipgloss.JoinHorizontal(lipgloss.Center, yes, "   ", no)

	return theme.Card.
		BorderForeground(theme.Accent).
		Render(body)
}
