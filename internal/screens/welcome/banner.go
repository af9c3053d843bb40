package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/idw-coder/quizterm/internal/ui/theme"
)

const bannerArt = `
  ██████╗ ██╗   ██╗██╗███████╗████████╗███████╗██████╗ ███╗   ███╗
 ██╔═══██╗██║   ██║██║╚══███╔╝╚══██╔══╝██╔════╝██╔══██╗████╗ ████║
 ██║   ██║██║   ██║██║  ███╔╝    ██║   █████╗  ██████╔╝██╔████╔██║
 ██║▄▄ ██║██║   ██║██║ ███╔╝     ██║   ██╔══╝  ██╔══██╗██║╚██╔╝██║
 ╚██████╔╝╚██████╔╝██║███████╗   ██║   ███████╗██║  ██║██║ ╚═╝ ██║
  ╚══▀▀═╝  ╚═════╝ ╚═╝╚══════╝   ╚═╝   ╚══════╝╚═╝  ╚═╝╚═╝     ╚═╝`

const bannerCompact = "Q U I Z T E R M"

// RenderBanner returns the QUIZTERM banner styled in the primary color.
// Uses a compact fallback for terminals narrower than 70 columns.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < 70 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
