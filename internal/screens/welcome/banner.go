package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/interviewiz/internal/ui/theme"
)

const bannerArt = `█ █▄ █ ▀█▀ █▀▀ █▀█ █ █ █ █▀▀ █   █ █ ▀▀█
█ █ ▀█  █  █▀▀ █▀▄ █ █ █ █▀▀ █ █ █ █ ▄▀ 
█ █  █  █  █▄▄ █ █ ▀▄▀ █ █▄▄ ▀▄▀▄▀ █ █▄▄`

const bannerCompact = "I N T E R V I E W I Z"

// bannerWidth is the display width of bannerArt.
const bannerWidth = 40

// RenderBanner returns the INTERVIEWIZ banner styled in the primary color.
// Uses a compact fallback for terminals narrower than the art.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < bannerWidth+2 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
