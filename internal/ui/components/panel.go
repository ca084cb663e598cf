package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/interviewiz/internal/ui/theme"
)

// ContentWidth returns the inner width for centered single-column screens.
func ContentWidth(frameWidth int) int {
	return min(max(frameWidth-6, 20), 72)
}

// Panel wraps content in a titled rounded border of the given outer width.
func Panel(title, content string, width int) string {
	body := content
	if title != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, theme.Section.Render(title), content)
	}
	return theme.Panel.Width(width).Render(body)
}
