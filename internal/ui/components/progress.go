package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/interviewiz/internal/ui/theme"
)

// ProgressBar displays a horizontal bar for a value out of Max.
type ProgressBar struct {
	Label string
	// LabelWidth pads the label so bars in a column line up.
	LabelWidth int
	Value      float64
	Max        float64
	ShowValue  bool
	Width      int
	// Color overrides the fill color.
	Color color.Color
}

// NewScoreBar creates a bar for a 0-10 score colored by band.
func NewScoreBar(label string, score float64, width int) ProgressBar {
	return ProgressBar{
		Label:     label,
		Value:     score,
		Max:       10,
		ShowValue: true,
		Width:     width,
		Color:     theme.ScoreColor(score),
	}
}

// Fraction returns Value/Max clamped to [0, 1].
func (p ProgressBar) Fraction() float64 {
	if p.Max <= 0 {
		return 0
	}
	return min(max(p.Value/p.Max, 0), 1)
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		label := p.Label
		if pad := p.LabelWidth - lipgloss.Width(label); pad > 0 {
			label += strings.Repeat(" ", pad)
		}
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(label) + "  "
	}

	valueWidth := 0
	if p.ShowValue {
		valueWidth = 7
	}
	barWidth := max(p.Width-lipgloss.Width(result)-valueWidth, 4)

	filled := int(float64(barWidth) * p.Fraction())
	fill := p.Color
	if fill == nil {
		fill = theme.Secondary
	}

	result += lipgloss.NewStyle().Background(fill).Render(strings.Repeat(" ", filled)) +
		lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", barWidth-filled))

	if p.ShowValue {
		result += lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render(fmt.Sprintf("  %4.1f", p.Value))
	}
	return result
}
