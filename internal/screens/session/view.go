package session

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/interviewiz/internal/adaptive"
	"github.com/abhisek/interviewiz/internal/ui/components"
	"github.com/abhisek/interviewiz/internal/ui/layout"
	"github.com/abhisek/interviewiz/internal/ui/theme"
)

const sidePanelWidth = 34

func (s *SessionScreen) View(width, height int) string {
	if s.errMsg != "" {
		return renderError(width, s.errMsg)
	}
	if s.id == "" {
		return renderLoading(width)
	}

	chatWidth := width - 2
	var side string
	if !layout.IsCompactWidth(width) {
		side = s.renderSidePanel(height)
		chatWidth = width - lipgloss.Width(side) - 3
	}

	bottom := s.renderInputArea(chatWidth)
	chatHeight := max(height-lipgloss.Height(bottom)-1, 1)

	lines := s.renderedTranscript(chatWidth)
	offset := max(len(lines)-chatHeight-s.scrollBack, 0)
	chat := strings.Join(layout.Clip(lines, offset, chatHeight), "\n")
	chat = lipgloss.NewStyle().Width(chatWidth).Height(chatHeight).Render(chat)

	left := chat + "\n" + bottom
	if side == "" {
		return " " + strings.ReplaceAll(left, "\n", "\n ")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, " "+left, "  ", side)
}

// renderedTranscript wraps the conversation to width, one slice entry per
// terminal line.
func (s *SessionScreen) renderedTranscript(width int) []string {
	body := lipgloss.NewStyle().Width(max(width-2, 10))
	var out []string
	for _, l := range s.transcript {
		var head string
		style := body.Foreground(theme.Text)
		switch l.who {
		case speakerInterviewer:
			head = theme.InterviewerName.Render("Interviewer")
		case speakerCandidate:
			head = theme.CandidateName.Render("You")
		case speakerSystem:
			style = body.Inherit(theme.SystemLine)
		}
		if head != "" {
			out = append(out, head)
		}
		for _, wrapped := range strings.Split(style.Render(l.text), "\n") {
			out = append(out, "  "+wrapped)
		}
		out = append(out, "")
	}
	if s.pending {
		out = append(out, theme.Hint.Render("  The interviewer is thinking..."))
	}
	return out
}

func (s *SessionScreen) renderInputArea(width int) string {
	rule := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width, 0)))
	switch {
	case s.completed:
		return rule + "\n" + lipgloss.NewStyle().Foreground(theme.Success).Bold(true).
			Render("Interview complete. Press Enter to view your report.")
	case s.confirmQuit:
		return rule + "\n" + lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).
			Render("End the interview now? [Y] yes  [N] keep going")
	}
	return rule + "\n" + s.input.View()
}

// renderSidePanel shows how the last answer was scored.
func (s *SessionScreen) renderSidePanel(height int) string {
	inner := sidePanelWidth - 4
	var b strings.Builder

	b.WriteString(theme.Section.Render("Difficulty") + "\n")
	b.WriteString(levelMeter(s.level) + "  " + adaptive.LevelName(s.level) + "\n\n")

	b.WriteString(theme.Section.Render("Last answer") + "\n")
	m := s.meta
	if m == nil {
		b.WriteString(theme.Hint.Render("No scored answers yet."))
		return components.Panel("", b.String(), sidePanelWidth)
	}

	b.WriteString(components.NewScoreBar("Score", float64(m.Composite), inner).View() + "\n")
	b.WriteString(theme.Hint.Render(fmt.Sprintf("Interviewer rated %d/10", m.AIScore)) + "\n\n")

	if m.LevelChanged {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).
			Render("Difficulty changed to "+m.LevelName) + "\n\n")
	}
	if m.FollowUp {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).
			Render("Follow-up coming: "+strings.ReplaceAll(string(m.FollowUpReason), "_", " ")) + "\n\n")
	}
	if len(m.Topics) > 0 {
		b.WriteString(theme.Section.Render("Topics") + "\n")
		b.WriteString(lipgloss.NewStyle().Width(inner).Foreground(theme.Text).
			Render(strings.Join(m.Topics, ", ")) + "\n\n")
	}

	b.WriteString(theme.Section.Render("Integrity") + "\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.SuspicionColor(string(m.SuspicionLevel))).
		Render(fmt.Sprintf("%s (%d/100)", m.SuspicionLevel, m.Suspicion)))
	for _, f := range m.Flags {
		b.WriteString("\n" + theme.Hint.Render("• "+strings.ReplaceAll(string(f.Type), "_", " ")))
	}

	panel := components.Panel("", b.String(), sidePanelWidth)
	return lipgloss.NewStyle().MaxHeight(height).Render(panel)
}

// levelMeter renders filled blocks for the difficulty level.
func levelMeter(level int) string {
	var b strings.Builder
	for l := adaptive.LevelEasy; l <= adaptive.LevelHard; l++ {
		if l <= level {
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Primary).Render("■"))
		} else {
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render("□"))
		}
	}
	return b.String()
}

// renderLoading renders the loading state.
func renderLoading(width int) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("\n\n\n  Preparing your interview...")
}

// renderError renders an error message.
func renderError(width int, errMsg string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Error).
		Render(fmt.Sprintf("\n\n\n  Error: %s\n\n  Press any key to go back.", errMsg))
}
