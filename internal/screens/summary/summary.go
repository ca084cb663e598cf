package summary

import (
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/interviewiz/internal/feedback"
	"github.com/abhisek/interviewiz/internal/router"
	"github.com/abhisek/interviewiz/internal/screen"
	"github.com/abhisek/interviewiz/internal/skillgap"
	"github.com/abhisek/interviewiz/internal/ui/components"
	"github.com/abhisek/interviewiz/internal/ui/layout"
	"github.com/abhisek/interviewiz/internal/ui/theme"
)

// SummaryScreen displays the interview report.
type SummaryScreen struct {
	id     string
	report *feedback.Report
	offset int
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a SummaryScreen for the report of session id.
func New(id string, report *feedback.Report) *SummaryScreen {
	return &SummaryScreen{id: id, report: report}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Interview Report"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Enter", Description: "Done"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "up", "k":
		s.offset = max(s.offset-1, 0)
	case "down", "j":
		s.offset++
	case "pgup":
		s.offset = max(s.offset-10, 0)
	case "pgdown":
		s.offset += 10
	case "enter":
		return s, func() tea.Msg { return router.PopToRootMsg{} }
	case "esc":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	if s.report == nil {
		return ""
	}
	cw := components.ContentWidth(width)
	lines := strings.Split(s.render(cw), "\n")

	// Keep the last page reachable but not past it.
	s.offset = min(s.offset, max(len(lines)-height, 0))
	visible := strings.Join(layout.Clip(lines, s.offset, height), "\n")
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, visible)
}

func (s *SummaryScreen) render(cw int) string {
	r := s.report
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).
		Foreground(theme.ScoreColor(r.OverallScore)).Bold(true).
		Render(r.Headline))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render(r.Tier.Description))
	b.WriteString("\n\n")

	meta := fmt.Sprintf("Answers evaluated: %d", r.AnswerCount)
	if s.id != "" {
		meta = "Session " + s.id + "   " + meta
	}
	b.WriteString(theme.Hint.Render(meta) + "\n\n")

	if r.Spoken != "" {
		section(&b, "In brief", cw)
		b.WriteString(lipgloss.NewStyle().Width(cw).Foreground(theme.Text).Render(r.Spoken) + "\n")
	}

	section(&b, "Dimensions", cw)
	labelWidth := 0
	for _, d := range r.Dimensions {
		labelWidth = max(labelWidth, lipgloss.Width(d.Label))
	}
	for _, d := range r.Dimensions {
		bar := components.NewScoreBar(d.Label, d.Average, cw)
		bar.LabelWidth = labelWidth
		b.WriteString(bar.View() + "\n")
	}

	observations(&b, "Strengths", r.Strengths, theme.Success, cw)
	observations(&b, "Areas to improve", r.Weaknesses, theme.Accent, cw)

	if r.Best != nil && r.Worst != nil {
		section(&b, "Highlights", cw)
		bullet(&b, fmt.Sprintf("Best (Q%d, %d/10): %s", r.Best.Index, r.Best.Score, r.Best.Excerpt), theme.Text, cw)
		bullet(&b, fmt.Sprintf("Needs work (Q%d, %d/10): %s", r.Worst.Index, r.Worst.Score, r.Worst.Excerpt), theme.Text, cw)
	}

	if len(r.Trajectory.Levels) > 0 {
		section(&b, "Difficulty", cw)
		levels := make([]string, len(r.Trajectory.Levels))
		for i, l := range r.Trajectory.Levels {
			levels[i] = fmt.Sprint(l)
		}
		bullet(&b, fmt.Sprintf("%s (%s, peak %d)", strings.Join(levels, " → "), r.Trajectory.Trend, r.Trajectory.Peak), theme.Text, cw)
	}

	if g := r.SkillGap; g != nil && (len(g.Gaps) > 0 || len(g.Strengths) > 0) {
		section(&b, fmt.Sprintf("Skill gaps vs %s baseline (gap score %d/100)", g.RoleLevel, g.OverallGapScore), cw)
		for _, gap := range g.Gaps {
			bullet(&b, fmt.Sprintf("%s: %.1f vs %.1f (%s). %s", gap.Topic, gap.Average, gap.Baseline, gap.Severity, gap.Recommendation),
				gapColor(gap.Severity), cw)
		}
		for _, st := range g.Strengths {
			bullet(&b, fmt.Sprintf("%s: %.1f, above baseline", st.Topic, st.Average), theme.Success, cw)
		}
	}

	section(&b, "Roadmap", cw)
	roadmap(&b, "Now", r.Roadmap.Immediate, cw)
	roadmap(&b, "Next weeks", r.Roadmap.ShortTerm, cw)
	roadmap(&b, "Long term", r.Roadmap.LongTerm, cw)

	if in := r.Integrity; in != nil {
		section(&b, "Integrity", cw)
		bullet(&b, fmt.Sprintf("%s (%d/100): %s", in.Level, in.Suspicion, in.Verdict),
			theme.SuspicionColor(string(in.Level)), cw)
	}
	return b.String()
}

func section(b *strings.Builder, title string, cw int) {
	b.WriteString("\n" + theme.Section.Render(title) + "\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", cw)) + "\n")
}

func bullet(b *strings.Builder, text string, c color.Color, cw int) {
	style := lipgloss.NewStyle().Width(cw - 2).Foreground(c)
	b.WriteString("• " + strings.ReplaceAll(style.Render(text), "\n", "\n  ") + "\n")
}

func observations(b *strings.Builder, title string, obs []feedback.Observation, c color.Color, cw int) {
	if len(obs) == 0 {
		return
	}
	section(b, title, cw)
	for _, o := range obs {
		bullet(b, fmt.Sprintf("%s (%d%% of answers)", o.Text, o.Consistency), c, cw)
	}
}

func roadmap(b *strings.Builder, label string, items []string, cw int) {
	if len(items) == 0 {
		return
	}
	b.WriteString(theme.Hint.Render(label) + "\n")
	for _, it := range items {
		bullet(b, it, theme.Text, cw)
	}
}

func gapColor(sev skillgap.Severity) color.Color {
	switch sev {
	case skillgap.SeverityCritical:
		return theme.Error
	case skillgap.SeveritySignificant:
		return theme.Accent
	default:
		return theme.Warning
	}
}
