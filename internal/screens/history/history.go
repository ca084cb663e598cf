package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/interviewiz/internal/feedback"
	"github.com/abhisek/interviewiz/internal/router"
	"github.com/abhisek/interviewiz/internal/screen"
	"github.com/abhisek/interviewiz/internal/screens/summary"
	"github.com/abhisek/interviewiz/internal/store"
	"github.com/abhisek/interviewiz/internal/ui/layout"
	"github.com/abhisek/interviewiz/internal/ui/theme"
)

// listLimit caps the sessions shown.
const listLimit = 50

// Source lists stored sessions and loads their reports.
type Source interface {
	List(ctx context.Context) ([]store.SessionSummary, error)
	Report(ctx context.Context, id string) (*feedback.Report, error)
}

type historyLoadedMsg struct {
	Sessions []store.SessionSummary
	Err      error
}

type reportLoadedMsg struct {
	ID     string
	Report *feedback.Report
	Err    error
}

// HistoryScreen lists past interviews. Enter opens the report of a
// finished interview or resumes an unfinished one.
type HistoryScreen struct {
	source   Source
	resume   func(id string) screen.Screen
	sessions []store.SessionSummary
	selected int
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)
var _ screen.Resumer = (*HistoryScreen)(nil)

// New creates a new HistoryScreen. resume builds the screen that continues
// an unfinished interview; nil disables resuming.
func New(source Source, resume func(id string) screen.Screen) *HistoryScreen {
	return &HistoryScreen{source: source, resume: resume}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return s.load()
}

// Resume reloads the list when the screen is uncovered, since a resumed
// interview may have finished.
func (s *HistoryScreen) Resume() tea.Cmd {
	return s.load()
}

func (s *HistoryScreen) load() tea.Cmd {
	source := s.source
	return func() tea.Msg {
		sessions, err := source.List(context.Background())
		if len(sessions) > listLimit {
			sessions = sessions[:listLimit]
		}
		return historyLoadedMsg{Sessions: sessions, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "Past Sessions"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Open"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.errMsg = ""
			s.sessions = msg.Sessions
			s.selected = min(s.selected, max(len(s.sessions)-1, 0))
		}
		s.loaded = true
		return s, nil

	case reportLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		next := summary.New(msg.ID, msg.Report)
		return s, func() tea.Msg { return router.PushScreenMsg{Screen: next} }

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.sessions)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			return s, s.open()
		}
	}
	return s, nil
}

func (s *HistoryScreen) open() tea.Cmd {
	if s.selected >= len(s.sessions) {
		return nil
	}
	sum := s.sessions[s.selected]
	if !sum.Completed {
		if s.resume == nil {
			return nil
		}
		next := s.resume(sum.ID)
		return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
	}
	source := s.source
	return func() tea.Msg {
		r, err := source.Report(context.Background(), sum.ID)
		return reportLoadedMsg{ID: sum.ID, Report: r, Err: err}
	}
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading sessions...")
	}
	if len(s.sessions) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No interviews yet. Start one from the home screen!")
	}

	var b strings.Builder
	b.WriteString("\n")

	lines := make([]string, len(s.sessions))
	for i, sum := range s.sessions {
		lines[i] = s.renderRow(i, sum)
	}
	// Keep the selection on screen.
	rows := max(height-2, 1)
	offset := max(s.selected-rows+1, 0)
	for _, l := range layout.Clip(lines, offset, rows) {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, l))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *HistoryScreen) renderRow(i int, sum store.SessionSummary) string {
	prefix := "  "
	if i == s.selected {
		prefix = "> "
	}

	role := sum.RoleLevel
	if role == "" {
		role = "general"
	}
	status := "in progress"
	scoreColor := theme.TextDim
	if sum.Completed {
		status = fmt.Sprintf("%.1f/10", sum.FinalScore)
		scoreColor = theme.ScoreColor(sum.FinalScore)
	}

	line := fmt.Sprintf("%s%s  %-8s  %2d questions  ",
		prefix, sum.CreatedAt.Format("Jan 02, 2006 15:04"), role, sum.QuestionCount)

	style := lipgloss.NewStyle().Foreground(theme.Text)
	if i == s.selected {
		style = style.Foreground(theme.Primary).Bold(true)
	}
	return style.Render(line) + lipgloss.NewStyle().Foreground(scoreColor).Render(status)
}
