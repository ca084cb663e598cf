package home

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/interviewiz/internal/router"
	"github.com/abhisek/interviewiz/internal/screen"
	"github.com/abhisek/interviewiz/internal/session"
	"github.com/abhisek/interviewiz/internal/store"
	"github.com/abhisek/interviewiz/internal/ui/components"
	"github.com/abhisek/interviewiz/internal/ui/layout"
)

// Lister lists stored sessions, most recently updated first.
type Lister interface {
	List(ctx context.Context) ([]store.SessionSummary, error)
}

// Options wires the home screen to the rest of the app.
type Options struct {
	Sessions Lister
	// NewInterview builds the interview screen. Nil means no interviewer
	// model is configured and starting is disabled.
	NewInterview func() screen.Screen
	// NewHistory builds the past sessions screen.
	NewHistory func() screen.Screen
}

type stats struct {
	Sessions   int
	Completed  int
	Unfinished int
	Best       float64
	Average    float64
	LastPassed bool
}

type statsLoadedMsg struct {
	Stats stats
	Err   error
}

// HomeScreen is the main menu.
type HomeScreen struct {
	opts       Options
	menu       components.Menu
	menuLabels []string
	stats      stats
	loaded     bool
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)
var _ screen.Resumer = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(opts Options) *HomeScreen {
	menuLabels := []string{"START INTERVIEW", "PAST SESSIONS", "QUIT"}

	items := []components.MenuItem{
		{Label: menuLabels[0], Disabled: opts.NewInterview == nil, Action: func() tea.Cmd {
			next := opts.NewInterview()
			return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
		}},
		{Label: menuLabels[1], Disabled: opts.NewHistory == nil || opts.Sessions == nil, Action: func() tea.Cmd {
			next := opts.NewHistory()
			return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
		}},
		{Label: menuLabels[2], Action: func() tea.Cmd {
			return tea.Quit
		}},
	}

	return &HomeScreen{
		opts:       opts,
		menu:       components.NewMenu(items),
		menuLabels: menuLabels,
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.loadStats()
}

// Resume refreshes the stats after an interview or the history screen.
func (h *HomeScreen) Resume() tea.Cmd {
	return h.loadStats()
}

func (h *HomeScreen) loadStats() tea.Cmd {
	if h.opts.Sessions == nil {
		return nil
	}
	lister := h.opts.Sessions
	return func() tea.Msg {
		sessions, err := lister.List(context.Background())
		if err != nil {
			return statsLoadedMsg{Err: err}
		}
		return statsLoadedMsg{Stats: computeStats(sessions)}
	}
}

// computeStats summarizes sessions listed newest first.
func computeStats(sessions []store.SessionSummary) stats {
	st := stats{Sessions: len(sessions)}
	var sum float64
	seenCompleted := false
	for _, s := range sessions {
		if !s.Completed {
			st.Unfinished++
			continue
		}
		if !seenCompleted {
			st.LastPassed = s.FinalScore >= session.PassScore
			seenCompleted = true
		}
		st.Completed++
		sum += s.FinalScore
		st.Best = max(st.Best, s.FinalScore)
	}
	if st.Completed > 0 {
		st.Average = sum / float64(st.Completed)
	}
	return st
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if m, ok := msg.(statsLoadedMsg); ok {
		// A failed load leaves the previous stats in place.
		if m.Err == nil {
			h.stats = m.Stats
			h.loaded = true
		}
		return h, nil
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; estimate full terminal height
	// by adding back header (3) + footer (3) + frame gaps
	termHeight := height + 8
	compact := termHeight < 30 || width < 100

	cw := components.ContentWidth(width)

	var sections []string
	sections = append(sections, renderTitle(cw, compact))
	if !compact {
		sections = append(sections, renderMascotBox(mascotFor(h.stats), cw))
	}
	if h.loaded {
		sections = append(sections, renderStatsBar(h.stats, cw, compact))
	}
	if h.opts.NewInterview == nil {
		sections = append(sections, renderLLMBanner(cw))
	}

	disabled := make(map[int]bool)
	for i, item := range h.menu.Items {
		disabled[i] = item.Disabled
	}
	if compact {
		sections = append(sections, renderMenuCompact(h.menuLabels, h.menu.Selected, cw, disabled))
	} else {
		sections = append(sections, renderMenu(h.menuLabels, h.menu.Selected, cw, disabled))
	}

	content := strings.Join(sections, "\n\n")
	return renderFrame(content, width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}
