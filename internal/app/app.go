package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/interviewiz/internal/profile"
	"github.com/abhisek/interviewiz/internal/router"
	"github.com/abhisek/interviewiz/internal/screen"
	"github.com/abhisek/interviewiz/internal/screens/history"
	"github.com/abhisek/interviewiz/internal/screens/home"
	sessionscreen "github.com/abhisek/interviewiz/internal/screens/session"
	"github.com/abhisek/interviewiz/internal/screens/welcome"
	"github.com/abhisek/interviewiz/internal/session"
	"github.com/abhisek/interviewiz/internal/ui/layout"
)

// Options configures the terminal app.
type Options struct {
	// Engine runs interviews and lists stored sessions. Required.
	Engine *session.Engine
	// InterviewerReady is false when no model is configured; starting an
	// interview is then disabled.
	InterviewerReady bool
	// Profile seeds new interviews.
	Profile *profile.Profile
	// SessionID opens the interview screen directly, resuming the session
	// when it exists.
	SessionID string
	// SkipWelcome starts on the home screen.
	SkipWelcome bool
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	start  tea.Cmd
	width  int
	height int
}

// newAppModel builds the screen stack for opts.
func newAppModel(opts Options) AppModel {
	engine := opts.Engine

	newInterview := func(id string) screen.Screen {
		return sessionscreen.New(engine, sessionscreen.Options{SessionID: id, Profile: opts.Profile})
	}
	homeOpts := home.Options{
		Sessions: engine,
		NewHistory: func() screen.Screen {
			if !opts.InterviewerReady {
				return history.New(engine, nil)
			}
			return history.New(engine, newInterview)
		},
	}
	if opts.InterviewerReady {
		homeOpts.NewInterview = func() screen.Screen { return newInterview("") }
	}
	newHome := func() screen.Screen { return home.New(homeOpts) }

	var m AppModel
	switch {
	case opts.SessionID != "":
		root := newHome()
		interview := newInterview(opts.SessionID)
		m.router = router.New(root)
		m.start = tea.Batch(root.Init(), func() tea.Msg {
			return router.PushScreenMsg{Screen: interview}
		})
	case opts.SkipWelcome:
		root := newHome()
		m.router = router.New(root)
		m.start = root.Init()
	default:
		root := welcome.New(newHome)
		m.router = router.New(root)
		m.start = root.Init()
	}
	return m
}

func (m AppModel) Init() tea.Cmd {
	return m.start
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if eh, ok := m.router.Active().(screen.EscapeHandler); ok && eh.HandlesEscape() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render draws the frame for the current terminal size.
func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	var title, status string
	if active != nil {
		title = active.Title()
	}
	if sp, ok := active.(screen.StatusProvider); ok {
		status = sp.Status()
	}

	header := layout.RenderHeader(title, status, m.width)
	footer := layout.RenderFooter(m.footerHints(), m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)

	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

func (m AppModel) footerHints() []layout.KeyHint {
	if kp, ok := m.router.Active().(screen.KeyHintProvider); ok {
		return kp.KeyHints()
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "Any key", Description: "Continue"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	if opts.Engine == nil {
		return fmt.Errorf("app: engine is required")
	}
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
