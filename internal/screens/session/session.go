package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/interviewiz/internal/adaptive"
	"github.com/abhisek/interviewiz/internal/feedback"
	"github.com/abhisek/interviewiz/internal/interviewer"
	"github.com/abhisek/interviewiz/internal/llm"
	"github.com/abhisek/interviewiz/internal/profile"
	"github.com/abhisek/interviewiz/internal/router"
	"github.com/abhisek/interviewiz/internal/screen"
	sess "github.com/abhisek/interviewiz/internal/session"
	"github.com/abhisek/interviewiz/internal/ui/components"
	"github.com/abhisek/interviewiz/internal/ui/layout"
)

const (
	answerLimit = 4000
	scrollStep  = 5
)

// Engine is the part of the interview engine the screen drives.
type Engine interface {
	Config() sess.Config
	Create(ctx context.Context, opts sess.CreateOptions) (*sess.Snapshot, error)
	Get(ctx context.Context, id string) (*sess.Snapshot, error)
	HandleMessage(ctx context.Context, id, text string) (*sess.TurnResult, error)
}

// Options configures a SessionScreen.
type Options struct {
	// SessionID resumes a stored session, or names a new one.
	SessionID string
	Profile   *profile.Profile
	// Now overrides the clock.
	Now func() time.Time
}

type speaker int

const (
	speakerInterviewer speaker = iota
	speakerCandidate
	speakerSystem
)

type line struct {
	who  speaker
	text string
}

// SessionScreen runs one interview as a chat.
type SessionScreen struct {
	engine Engine
	opts   Options
	limits sess.Config

	id         string
	transcript []line
	input      components.TextInput

	started   time.Time
	elapsed   time.Duration
	questions int
	level     int
	meta      *sess.TurnMetadata

	greeted     bool
	pending     bool
	confirmQuit bool
	ending      bool
	completed   bool
	report      *feedback.Report
	errMsg      string

	// scrollBack is how many lines the transcript is scrolled up from the
	// newest line.
	scrollBack int
}

var _ screen.Screen = (*SessionScreen)(nil)
var _ screen.KeyHintProvider = (*SessionScreen)(nil)
var _ screen.StatusProvider = (*SessionScreen)(nil)
var _ screen.EscapeHandler = (*SessionScreen)(nil)

// New creates a SessionScreen.
func New(engine Engine, opts Options) *SessionScreen {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &SessionScreen{
		engine: engine,
		opts:   opts,
		limits: engine.Config(),
		input:  components.NewTextInput("Type your answer, or press Enter to skip...", answerLimit),
		level:  adaptive.DefaultStartLevel,
	}
}

func (s *SessionScreen) Init() tea.Cmd {
	s.input.Disable()
	return tea.Batch(s.initSession(), tickCmd())
}

func (s *SessionScreen) Title() string {
	return "Interview"
}

func (s *SessionScreen) HandlesEscape() bool { return true }

// Status shows progress and the clock in the header.
func (s *SessionScreen) Status() string {
	if s.id == "" {
		return ""
	}
	parts := []string{adaptive.LevelName(s.level)}
	if s.limits.MaxQuestions > 0 {
		parts = append(parts, fmt.Sprintf("Q %d/%d", min(s.questions, s.limits.MaxQuestions), s.limits.MaxQuestions))
	}
	clock := layout.FormatDuration(int(s.elapsed.Seconds()))
	if s.limits.MaxDuration > 0 {
		clock += " / " + layout.FormatDuration(int(s.limits.MaxDuration.Seconds()))
	}
	return strings.Join(append(parts, clock), "  ")
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.errMsg != "":
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	case s.completed:
		return []layout.KeyHint{{Key: "Enter", Description: "View report"}}
	case s.confirmQuit:
		return []layout.KeyHint{
			{Key: "Y", Description: "End interview"},
			{Key: "N", Description: "Keep going"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "PgUp/PgDn", Description: "Scroll"},
		{Key: "Esc", Description: "End"},
	}
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionInitMsg:
		return s.handleInit(msg)

	case turnMsg:
		return s.handleTurn(msg)

	case timerTickMsg:
		return s.handleTimerTick()

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if !s.pending && !s.completed {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

// initSession resumes the requested session or creates a new one.
func (s *SessionScreen) initSession() tea.Cmd {
	engine, opts := s.engine, s.opts
	return func() tea.Msg {
		ctx := context.Background()
		if opts.SessionID != "" {
			snap, err := engine.Get(ctx, opts.SessionID)
			switch {
			case err == nil && snap.Completed:
				return sessionInitMsg{Err: fmt.Errorf("session %s is already completed", opts.SessionID)}
			case err == nil:
				return sessionInitMsg{Snapshot: snap, Resumed: true}
			case !errors.Is(err, sess.ErrSessionNotFound):
				return sessionInitMsg{Err: err}
			}
		}
		snap, err := engine.Create(ctx, sess.CreateOptions{ID: opts.SessionID, Profile: opts.Profile})
		return sessionInitMsg{Snapshot: snap, Err: err}
	}
}

func (s *SessionScreen) handleInit(msg sessionInitMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	snap := msg.Snapshot
	s.id = snap.ID
	s.started = snap.StartedAt
	s.questions = snap.QuestionCount
	s.level = snap.Adaptive.Level
	s.elapsed = s.opts.Now().Sub(s.started)

	if msg.Resumed && len(snap.History) > 0 {
		s.transcript = transcriptFromHistory(snap.History)
		s.greeted = true
		s.addLine(speakerSystem, "Resumed interview "+snap.ID+".")
		return s, s.input.Enable()
	}
	return s, s.send(interviewer.ControlStart)
}

// send delivers text to the engine and disables input until the reply.
func (s *SessionScreen) send(text string) tea.Cmd {
	s.pending = true
	s.input.Disable()
	engine, id := s.engine, s.id
	return func() tea.Msg {
		res, err := engine.HandleMessage(context.Background(), id, text)
		return turnMsg{Sent: text, Result: res, Err: err}
	}
}

func (s *SessionScreen) handleTurn(msg turnMsg) (screen.Screen, tea.Cmd) {
	s.pending = false
	if msg.Err != nil {
		var collab *sess.CollaboratorError
		switch {
		case errors.As(msg.Err, &collab):
			if !interviewer.IsControl(msg.Sent) {
				// The answer goes back into the input to be resent.
				if n := len(s.transcript); n > 0 && s.transcript[n-1].who == speakerCandidate {
					s.transcript = s.transcript[:n-1]
				}
				s.input.SetValue(msg.Sent)
			}
			s.addLine(speakerSystem, sess.TryAgainMessage)
			return s, s.input.Enable()
		case errors.Is(msg.Err, sess.ErrSessionCompleted):
			s.completed = true
			return s, nil
		default:
			s.errMsg = msg.Err.Error()
			return s, nil
		}
	}

	res := msg.Result
	s.greeted = true
	s.addLine(speakerInterviewer, res.Response)
	if res.Metadata != nil {
		s.meta = res.Metadata
		s.level = res.Metadata.Level
	}
	if res.Completed {
		s.completed = true
		s.report = res.Report
		s.addLine(speakerSystem, "The interview is over. Press Enter to view your report.")
		return s, nil
	}
	s.questions++
	return s, s.input.Enable()
}

func (s *SessionScreen) handleTimerTick() (screen.Screen, tea.Cmd) {
	if s.completed || s.errMsg != "" {
		return s, nil
	}
	if s.id != "" {
		s.elapsed = s.opts.Now().Sub(s.started)
	}
	if s.limits.MaxDuration > 0 && s.elapsed >= s.limits.MaxDuration && !s.pending && !s.ending && s.id != "" {
		s.ending = true
		s.addLine(speakerSystem, "Time is up.")
		return s, tea.Batch(s.send(interviewer.ControlEnd), tickCmd())
	}
	return s, tickCmd()
}

func (s *SessionScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.errMsg != "" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}

	switch key {
	case "pgup":
		s.scrollBack += scrollStep
		return s, nil
	case "pgdown":
		s.scrollBack = max(s.scrollBack-scrollStep, 0)
		return s, nil
	}

	if s.completed {
		if key == "enter" || key == "esc" {
			r := s.report
			if r == nil {
				r = &feedback.Report{}
			}
			next := newReportScreen(s.id, r)
			return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
		}
		return s, nil
	}

	if s.confirmQuit {
		switch key {
		case "y", "Y":
			s.confirmQuit = false
			if s.pending {
				return s, nil
			}
			s.ending = true
			return s, s.send(interviewer.ControlEnd)
		case "n", "N", "esc":
			s.confirmQuit = false
		}
		return s, nil
	}

	if key == "esc" {
		s.confirmQuit = true
		return s, nil
	}

	if s.pending || s.id == "" {
		return s, nil
	}

	if key == "enter" {
		return s.submit()
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

// submit sends the typed answer. An empty answer skips the question.
// Enter after a failed greeting or ending retries it.
func (s *SessionScreen) submit() (screen.Screen, tea.Cmd) {
	switch {
	case s.ending:
		return s, s.send(interviewer.ControlEnd)
	case !s.greeted:
		return s, s.send(interviewer.ControlStart)
	}

	text := strings.TrimSpace(s.input.Value())
	s.input.Reset()
	s.scrollBack = 0
	if text == "" {
		s.addLine(speakerSystem, "(skipped)")
		return s, s.send(interviewer.ControlNoResponse)
	}
	s.addLine(speakerCandidate, text)
	return s, s.send(text)
}

func (s *SessionScreen) addLine(who speaker, text string) {
	s.transcript = append(s.transcript, line{who: who, text: text})
}

// transcriptFromHistory rebuilds the chat from stored conversation turns.
func transcriptFromHistory(turns []interviewer.Turn) []line {
	var out []line
	for _, t := range turns {
		switch t.Role {
		case llm.RoleAssistant:
			out = append(out, line{who: speakerInterviewer, text: t.Content})
		case llm.RoleUser:
			if c, ok := interviewer.ControlFor(t.Content); ok {
				if c == interviewer.ControlNoResponse {
					out = append(out, line{who: speakerSystem, text: "(skipped)"})
				}
				continue
			}
			out = append(out, line{who: speakerCandidate, text: t.Content})
		}
	}
	return out
}

// tickCmd returns a 1-second tick command.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return timerTickMsg(t)
	})
}
