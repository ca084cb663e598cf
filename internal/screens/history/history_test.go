package history

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/interviewiz/internal/feedback"
	"github.com/abhisek/interviewiz/internal/router"
	"github.com/abhisek/interviewiz/internal/screen"
	"github.com/abhisek/interviewiz/internal/store"
)

type fakeSource struct {
	sessions []store.SessionSummary
	listErr  error
	reports  map[string]*feedback.Report
}

func (f *fakeSource) List(context.Context) ([]store.SessionSummary, error) {
	return f.sessions, f.listErr
}

func (f *fakeSource) Report(_ context.Context, id string) (*feedback.Report, error) {
	r, ok := f.reports[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return r, nil
}

type stubScreen struct{ title string }

func (s *stubScreen) Init() tea.Cmd                           { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return s.title }
func (s *stubScreen) Title() string                           { return s.title }

func testSource() *fakeSource {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return &fakeSource{
		sessions: []store.SessionSummary{
			{ID: "done", Completed: true, QuestionCount: 6, FinalScore: 7.5, RoleLevel: "senior", CreatedAt: created},
			{ID: "open", QuestionCount: 2, CreatedAt: created},
		},
		reports: map[string]*feedback.Report{
			"done": {OverallScore: 7.5, Headline: "Strong performance: 7.5/10"},
		},
	}
}

func loaded(t *testing.T, src Source, resume func(string) screen.Screen) *HistoryScreen {
	t.Helper()
	s := New(src, resume)
	cmd := s.Init()
	require.NotNil(t, cmd)
	s.Update(cmd())
	require.True(t, s.loaded)
	return s
}

func TestHistoryScreen_View(t *testing.T) {
	s := loaded(t, testSource(), nil)
	view := s.View(100, 20)

	assert.Contains(t, view, "Mar 01, 2025 10:00")
	assert.Contains(t, view, "senior")
	assert.Contains(t, view, "7.5/10")
	assert.Contains(t, view, "general")
	assert.Contains(t, view, "in progress")
	assert.Equal(t, "Past Sessions", s.Title())
}

func TestHistoryScreen_Empty(t *testing.T) {
	s := loaded(t, &fakeSource{}, nil)
	assert.Contains(t, s.View(100, 20), "No interviews yet")
}

func TestHistoryScreen_ListError(t *testing.T) {
	s := loaded(t, &fakeSource{listErr: errors.New("database locked")}, nil)
	assert.Contains(t, s.View(100, 20), "database locked")
}

func TestHistoryScreen_OpenCompleted(t *testing.T) {
	s := loaded(t, testSource(), nil)

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	_, cmd = s.Update(cmd())
	require.NotNil(t, cmd)

	push, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "Interview Report", push.Screen.Title())
}

func TestHistoryScreen_ResumeUnfinished(t *testing.T) {
	var resumed string
	s := loaded(t, testSource(), func(id string) screen.Screen {
		resumed = id
		return &stubScreen{title: "Interview"}
	})

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, 1, s.selected, "selection stops at the last row")

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	push, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "open", resumed)
	assert.Equal(t, "Interview", push.Screen.Title())
}

func TestHistoryScreen_ResumeDisabled(t *testing.T) {
	s := loaded(t, testSource(), nil)
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestHistoryScreen_MissingReport(t *testing.T) {
	src := testSource()
	src.reports = nil
	s := loaded(t, src, nil)

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	s.Update(cmd())
	assert.True(t, strings.Contains(s.View(100, 20), "not found"))
}

func TestHistoryScreen_ListLimit(t *testing.T) {
	src := &fakeSource{}
	for range listLimit + 10 {
		src.sessions = append(src.sessions, store.SessionSummary{ID: "x"})
	}
	s := loaded(t, src, nil)
	assert.Len(t, s.sessions, listLimit)
}
